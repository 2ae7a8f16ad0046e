package commands

import (
	"context"
	"testing"

	"github.com/gm-tools/gmtools/internal/chat"
	"github.com/gm-tools/gmtools/internal/ingest"
	"github.com/gm-tools/gmtools/internal/testutil"
	"github.com/gm-tools/gmtools/internal/tui"
	"github.com/gm-tools/gmtools/internal/video"
)

func TestBridgeDeliversInOrder(t *testing.T) {
	b := NewBridge(4)
	b.Send(tui.StopIngestMsg{})
	b.Send(tui.UseExistingMsg{})

	if _, ok := b.Listen()().(tui.StopIngestMsg); !ok {
		t.Error("first message: want StopIngestMsg")
	}
	if _, ok := b.Listen()().(tui.UseExistingMsg); !ok {
		t.Error("second message: want UseExistingMsg")
	}
}

func TestBridgeDropsWhenFull(t *testing.T) {
	b := NewBridge(1)
	b.Send(tui.StopIngestMsg{})
	b.Send(tui.UseExistingMsg{}) // dropped, must not block

	if _, ok := b.Listen()().(tui.StopIngestMsg); !ok {
		t.Error("want the first message kept")
	}
}

func TestBridgeCloseReleasesListen(t *testing.T) {
	b := NewBridge(1)
	b.Close()
	if msg := b.Listen()(); msg != nil {
		t.Errorf("got %T after Close, want nil", msg)
	}
	b.Send(tui.StopIngestMsg{}) // no panic after Close
	b.Close()
}

func TestProbeCmd(t *testing.T) {
	fake := &testutil.FakeBackend{ProgressReplies: []testutil.Reply{testutil.Body(`{"progress":100,"done":true}`)}}
	s := ingest.New(fake, ingest.Options{})

	msg := ProbeCmd(context.Background(), s)()
	res, ok := msg.(tui.ProbeResultMsg)
	if !ok || !res.CanSkip {
		t.Errorf("got %#v, want CanSkip", msg)
	}
}

func TestWaitTurnCmd(t *testing.T) {
	fake := &testutil.FakeBackend{ChatReplies: []testutil.Reply{testutil.Body(testutil.ChatAnswerEN)}}
	s := chat.New(fake, chat.Options{})
	ch, err := s.Send(context.Background(), "what is in Q3?")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	msg := WaitTurnCmd(ch)()
	turn, ok := msg.(tui.ChatTurnMsg)
	if !ok {
		t.Fatalf("got %T, want ChatTurnMsg", msg)
	}
	if turn.Turn.Role != chat.Assistant || len(turn.Turn.Sources) != 2 {
		t.Errorf("turn: got %+v", turn.Turn)
	}
}

func TestAnalyzeVideoCmdValidationError(t *testing.T) {
	s := video.New(&testutil.FakeBackend{}, video.Options{})
	msg := AnalyzeVideoCmd(context.Background(), s, "nope")()
	res, ok := msg.(tui.VideoResultMsg)
	if !ok || res.Err == nil {
		t.Errorf("got %#v, want a VideoResultMsg with error", msg)
	}
}
