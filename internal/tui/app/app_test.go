package app

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gm-tools/gmtools/internal/config"
	"github.com/gm-tools/gmtools/internal/logging"
	"github.com/gm-tools/gmtools/internal/testutil"
	"github.com/gm-tools/gmtools/internal/tui"
)

func newApp(t *testing.T, fake *testutil.FakeBackend) *App {
	t.Helper()
	a := New(Deps{
		Config:     config.DefaultConfig(),
		Client:     fake,
		BackendURL: "http://backend.test",
		Logger:     logging.Discard(),
	})
	t.Cleanup(a.Close)
	return a
}

func TestChatLockedUntilCorpusReady(t *testing.T) {
	a := newApp(t, &testutil.FakeBackend{})

	a.Update(tui.NavigateMsg{State: tui.StateChat})
	if a.model.State != tui.StateHome {
		t.Errorf("State: got %v, want home while corpus is not ready", a.model.State)
	}

	a.Update(tea.KeyMsg{Type: tea.KeyTab})
	a.Update(tea.KeyMsg{Type: tea.KeyTab})
	if a.model.State != tui.StateVideo {
		t.Errorf("after two tabs: got %v, want video (chat skipped)", a.model.State)
	}
}

func TestUseExistingUnlocksChat(t *testing.T) {
	fake := &testutil.FakeBackend{ProgressReplies: []testutil.Reply{testutil.Body(`{"progress":100,"done":true}`)}}
	a := newApp(t, fake)

	a.Update(tui.UseExistingMsg{})
	if a.model.CorpusReady {
		t.Fatal("CorpusReady: got true without a successful probe")
	}

	canSkip := a.ingest.Probe(context.Background())
	a.Update(tui.ProbeResultMsg{CanSkip: canSkip})
	a.Update(tui.UseExistingMsg{})
	if !a.model.CorpusReady || a.model.State != tui.StateChat {
		t.Errorf("got ready=%v state=%v, want ready chat", a.model.CorpusReady, a.model.State)
	}
}

func TestAskQuestionRendersAnswer(t *testing.T) {
	fake := &testutil.FakeBackend{
		ProgressReplies: []testutil.Reply{testutil.Body(`{"progress":100,"done":true}`)},
		ChatReplies:     []testutil.Reply{testutil.Body(testutil.ChatAnswerEN)},
	}
	a := newApp(t, fake)
	a.ingest.Probe(context.Background())
	a.Update(tui.UseExistingMsg{})

	_, cmd := a.Update(tui.SendQuestionMsg{Question: "what about Q3?"})
	if cmd == nil {
		t.Fatal("SendQuestionMsg: want a wait command")
	}
	if !a.chatView.Busy() {
		t.Error("chat view should be busy while the answer is outstanding")
	}
	a.Update(cmd())

	if a.chatView.Busy() {
		t.Error("chat view still busy after the answer")
	}
	turns := a.chat.Transcript()
	if len(turns) != 3 {
		t.Fatalf("transcript: got %d turns, want greeting + question + answer", len(turns))
	}
	view := a.View()
	if !strings.Contains(view, "Q3") || !strings.Contains(view, "q3.pdf") {
		t.Errorf("view missing answer or sources:\n%s", view)
	}
}

func TestToggleNeutral(t *testing.T) {
	a := newApp(t, &testutil.FakeBackend{})
	before := a.video.IncludeNeutral()
	a.Update(tui.ToggleNeutralMsg{})
	if a.video.IncludeNeutral() == before {
		t.Error("ToggleNeutralMsg did not flip the setting")
	}
}

func TestVideoResultShowsSummary(t *testing.T) {
	fake := &testutil.FakeBackend{VideoReplies: []testutil.Reply{testutil.Body(testutil.VideoThreeWay)}}
	a := newApp(t, fake)
	a.Update(tui.NavigateMsg{State: tui.StateVideo})

	_, cmd := a.Update(tui.AnalyzeVideoMsg{URL: "https://youtu.be/dQw4w9WgXcQ"})
	a.Update(cmd())

	view := a.View()
	for _, want := range []string{"62.5%", "Highlights", "amazing"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestDoubleCtrlCQuits(t *testing.T) {
	a := newApp(t, &testutil.FakeBackend{})

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !a.model.CtrlCPending {
		t.Fatal("first Ctrl+C should arm the exit")
	}
	if cmd == nil {
		t.Fatal("first Ctrl+C should schedule a reset")
	}

	_, cmd = a.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("second Ctrl+C: want quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("second Ctrl+C did not quit")
	}
}
