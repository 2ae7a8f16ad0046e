package log

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gm-tools/gmtools/internal/events"
)

func TestAppendAndReadAll(t *testing.T) {
	l, err := NewLogger(t.TempDir())
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	if err := l.Append(LogEvent{Event: events.IngestSubmitted, Path: "/docs"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := l.Append(LogEvent{Event: events.IngestCompleted, Progress: 100}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	all, err := l.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d events, want 2", len(all))
	}
	if all[0].Path != "/docs" {
		t.Errorf("Path: got %q, want /docs", all[0].Path)
	}
	if all[1].Time.IsZero() {
		t.Error("Time was not stamped")
	}
}

func TestReadAllMissingFile(t *testing.T) {
	l := &Logger{path: filepath.Join(t.TempDir(), "nope.jsonl")}
	all, err := l.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("got %d events, want 0", len(all))
	}
}

func TestReadAllCorruptLine(t *testing.T) {
	dir := t.TempDir()
	l, _ := NewLogger(dir)
	if err := os.WriteFile(l.Path(), []byte("{\"event\":\"chat_sent\"}\nnot json\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := l.ReadAll(); err == nil {
		t.Error("expected parse error, got nil")
	}
}

func TestEmitImplementsSink(t *testing.T) {
	l, _ := NewLogger(t.TempDir())
	var sink events.Sink = l

	err := sink.Emit(context.Background(), events.Event{
		Type:  events.ChatFailed,
		Query: "what is in chapter 2?",
		Error: "Error 502: Bad Gateway",
	})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	last, err := l.Last(events.ChatFailed)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if last == nil {
		t.Fatal("Last: got nil, want event")
	}
	if last.Error != "Error 502: Bad Gateway" {
		t.Errorf("Error: got %q", last.Error)
	}
	if missing, _ := l.Last(events.VideoAnalyzed); missing != nil {
		t.Errorf("Last(video_analyzed): got %+v, want nil", missing)
	}
}

func TestConcurrentAppend(t *testing.T) {
	l, _ := NewLogger(t.TempDir())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = l.Append(LogEvent{Event: events.ChatSent, Progress: i})
		}(i)
	}
	wg.Wait()

	all, err := l.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(all) != 20 {
		t.Errorf("got %d events, want 20", len(all))
	}
}
