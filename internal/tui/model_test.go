package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gm-tools/gmtools/internal/sentiment"
)

func TestNextScreenSkipsUnavailable(t *testing.T) {
	m := NewModel("http://x", "http://x")
	want := []ViewState{StateIngest, StateVideo, StateHome}
	for _, w := range want {
		m.State = m.NextScreen()
		if m.State != w {
			t.Fatalf("got %v, want %v", m.State, w)
		}
	}

	m.CorpusReady = true
	m.State = StateIngest
	if got := m.NextScreen(); got != StateChat {
		t.Errorf("with corpus ready: got %v, want %v", got, StateChat)
	}
}

func TestBoxWidth(t *testing.T) {
	m := NewModel("", "")
	m.Width = 200
	if got := m.BoxWidth(100); got != 100 {
		t.Errorf("wide terminal: got %d, want 100", got)
	}
	m.Width = 50
	if got := m.BoxWidth(100); got != 46 {
		t.Errorf("narrow terminal: got %d, want 46", got)
	}
	m.Width = 10
	if got := m.BoxWidth(100); got != 20 {
		t.Errorf("tiny terminal: got %d, want 20", got)
	}
}

func TestBucketIconsDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, b := range []sentiment.Bucket{sentiment.Positive, sentiment.Negative, sentiment.Neutral, sentiment.Unknown} {
		icon := BucketIcon(b)
		if seen[icon] {
			t.Errorf("duplicate icon for %q", b)
		}
		seen[icon] = true
	}
}

func TestFallbackRunnerPointsAtSubcommands(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFallbackRunner(&buf).Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, want := range []string{"gmtools ingest", "gmtools chat", "gmtools video"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q", want)
		}
	}
}
