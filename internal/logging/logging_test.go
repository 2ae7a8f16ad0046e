package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q): got %v, want %v", in, got, want)
		}
	}
}

func TestSetupJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("info", "json", &buf)

	logger.Debug("hidden")
	logger.Info("job finished", "job_id", "abc")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec["msg"] != "job finished" {
		t.Errorf("msg: got %v", rec["msg"])
	}
	if rec["job_id"] != "abc" {
		t.Errorf("job_id: got %v", rec["job_id"])
	}
}

func TestSetupText(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("debug", "text", &buf)
	logger.Debug("polling", "progress", 40)

	if !strings.Contains(buf.String(), "polling") {
		t.Errorf("text output missing message: %q", buf.String())
	}
}
