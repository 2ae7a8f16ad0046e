// Package log provides the session journal.
// This file appends JSON events to .gmtools/log.jsonl.
package log

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gm-tools/gmtools/internal/events"
)

// LogEvent represents a single structured event written to the journal.
type LogEvent struct {
	Time       time.Time      `json:"time"`
	Event      string         `json:"event"`
	JobID      string         `json:"job_id,omitempty"`
	Path       string         `json:"path,omitempty"`
	Query      string         `json:"query,omitempty"`
	URL        string         `json:"url,omitempty"`
	Progress   int            `json:"progress,omitempty"`
	Error      string         `json:"error,omitempty"`
	DurationMs int64          `json:"duration_ms,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
}

// Logger writes append-only JSONL events to a journal file.
type Logger struct {
	path string
	mu   sync.Mutex
}

// NewLogger creates a Logger that writes to .gmtools/log.jsonl inside dir.
// Creates the .gmtools/ directory if it does not already exist.
// Does not truncate an existing journal.
func NewLogger(dir string) (*Logger, error) {
	gmDir := filepath.Join(dir, ".gmtools")
	if err := os.MkdirAll(gmDir, 0755); err != nil {
		return nil, fmt.Errorf("create .gmtools directory: %w", err)
	}

	return &Logger{
		path: filepath.Join(gmDir, "log.jsonl"),
	}, nil
}

// Path returns the journal file location.
func (l *Logger) Path() string { return l.path }

// Append writes a single LogEvent as one JSON line.
// If event.Time is the zero value, it is set to time.Now().UTC().
func (l *Logger) Append(event LogEvent) error {
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal log event: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write log event: %w", err)
	}

	return nil
}

// Emit implements events.Sink.
func (l *Logger) Emit(_ context.Context, ev events.Event) error {
	return l.Append(LogEvent{
		Time:       ev.Time,
		Event:      ev.Type,
		JobID:      ev.JobID,
		Path:       ev.Path,
		Query:      ev.Query,
		URL:        ev.URL,
		Progress:   ev.Progress,
		Error:      ev.Error,
		DurationMs: ev.DurationMs,
		Data:       ev.Data,
	})
}

// ReadAll reads and parses all events from the journal.
// Returns an empty slice (not an error) if the file does not exist.
func (l *Logger) ReadAll() ([]LogEvent, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []LogEvent{}, nil
		}
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	var out []LogEvent
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event LogEvent
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("parse journal line %d: %w", lineNum, err)
		}
		out = append(out, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}

	return out, nil
}

// Last returns the most recent event of the given type, or nil when none exists.
func (l *Logger) Last(eventType string) (*LogEvent, error) {
	all, err := l.ReadAll()
	if err != nil {
		return nil, err
	}
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].Event == eventType {
			ev := all[i]
			return &ev, nil
		}
	}
	return nil, nil
}
