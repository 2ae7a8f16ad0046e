// Package events carries session lifecycle notifications to observers such
// as the on-disk journal and NATS.
package events

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Event type constants. Subjects published to NATS are derived from these
// by replacing the first underscore with a dot (ingest_completed -> ingest.completed).
const (
	IngestSubmitted = "ingest_submitted"
	IngestEmpty     = "ingest_empty"
	IngestCompleted = "ingest_completed"
	IngestFailed    = "ingest_failed"
	ChatSent        = "chat_sent"
	ChatAnswered    = "chat_answered"
	ChatFailed      = "chat_failed"
	VideoAnalyzed   = "video_analyzed"
	VideoFailed     = "video_failed"
)

// Event is one notification emitted by a session.
type Event struct {
	Time       time.Time      `json:"time"`
	Type       string         `json:"event"`
	JobID      string         `json:"job_id,omitempty"`
	Path       string         `json:"path,omitempty"`
	Query      string         `json:"query,omitempty"`
	URL        string         `json:"url,omitempty"`
	Progress   int            `json:"progress,omitempty"`
	Error      string         `json:"error,omitempty"`
	DurationMs int64          `json:"duration_ms,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
}

// Sink receives events. Implementations must be safe for concurrent use.
type Sink interface {
	Emit(ctx context.Context, ev Event) error
}

// Nop discards every event.
type Nop struct{}

// Emit implements Sink.
func (Nop) Emit(context.Context, Event) error { return nil }

// Multi fans an event out to several sinks. Every sink is tried; errors are joined.
type Multi []Sink

// Emit implements Sink.
func (m Multi) Emit(ctx context.Context, ev Event) error {
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Emit(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Func adapts a plain function to a Sink.
type Func func(ctx context.Context, ev Event) error

// Emit implements Sink.
func (f Func) Emit(ctx context.Context, ev Event) error { return f(ctx, ev) }

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit implements Sink.
func (r *Recorder) Emit(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the type of every recorded event in order.
func (r *Recorder) Types() []string {
	evs := r.Events()
	out := make([]string, len(evs))
	for i, ev := range evs {
		out[i] = ev.Type
	}
	return out
}
