// Package ingest drives the "analyze a document directory" workflow on top of
// the job poller and tracks whether a usable corpus already exists.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gm-tools/gmtools/internal/backend"
	"github.com/gm-tools/gmtools/internal/events"
	"github.com/gm-tools/gmtools/internal/jobs"
	"github.com/gm-tools/gmtools/internal/normalize"
)

// User-facing status messages.
const (
	MsgProcessing = "Processing documents..."
	MsgEmpty      = "No documents were found at the given path."
	MsgReady      = "Ready!"
	MsgExisting   = "Using the existing knowledge base."
	MsgStopped    = "Processing cancelled."
)

// ErrEmptyPath is returned by Analyze for a blank directory path.
var ErrEmptyPath = errors.New("a directory path is required")

// Backend is the part of the backend client ingestion needs.
type Backend interface {
	SubmitIngest(ctx context.Context, path string) ([]byte, error)
	Progress(ctx context.Context) ([]byte, error)
}

// Status is what an observer sees after every change.
type Status struct {
	Job     jobs.Snapshot
	Path    string
	Ready   bool
	CanSkip bool
	Message string
}

// Options configures a Session.
type Options struct {
	Interval time.Duration
	Timeout  time.Duration
	Sink     events.Sink
	Logger   *slog.Logger
	OnUpdate func(Status)
}

// Session is one ingestion workflow. Ready turns true when a job completes or
// when the caller chooses to reuse an existing corpus.
type Session struct {
	client Backend
	poller *jobs.Poller[string, backend.IngestAck]
	sink   events.Sink
	logger *slog.Logger
	notify func(Status)

	mu      sync.Mutex
	path    string
	ready   bool
	canSkip bool
	message string
}

// New creates a Session.
func New(client Backend, opts Options) *Session {
	s := &Session{
		client: client,
		sink:   opts.Sink,
		logger: opts.Logger,
		notify: opts.OnUpdate,
	}
	if s.sink == nil {
		s.sink = events.Nop{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.poller = jobs.New[string, backend.IngestAck](s.submit, s.status, jobs.Options{
		Interval: opts.Interval,
		Timeout:  opts.Timeout,
		OnUpdate: func(jobs.Snapshot) { s.publish() },
	}, s.logger)
	return s
}

// submit runs once the poller has accepted the job, so a rejected Analyze
// never touches the previous run's state.
func (s *Session) submit(ctx context.Context, path string) (backend.IngestAck, error) {
	s.mu.Lock()
	s.ready = false
	s.path = path
	s.message = MsgProcessing
	s.mu.Unlock()
	s.publish()

	body, err := s.client.SubmitIngest(ctx, path)
	if err != nil {
		return backend.IngestAck{}, err
	}
	return normalize.IngestAck(body)
}

func (s *Session) status(ctx context.Context) (jobs.Status, error) {
	body, err := s.client.Progress(ctx)
	if err != nil {
		return jobs.Status{}, err
	}
	st, err := normalize.Progress(body)
	if err != nil {
		return jobs.Status{}, err
	}
	return jobs.Status{Progress: st.Progress, Done: st.Done, Error: st.Error}, nil
}

// Probe asks the backend whether a finished corpus already exists. Errors are
// logged and treated as "no".
func (s *Session) Probe(ctx context.Context) bool {
	st, err := s.status(ctx)
	if err != nil {
		s.logger.Debug("corpus probe failed", "error", err)
		return false
	}
	s.mu.Lock()
	s.canSkip = st.Done && st.Error == ""
	can := s.canSkip
	s.mu.Unlock()
	s.publish()
	return can
}

// CanSkip reports whether the last probe found a reusable corpus.
func (s *Session) CanSkip() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canSkip
}

// UseExisting marks the session ready without ingesting. It fails when no
// probe has found a reusable corpus.
func (s *Session) UseExisting() error {
	s.mu.Lock()
	if !s.canSkip {
		s.mu.Unlock()
		return errors.New("no existing corpus is available")
	}
	s.ready = true
	s.message = MsgExisting
	s.mu.Unlock()
	s.publish()
	return nil
}

// Analyze submits path for ingestion and starts polling. It returns once
// polling is under way and completion is observed through OnUpdate or Wait.
// Cancelling ctx stops polling. Errors before polling starts are returned and
// also reflected in Message.
func (s *Session) Analyze(ctx context.Context, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return ErrEmptyPath
	}

	if s.poller.Busy() {
		return jobs.ErrBusy
	}

	_, err := s.poller.Submit(ctx, path)
	if errors.Is(err, jobs.ErrBusy) {
		return err
	}
	job := s.poller.Snapshot()

	if err != nil {
		if errors.Is(err, normalize.ErrEmptyResult) {
			s.setMessage(MsgEmpty)
			s.emit(ctx, events.Event{Type: events.IngestEmpty, JobID: job.ID, Path: path})
		} else {
			s.setMessage(Describe(err))
			s.emit(ctx, events.Event{Type: events.IngestFailed, JobID: job.ID, Path: path, Error: err.Error()})
		}
		s.logger.Info("ingestion rejected", "path", path, "error", err)
		return err
	}

	s.emit(ctx, events.Event{Type: events.IngestSubmitted, JobID: job.ID, Path: path})
	s.logger.Info("ingestion submitted", "path", path, "job_id", job.ID)
	return s.poller.Start(ctx, func(snap jobs.Snapshot) {
		s.finished(path, snap)
	})
}

func (s *Session) finished(path string, snap jobs.Snapshot) {
	ctx := context.Background()
	ev := events.Event{JobID: snap.ID, Path: path, Progress: snap.Progress, DurationMs: snap.Elapsed().Milliseconds()}

	s.mu.Lock()
	if snap.State == jobs.Done {
		s.ready = true
		s.canSkip = true
		s.message = MsgReady
		ev.Type = events.IngestCompleted
	} else {
		s.message = Describe(snap.Err)
		ev.Type = events.IngestFailed
		if snap.Err != nil {
			ev.Error = snap.Err.Error()
		}
	}
	s.mu.Unlock()

	s.logger.Info("ingestion finished", "path", path, "state", snap.State.String(), "progress", snap.Progress)
	s.emit(ctx, ev)
	s.publish()
}

// Wait blocks until the current job is terminal.
func (s *Session) Wait(ctx context.Context) (Status, error) {
	snap, err := s.poller.Wait(ctx)
	if err != nil {
		return s.Status(), err
	}
	return s.Status(), snap.Err
}

// Stop cancels polling. Safe to call at any time, including teardown.
func (s *Session) Stop() {
	s.poller.Stop()
	s.mu.Lock()
	if s.message == MsgProcessing {
		s.message = MsgStopped
	}
	s.mu.Unlock()
	s.publish()
}

// Ready reports whether the next workflow stage may start.
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Message returns the current user-facing status line.
func (s *Session) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// Status returns a copy of the session state.
func (s *Session) Status() Status {
	job := s.poller.Snapshot()
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{Job: job, Path: s.path, Ready: s.ready, CanSkip: s.canSkip, Message: s.message}
}

func (s *Session) setMessage(msg string) {
	s.mu.Lock()
	s.message = msg
	s.mu.Unlock()
	s.publish()
}

func (s *Session) publish() {
	if s.notify != nil {
		s.notify(s.Status())
	}
}

func (s *Session) emit(ctx context.Context, ev events.Event) {
	if err := s.sink.Emit(ctx, ev); err != nil {
		s.logger.Warn("event not delivered", "event", ev.Type, "error", err)
	}
}

// Describe turns an ingestion error into a status line.
func Describe(err error) string {
	var te *backend.TransportError
	var pt *jobs.PollTimeoutError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, normalize.ErrEmptyResult):
		return MsgEmpty
	case errors.Is(err, jobs.ErrStopped):
		return MsgStopped
	case errors.As(err, &pt):
		return fmt.Sprintf("Processing did not finish within %s.", pt.After)
	case errors.As(err, &te):
		return "Could not reach the backend: " + te.UserMessage()
	case errors.Is(err, jobs.ErrPollFailed):
		return "Processing failed: " + strings.TrimPrefix(err.Error(), jobs.ErrPollFailed.Error()+": ")
	default:
		return "Processing failed: " + err.Error()
	}
}
