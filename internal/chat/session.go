// Package chat keeps a question-answering transcript against the backend.
// A session has at most one request in flight; the transcript only grows.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gm-tools/gmtools/internal/backend"
	"github.com/gm-tools/gmtools/internal/events"
	"github.com/gm-tools/gmtools/internal/normalize"
)

var (
	// ErrEmptyQuery is returned by Send for a blank question.
	ErrEmptyQuery = errors.New("question is empty")
	// ErrBusy is returned by Send while an answer is outstanding.
	ErrBusy = errors.New("waiting for the previous answer")
)

// Role identifies who produced a turn.
type Role string

const (
	User      Role = "user"
	Assistant Role = "assistant"
)

// Turn is one message in the transcript.
type Turn struct {
	ID      int64
	Role    Role
	Content string
	Sources []string
	Media   []normalize.Media
	Failed  bool // assistant turn reporting a failed request
	At      time.Time
}

// Asker is the part of the backend client chat needs.
type Asker interface {
	Ask(ctx context.Context, question string) ([]byte, error)
}

// Options configures a Session.
type Options struct {
	Greeting string // seeds the transcript with one assistant turn when set
	Sink     events.Sink
	Logger   *slog.Logger
	OnTurn   func(Turn)
	Now      func() time.Time
}

// Session is one chat transcript.
type Session struct {
	client Asker
	sink   events.Sink
	logger *slog.Logger
	onTurn func(Turn)
	now    func() time.Time

	mu     sync.Mutex
	turns  []Turn
	lastID int64
	busy   bool
}

// New creates a Session.
func New(client Asker, opts Options) *Session {
	s := &Session{
		client: client,
		sink:   opts.Sink,
		logger: opts.Logger,
		onTurn: opts.OnTurn,
		now:    opts.Now,
	}
	if s.sink == nil {
		s.sink = events.Nop{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if g := strings.TrimSpace(opts.Greeting); g != "" {
		s.mu.Lock()
		s.appendLocked(Turn{Role: Assistant, Content: g, Sources: []string{}, Media: []normalize.Media{}})
		s.mu.Unlock()
	}
	return s
}

// Send appends the user turn immediately and asks the backend in the
// background. The returned channel delivers the assistant turn, which has
// already been appended, and is then closed. Blank questions and calls made
// while an answer is outstanding are rejected without touching the transcript.
func (s *Session) Send(ctx context.Context, question string) (<-chan Turn, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return nil, ErrEmptyQuery
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.busy = true
	user := s.appendLocked(Turn{Role: User, Content: q})
	s.mu.Unlock()

	s.deliver(user)
	s.emit(ctx, events.Event{Type: events.ChatSent, Query: q})

	out := make(chan Turn, 1)
	go func() {
		defer close(out)
		start := s.now()
		body, err := s.client.Ask(ctx, q)

		var reply Turn
		if err != nil {
			reply = Turn{Role: Assistant, Content: "Error: " + describe(err), Failed: true}
		} else {
			r := normalize.ChatResponse(body)
			reply = Turn{Role: Assistant, Content: r.Content, Sources: r.Sources, Media: r.Media}
		}

		s.mu.Lock()
		reply = s.appendLocked(reply)
		s.mu.Unlock()

		elapsed := s.now().Sub(start).Milliseconds()
		evCtx := context.WithoutCancel(ctx)
		if err != nil {
			s.logger.Warn("chat request failed", "error", err)
			s.emit(evCtx, events.Event{Type: events.ChatFailed, Query: q, Error: err.Error(), DurationMs: elapsed})
		} else {
			s.logger.Debug("chat answered", "sources", len(reply.Sources), "media", len(reply.Media))
			s.emit(evCtx, events.Event{Type: events.ChatAnswered, Query: q, DurationMs: elapsed, Data: map[string]any{
				"sources": len(reply.Sources),
				"media":   len(reply.Media),
			}})
		}

		// Stay busy until the reply is delivered so the next user turn
		// cannot overtake it.
		s.deliver(reply)
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
		out <- reply
	}()
	return out, nil
}

// Ask is Send followed by waiting for the assistant turn.
func (s *Session) Ask(ctx context.Context, question string) (Turn, error) {
	ch, err := s.Send(ctx, question)
	if err != nil {
		return Turn{}, err
	}
	return <-ch, nil
}

// Busy reports whether an answer is outstanding.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Transcript returns a copy of every turn in order.
func (s *Session) Transcript() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// appendLocked stamps t with a strictly increasing, time-based ID and appends it.
func (s *Session) appendLocked(t Turn) Turn {
	now := s.now()
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	t.ID = id
	t.At = now
	s.turns = append(s.turns, t)
	return t
}

func (s *Session) deliver(t Turn) {
	if s.onTurn != nil {
		s.onTurn(t)
	}
}

func (s *Session) emit(ctx context.Context, ev events.Event) {
	if err := s.sink.Emit(ctx, ev); err != nil {
		s.logger.Warn("event not delivered", "event", ev.Type, "error", err)
	}
}

func describe(err error) string {
	var te *backend.TransportError
	switch {
	case errors.As(err, &te):
		return te.UserMessage()
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	default:
		return err.Error()
	}
}
