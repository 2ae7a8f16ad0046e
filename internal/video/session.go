// Package video runs sentiment analysis for one video link at a time. The
// backend answers in a single request; there is no polling.
package video

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
	"github.com/gm-tools/gmtools/internal/sentiment"
)

// Progress values shown while a request runs.
const (
	ProgressIdle    = 0
	ProgressPending = 10
	ProgressDone    = 100
)

// ErrBusy is returned by Analyze while a request is outstanding.
var ErrBusy = errors.New("a video is already being analyzed")

// Analyzer is the part of the backend client video analysis needs.
type Analyzer interface {
	AnalyzeVideo(ctx context.Context, url string, includeNeutral bool) ([]byte, error)
}

// Status is the observable state of a Session.
type Status struct {
	Progress int
	Busy     bool
	VideoID  string
	URL      string
	Summary  *sentiment.Summary
	Alert    string // user-facing error text from the last failed run
}

// Thumbnail returns the thumbnail of the current video, if any.
func (s Status) Thumbnail() string {
	if s.VideoID == "" {
		return ""
	}
	return ThumbnailURL(s.VideoID)
}

// Options configures a Session.
type Options struct {
	IncludeNeutral bool
	Classifier     *sentiment.Classifier
	Sink           events.Sink
	Logger         *slog.Logger
	OnUpdate       func(Status)
}

// Session is one video analysis panel.
type Session struct {
	client     Analyzer
	neutral    bool
	classifier *sentiment.Classifier
	sink       events.Sink
	logger     *slog.Logger
	notify     func(Status)

	mu     sync.Mutex
	status Status
}

// New creates a Session.
func New(client Analyzer, opts Options) *Session {
	s := &Session{
		client:     client,
		neutral:    opts.IncludeNeutral,
		classifier: opts.Classifier,
		sink:       opts.Sink,
		logger:     opts.Logger,
		notify:     opts.OnUpdate,
	}
	if s.classifier == nil {
		s.classifier = sentiment.NewClassifier(sentiment.PolarityScore, sentiment.DefaultLow, sentiment.DefaultHigh)
	}
	if s.sink == nil {
		s.sink = events.Nop{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Analyze validates link, requests the analysis and returns the summary with
// highlights already derived. Invalid links fail with *ValidationError before
// any request is made. On any failure progress returns to 0 and Alert is set,
// except that a bad link submitted while a run is in flight leaves it alone.
func (s *Session) Analyze(ctx context.Context, link string) (sentiment.Summary, error) {
	link = strings.TrimSpace(link)
	id, err := ExtractID(link)
	if err != nil {
		// A run in flight keeps its own status.
		s.update(func(st *Status) {
			if !st.Busy {
				st.Alert = Describe(err)
			}
		})
		return sentiment.Summary{}, err
	}

	s.mu.Lock()
	if s.status.Busy {
		s.mu.Unlock()
		return sentiment.Summary{}, ErrBusy
	}
	s.status = Status{Progress: ProgressPending, Busy: true, VideoID: id, URL: link}
	neutral := s.neutral
	s.mu.Unlock()
	s.publish()

	start := time.Now()
	body, err := s.client.AnalyzeVideo(ctx, link, neutral)
	var sum sentiment.Summary
	if err == nil {
		sum, err = normalize.VideoSummary(body, s.classifier)
	}
	elapsed := time.Since(start).Milliseconds()
	evCtx := context.WithoutCancel(ctx)

	if err != nil {
		s.update(func(st *Status) {
			st.Progress = ProgressIdle
			st.Busy = false
			st.Alert = Describe(err)
		})
		s.logger.Warn("video analysis failed", "url", link, "error", err)
		s.emit(evCtx, events.Event{Type: events.VideoFailed, URL: link, Error: err.Error(), DurationMs: elapsed})
		return sentiment.Summary{}, err
	}

	s.update(func(st *Status) {
		st.Progress = ProgressDone
		st.Busy = false
		st.Summary = &sum
	})
	s.logger.Info("video analyzed", "url", link, "dominant", string(sum.Dominant()), "highlights", len(sum.Highlights))
	s.emit(evCtx, events.Event{Type: events.VideoAnalyzed, URL: link, DurationMs: elapsed, Data: map[string]any{
		"positive":   sum.Positive,
		"negative":   sum.Negative,
		"neutral":    sum.Neutral,
		"dominant":   string(sum.Dominant()),
		"highlights": len(sum.Highlights),
	}})
	return sum, nil
}

// Reset returns the session to idle. It has no effect while a request runs.
func (s *Session) Reset() {
	s.mu.Lock()
	if s.status.Busy {
		s.mu.Unlock()
		return
	}
	s.status = Status{}
	s.mu.Unlock()
	s.publish()
}

// SetIncludeNeutral changes whether the next request asks for a neutral
// bucket.
func (s *Session) SetIncludeNeutral(on bool) {
	s.mu.Lock()
	s.neutral = on
	s.mu.Unlock()
}

// IncludeNeutral reports the current neutral setting.
func (s *Session) IncludeNeutral() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.neutral
}

// Status returns a copy of the session state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) update(fn func(*Status)) {
	s.mu.Lock()
	fn(&s.status)
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

// Describe turns a video analysis error into an alert line.
func Describe(err error) string {
	var ve *ValidationError
	var te *backend.TransportError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return "Please enter a valid YouTube link."
	case errors.As(err, &te):
		return "Error analyzing the video: " + te.UserMessage()
	case errors.Is(err, normalize.ErrMalformedVideo):
		return "Error analyzing the video: the server returned an unreadable response."
	default:
		return "Error analyzing the video: " + err.Error()
	}
}
