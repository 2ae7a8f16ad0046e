package testutil

import (
	"context"
	"sync"
)

// Reply is one scripted backend answer.
type Reply struct {
	Body []byte
	Err  error
}

// Body is a successful Reply with the given JSON text.
func Body(s string) Reply { return Reply{Body: []byte(s)} }

// Fail is a Reply carrying err.
func Fail(err error) Reply { return Reply{Err: err} }

// FakeBackend is an in-memory stand-in for backend.Client. Each endpoint
// replays its script in order and then repeats the last entry. Gate, when
// set, blocks Ask until it is closed.
type FakeBackend struct {
	mu sync.Mutex

	IngestReplies   []Reply
	ProgressReplies []Reply
	ChatReplies     []Reply
	VideoReplies    []Reply
	Gate            chan struct{}

	IngestPaths []string
	Questions   []string
	VideoURLs   []string
	NeutralFlag []bool
	ProgressN   int
}

func next(script []Reply, n int) Reply {
	if len(script) == 0 {
		return Reply{Body: []byte(`{}`)}
	}
	if n >= len(script) {
		n = len(script) - 1
	}
	return script[n]
}

// SubmitIngest implements the ingestion submit call.
func (f *FakeBackend) SubmitIngest(_ context.Context, path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := next(f.IngestReplies, len(f.IngestPaths))
	f.IngestPaths = append(f.IngestPaths, path)
	return r.Body, r.Err
}

// Progress implements the ingestion status call.
func (f *FakeBackend) Progress(_ context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := next(f.ProgressReplies, f.ProgressN)
	f.ProgressN++
	return r.Body, r.Err
}

// Ask implements the chat call.
func (f *FakeBackend) Ask(ctx context.Context, question string) ([]byte, error) {
	f.mu.Lock()
	r := next(f.ChatReplies, len(f.Questions))
	f.Questions = append(f.Questions, question)
	gate := f.Gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return r.Body, r.Err
}

// AnalyzeVideo implements the video call.
func (f *FakeBackend) AnalyzeVideo(_ context.Context, url string, includeNeutral bool) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := next(f.VideoReplies, len(f.VideoURLs))
	f.VideoURLs = append(f.VideoURLs, url)
	f.NeutralFlag = append(f.NeutralFlag, includeNeutral)
	return r.Body, r.Err
}

// Calls returns how many times each endpoint was hit.
func (f *FakeBackend) Calls() (ingest, progress, chat, video int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.IngestPaths), f.ProgressN, len(f.Questions), len(f.VideoURLs)
}
