package stubserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gm-tools/gmtools/internal/backend"
	"github.com/gm-tools/gmtools/internal/chat"
	"github.com/gm-tools/gmtools/internal/ingest"
	"github.com/gm-tools/gmtools/internal/logging"
	"github.com/gm-tools/gmtools/internal/video"
)

func newTestServer(t *testing.T, step int) (*Server, *backend.Client) {
	t.Helper()
	srv := New(Options{Step: step, Quiet: true, Logger: logging.Discard()})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, backend.New(ts.URL, backend.DefaultPaths(), 5*time.Second, logging.Discard())
}

func docsDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestHealthEndpoint(t *testing.T) {
	srv := New(Options{Quiet: true})

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("got %d, want 200", w.Code)
	}
}

func TestIngestMissingPath(t *testing.T) {
	srv := New(Options{Quiet: true})

	req := httptest.NewRequest("POST", "/analyze", strings.NewReader(`{"path":""}`))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("got %d, want 400", w.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "Missing path" {
		t.Errorf("error: got %q, want %q", body["error"], "Missing path")
	}
}

func TestIngestSessionAgainstStub(t *testing.T) {
	srv, client := newTestServer(t, 50)
	dir := docsDir(t, "a.pdf", "b.docx", "notes.bin")

	s := ingest.New(client, ingest.Options{Interval: 5 * time.Millisecond, Timeout: 2 * time.Second})
	if err := s.Analyze(context.Background(), dir); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	st, err := s.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !st.Ready || st.Message != ingest.MsgReady {
		t.Errorf("status: got %+v", st)
	}
	if st.Job.Progress != 100 {
		t.Errorf("Progress: got %d, want 100", st.Job.Progress)
	}

	snap := srv.Snapshot()
	if len(snap.Files) != 2 || snap.Files[0] != "a.pdf" {
		t.Errorf("files: got %v, want [a.pdf b.docx] sorted", snap.Files)
	}
}

func TestIngestEmptyDirectory(t *testing.T) {
	_, client := newTestServer(t, 0)

	s := ingest.New(client, ingest.Options{Interval: 5 * time.Millisecond})
	err := s.Analyze(context.Background(), t.TempDir())
	if err == nil {
		t.Fatal("Analyze: expected empty-result error")
	}
	if s.Message() != ingest.MsgEmpty {
		t.Errorf("Message: got %q, want %q", s.Message(), ingest.MsgEmpty)
	}
}

func TestProbeSeededCorpus(t *testing.T) {
	srv, client := newTestServer(t, 0)

	s := ingest.New(client, ingest.Options{})
	if s.Probe(context.Background()) {
		t.Error("Probe: got true before any ingestion")
	}
	srv.Seed("report.pdf")
	if !s.Probe(context.Background()) {
		t.Error("Probe: got false for seeded corpus")
	}
}

func TestChatAgainstStub(t *testing.T) {
	srv, client := newTestServer(t, 0)
	srv.Seed("report.pdf", "chart.png")

	s := chat.New(client, chat.Options{})
	ch, err := s.Send(context.Background(), "revenue")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	turn := <-ch
	if turn.Failed {
		t.Fatalf("turn failed: %q", turn.Content)
	}
	if !strings.Contains(turn.Content, "revenue") {
		t.Errorf("Content: got %q", turn.Content)
	}
	if len(turn.Sources) != 2 {
		t.Errorf("Sources: got %v", turn.Sources)
	}
	if len(turn.Media) != 1 || turn.Media[0].Reference != "/static/chart.png" {
		t.Errorf("Media: got %+v", turn.Media)
	}
}

func TestVideoAgainstStub(t *testing.T) {
	_, client := newTestServer(t, 0)

	s := video.New(client, video.Options{IncludeNeutral: true})
	first, err := s.Analyze(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !first.HasNeutral {
		t.Error("HasNeutral: got false with neutral requested")
	}
	if len(first.Timeline) != 4 {
		t.Errorf("timeline: got %d points, want 4", len(first.Timeline))
	}

	second, err := s.Analyze(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if first.Positive != second.Positive {
		t.Errorf("Positive not stable: %v vs %v", first.Positive, second.Positive)
	}
}

func TestVideoRejectsBadURL(t *testing.T) {
	srv := New(Options{Quiet: true})

	req := httptest.NewRequest("POST", "/analizar", strings.NewReader(`{"url":"https://vimeo.com/1"}`))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("got %d, want 400", w.Code)
	}
}

func TestListenAndStop(t *testing.T) {
	srv := New(Options{Quiet: true, Logger: logging.Discard()})
	if err := srv.Listen(""); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- srv.Serve() }()

	resp, err := http.Get(srv.URL() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()

	if err := srv.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := <-done; err != nil {
		t.Errorf("Serve: got %v, want nil after Stop", err)
	}
}
