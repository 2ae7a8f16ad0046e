package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gm-tools/gmtools/internal/config"
)

func TestSubmitIngest_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/analyze" {
			t.Errorf("expected /analyze, got %s", r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected Content-Type application/json, got %q", r.Header.Get("Content-Type"))
		}
		var req IngestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Path != "/srv/docs" {
			t.Errorf("expected path /srv/docs, got %q", req.Path)
		}
		w.Write([]byte(`{"message":"12 files queued"}`))
	}))
	defer server.Close()

	c := New(server.URL+"/", DefaultPaths(), 5*time.Second, nil)
	body, err := c.SubmitIngest(context.Background(), "/srv/docs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(body), "12 files") {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestAnalyzeVideo_SendsNeutralFlag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analizar" {
			t.Errorf("expected /analizar, got %s", r.URL.Path)
		}
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if raw["usar_neutro"] != true {
			t.Errorf("expected usar_neutro true, got %v", raw["usar_neutro"])
		}
		if raw["url"] != "https://youtu.be/dQw4w9WgXcQ" {
			t.Errorf("unexpected url %v", raw["url"])
		}
		w.Write([]byte(`{"positive":60,"negative":40,"timeline":[]}`))
	}))
	defer server.Close()

	c := New(server.URL, DefaultPaths(), 0, nil)
	if _, err := c.AnalyzeVideo(context.Background(), "https://youtu.be/dQw4w9WgXcQ", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAsk_NonOKIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Missing question"}`))
	}))
	defer server.Close()

	c := New(server.URL, DefaultPaths(), time.Second, nil)
	_, err := c.Ask(context.Background(), "")

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %T: %v", err, err)
	}
	if te.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode: got %d, want 400", te.StatusCode)
	}
	if te.Detail != "Missing question" {
		t.Errorf("Detail: got %q, want %q", te.Detail, "Missing question")
	}
	if got := te.UserMessage(); got != "Error 400: Bad Request (Missing question)" {
		t.Errorf("UserMessage: got %q", got)
	}
}

func TestProgress_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := New(url, DefaultPaths(), time.Second, nil)
	_, err := c.Progress(context.Background())

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %T: %v", err, err)
	}
	if te.StatusCode != 0 {
		t.Errorf("StatusCode: got %d, want 0", te.StatusCode)
	}
	if te.Op != "progress" {
		t.Errorf("Op: got %q, want progress", te.Op)
	}
}

func TestProgress_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(server.URL, DefaultPaths(), 0, nil)
	_, err := c.Progress(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
}

func TestFromConfigUsesConfiguredPaths(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/ask" {
			t.Errorf("expected /api/v2/ask, got %s", r.URL.Path)
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	cfg := config.DefaultConfig()
	cfg.Backend.BaseURL = server.URL
	cfg.Backend.ChatPath = "/api/v2/ask"

	c := FromConfig(cfg, nil)
	if _, err := c.Ask(context.Background(), "hi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestErrorDetail(t *testing.T) {
	tests := map[string]string{
		`{"error":"boom"}`:           "boom",
		`{"detail":"not found"}`:     "not found",
		`{"message":"bad path"}`:     "bad path",
		`{"error":{"code":1}}`:       "",
		`<html>Gateway Timeout</html>`: "<html>Gateway Timeout</html>",
	}
	for in, want := range tests {
		if got := errorDetail([]byte(in)); got != want {
			t.Errorf("errorDetail(%s): got %q, want %q", in, got, want)
		}
	}
}
