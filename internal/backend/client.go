// Package backend is the HTTP/JSON client for the analysis service.
// Every call returns the raw response body; shape handling lives in the
// normalize package.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gm-tools/gmtools/internal/config"
)

// Paths holds the endpoint paths relative to the base URL.
type Paths struct {
	Analyze  string
	Progress string
	Chat     string
	Video    string
}

// DefaultPaths returns the endpoint paths served by the analysis service.
func DefaultPaths() Paths {
	return Paths{Analyze: "/analyze", Progress: "/progress", Chat: "/chat", Video: "/analizar"}
}

// Client talks to one backend instance.
type Client struct {
	baseURL string
	paths   Paths
	http    *http.Client
	logger  *slog.Logger
}

// New creates a Client. A zero timeout leaves requests bounded only by ctx.
func New(baseURL string, paths Paths, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		paths:   paths,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// FromConfig builds a Client from the backend section of cfg.
func FromConfig(cfg *config.Config, logger *slog.Logger) *Client {
	return New(cfg.Backend.BaseURL, PathsFromConfig(cfg), cfg.HTTPTimeout(), logger)
}

// PathsFromConfig returns the endpoint paths configured in cfg.
func PathsFromConfig(cfg *config.Config) Paths {
	b := cfg.Backend
	return Paths{
		Analyze:  b.AnalyzePath,
		Progress: b.ProgressPath,
		Chat:     b.ChatPath,
		Video:    b.VideoPath,
	}
}

// BaseURL returns the backend origin.
func (c *Client) BaseURL() string { return c.baseURL }

// SubmitIngest posts {path} to the ingestion endpoint.
func (c *Client) SubmitIngest(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, "ingest", http.MethodPost, c.paths.Analyze, IngestRequest{Path: path})
}

// Progress fetches the ingestion progress.
func (c *Client) Progress(ctx context.Context) ([]byte, error) {
	return c.do(ctx, "progress", http.MethodGet, c.paths.Progress, nil)
}

// Ask posts {question} to the chat endpoint.
func (c *Client) Ask(ctx context.Context, question string) ([]byte, error) {
	return c.do(ctx, "chat", http.MethodPost, c.paths.Chat, ChatRequest{Question: question})
}

// AnalyzeVideo posts {url, usar_neutro} to the video endpoint.
func (c *Client) AnalyzeVideo(ctx context.Context, url string, includeNeutral bool) ([]byte, error) {
	return c.do(ctx, "video", http.MethodPost, c.paths.Video, VideoRequest{URL: url, IncludeNeutral: includeNeutral})
}

func (c *Client) do(ctx context.Context, op, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s request: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", op, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	c.logger.Debug("backend call", "op", op, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Detail:     errorDetail(body),
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}
	return body, nil
}
