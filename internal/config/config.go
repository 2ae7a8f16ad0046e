// Package config handles reading and writing .gmtools/config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for .gmtools/config.yaml.
type Config struct {
	Version   int             `yaml:"version"`
	Backend   BackendConfig   `yaml:"backend"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Sentiment SentimentConfig `yaml:"sentiment"`
	Video     VideoConfig     `yaml:"video"`
	Chat      ChatConfig      `yaml:"chat"`
	Log       LogConfig       `yaml:"log"`
	Journal   JournalConfig   `yaml:"journal"`
	NATS      NATSConfig      `yaml:"nats"`
}

// BackendConfig points the client at the analysis service.
type BackendConfig struct {
	BaseURL        string `yaml:"base_url"`
	MediaBaseURL   string `yaml:"media_base_url"` // empty: same as base_url
	AnalyzePath    string `yaml:"analyze_path"`
	ProgressPath   string `yaml:"progress_path"`
	ChatPath       string `yaml:"chat_path"`
	VideoPath      string `yaml:"video_path"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// IngestConfig controls the document ingestion poller.
type IngestConfig struct {
	PollIntervalMs     int  `yaml:"poll_interval_ms"`
	PollTimeoutSeconds int  `yaml:"poll_timeout_seconds"` // 0 disables the ceiling
	ProbeExisting      bool `yaml:"probe_existing"`
}

// SentimentConfig controls timeline classification.
type SentimentConfig struct {
	Polarity      string  `yaml:"polarity"` // "score" | "signed" | "magnitude"
	HighlightLow  float64 `yaml:"highlight_low"`
	HighlightHigh float64 `yaml:"highlight_high"`
}

// VideoConfig holds flags forwarded with video analysis requests.
type VideoConfig struct {
	IncludeNeutral bool `yaml:"include_neutral"`
}

// ChatConfig holds chat session settings.
type ChatConfig struct {
	Greeting string `yaml:"greeting"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// JournalConfig toggles the JSONL event journal.
type JournalConfig struct {
	Enabled bool `yaml:"enabled"`
}

// NATSConfig enables publishing session events to NATS.
type NATSConfig struct {
	URL           string `yaml:"url"` // empty disables publishing
	Token         string `yaml:"token"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

const configDir = ".gmtools"
const configFile = "config.yaml"

// Dir returns the .gmtools directory inside the given project directory.
func Dir(dir string) string {
	return filepath.Join(dir, configDir)
}

// ReadConfig reads .gmtools/config.yaml from the given directory.
// Fields absent from the file keep their DefaultConfig values.
func ReadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, configDir, configFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Load reads the config file if present and falls back to defaults when it
// does not exist. A malformed file is still an error.
func Load(dir string) (*Config, error) {
	cfg, err := ReadConfig(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// WriteConfig writes cfg to .gmtools/config.yaml in the given directory.
// Creates the .gmtools/ directory if it does not exist.
func WriteConfig(dir string, cfg *Config) error {
	dirPath := filepath.Join(dir, configDir)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path := filepath.Join(dirPath, configFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Backend: BackendConfig{
			BaseURL:        "http://localhost:8000",
			AnalyzePath:    "/analyze",
			ProgressPath:   "/progress",
			ChatPath:       "/chat",
			VideoPath:      "/analizar",
			TimeoutSeconds: 300,
		},
		Ingest: IngestConfig{
			PollIntervalMs:     1000,
			PollTimeoutSeconds: 1800,
			ProbeExisting:      true,
		},
		Sentiment: SentimentConfig{
			Polarity:      "score",
			HighlightLow:  25,
			HighlightHigh: 95,
		},
		Chat: ChatConfig{
			Greeting: "Hello! Ask me anything about the documents you ingested.",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		NATS: NATSConfig{
			SubjectPrefix: "gmtools",
		},
	}
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	if c.Ingest.PollIntervalMs <= 0 {
		return fmt.Errorf("ingest.poll_interval_ms must be positive, got %d", c.Ingest.PollIntervalMs)
	}
	if c.Ingest.PollTimeoutSeconds < 0 {
		return fmt.Errorf("ingest.poll_timeout_seconds must not be negative, got %d", c.Ingest.PollTimeoutSeconds)
	}
	switch c.Sentiment.Polarity {
	case "score", "signed", "magnitude":
	default:
		return fmt.Errorf("sentiment.polarity must be score, signed or magnitude, got %q", c.Sentiment.Polarity)
	}
	if c.Sentiment.HighlightLow >= c.Sentiment.HighlightHigh {
		return fmt.Errorf("sentiment.highlight_low (%v) must be below highlight_high (%v)",
			c.Sentiment.HighlightLow, c.Sentiment.HighlightHigh)
	}
	return nil
}

// MediaBase returns the origin media references are resolved against.
func (c *Config) MediaBase() string {
	if c.Backend.MediaBaseURL != "" {
		return c.Backend.MediaBaseURL
	}
	return c.Backend.BaseURL
}

// PollInterval returns the ingestion poll interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Ingest.PollIntervalMs) * time.Millisecond
}

// PollTimeout returns the polling ceiling; zero means none.
func (c *Config) PollTimeout() time.Duration {
	return time.Duration(c.Ingest.PollTimeoutSeconds) * time.Second
}

// HTTPTimeout returns the per-request timeout for backend calls.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}
