package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/subosito/gotenv"
)

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables already set in the environment win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := gotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from GMTOOLS_* environment variables.
func (c *Config) ApplyEnv() {
	c.Backend.BaseURL = envStr("GMTOOLS_BACKEND_URL", c.Backend.BaseURL)
	c.Backend.MediaBaseURL = envStr("GMTOOLS_MEDIA_URL", c.Backend.MediaBaseURL)
	c.Backend.TimeoutSeconds = envInt("GMTOOLS_BACKEND_TIMEOUT", c.Backend.TimeoutSeconds)
	c.Ingest.PollIntervalMs = envInt("GMTOOLS_POLL_INTERVAL_MS", c.Ingest.PollIntervalMs)
	c.Ingest.PollTimeoutSeconds = envInt("GMTOOLS_POLL_TIMEOUT", c.Ingest.PollTimeoutSeconds)
	c.Sentiment.Polarity = envStr("GMTOOLS_POLARITY", c.Sentiment.Polarity)
	c.Log.Level = envStr("GMTOOLS_LOG_LEVEL", c.Log.Level)
	c.Log.Format = envStr("GMTOOLS_LOG_FORMAT", c.Log.Format)
	c.NATS.URL = envStr("GMTOOLS_NATS_URL", c.NATS.URL)
	c.NATS.Token = envStr("GMTOOLS_NATS_TOKEN", c.NATS.Token)
	c.NATS.SubjectPrefix = envStr("GMTOOLS_NATS_PREFIX", c.NATS.SubjectPrefix)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
