package templates

import (
	"strings"
	"testing"
)

func TestEnvExampleListsEveryOverride(t *testing.T) {
	for _, key := range []string{
		"GMTOOLS_BACKEND_URL", "GMTOOLS_MEDIA_URL", "GMTOOLS_BACKEND_TIMEOUT",
		"GMTOOLS_POLL_INTERVAL_MS", "GMTOOLS_POLL_TIMEOUT", "GMTOOLS_POLARITY",
		"GMTOOLS_LOG_LEVEL", "GMTOOLS_LOG_FORMAT",
		"GMTOOLS_NATS_URL", "GMTOOLS_NATS_TOKEN", "GMTOOLS_NATS_PREFIX",
	} {
		if !strings.Contains(EnvExample, key+"=") {
			t.Errorf("env.example missing %s", key)
		}
	}
}
