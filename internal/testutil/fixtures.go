// Package testutil provides test helper utilities for gmtools tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TempProject creates a temporary directory with the given files and returns its path.
// Files is a map of relative path -> content. Directories are created as needed.
// The directory is automatically cleaned up when the test finishes.
func TempProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	for relPath, content := range files {
		absPath := filepath.Join(dir, relPath)
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			t.Fatalf("creating directory for %s: %v", relPath, err)
		}
		if err := os.WriteFile(absPath, []byte(content), 0644); err != nil {
			t.Fatalf("writing %s: %v", relPath, err)
		}
	}

	return dir
}

// ProjectWithBackend returns a .gmtools/config.yaml pointing at baseURL with a
// fast poll interval.
func ProjectWithBackend(baseURL string) map[string]string {
	return map[string]string{
		".gmtools/config.yaml": "version: 1\nbackend:\n  base_url: \"" + baseURL + "\"\ningest:\n  poll_interval_ms: 5\n  poll_timeout_seconds: 5\n",
	}
}

// ProjectWithEnvFile returns a project holding only a .env file.
func ProjectWithEnvFile(content string) map[string]string {
	return map[string]string{".env": content}
}

// EmptyProject returns an empty directory with no files.
func EmptyProject() map[string]string {
	return map[string]string{}
}

// Response bodies observed from the two backend generations.
const (
	ChatAnswerEN     = `{"answer":"The report covers **Q3** revenue.","sources":["q3.pdf","summary.docx"],"images":["/static/q3/page2.png",{"src":"static/q3/chart.png","source":"q3.pdf","page":4}]}`
	ChatAnswerES     = `{"respuesta":"El informe cubre el tercer trimestre.","fuentes":"q3.pdf (p. 2)"}`
	VideoThreeWay    = `{"positive":62.5,"negative":12.5,"neutral":25,"resumen":"Mostly positive reception.","timeline":[{"time":"00:05","sentiment":"positive","value":97,"word":"amazing"},{"time":"00:12","sentiment":"neutral","value":48},{"time":"00:20","sentiment":"negative","value":12,"word":"boring"}]}`
	VideoTwoWay      = `{"positive":70,"negative":30,"timeline":[{"time":"0:01","sentimiento":"positivo","value":80}]}`
	IngestAckQueued  = `{"message":"Found 12 files, processing"}`
	IngestAckNoFiles = `{"message":"0 files found"}`
)
