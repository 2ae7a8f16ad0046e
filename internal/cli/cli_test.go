package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gm-tools/gmtools/internal/ingest"
	"github.com/gm-tools/gmtools/internal/logging"
	"github.com/gm-tools/gmtools/internal/stubserver"
	"github.com/gm-tools/gmtools/internal/testutil"
)

// run executes the root command with args and returns stdout. Package-level
// flag variables are reset first so tests do not leak into each other.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	configDir = "."
	backendURL = ""
	logLevel = "error"
	logFormat = ""
	forceFlag = false
	ingestInterval = 0
	ingestTimeout = 0
	skipIfReady = false

	for _, k := range []string{"GMTOOLS_BACKEND_URL", "GMTOOLS_POLL_INTERVAL_MS", "GMTOOLS_POLL_TIMEOUT", "GMTOOLS_NATS_URL", "GMTOOLS_LOG_LEVEL"} {
		t.Setenv(k, "") // restores the original value after the test
		os.Unsetenv(k)
	}

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// stubBackend starts a fake backend and returns it with its base URL.
func stubBackend(t *testing.T, files ...string) (*stubserver.Server, string) {
	t.Helper()
	srv := stubserver.New(stubserver.Options{Step: 50, Quiet: true, Logger: logging.Discard()})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	if len(files) > 0 {
		srv.Seed(files...)
	}
	return srv, ts.URL
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

func TestInitWritesConfigAndGitignore(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "", "init", "--config-dir", dir)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out, "gmtools initialized") {
		t.Errorf("output: got %q", out)
	}
	for _, f := range []string{".gmtools/config.yaml", ".env.example", ".gitignore"} {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			t.Errorf("%s not written: %v", f, err)
		}
	}

	if _, err := run(t, "", "init", "--config-dir", dir, "--force"); err != nil {
		t.Fatalf("init --force: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), ".gmtools/log.jsonl"); n != 1 {
		t.Errorf(".gitignore has %d journal entries, want 1:\n%s", n, data)
	}
}

func TestInitAbortsWithoutConfirmation(t *testing.T) {
	dir := t.TempDir()
	if _, err := run(t, "", "init", "--config-dir", dir); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "n\n", "init", "--config-dir", dir)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out, "Aborted.") {
		t.Errorf("output: got %q, want Aborted.", out)
	}
}

func TestEnsureGitignoreKeepsExistingContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".gitignore")
	if err := os.WriteFile(path, []byte("node_modules\n.env"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := ensureGitignore(dir); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	got := string(data)
	if !strings.HasPrefix(got, "node_modules\n.env\n") {
		t.Errorf("existing lines not preserved:\n%s", got)
	}
	if strings.Count(got, ".env\n") != 1 {
		t.Errorf(".env duplicated:\n%s", got)
	}
	if !strings.Contains(got, ".gmtools/gmtools.log") {
		t.Errorf("missing runtime entry:\n%s", got)
	}
}

func TestSchemaPrintsEndpoints(t *testing.T) {
	out, err := run(t, "", "schema", "--config-dir", testutil.TempProject(t, testutil.EmptyProject()))
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	var doc struct {
		Endpoints []struct {
			Name string `json:"name"`
			Path string `json:"path"`
		} `json:"endpoints"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(doc.Endpoints) != 4 {
		t.Errorf("endpoints: got %d, want 4", len(doc.Endpoints))
	}
	if !strings.Contains(out, "usar_neutro") {
		t.Error("video request schema missing usar_neutro")
	}
}

func TestIngestCompletes(t *testing.T) {
	docs := docsDir(t, "a.pdf", "b.docx")
	cfgDir := t.TempDir()

	_, url := stubBackend(t)
	out, err := run(t, "", "ingest", docs, "--config-dir", cfgDir, "--interval", "5ms", "--backend", url)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if !strings.Contains(out, ingest.MsgReady) {
		t.Errorf("output: got %q, want %q", out, ingest.MsgReady)
	}
}

func TestIngestEmptyDirectoryFails(t *testing.T) {
	docs := docsDir(t)
	cfgDir := t.TempDir()

	_, url := stubBackend(t)
	_, err := run(t, "", "ingest", docs, "--config-dir", cfgDir, "--interval", "5ms", "--backend", url)
	if err == nil {
		t.Fatal("ingest of an empty directory: want error")
	}
	if err.Error() != ingest.MsgEmpty {
		t.Errorf("error: got %q, want %q", err.Error(), ingest.MsgEmpty)
	}
}

func TestIngestSkipIfReady(t *testing.T) {
	srv, url := stubBackend(t, "old.pdf")
	out, err := run(t, "", "ingest", docsDir(t, "new.pdf"), "--config-dir", t.TempDir(), "--skip-if-ready", "--backend", url)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if !strings.Contains(out, ingest.MsgExisting) {
		t.Errorf("output: got %q, want %q", out, ingest.MsgExisting)
	}
	if got := srv.Snapshot().Files; len(got) != 1 || got[0] != "old.pdf" {
		t.Errorf("files: got %v, want the seeded corpus untouched", got)
	}
}

func TestChatOneShot(t *testing.T) {
	_, url := stubBackend(t, "report.pdf", "chart.png")
	out, err := run(t, "", "chat", "revenue", "--config-dir", t.TempDir(), "--backend", url)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	for _, want := range []string{"Based on 2 document(s)", "Sources:", "/static/chart.png"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "**") {
		t.Errorf("markdown not stripped:\n%s", out)
	}
}

func TestChatREPL(t *testing.T) {
	_, url := stubBackend(t, "report.pdf")
	out, err := run(t, "first question\n\nquit\nnever asked\n", "chat", "--config-dir", t.TempDir(), "--backend", url)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if !strings.Contains(out, "first question") {
		t.Errorf("answer missing:\n%s", out)
	}
	if strings.Contains(out, "never asked") {
		t.Errorf("input after quit was sent:\n%s", out)
	}
}

func TestVideoPrintsSummary(t *testing.T) {
	_, url := stubBackend(t)
	out, err := run(t, "", "video", "https://youtu.be/dQw4w9WgXcQ", "--config-dir", t.TempDir(), "--backend", url)
	if err != nil {
		t.Fatalf("video: %v", err)
	}
	for _, want := range []string{"Positive", "Overall:", "Timeline:", "dQw4w9WgXcQ"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestVideoRejectsBadLink(t *testing.T) {
	_, url := stubBackend(t)
	_, err := run(t, "", "video", "https://example.com/watch", "--config-dir", t.TempDir(), "--backend", url)
	if err == nil || !strings.Contains(err.Error(), "valid YouTube link") {
		t.Errorf("error: got %v, want invalid link message", err)
	}
}

func TestStatusReportsCorpus(t *testing.T) {
	_, url := stubBackend(t, "a.pdf")
	out, err := run(t, "", "status", "--config-dir", t.TempDir(), "--backend", url)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "Knowledge base: ready") {
		t.Errorf("output: got %q", out)
	}
}

func TestConfigFileSelectsBackend(t *testing.T) {
	_, url := stubBackend(t, "a.pdf")
	project := testutil.TempProject(t, testutil.ProjectWithBackend(url))

	out, err := run(t, "", "status", "--config-dir", project)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "Backend: "+url) {
		t.Errorf("output: got %q, want backend %s", out, url)
	}
}

func TestEnvFileSelectsBackend(t *testing.T) {
	_, url := stubBackend(t, "a.pdf")
	project := testutil.TempProject(t, testutil.ProjectWithEnvFile("GMTOOLS_BACKEND_URL="+url+"\n"))

	out, err := run(t, "", "status", "--config-dir", project)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "Knowledge base: ready") {
		t.Errorf("output: got %q", out)
	}
}

func TestJournalRecordsIngestion(t *testing.T) {
	_, url := stubBackend(t)
	project := testutil.TempProject(t, map[string]string{
		".gmtools/config.yaml": "journal:\n  enabled: true\n",
	})

	if _, err := run(t, "", "ingest", docsDir(t, "a.pdf"), "--config-dir", project, "--interval", "5ms", "--backend", url); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(project, ".gmtools", "log.jsonl"))
	if err != nil {
		t.Fatalf("journal not written: %v", err)
	}
	for _, want := range []string{"ingest_submitted", "ingest_completed"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("journal missing %s:\n%s", want, data)
		}
	}

	out, err := run(t, "", "status", "--config-dir", project, "--backend", url)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "ingest_completed") {
		t.Errorf("status output missing last ingestion:\n%s", out)
	}
}
