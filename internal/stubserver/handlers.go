package stubserver

import (
	"fmt"
	"hash/fnv"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gm-tools/gmtools/internal/backend"
	"github.com/gm-tools/gmtools/internal/video"
)

// State is the simulated ingestion state.
type State struct {
	Path     string
	Files    []string
	Progress int
	Running  bool
	Ready    bool // a corpus finished ingesting at least once
}

// Snapshot returns a copy of the simulated state.
func (s *Server) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Files = append([]string(nil), s.state.Files...)
	return st
}

// Seed marks a corpus as already ingested, as if a previous run finished.
func (s *Server) Seed(files ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{Files: files, Progress: 100, Ready: true}
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req backend.IngestRequest
	if !readJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		writeError(w, http.StatusBadRequest, "Missing path")
		return
	}

	files := listDocuments(req.Path)
	if len(files) == 0 {
		writeJSON(w, http.StatusOK, backend.IngestAck{Message: "0 files found"})
		return
	}

	s.mu.Lock()
	s.state = State{Path: req.Path, Files: files, Running: true, Ready: s.state.Ready}
	s.mu.Unlock()

	n := len(files)
	s.logger.Info("stub ingestion started", "path", req.Path, "files", n)
	writeJSON(w, http.StatusOK, backend.IngestAck{
		Message:    fmt.Sprintf("Found %d files, processing", n),
		FilesFound: &n,
	})
}

func (s *Server) handleProgress(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	if s.state.Running {
		s.state.Progress = min(s.state.Progress+s.step, 100)
		if s.state.Progress == 100 {
			s.state.Running = false
			s.state.Ready = true
		}
	}
	resp := backend.ProgressStatus{
		Progress: s.state.Progress,
		Done:     !s.state.Running && s.state.Ready,
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req backend.ChatRequest
	if !readJSON(w, r, &req) {
		return
	}
	q := strings.TrimSpace(req.Question)
	if q == "" {
		writeError(w, http.StatusBadRequest, "Missing question")
		return
	}

	st := s.Snapshot()
	if !st.Ready {
		writeJSON(w, http.StatusOK, backend.ChatResponse{
			Answer: "No documents have been ingested yet.",
		})
		return
	}

	resp := backend.ChatResponse{
		Answer:  fmt.Sprintf("Based on %d document(s), here is what I found about **%s**.", len(st.Files), q),
		Sources: st.Files,
	}
	for _, f := range st.Files {
		if isImage(f) {
			page := 1
			resp.Images = append(resp.Images, backend.ChatImage{Src: "/static/" + f, Source: f, Page: &page})
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	var req backend.VideoRequest
	if !readJSON(w, r, &req) {
		return
	}
	id, err := video.ExtractID(req.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid URL")
		return
	}
	writeJSON(w, http.StatusOK, fakeAnalysis(id, req.IncludeNeutral))
}

// fakeAnalysis derives stable percentages and a short timeline from the video
// ID, so repeated requests for one video agree.
func fakeAnalysis(id string, neutral bool) backend.VideoResponse {
	h := fnv.New32a()
	h.Write([]byte(id))
	seed := h.Sum32()

	pos := float64(30 + seed%50)
	resp := backend.VideoResponse{Summary: fmt.Sprintf("Simulated analysis of %s.", id)}
	if neutral {
		neu := float64(5 + (seed>>8)%20)
		resp.Positive = pos
		resp.Neutral = &neu
		resp.Negative = round1(100 - pos - neu)
	} else {
		resp.Positive = pos
		resp.Negative = round1(100 - pos)
	}

	words := []string{"great", "fine", "awful", "love", "meh", "brilliant"}
	for i := range 4 {
		v := float64((seed >> (i * 4)) % 101)
		label := "neutral"
		switch {
		case v < 33:
			label = "negative"
		case v >= 66:
			label = "positive"
		}
		if !neutral && label == "neutral" {
			label = "positive"
		}
		resp.Timeline = append(resp.Timeline, backend.TimelinePoint{
			Time:      fmt.Sprintf("00:%02d", (i+1)*7),
			Sentiment: label,
			Value:     &v,
			Word:      words[(int(seed)+i)%len(words)],
		})
	}
	return resp
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

var documentExts = map[string]bool{
	".pdf": true, ".docx": true, ".doc": true, ".txt": true, ".md": true,
	".pptx": true, ".xlsx": true, ".csv": true,
	".png": true, ".jpg": true, ".jpeg": true,
}

func isImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

// listDocuments returns the base names of supported files directly under
// dir. A missing directory yields no files.
func listDocuments(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if documentExts[strings.ToLower(filepath.Ext(e.Name()))] {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out
}
