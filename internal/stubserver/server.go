// Package stubserver is a local stand-in for the analysis backend. It serves
// the same four endpoints the client calls, with simulated ingestion
// progress, so the CLI and TUI can be exercised without the real service.
package stubserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gm-tools/gmtools/internal/backend"
)

// DefaultStep is how far one progress poll advances a running job.
const DefaultStep = 20

// Options configures a Server.
type Options struct {
	Paths  backend.Paths
	Step   int
	Quiet  bool // drop the per-request access log
	Logger *slog.Logger
}

// Server is the fake backend.
type Server struct {
	router *chi.Mux
	step   int
	logger *slog.Logger

	mu    sync.Mutex
	state State

	listener net.Listener
	server   *http.Server
}

// New builds the router. Call Listen and Serve to accept connections, or use
// Handler directly with httptest.
func New(opts Options) *Server {
	paths := opts.Paths
	def := backend.DefaultPaths()
	if paths.Analyze == "" {
		paths.Analyze = def.Analyze
	}
	if paths.Progress == "" {
		paths.Progress = def.Progress
	}
	if paths.Chat == "" {
		paths.Chat = def.Chat
	}
	if paths.Video == "" {
		paths.Video = def.Video
	}

	s := &Server{
		router: chi.NewRouter(),
		step:   opts.Step,
		logger: opts.Logger,
	}
	if s.step <= 0 {
		s.step = DefaultStep
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	if !opts.Quiet {
		s.router.Use(middleware.Logger)
	}
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", s.handleHealth)
	s.router.Post(paths.Analyze, s.handleIngest)
	s.router.Get(paths.Progress, s.handleProgress)
	s.router.Post(paths.Chat, s.handleChat)
	s.router.Post(paths.Video, s.handleVideo)
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Listen binds addr. An empty addr binds a random localhost port.
func (s *Server) Listen(addr string) error {
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("stub backend: binding listener: %w", err)
	}
	s.listener = ln
	s.server = &http.Server{Handler: s.router}
	return nil
}

// Addr returns the bound address (e.g. "127.0.0.1:12345").
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// URL returns the base URL of the bound server.
func (s *Server) URL() string {
	return "http://" + s.Addr()
}

// Serve accepts connections until Stop. Call in a goroutine.
func (s *Server) Serve() error {
	if s.server == nil {
		return errors.New("stub backend: Serve called before Listen")
	}
	s.logger.Info("stub backend listening", "addr", s.Addr())
	err := s.server.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop closes the listener and all connections.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	return s.server.Close()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil {
		return true
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("encoding stub response", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
