// Package cli defines Cobra command definitions for the gmtools CLI.
// This file contains the root command, global flags and shared setup.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gm-tools/gmtools/internal/backend"
	"github.com/gm-tools/gmtools/internal/config"
	"github.com/gm-tools/gmtools/internal/events"
	journal "github.com/gm-tools/gmtools/internal/log"
	"github.com/gm-tools/gmtools/internal/logging"
	"github.com/gm-tools/gmtools/internal/tui"
	"github.com/gm-tools/gmtools/internal/tui/app"
)

var (
	configDir  string
	backendURL string
	logLevel   string
	logFormat  string
	version    = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "gmtools",
	Short: "Terminal client for document chat and video sentiment analysis",
	Long: `gmtools drives a document analysis backend from the terminal.
It ingests a document directory, answers questions about the ingested
documents, and scores the sentiment of YouTube videos over time.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runRoot,
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Project directory holding .gmtools/ and .env")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "Backend base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(videoCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(stubCmd)
}

func runRoot(cmd *cobra.Command, args []string) error {
	// When no subcommand is provided, launch TUI if TTY, show help otherwise
	if !tui.IsTTY() {
		return cmd.Help()
	}

	// The TUI owns the terminal, so logs go to a file.
	logPath := filepath.Join(config.Dir(configDir), "gmtools.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	rt, err := setup(f)
	if err != nil {
		return err
	}
	defer rt.Close()

	tuiApp := app.New(app.Deps{
		Config:     rt.cfg,
		Client:     rt.client(),
		BackendURL: rt.cfg.Backend.BaseURL,
		Sink:       rt.sink,
		Logger:     rt.logger,
	})
	defer tuiApp.Close()
	return tui.Run(tuiApp)
}

// runtime is what every command needs after flags are parsed.
type runtime struct {
	cfg     *config.Config
	logger  *slog.Logger
	sink    events.Sink
	journal *journal.Logger
	closers []func()
}

// setup resolves configuration (file, then .env and environment, then
// flags), installs the default logger writing to logOut and builds the event
// sink.
func setup(logOut io.Writer) (*runtime, error) {
	if err := config.LoadEnvFile(filepath.Join(configDir, ".env")); err != nil {
		return nil, err
	}
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if backendURL != "" {
		cfg.Backend.BaseURL = backendURL
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format, logOut)
	slog.SetDefault(logger)

	rt := &runtime{cfg: cfg, logger: logger}
	rt.sink = rt.buildSink()
	return rt, nil
}

// buildSink fans events out to the journal and NATS when they are enabled.
// Either one failing to start is logged and skipped.
func (rt *runtime) buildSink() events.Sink {
	var sinks events.Multi
	if rt.cfg.Journal.Enabled {
		j, err := journal.NewLogger(configDir)
		if err != nil {
			rt.logger.Warn("journal disabled", "error", err)
		} else {
			rt.journal = j
			sinks = append(sinks, j)
		}
	}
	if rt.cfg.NATS.URL != "" {
		p, err := events.NewPublisher(rt.cfg.NATS.URL, rt.cfg.NATS.Token, rt.cfg.NATS.SubjectPrefix, rt.logger)
		if err != nil {
			rt.logger.Warn("nats publishing disabled", "error", err)
		} else {
			sinks = append(sinks, p)
			rt.closers = append(rt.closers, p.Close)
		}
	}
	if len(sinks) == 0 {
		return events.Nop{}
	}
	return sinks
}

func (rt *runtime) client() *backend.Client {
	return backend.FromConfig(rt.cfg, rt.logger)
}

// Close releases the sink connections.
func (rt *runtime) Close() {
	for _, c := range rt.closers {
		c()
	}
	rt.closers = nil
}
