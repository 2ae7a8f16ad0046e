// ingest.go implements the "gmtools ingest" command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gm-tools/gmtools/internal/ingest"
	"github.com/gm-tools/gmtools/internal/jobs"
	"github.com/gm-tools/gmtools/internal/ui"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>",
	Short: "Ingest a document directory and wait until it is processed",
	Long: `Submit a directory path to the backend and poll its progress until
the documents are processed, the backend reports an error, or the poll
timeout expires. Ctrl+C stops polling.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

var (
	ingestInterval time.Duration
	ingestTimeout  time.Duration
	skipIfReady    bool
)

func init() {
	ingestCmd.Flags().DurationVar(&ingestInterval, "interval", 0, "Progress poll interval (default from config)")
	ingestCmd.Flags().DurationVar(&ingestTimeout, "timeout", 0, "Give up after this long (default from config)")
	ingestCmd.Flags().BoolVar(&skipIfReady, "skip-if-ready", false, "Do nothing when a finished knowledge base already exists")
}

func runIngest(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	interval := rt.cfg.PollInterval()
	if ingestInterval > 0 {
		interval = ingestInterval
	}
	timeout := rt.cfg.PollTimeout()
	if ingestTimeout > 0 {
		timeout = ingestTimeout
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	display := ui.NewProgressDisplay(out, "Ingesting "+args[0])
	sess := ingest.New(rt.client(), ingest.Options{
		Interval: interval,
		Timeout:  timeout,
		Sink:     rt.sink,
		Logger:   rt.logger,
		OnUpdate: func(st ingest.Status) {
			if st.Job.State == jobs.Idle {
				return
			}
			display.Update(st.Job, st.Message)
		},
	})

	if skipIfReady && sess.Probe(ctx) {
		if err := sess.UseExisting(); err == nil {
			fmt.Fprintln(out, sess.Message())
			return nil
		}
	}

	if err := sess.Analyze(ctx, args[0]); err != nil {
		display.Finish()
		if errors.Is(err, ingest.ErrEmptyPath) {
			return err
		}
		return errors.New(sess.Message())
	}

	st, err := sess.Wait(ctx)
	if errors.Is(err, context.Canceled) {
		sess.Stop()
		display.Finish()
		return errors.New(ingest.MsgStopped)
	}
	display.Finish()
	if err != nil || !st.Ready {
		return errors.New(sess.Message())
	}
	fmt.Fprintln(out, sess.Message())
	return nil
}
