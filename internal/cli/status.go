// status.go implements the "gmtools status" command showing corpus state.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gm-tools/gmtools/internal/events"
	"github.com/gm-tools/gmtools/internal/ingest"
	journal "github.com/gm-tools/gmtools/internal/log"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backend and knowledge base status",
	Long: `Ask the backend whether a finished knowledge base exists and list the
most recent ingestion, chat and video events from the local journal.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	out := cmd.OutOrStdout()
	client := rt.client()

	ctx, cancel := context.WithTimeout(cmd.Context(), rt.cfg.HTTPTimeout())
	defer cancel()
	sess := ingest.New(client, ingest.Options{Logger: rt.logger})
	ready := sess.Probe(ctx)

	fmt.Fprintln(out, "gmtools Status")
	fmt.Fprintf(out, "Backend: %s\n", client.BaseURL())
	if ready {
		fmt.Fprintln(out, "Knowledge base: ready (chat can start without ingesting)")
	} else {
		fmt.Fprintln(out, "Knowledge base: not available")
	}

	if rt.journal == nil {
		return nil
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Recent activity:")
	printLast(cmd, rt.journal, "Ingestion", events.IngestCompleted, events.IngestFailed, events.IngestEmpty)
	printLast(cmd, rt.journal, "Chat", events.ChatAnswered, events.ChatFailed)
	printLast(cmd, rt.journal, "Video", events.VideoAnalyzed, events.VideoFailed)
	return nil
}

// printLast prints the newest journal event among types.
func printLast(cmd *cobra.Command, j *journal.Logger, label string, types ...string) {
	var newest *journal.LogEvent
	for _, typ := range types {
		ev, err := j.Last(typ)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: reading journal: %v\n", err)
			return
		}
		if ev != nil && (newest == nil || ev.Time.After(newest.Time)) {
			newest = ev
		}
	}

	out := cmd.OutOrStdout()
	if newest == nil {
		fmt.Fprintf(out, "  %-10s  none\n", label)
		return
	}
	fmt.Fprintf(out, "  %-10s  %-16s  %s  %s\n", label, newest.Event,
		newest.Time.Local().Format(time.DateTime), describeEvent(newest))
}

func describeEvent(ev *journal.LogEvent) string {
	switch {
	case ev.Error != "":
		return ev.Error
	case ev.Path != "":
		return ev.Path
	case ev.Query != "":
		return fmt.Sprintf("%q", ev.Query)
	default:
		return ev.URL
	}
}
