// stub.go implements the "gmtools stub-backend" command.
package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gm-tools/gmtools/internal/backend"
	"github.com/gm-tools/gmtools/internal/stubserver"
)

var stubCmd = &cobra.Command{
	Use:   "stub-backend",
	Short: "Run a local fake of the analysis backend",
	Long: `Serve the ingest, progress, chat and video endpoints locally with
simulated progress. Ingestion lists real files under the submitted path;
answers and video timelines are canned.`,
	Args: cobra.NoArgs,
	RunE: runStub,
}

var (
	stubAddr string
	stubStep int
)

func init() {
	stubCmd.Flags().StringVar(&stubAddr, "addr", "127.0.0.1:8000", "Listen address")
	stubCmd.Flags().IntVar(&stubStep, "step", stubserver.DefaultStep, "Progress added per poll")
}

func runStub(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	srv := stubserver.New(stubserver.Options{
		Paths:  backend.PathsFromConfig(rt.cfg),
		Step:   stubStep,
		Logger: rt.logger,
	})
	if err := srv.Listen(stubAddr); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Stub backend on %s (Ctrl+C to stop)\n", srv.URL())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve() }()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case err := <-errCh:
		return err
	case <-sig:
		return srv.Stop()
	case <-cmd.Context().Done():
		return srv.Stop()
	}
}
