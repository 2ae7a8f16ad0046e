// schema.go implements the "gmtools schema" command.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gm-tools/gmtools/internal/backend"
	"github.com/gm-tools/gmtools/internal/contract"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print JSON Schemas for the backend endpoints",
	Long: `Print the request and response JSON Schema of every backend endpoint
at the configured paths. Requests are strict; responses accept extra fields.`,
	Args: cobra.NoArgs,
	RunE: runSchema,
}

func runSchema(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	doc, err := contract.Document(backend.PathsFromConfig(rt.cfg))
	if err != nil {
		return fmt.Errorf("generating schemas: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(doc))
	return nil
}
