// init.go implements the "gmtools init" command.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gm-tools/gmtools/internal/config"
	"github.com/gm-tools/gmtools/templates"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .gmtools/config.yaml in the project directory",
	Long: `Write a default .gmtools/config.yaml, an .env.example listing every
environment override, and .gitignore entries for local runtime files.`,
	RunE: runInit,
}

var forceFlag bool

func init() {
	initCmd.Flags().BoolVar(&forceFlag, "force", false, "Overwrite an existing config without asking")
}

func runInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	dir := configDir

	cfgPath := filepath.Join(config.Dir(dir), "config.yaml")
	if _, statErr := os.Stat(cfgPath); statErr == nil && !forceFlag {
		fmt.Fprintln(out, "Warning: .gmtools/config.yaml already exists.")
		fmt.Fprint(out, "Overwrite? [y/N]: ")
		reader := bufio.NewReader(cmd.InOrStdin())
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if backendURL != "" {
		cfg.Backend.BaseURL = backendURL
	}
	if err := config.WriteConfig(dir, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	envExample := filepath.Join(dir, ".env.example")
	if _, err := os.Stat(envExample); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(envExample, []byte(templates.EnvExample), 0644); err != nil {
			return fmt.Errorf("writing .env.example: %w", err)
		}
	}

	if err := ensureGitignore(dir); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to set up .gitignore: %v\n", err)
	}

	fmt.Fprintln(out, "gmtools initialized")
	fmt.Fprintf(out, "  Backend: %s\n", cfg.Backend.BaseURL)
	fmt.Fprintln(out, "Configuration written to .gmtools/config.yaml")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Run: gmtools ingest <directory>")
	fmt.Fprintln(out, "  2. Run: gmtools chat")
	return nil
}

// ensureGitignore appends runtime entries missing from .gitignore.
func ensureGitignore(dir string) error {
	gitignorePath := filepath.Join(dir, ".gitignore")

	requiredEntries := []string{
		// Secrets
		".env",
		// gmtools runtime (config.yaml IS committed)
		".gmtools/log.jsonl",
		".gmtools/gmtools.log",
	}

	existing := ""
	if data, err := os.ReadFile(gitignorePath); err == nil {
		existing = string(data)
	}

	var missing []string
	for _, entry := range requiredEntries {
		if !hasLine(existing, entry) {
			missing = append(missing, entry)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	var toAppend strings.Builder
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		toAppend.WriteString("\n")
	}
	if existing != "" {
		toAppend.WriteString("\n# Added by gmtools init\n")
	}
	for _, entry := range missing {
		toAppend.WriteString(entry + "\n")
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening .gitignore: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(toAppend.String()); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	return nil
}

func hasLine(content, entry string) bool {
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == entry {
			return true
		}
	}
	return false
}
