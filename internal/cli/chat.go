// chat.go implements the "gmtools chat" command.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gm-tools/gmtools/internal/chat"
	"github.com/gm-tools/gmtools/internal/normalize"
)

var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Ask questions about the ingested documents",
	Long: `With a question argument, ask it once and print the answer.
Without one, read questions from stdin until EOF, "exit" or "quit".`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	out := cmd.OutOrStdout()
	mediaBase := rt.cfg.MediaBase()
	sess := chat.New(rt.client(), chat.Options{Sink: rt.sink, Logger: rt.logger})

	if len(args) > 0 {
		turn, err := sess.Ask(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		printTurn(out, turn, mediaBase)
		if turn.Failed {
			return errors.New("the backend could not answer")
		}
		return nil
	}

	if g := strings.TrimSpace(rt.cfg.Chat.Greeting); g != "" {
		fmt.Fprintln(out, normalize.PlainText(g))
	}
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		}
		turn, err := sess.Ask(cmd.Context(), line)
		if err != nil {
			return err
		}
		printTurn(out, turn, mediaBase)
	}
}

// printTurn writes an assistant turn with its sources and media links.
func printTurn(w io.Writer, t chat.Turn, mediaBase string) {
	fmt.Fprintln(w, normalize.PlainText(t.Content))
	if len(t.Sources) > 0 {
		fmt.Fprintf(w, "Sources: %s\n", strings.Join(t.Sources, ", "))
	}
	for _, m := range t.Media {
		fmt.Fprintf(w, "  %s: %s\n", m.Caption(), normalize.MediaURL(mediaBase, m.Reference))
	}
}
