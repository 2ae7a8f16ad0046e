package tui

import (
	"fmt"
	"io"
)

// FallbackRunner handles non-TTY execution by pointing users at the plain
// subcommands.
type FallbackRunner struct {
	out io.Writer
}

// NewFallbackRunner creates a FallbackRunner writing to out.
func NewFallbackRunner(out io.Writer) *FallbackRunner {
	return &FallbackRunner{out: out}
}

// Run prints the guidance.
func (f *FallbackRunner) Run() error {
	fmt.Fprintln(f.out, "Non-TTY environment detected.")
	fmt.Fprintln(f.out, "Use the subcommands instead:")
	fmt.Fprintln(f.out, "  gmtools ingest <path>     ingest a document directory")
	fmt.Fprintln(f.out, "  gmtools chat [question]   ask about the ingested documents")
	fmt.Fprintln(f.out, "  gmtools video <url>       analyze the sentiment of a video")
	return nil
}
