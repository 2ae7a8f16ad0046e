// Package ui provides the non-interactive terminal output of gmtools.
// This file implements the progress display shown while a job is polled.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/gm-tools/gmtools/internal/jobs"
)

const barWidth = 30

// ProgressDisplay renders one polled job. On a terminal it redraws in place;
// otherwise it prints a line per state change or 10% step.
type ProgressDisplay struct {
	mu         sync.Mutex
	out        io.Writer
	title      string
	isTTY      bool
	linesDrawn int
	last       jobs.Snapshot
	message    string
	started    bool
	lastState  jobs.State
	lastStep   int
	lastStall  bool
	now        func() time.Time
}

// NewProgressDisplay creates a ProgressDisplay writing to out. Redraws are
// only used when out is a terminal.
func NewProgressDisplay(out io.Writer, title string) *ProgressDisplay {
	tty := false
	if f, ok := out.(*os.File); ok {
		tty = term.IsTerminal(int(f.Fd()))
	}
	return &ProgressDisplay{
		out:      out,
		title:    title,
		isTTY:    tty,
		lastStep: -1,
		now:      time.Now,
	}
}

// Update records a new snapshot and message and re-renders.
func (p *ProgressDisplay) Update(snap jobs.Snapshot, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.last = snap
	p.message = message
	p.started = true
	p.render()
}

// Finish moves below the display and prints a summary line.
func (p *ProgressDisplay) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isTTY && p.linesDrawn > 0 {
		fmt.Fprint(p.out, "\n")
	}

	elapsed := formatDuration(p.last.Elapsed())
	switch p.last.State {
	case jobs.Done:
		fmt.Fprintf(p.out, "Done: %d%% in %s\n", p.last.Progress, elapsed)
	case jobs.Failed:
		fmt.Fprintf(p.out, "Failed after %s: %s\n", elapsed, p.message)
	default:
		if p.message != "" {
			fmt.Fprintln(p.out, p.message)
		}
	}
}

func (p *ProgressDisplay) render() {
	if !p.isTTY {
		p.renderPlain()
		return
	}
	p.renderTTY()
}

func (p *ProgressDisplay) renderTTY() {
	if p.linesDrawn > 0 {
		fmt.Fprintf(p.out, "\033[%dA", p.linesDrawn)
	}

	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("\033[2K\033[1m%s\033[0m\n", p.title))
	buf.WriteString("\033[2K")
	buf.WriteString(formatLine(p.last, p.now()))
	buf.WriteString("\n\033[2K")
	if p.message != "" {
		buf.WriteString(fmt.Sprintf("\033[90m%s\033[0m", p.message))
	}
	buf.WriteString("\n")

	fmt.Fprint(p.out, buf.String())
	p.linesDrawn = 3
}

// renderPlain prints only on state transitions, stall changes and whole 10%
// steps, to keep CI logs short.
func (p *ProgressDisplay) renderPlain() {
	step := p.last.Progress / 10
	if p.last.State == p.lastState && step == p.lastStep && p.last.Stalled == p.lastStall {
		return
	}
	p.lastState = p.last.State
	p.lastStep = step
	p.lastStall = p.last.Stalled
	fmt.Fprintln(p.out, formatLinePlain(p.last, p.message))
}

func formatLine(snap jobs.Snapshot, now time.Time) string {
	filled := snap.Progress * barWidth / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	detail := ""
	switch {
	case snap.State == jobs.Failed:
		detail = "\033[31m[failed]\033[0m"
	case snap.State == jobs.Done:
		detail = fmt.Sprintf("\033[32m[%s]\033[0m", formatDuration(snap.Elapsed()))
	case snap.Stalled:
		detail = "\033[33m[backend not responding]\033[0m"
	case !snap.StartedAt.IsZero():
		detail = fmt.Sprintf("\033[90m[%s]\033[0m", formatDuration(now.Sub(snap.StartedAt)))
	}
	return fmt.Sprintf("  %s %3d%%  %s", bar, snap.Progress, detail)
}

func formatLinePlain(snap jobs.Snapshot, message string) string {
	status := strings.ToUpper(snap.State.String())
	if snap.Stalled && !snap.State.Terminal() {
		status += " (stalled)"
	}
	line := fmt.Sprintf("[%s] %d%%", status, snap.Progress)
	if message != "" {
		line += " - " + message
	}
	return line
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", h, m, s)
}
