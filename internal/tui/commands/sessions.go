package commands

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gm-tools/gmtools/internal/chat"
	"github.com/gm-tools/gmtools/internal/ingest"
	"github.com/gm-tools/gmtools/internal/tui"
	"github.com/gm-tools/gmtools/internal/video"
)

// ProbeCmd checks for a reusable corpus without blocking the UI.
func ProbeCmd(ctx context.Context, s *ingest.Session) tea.Cmd {
	return func() tea.Msg {
		return tui.ProbeResultMsg{CanSkip: s.Probe(ctx)}
	}
}

// StartIngestCmd submits path. Progress arrives through the session's
// OnUpdate hook.
func StartIngestCmd(ctx context.Context, s *ingest.Session, path string) tea.Cmd {
	return func() tea.Msg {
		return tui.IngestStartedMsg{Err: s.Analyze(ctx, path)}
	}
}

// WaitTurnCmd waits for the assistant turn of an outstanding question.
func WaitTurnCmd(ch <-chan chat.Turn) tea.Cmd {
	return func() tea.Msg {
		turn, ok := <-ch
		if !ok {
			return nil
		}
		return tui.ChatTurnMsg{Turn: turn}
	}
}

// AnalyzeVideoCmd runs one video analysis.
func AnalyzeVideoCmd(ctx context.Context, s *video.Session, url string) tea.Cmd {
	return func() tea.Msg {
		sum, err := s.Analyze(ctx, url)
		return tui.VideoResultMsg{Summary: sum, Err: err}
	}
}
