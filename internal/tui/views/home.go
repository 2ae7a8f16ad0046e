// Package views provides TUI view components for gmtools.
package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gm-tools/gmtools/internal/tui"
)

type homeEntry struct {
	state tui.ViewState
	label string
	hint  string
}

var homeEntries = []homeEntry{
	{tui.StateIngest, "Analyze documents", "ingest a directory on the backend host"},
	{tui.StateChat, "Chat", "ask questions about the ingested documents"},
	{tui.StateVideo, "Video sentiment", "score a YouTube video over time"},
}

// HomeModel is the landing menu.
type HomeModel struct {
	cursor     int
	ready      bool
	canSkip    bool
	backendURL string
	width      int
}

// NewHomeModel creates a HomeModel.
func NewHomeModel(backendURL string, width int) HomeModel {
	return HomeModel{backendURL: backendURL, width: width}
}

// Sync updates the corpus flags the menu depends on.
func (m HomeModel) Sync(ready, canSkip bool) HomeModel {
	m.ready = ready
	m.canSkip = canSkip
	return m
}

// Selected returns the screen under the cursor.
func (m HomeModel) Selected() tui.ViewState {
	return homeEntries[m.cursor].state
}

// Update handles messages for the home view.
func (m HomeModel) Update(msg tea.Msg) (HomeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, tui.DefaultKeyMap.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, tui.DefaultKeyMap.Down):
			if m.cursor < len(homeEntries)-1 {
				m.cursor++
			}
		case key.Matches(msg, tui.DefaultKeyMap.Enter):
			target := homeEntries[m.cursor].state
			if target == tui.StateChat && !m.ready {
				return m, nil
			}
			return m, func() tea.Msg { return tui.NavigateMsg{State: target} }
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

// View renders the home view.
func (m HomeModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("gmtools"))
	b.WriteString("\n")
	b.WriteString(tui.DimStyle.Render("Backend: " + m.backendURL))
	b.WriteString("\n\n")

	switch {
	case m.ready:
		b.WriteString(tui.SuccessStyle.Render("Documents are ready for chat."))
	case m.canSkip:
		b.WriteString(tui.WarningStyle.Render("An existing knowledge base is available."))
	default:
		b.WriteString(tui.DimStyle.Render("No documents ingested yet."))
	}
	b.WriteString("\n\n")

	for i, e := range homeEntries {
		cursor := "  "
		label := e.label
		if i == m.cursor {
			cursor = tui.SelectedStyle.Render("> ")
			label = tui.SelectedStyle.Render(label)
		}
		hint := e.hint
		if e.state == tui.StateChat && !m.ready {
			label = tui.DimStyle.Render(e.label)
			hint = "available after documents are ready"
		}
		b.WriteString(fmt.Sprintf("%s%s  %s\n", cursor, label, tui.DimStyle.Render(hint)))
	}

	b.WriteString("\n")
	b.WriteString(tui.DimStyle.Render("↑/↓: Move   Enter: Open   Tab: Switch screens   Ctrl+C: Exit"))
	return b.String()
}
