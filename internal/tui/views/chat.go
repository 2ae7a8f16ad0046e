package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gm-tools/gmtools/internal/chat"
	"github.com/gm-tools/gmtools/internal/normalize"
	"github.com/gm-tools/gmtools/internal/tui"
)

// ChatModel is the view model for the question-answering screen.
type ChatModel struct {
	turns     []chat.Turn
	input     textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	busy      bool
	mediaBase string
	width     int
	height    int
}

// NewChatModel creates a ChatModel. mediaBase prefixes relative media
// references so they render as openable links.
func NewChatModel(mediaBase string, width, height int) ChatModel {
	ti := textinput.New()
	ti.Placeholder = "Ask about your documents..."
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED"))

	m := ChatModel{
		input:     ti,
		viewport:  viewport.New(20, 5),
		spinner:   sp,
		mediaBase: mediaBase,
	}
	m.resize(width, height)
	return m
}

// Init returns the initial command for the chat view.
func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Sync replaces the transcript with the session's and tracks whether an
// answer is outstanding.
func (m ChatModel) Sync(turns []chat.Turn, busy bool) ChatModel {
	grew := len(turns) != len(m.turns)
	m.turns = turns
	m.busy = busy
	if busy {
		m.input.Blur()
	} else {
		m.input.Focus()
	}
	m.viewport.SetContent(m.formatTurns())
	if grew {
		m.viewport.GotoBottom()
	}
	return m
}

// Busy reports whether the input is disabled.
func (m ChatModel) Busy() bool { return m.busy }

// Update handles messages for the chat view.
func (m ChatModel) Update(msg tea.Msg) (ChatModel, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case tui.KeyEnter:
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.busy {
				return m, nil
			}
			m.input.Reset()
			return m, func() tea.Msg { return tui.SendQuestionMsg{Question: q} }
		case "pgup", "pgdown":
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.viewport.SetContent(m.formatTurns())
		return m, nil
	}

	if !m.busy {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *ChatModel) resize(width, height int) {
	m.width = width
	m.height = height

	// header (2) + tab bar (2) + input (2) + footer (2) + box chrome (6)
	vpHeight := height - 14
	if vpHeight < 5 {
		vpHeight = 5
	}
	vpWidth := width - 10
	if vpWidth < 20 {
		vpWidth = 20
	}
	m.viewport.Width = vpWidth
	m.viewport.Height = vpHeight
	m.input.Width = vpWidth - 4
}

// View renders the chat view.
func (m ChatModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("Chat"))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n\n")

	if m.busy {
		b.WriteString(fmt.Sprintf("%s Thinking...", m.spinner.View()))
		b.WriteString("\n")
		b.WriteString(tui.DimStyle.Render(m.input.View()))
	} else {
		b.WriteString(m.input.View())
	}
	b.WriteString("\n\n")
	b.WriteString(tui.DimStyle.Render("Enter: Send · PgUp/PgDn: Scroll · Esc: Back"))
	return b.String()
}

func (m ChatModel) formatTurns() string {
	if len(m.turns) == 0 {
		return tui.DimStyle.Render("No messages yet. Ask something!")
	}

	var b strings.Builder
	for i, t := range m.turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(formatTurn(t, m.mediaBase))
	}
	return b.String()
}

func formatTurn(t chat.Turn, mediaBase string) string {
	var b strings.Builder
	if t.Role == chat.User {
		b.WriteString(tui.UserStyle.Render("You: "))
		b.WriteString(t.Content)
		return b.String()
	}

	b.WriteString(tui.AssistantStyle.Render("Assistant: "))
	if t.Failed {
		b.WriteString(tui.ErrorStyle.Render(t.Content))
		return b.String()
	}
	b.WriteString(normalize.PlainText(t.Content))

	if len(t.Sources) > 0 {
		b.WriteString("\n")
		b.WriteString(tui.DimStyle.Render("Sources: " + strings.Join(t.Sources, ", ")))
	}
	for _, md := range t.Media {
		b.WriteString("\n")
		line := normalize.MediaURL(mediaBase, md.Reference)
		if c := md.Caption(); c != "" {
			line = c + ": " + line
		}
		b.WriteString(tui.DimStyle.Render("  ▸ " + line))
	}
	return b.String()
}
