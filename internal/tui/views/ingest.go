package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gm-tools/gmtools/internal/ingest"
	"github.com/gm-tools/gmtools/internal/jobs"
	"github.com/gm-tools/gmtools/internal/tui"
)

// IngestModel is the document ingestion screen.
type IngestModel struct {
	input   textinput.Model
	bar     progress.Model
	spinner spinner.Model
	status  ingest.Status
	width   int
}

// NewIngestModel creates an IngestModel.
func NewIngestModel(width int) IngestModel {
	ti := textinput.New()
	ti.Placeholder = "/data/documents"
	ti.CharLimit = 1024
	ti.Prompt = "Path: "
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED"))

	m := IngestModel{
		input:   ti,
		bar:     progress.New(progress.WithGradient(tui.ProgressStart, tui.ProgressEnd)),
		spinner: sp,
	}
	m.resize(width)
	return m
}

// Init returns the initial command for the ingest view.
func (m IngestModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Sync records the latest session status.
func (m IngestModel) Sync(st ingest.Status) IngestModel {
	m.status = st
	if m.running() {
		m.input.Blur()
	} else {
		m.input.Focus()
	}
	return m
}

func (m IngestModel) running() bool {
	s := m.status.Job.State
	return s == jobs.Submitted || s == jobs.Polling
}

// Update handles messages for the ingest view.
func (m IngestModel) Update(msg tea.Msg) (IngestModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, tui.DefaultKeyMap.Stop):
			if m.running() {
				return m, func() tea.Msg { return tui.StopIngestMsg{} }
			}
			return m, nil
		case key.Matches(msg, tui.DefaultKeyMap.Existing):
			if m.status.CanSkip && !m.running() {
				return m, func() tea.Msg { return tui.UseExistingMsg{} }
			}
			return m, nil
		case msg.String() == tui.KeyEnter:
			path := strings.TrimSpace(m.input.Value())
			if path == "" || m.running() {
				return m, nil
			}
			return m, func() tea.Msg { return tui.SubmitPathMsg{Path: path} }
		}

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.resize(msg.Width)
		return m, nil
	}

	if !m.running() {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m *IngestModel) resize(width int) {
	m.width = width
	w := width - 14
	if w > 60 {
		w = 60
	}
	if w < 20 {
		w = 20
	}
	m.bar.Width = w
	m.input.Width = w
}

// View renders the ingest view.
func (m IngestModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("Analyze documents"))
	b.WriteString("\n")
	b.WriteString(tui.DimStyle.Render("Directory on the backend host to ingest"))
	b.WriteString("\n\n")

	if m.running() {
		b.WriteString(tui.DimStyle.Render(m.input.View()))
	} else {
		b.WriteString(m.input.View())
	}
	b.WriteString("\n\n")

	job := m.status.Job
	if job.State != jobs.Idle {
		b.WriteString(m.bar.ViewAs(float64(job.Progress) / 100))
		b.WriteString("\n")
	}
	if m.running() {
		line := fmt.Sprintf("%s %s", m.spinner.View(), m.status.Message)
		if job.Stalled {
			line += "  " + tui.WarningStyle.Render("(backend not responding, still trying)")
		}
		b.WriteString(line)
	} else if msg := m.status.Message; msg != "" {
		switch {
		case m.status.Ready:
			b.WriteString(tui.SuccessStyle.Render(msg))
		case job.State == jobs.Failed || msg == ingest.MsgEmpty:
			b.WriteString(tui.ErrorStyle.Render(msg))
		default:
			b.WriteString(msg)
		}
	}
	b.WriteString("\n\n")

	if m.status.CanSkip && !m.status.Ready && !m.running() {
		b.WriteString(tui.WarningStyle.Render("A previous knowledge base exists. Ctrl+E uses it without re-ingesting."))
		b.WriteString("\n\n")
	}

	footer := "Enter: Analyze · Esc: Back"
	if m.running() {
		footer = "Ctrl+X: Stop · Esc: Back"
	}
	b.WriteString(tui.DimStyle.Render(footer))
	return b.String()
}
