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

	"github.com/gm-tools/gmtools/internal/sentiment"
	"github.com/gm-tools/gmtools/internal/tui"
	"github.com/gm-tools/gmtools/internal/video"
)

// VideoModel is the video sentiment screen.
type VideoModel struct {
	input   textinput.Model
	bar     progress.Model
	spinner spinner.Model
	status  video.Status
	neutral bool
	width   int
}

// NewVideoModel creates a VideoModel.
func NewVideoModel(neutral bool, width int) VideoModel {
	ti := textinput.New()
	ti.Placeholder = "https://www.youtube.com/watch?v=..."
	ti.CharLimit = 512
	ti.Prompt = "URL: "
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED"))

	m := VideoModel{
		input:   ti,
		bar:     progress.New(progress.WithGradient(tui.ProgressStart, tui.ProgressEnd)),
		spinner: sp,
		neutral: neutral,
	}
	m.resize(width)
	return m
}

// Init returns the initial command for the video view.
func (m VideoModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Sync records the latest session status and neutral setting.
func (m VideoModel) Sync(st video.Status, neutral bool) VideoModel {
	m.status = st
	m.neutral = neutral
	if st.Busy {
		m.input.Blur()
	} else {
		m.input.Focus()
	}
	return m
}

// Update handles messages for the video view.
func (m VideoModel) Update(msg tea.Msg) (VideoModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, tui.DefaultKeyMap.Neutral):
			if !m.status.Busy {
				return m, func() tea.Msg { return tui.ToggleNeutralMsg{} }
			}
			return m, nil
		case key.Matches(msg, tui.DefaultKeyMap.Reset):
			if !m.status.Busy {
				m.input.Reset()
				return m, func() tea.Msg { return tui.ResetVideoMsg{} }
			}
			return m, nil
		case msg.String() == tui.KeyEnter:
			url := strings.TrimSpace(m.input.Value())
			if url == "" || m.status.Busy {
				return m, nil
			}
			return m, func() tea.Msg { return tui.AnalyzeVideoMsg{URL: url} }
		}

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.resize(msg.Width)
		return m, nil
	}

	if !m.status.Busy {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m *VideoModel) resize(width int) {
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

// View renders the video view.
func (m VideoModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("Video sentiment"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	neutral := "off"
	if m.neutral {
		neutral = "on"
	}
	b.WriteString(tui.DimStyle.Render("Neutral bucket: " + neutral))
	b.WriteString("\n\n")

	st := m.status
	if st.Busy || st.Progress > 0 {
		b.WriteString(m.bar.ViewAs(float64(st.Progress) / 100))
		b.WriteString("\n")
	}
	if st.Busy {
		b.WriteString(fmt.Sprintf("%s Analyzing video...", m.spinner.View()))
		b.WriteString("\n")
	}
	if st.Alert != "" {
		b.WriteString(tui.ErrorStyle.Render(st.Alert))
		b.WriteString("\n")
	}
	if st.Summary != nil {
		b.WriteString("\n")
		b.WriteString(RenderSummary(*st.Summary, st.Thumbnail()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(tui.DimStyle.Render("Enter: Analyze · Ctrl+N: Neutral · Ctrl+R: New analysis · Esc: Back"))
	return b.String()
}

// RenderSummary formats an analysis result: shares, dominant bucket,
// summary text, timeline strip and highlights.
func RenderSummary(sum sentiment.Summary, thumbnail string) string {
	var b strings.Builder

	share := func(bucket sentiment.Bucket, label string, v float64) {
		b.WriteString(fmt.Sprintf("%s %-9s %5.1f%%\n", tui.BucketIcon(bucket), label, v))
	}
	share(sentiment.Positive, "Positive", sum.Positive)
	share(sentiment.Negative, "Negative", sum.Negative)
	if sum.HasNeutral {
		share(sentiment.Neutral, "Neutral", sum.Neutral)
	}

	dom := sum.Dominant()
	b.WriteString("Overall: ")
	b.WriteString(tui.BucketStyle(dom).Render(string(dom)))
	b.WriteString("\n")
	if thumbnail != "" {
		b.WriteString(tui.DimStyle.Render("Thumbnail: " + thumbnail))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(sum.Text)
	b.WriteString("\n")

	if len(sum.Timeline) > 0 {
		b.WriteString("\nTimeline: ")
		for _, s := range sum.Timeline {
			b.WriteString(tui.BucketIcon(s.Bucket))
		}
		b.WriteString("\n")
	}

	if len(sum.Highlights) > 0 {
		b.WriteString("\nHighlights:\n")
		for _, h := range sum.Highlights {
			line := fmt.Sprintf("  %s %s", h.Time, sentiment.Description(h.Bucket))
			if h.Word != "" {
				line += fmt.Sprintf(" (%q)", h.Word)
			}
			b.WriteString(tui.BucketStyle(h.Bucket).Render(line))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
