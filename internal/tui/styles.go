package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/gm-tools/gmtools/internal/sentiment"
)

const (
	primaryColor   = "#7C3AED" // Purple
	secondaryColor = "#10B981" // Green
	warningColor   = "#F59E0B" // Amber
	errorColor     = "#EF4444" // Red
	dimColor       = "#6B7280" // Gray
	neutralColor   = "#60A5FA" // Blue
)

// Style variables for consistent TUI rendering.
var (
	// BoxStyle provides a rounded border box with primary color.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(primaryColor)).
			Padding(1, 2)

	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(primaryColor)).
			Bold(true)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(primaryColor)).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(dimColor))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(secondaryColor))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(errorColor))

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(warningColor))

	NeutralStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(neutralColor))

	// UserStyle and AssistantStyle label chat turns.
	UserStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(secondaryColor)).
			Bold(true)

	AssistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(primaryColor)).
			Bold(true)

	ActiveTabStyle = lipgloss.NewStyle().
			Background(lipgloss.Color(primaryColor)).
			Foreground(lipgloss.Color("#FFFFFF")).
			Padding(0, 2)

	InactiveTabStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#374151")).
				Foreground(lipgloss.Color("#9CA3AF")).
				Padding(0, 2)

	// DisabledTabStyle marks a screen that is not available yet.
	DisabledTabStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#1F2937")).
				Foreground(lipgloss.Color("#4B5563")).
				Padding(0, 2)
)

// ProgressColors are the gradient endpoints for progress bars.
const (
	ProgressStart = primaryColor
	ProgressEnd   = secondaryColor
)

// BucketStyle returns the style for a sentiment bucket.
func BucketStyle(b sentiment.Bucket) lipgloss.Style {
	switch b {
	case sentiment.Positive:
		return SuccessStyle
	case sentiment.Negative:
		return ErrorStyle
	case sentiment.Neutral:
		return NeutralStyle
	default:
		return DimStyle
	}
}

// BucketIcon returns a pre-rendered marker for a bucket.
func BucketIcon(b sentiment.Bucket) string {
	switch b {
	case sentiment.Positive:
		return SuccessStyle.Render("▲")
	case sentiment.Negative:
		return ErrorStyle.Render("▼")
	case sentiment.Neutral:
		return NeutralStyle.Render("●")
	default:
		return DimStyle.Render("○")
	}
}
