// Package theme holds the colors and lipgloss styles shared by the TUI.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

var (
	Primary   = lipgloss.Color("#6366F1")
	Secondary = lipgloss.Color("#14B8A6")
	Accent    = lipgloss.Color("#F59E0B")
	Success   = lipgloss.Color("#22C55E")
	Error     = lipgloss.Color("#F43F5E")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	Border    = lipgloss.Color("#334155")
)

func fg(c color.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

var (
	Label = fg(TextDim).Bold(true)
	Body  = fg(Text)
	Hint  = fg(TextDim).Italic(true)
	Muted = fg(TextDim)

	// Card frames one question; FocusedCard marks the one being edited.
	Card        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Border).Padding(0, 1)
	FocusedCard = Card.BorderForeground(Primary)

	Selected   = fg(Primary).Bold(true)
	Unselected = fg(Text)
	Correct    = fg(Success).Bold(true)
	ErrorText  = fg(Error).Bold(true)
	Notice     = fg(Secondary)
	Warning    = fg(Accent).Bold(true)
)
