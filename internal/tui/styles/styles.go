// Package styles holds the lipgloss palette shared by the console renderer
// and the live view.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/sixhats/internal/hat"
)

var (
	// Colors - all colors meet WCAG AA contrast (4.5:1) on both black and dark surfaces
	PrimaryColor = lipgloss.Color("#A78BFA") // Purple
	SuccessColor = lipgloss.Color("#10B981") // Green
	WarningColor = lipgloss.Color("#F59E0B") // Amber
	ErrorColor   = lipgloss.Color("#F87171") // Red
	MutedColor   = lipgloss.Color("#9CA3AF") // Gray
	BorderColor  = lipgloss.Color("#6B7280") // Gray

	Primary = lipgloss.NewStyle().Foreground(PrimaryColor)
	Success = lipgloss.NewStyle().Foreground(SuccessColor)
	Warning = lipgloss.NewStyle().Foreground(WarningColor)
	Error   = lipgloss.NewStyle().Foreground(ErrorColor)
	Muted   = lipgloss.NewStyle().Foreground(MutedColor)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor)

	Subtitle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	// Header panel shown once per session
	HeaderBox = lipgloss.NewStyle().
			Bold(true).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(PrimaryColor).
			Padding(0, 2)

	// Message panel; the border color is set per hat
	MessageBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	ErrorBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ErrorColor).
			Foreground(ErrorColor).
			Padding(0, 1)

	HelpBar = lipgloss.NewStyle().
		Foreground(MutedColor).
		MarginTop(1)
)

// hatColors are the display colors of each hat. Black and white swap to gray
// tones where the pure color would vanish into the terminal background.
var hatColors = map[hat.ID]lipgloss.TerminalColor{
	hat.Blue:   lipgloss.Color("#60A5FA"),
	hat.White:  lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#FFFFFF"},
	hat.Red:    lipgloss.Color("#F87171"),
	hat.Black:  lipgloss.AdaptiveColor{Light: "#000000", Dark: "#9CA3AF"},
	hat.Yellow: lipgloss.Color("#FBBF24"),
	hat.Green:  lipgloss.Color("#10B981"),
}

// HatColor returns the display color for a hat
func HatColor(id hat.ID) lipgloss.TerminalColor {
	if c, ok := hatColors[id]; ok {
		return c
	}
	return MutedColor
}

// HatStyle returns a bold foreground style in the hat's color
func HatStyle(id hat.ID) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(HatColor(id))
}

// Turn states shown in the live view
const (
	TurnPending  = "pending"
	TurnThinking = "thinking"
	TurnDone     = "done"
	TurnFailed   = "failed"
)

// TurnColor returns a color for a turn state
func TurnColor(state string) lipgloss.Color {
	switch state {
	case TurnThinking:
		return WarningColor
	case TurnDone:
		return SuccessColor
	case TurnFailed:
		return ErrorColor
	default:
		return MutedColor
	}
}

// TurnIcon returns an icon for a turn state
func TurnIcon(state string) string {
	switch state {
	case TurnPending:
		return "○"
	case TurnThinking:
		return "●"
	case TurnDone:
		return "✓"
	case TurnFailed:
		return "✗"
	default:
		return "●"
	}
}
