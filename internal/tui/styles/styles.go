package styles

import (
	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
)

// Colors come from the Catppuccin Mocha palette.
var (
	flavor = catppuccin.Mocha

	Primary   = lipgloss.Color(flavor.Mauve().Hex)
	Secondary = lipgloss.Color(flavor.Green().Hex)
	Accent    = lipgloss.Color(flavor.Peach().Hex)

	Success = lipgloss.Color(flavor.Green().Hex)
	Warning = lipgloss.Color(flavor.Yellow().Hex)
	Error   = lipgloss.Color(flavor.Red().Hex)

	Border    = lipgloss.Color(flavor.Surface1().Hex)
	Text      = lipgloss.Color(flavor.Text().Hex)
	TextMuted = lipgloss.Color(flavor.Overlay1().Hex)
	TextDim   = lipgloss.Color(flavor.Overlay0().Hex)
)

// Text styles
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Text)

	Subtitle = lipgloss.NewStyle().
		Foreground(TextMuted)

	Highlight = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	Muted = lipgloss.NewStyle().
		Foreground(TextMuted)

	Dim = lipgloss.NewStyle().
		Foreground(TextDim)

	Playing = lipgloss.NewStyle().
		Foreground(Success)

	Paused = lipgloss.NewStyle().
		Foreground(Warning)

	AdBadge = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(flavor.Crust().Hex)).
		Background(Accent).
		Padding(0, 1)
)

// Border styles
var (
	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border)

	FocusedBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary)
)

// Card returns the style for a moment card. The active card gets the
// highlighted border.
func Card(active bool) lipgloss.Style {
	if active {
		return FocusedBorder.Padding(0, 1)
	}
	return BorderStyle.Padding(0, 1)
}

// StatusIcon returns an icon for playback status.
func StatusIcon(playing bool) string {
	if playing {
		return Playing.Render("▶")
	}
	return Paused.Render("⏸")
}

// MuteIcon returns an icon for the mute state.
func MuteIcon(muted bool) string {
	if muted {
		return Dim.Render("🔇")
	}
	return "🔊"
}
