package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Primary   = lipgloss.Color("#f57c00")
	Focus     = lipgloss.Color("#FF6B6B")
	Break     = lipgloss.Color("#95E1A3")
	LongBreak = lipgloss.Color("#4ECDC4")
	Text      = lipgloss.Color("#FFFFFF")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
	Surface   = lipgloss.Color("#16213e")
)

// Styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	TimerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(1, 4).
			Align(lipgloss.Center)

	AgendaStyle = lipgloss.NewStyle().
			Padding(1, 2)

	EventItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	EventSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(Surface).
				Bold(true)

	AllDayStyle = lipgloss.NewStyle().
			Foreground(LongBreak).
			Bold(true)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)

// ModeStyle returns the accent style for a pomodoro mode
func ModeStyle(mode string) lipgloss.Style {
	switch mode {
	case "focus":
		return lipgloss.NewStyle().Foreground(Focus).Bold(true)
	case "break":
		return lipgloss.NewStyle().Foreground(Break).Bold(true)
	case "longBreak":
		return lipgloss.NewStyle().Foreground(LongBreak).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(TextMuted)
	}
}
