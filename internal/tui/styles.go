package tui

import "github.com/charmbracelet/lipgloss"

var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))
)

// Banner renders a section heading for the terminal menu.
func Banner(s string) string { return bannerStyle.Render(s) }

// Success renders a confirmation message.
func Success(s string) string { return successStyle.Render(s) }

// Warning renders an error or rejection message.
func Warning(s string) string { return warningStyle.Render(s) }
