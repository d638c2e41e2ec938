package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Faint(true)
	accentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	markedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	buttonStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
	focusedButtonStyle = buttonStyle.
				BorderForeground(lipgloss.Color("12")).
				Bold(true)
)

func button(text string, focused bool) string {
	if focused {
		return focusedButtonStyle.Render(text)
	}
	return buttonStyle.Render(text)
}
