package cli

import "github.com/charmbracelet/lipgloss"

var (
	refStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00CFCF"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
)

// Primary highlights a reference name, such as the one HEAD is attached to.
// Styling is dropped when the output is not a terminal.
func Primary(text string) string { return refStyle.Render(text) }

// Error styles a failure message for stderr.
func Error(text string) string { return errorStyle.Render(text) }
