// Package presentation renders registries, diffs, cut tables and build
// history for the terminal.
package presentation

import "github.com/charmbracelet/lipgloss"

var (
	keyColor     = lipgloss.AdaptiveColor{Light: "#1F6FEB", Dark: "#58A6FF"}
	numberColor  = lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#D29922"}
	branchColor  = lipgloss.AdaptiveColor{Light: "#8C959F", Dark: "#6E7681"}
	addedColor   = lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#3FB950"}
	deletedColor = lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#F85149"}

	keyStyle     = lipgloss.NewStyle().Foreground(keyColor).Bold(true)
	valueStyle   = lipgloss.NewStyle()
	numberStyle  = lipgloss.NewStyle().Foreground(numberColor)
	branchStyle  = lipgloss.NewStyle().Foreground(branchColor)
	addedStyle   = lipgloss.NewStyle().Foreground(addedColor)
	deletedStyle = lipgloss.NewStyle().Foreground(deletedColor)
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

// paint applies s unless plain output was requested.
func paint(plain bool, s lipgloss.Style, text string) string {
	if plain {
		return text
	}
	return s.Render(text)
}
