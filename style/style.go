// Package style provides small helpers for composing lipgloss-based CLI output.
package style

import "github.com/charmbracelet/lipgloss"

// New returns an empty lipgloss.Style used as a foundation for composition.
func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

// Fg returns a stateless rendering function that applies the specified foreground color.
func Fg(c lipgloss.Color) func(string) string {
	return func(s string) string { return New().Foreground(c).Render(s) }
}

// Common text transformation helpers.
var (
	Faint = func(s string) string { return New().Faint(true).Render(s) }
	Bold  = func(s string) string { return New().Bold(true).Render(s) }
)
