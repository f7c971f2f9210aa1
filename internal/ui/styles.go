package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains reusable lipgloss styles for analysis and conflict tables.
var Styles = struct {
	Title     lipgloss.Style
	Section   lipgloss.Style
	TableHead lipgloss.Style
	CellDim   lipgloss.Style
	Conflict  lipgloss.Style
}{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("6")),
	Section: lipgloss.NewStyle().
		Bold(true).
		MarginTop(1),
	TableHead: lipgloss.NewStyle().
		Bold(true).
		Underline(true),
	CellDim: lipgloss.NewStyle().
		Faint(true),
	Conflict: lipgloss.NewStyle().
		Foreground(lipgloss.Color("3")),
}

// RenderTitle renders a section title.
func RenderTitle(s string) string {
	return Styles.Title.Render(s)
}
