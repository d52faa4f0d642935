// Package ui renders terminal output for the summarize command.
package ui

import "github.com/charmbracelet/lipgloss"

// ANSI palette indexes so output follows the user's terminal theme.
var (
	ColorYellow = lipgloss.Color("3")
	ColorGreen  = lipgloss.Color("2")
	ColorCyan   = lipgloss.Color("6")
	ColorRed    = lipgloss.Color("1")
	ColorMuted  = lipgloss.Color("8")
)

// styles holds the styles bound to one renderer.
type styles struct {
	progress lipgloss.Style
	header   lipgloss.Style
	summary  lipgloss.Style
	note     lipgloss.Style
	err      lipgloss.Style
	key      lipgloss.Style
	desc     lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		progress: r.NewStyle().Foreground(ColorYellow),
		header:   r.NewStyle().Foreground(ColorGreen).Bold(true),
		summary:  r.NewStyle().Foreground(ColorCyan),
		note:     r.NewStyle().Foreground(ColorMuted).Italic(true),
		err:      r.NewStyle().Foreground(ColorRed).Bold(true),
		key:      r.NewStyle().Foreground(ColorGreen).Bold(true),
		desc:     r.NewStyle().Foreground(ColorMuted),
	}
}
