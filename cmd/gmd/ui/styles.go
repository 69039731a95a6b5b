// Package ui renders the interactive progress display and the result tables
// for the gmd command.
package ui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles the components share.
type Styles struct {
	Title   lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Bar     lipgloss.Style
}

// DefaultStyles returns the standard terminal palette.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		Bold:    lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Bar:     lipgloss.NewStyle().Padding(0, 1),
	}
}
