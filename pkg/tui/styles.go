// Package tui is the interactive review screen. It drives a
// session.Controller from a bubbletea program: every screen reads a fresh
// controller snapshot, and every slow controller call runs as a tea.Cmd.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	Primary     = lipgloss.Color("#2196F3")
	Accent      = lipgloss.Color("#8BC34A")
	Destructive = lipgloss.Color("#e53935")
	Warning     = lipgloss.Color("#FFC107")
	Muted       = lipgloss.Color("#6b7280")
)

// Styles groups the lipgloss styles of the review screen.
type Styles struct {
	Logo    lipgloss.Style
	Title   lipgloss.Style
	Step    lipgloss.Style
	Hint    lipgloss.Style
	Error   lipgloss.Style
	Status  lipgloss.Style
	Pending lipgloss.Style
	Option  lipgloss.Style
}

// DefaultStyles returns the standard palette.
func DefaultStyles() Styles {
	return Styles{
		Logo: lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(1, 4).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Accent),
		Title:   lipgloss.NewStyle().Bold(true).Foreground(Primary),
		Step:    lipgloss.NewStyle().Bold(true).Foreground(Accent),
		Hint:    lipgloss.NewStyle().Foreground(Muted),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(Destructive),
		Status:  lipgloss.NewStyle().Foreground(Warning),
		Pending: lipgloss.NewStyle().Italic(true).Foreground(Muted),
		Option:  lipgloss.NewStyle().Foreground(Accent),
	}
}
