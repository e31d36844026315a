package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title     lipgloss.Style
	tab       lipgloss.Style
	activeTab lipgloss.Style
	header    lipgloss.Style
	focused   lipgloss.Style
	cell      lipgloss.Style
	cursor    lipgloss.Style
	selected  lipgloss.Style
	detail    lipgloss.Style
	border    lipgloss.Style
	muted     lipgloss.Style
	status    lipgloss.Style
	err       lipgloss.Style
	prompt    lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		tab:       lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("8")),
		activeTab: lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4")),
		header:    lipgloss.NewStyle().Bold(true).Padding(0, 1),
		focused:   lipgloss.NewStyle().Bold(true).Padding(0, 1).Underline(true).Foreground(lipgloss.Color("14")),
		cell:      lipgloss.NewStyle().Padding(0, 1),
		cursor:    lipgloss.NewStyle().Padding(0, 1).Reverse(true),
		selected:  lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("10")),
		detail:    lipgloss.NewStyle().Padding(0, 1).Italic(true).Foreground(lipgloss.Color("8")),
		border:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		status:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		err:       lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		prompt:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	}
}
