package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	Title   lipgloss.Style
	Meta    lipgloss.Style
	User    lipgloss.Style
	Niki    lipgloss.Style
	Error   lipgloss.Style
	Pending lipgloss.Style
	Action  lipgloss.Style
	Tag     lipgloss.Style
	Notice  lipgloss.Style
	Empty   lipgloss.Style
	Picker  lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5")),
		Meta:    lipgloss.NewStyle().Faint(true),
		User:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4")),
		Niki:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Pending: lipgloss.NewStyle().Italic(true).Faint(true),
		Action:  lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Tag:     lipgloss.NewStyle().Padding(0, 1).Background(lipgloss.Color("8")),
		Notice:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Empty:   lipgloss.NewStyle().Faint(true),
		Picker:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}
