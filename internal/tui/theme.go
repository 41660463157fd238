package tui

import "github.com/charmbracelet/lipgloss"

type uiTheme struct {
	root        lipgloss.Style
	header      lipgloss.Style
	panel       lipgloss.Style
	panelTitle  lipgloss.Style
	footer      lipgloss.Style
	status      lipgloss.Style
	errorStatus lipgloss.Style
	warnStatus  lipgloss.Style
	inputPanel  lipgloss.Style
	helpText    lipgloss.Style
	roomIndex   lipgloss.Style
	roomName    lipgloss.Style
	timestamp   lipgloss.Style
	sender      lipgloss.Style
	notice      lipgloss.Style
	muted       lipgloss.Style
}

func newTheme() uiTheme {
	green := lipgloss.Color("#a6e3a1")
	blue := lipgloss.Color("#89b4fa")
	red := lipgloss.Color("#f38ba8")
	yellow := lipgloss.Color("#f9e2af")
	bg := lipgloss.Color("#11111b")
	panelBg := lipgloss.Color("#1e1e2e")
	text := lipgloss.Color("#cdd6f4")
	muted := lipgloss.Color("#6c7086")

	return uiTheme{
		root: lipgloss.NewStyle().
			Background(bg).
			Foreground(text).
			Padding(0, 1),
		header: lipgloss.NewStyle().
			Background(panelBg).
			Foreground(text).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Padding(0, 1),
		panel: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Padding(0, 1),
		panelTitle: lipgloss.NewStyle().
			Foreground(green).
			Bold(true),
		footer: lipgloss.NewStyle().
			Background(panelBg).
			Foreground(muted).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1),
		status:      lipgloss.NewStyle().Foreground(blue).Bold(true),
		errorStatus: lipgloss.NewStyle().Foreground(red).Bold(true),
		warnStatus:  lipgloss.NewStyle().Foreground(yellow).Bold(true),
		inputPanel: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(green).
			Padding(0, 1),
		helpText:  lipgloss.NewStyle().Foreground(muted),
		roomIndex: lipgloss.NewStyle().Foreground(yellow).Bold(true),
		roomName:  lipgloss.NewStyle().Foreground(green).Bold(true),
		timestamp: lipgloss.NewStyle().Foreground(muted),
		sender:    lipgloss.NewStyle().Foreground(blue).Bold(true),
		notice:    lipgloss.NewStyle().Foreground(yellow),
		muted:     lipgloss.NewStyle().Foreground(muted),
	}
}
