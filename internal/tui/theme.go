package tui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha, the subset the shell and dialogs use.
// https://catppuccin.com/palette
const (
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorLavender lipgloss.Color = "#b4befe"
	colorPink     lipgloss.Color = "#f5c2e7"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface2 lipgloss.Color = "#585b70"
	colorSurface1 lipgloss.Color = "#45475a"
	colorSurface0 lipgloss.Color = "#313244"
	colorMantle   lipgloss.Color = "#181825"
)

const (
	colorAccent  = colorPink
	colorFocus   = colorLavender
	colorSuccess = colorGreen
	colorError   = colorRed
	colorInfo    = colorTeal
	colorMuted   = colorOverlay1
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	headerStyle  = lipgloss.NewStyle().Background(colorMantle).Foreground(colorText)
	labelStyle   = lipgloss.NewStyle().Foreground(colorSubtext0)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)

	activeTabStyle   = lipgloss.NewStyle().Background(colorSurface0).Foreground(colorAccent).Bold(true).Padding(0, 1)
	inactiveTabStyle = lipgloss.NewStyle().Background(colorMantle).Foreground(colorMuted).Padding(0, 1)

	tableHeaderStyle = lipgloss.NewStyle().Foreground(colorFocus).Bold(true)
	cursorRowStyle   = lipgloss.NewStyle().Background(colorSurface0)
	selectedRowStyle = lipgloss.NewStyle().Background(colorSurface2).Bold(true)

	buttonStyle         = lipgloss.NewStyle().Foreground(colorMantle).Background(colorFocus).Padding(0, 1)
	buttonDisabledStyle = lipgloss.NewStyle().Foreground(colorOverlay1).Background(colorSurface1).Padding(0, 1)
	buttonOutlineStyle  = lipgloss.NewStyle().Foreground(colorSubtext0).Border(lipgloss.NormalBorder(), false, true).BorderForeground(colorSurface2).Padding(0, 1)

	statusStyle    = lipgloss.NewStyle().Foreground(colorSuccess).Background(colorSurface0)
	statusErrStyle = lipgloss.NewStyle().Foreground(colorError).Background(colorSurface0)
	keyStyle       = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	bannerStyle    = lipgloss.NewStyle().Foreground(colorPeach).Border(lipgloss.RoundedBorder()).BorderForeground(colorSurface2).Padding(0, 1)
)
