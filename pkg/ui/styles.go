package ui

import "github.com/charmbracelet/lipgloss"

var (
	neonCyan    = lipgloss.Color("#00FFFF")
	neonMagenta = lipgloss.Color("#FF00FF")
	neonYellow  = lipgloss.Color("#FFFF00")
	neonOrange  = lipgloss.Color("#FF6700")
	dimWhite    = lipgloss.Color("#B0B0B0")

	headerStyle = lipgloss.NewStyle().
			Foreground(neonCyan).
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Foreground(dimWhite).
			Padding(0, 1)

	countStyle = cellStyle.
			Foreground(neonYellow).
			Align(lipgloss.Right)

	borderStyle = lipgloss.NewStyle().
			Foreground(neonMagenta)

	warningStyle = lipgloss.NewStyle().
			Foreground(neonOrange).
			Bold(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(dimWhite).
			Faint(true)
)
