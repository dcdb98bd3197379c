package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary   = lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#2DD4BF"}
	colorMuted     = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#7C8595"}
	colorSuccess   = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"}
	colorWarning   = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}
	colorError     = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	colorFg        = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#E5E7EB"}
	colorSubtle    = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#374151"}
	colorHighlight = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#93C5FD"}
)

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.ThickBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 1)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)

	panel            = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2)
	panelStyle       = panel.BorderForeground(colorSubtle)
	activePanelStyle = panel.BorderForeground(colorPrimary)
	deniedPanelStyle = panel.BorderForeground(colorError).Align(lipgloss.Center)

	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorFg)
	successStyle   = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle   = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle     = lipgloss.NewStyle().Foreground(colorError)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	highlightStyle = lipgloss.NewStyle().Foreground(colorHighlight)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = mutedStyle.Padding(0, 1)

	selectedItemStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	normalItemStyle   = lipgloss.NewStyle().Foreground(colorFg)
)

// taskTableStyles underlines the header and marks the cursor row.
func taskTableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorSubtle).
		BorderBottom(true).
		Bold(true).
		Foreground(colorFg)
	s.Selected = s.Selected.
		Foreground(colorPrimary).
		Bold(true)
	return s
}
