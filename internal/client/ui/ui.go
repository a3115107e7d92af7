// Package ui provides TUI components for the Preventis CLI using Bubble Tea
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles for the UI components
var (
	// Colors
	primaryColor   = lipgloss.Color("#FF6B35") // Preventis orange
	secondaryColor = lipgloss.Color("#888888")
	warningColor   = lipgloss.Color("#FFAA00")
	errorColor     = lipgloss.Color("#FF5555")
	successColor   = lipgloss.Color("#00CC66")

	// Styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	UnselectedStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	CursorStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Italic(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(successColor)

	TabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(secondaryColor)

	ActiveTabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Bold(true).
			Foreground(primaryColor).
			Underline(true)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(secondaryColor).
			Padding(0, 1)
)

// StatusStyle picks a style for a sensor or alert status string.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case "online", "normal", "ok":
		return SuccessStyle
	case "warning", "medium":
		return WarningStyle
	case "alert", "critical", "high", "offline", "triggered":
		return ErrorStyle
	default:
		return UnselectedStyle
	}
}
