// Package styles defines shared lipgloss styles for the TUI and the
// terminal widget.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	accentColor  = lipgloss.Color("#5FAFAF") // Teal accent
	mutedColor   = lipgloss.Color("#666666") // Gray for secondary text
	dimColor     = lipgloss.Color("#4E4E4E")
	successColor = lipgloss.Color("#87AF87") // Muted sage for success
	warningColor = lipgloss.Color("#D7AF5F") // Amber for in progress
	errorColor   = lipgloss.Color("#AF5F5F") // Muted terracotta for errors

	// TitleStyle for headers
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			MarginBottom(1)

	// ToolTitleStyle for the tool name in call renderings
	ToolTitleStyle = lipgloss.NewStyle().
			Bold(true)

	// AccentStyle for task indices and other highlights
	AccentStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	// MutedStyle for secondary details such as task counts
	MutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	// DimStyle for pending tasks
	DimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	// StatusBarStyle for bottom status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	// BoxStyle for panel borders
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	// SuccessStyle for completed tasks and success messages
	SuccessStyle = lipgloss.NewStyle().
			Foreground(successColor)

	// WarningStyle for tasks in progress
	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	// ErrorStyle for error messages
	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor)
)
