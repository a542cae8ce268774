package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	gruvboxBg1    = lipgloss.Color("#3c3836")
	gruvboxBg2    = lipgloss.Color("#504945")
	gruvboxFg1    = lipgloss.Color("#ebdbb2")
	gruvboxFg2    = lipgloss.Color("#d5c4a1")
	gruvboxRed    = lipgloss.Color("#fb4934")
	gruvboxGreen  = lipgloss.Color("#b8bb26")
	gruvboxYellow = lipgloss.Color("#fabd2f")
	gruvboxBlue   = lipgloss.Color("#83a598")
	gruvboxAqua   = lipgloss.Color("#8ec07c")
	gruvboxOrange = lipgloss.Color("#fe8019")
)

// Styles
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(gruvboxYellow).
			Background(gruvboxBg1).
			Padding(0, 2)

	taskItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	selectedTaskStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(gruvboxYellow).
				Padding(0, 1)

	detailPaneStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(gruvboxBg2).
			Padding(0, 1)

	detailLabelStyle = lipgloss.NewStyle().
				Foreground(gruvboxFg2).
				Width(12)

	statusStyleDownloading = lipgloss.NewStyle().Foreground(gruvboxGreen).Bold(true)
	statusStyleWaiting     = lipgloss.NewStyle().Foreground(gruvboxYellow).Bold(true)
	statusStylePaused      = lipgloss.NewStyle().Foreground(gruvboxOrange).Bold(true)
	statusStyleStopped     = lipgloss.NewStyle().Foreground(gruvboxFg2).Bold(true)
	statusStyleCompleted   = lipgloss.NewStyle().Foreground(gruvboxBlue).Bold(true)
	statusStyleError       = lipgloss.NewStyle().Foreground(gruvboxRed).Bold(true)

	formLabelStyle = lipgloss.NewStyle().
			Foreground(gruvboxFg1).
			MarginRight(1)

	messageStyle = lipgloss.NewStyle().
			Foreground(gruvboxAqua).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(gruvboxRed).
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(gruvboxFg2).
			Faint(true)
)
