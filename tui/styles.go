package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Simple Palette inspired by standard terminal dark themes
var (
	// Colors
	ColorPrimary   = lipgloss.Color("255") // White
	ColorSecondary = lipgloss.Color("240") // Dark Gray
	ColorAccent    = lipgloss.Color("39")  // Blue / Cyan
	ColorSuccess   = lipgloss.Color("42")  // Green
	ColorError     = lipgloss.Color("196") // Red
	ColorWarning   = lipgloss.Color("214") // Orange
	ColorDim       = lipgloss.Color("240") // Dimmed text
	ColorUser      = lipgloss.Color("141") // Lavender

	// Backgrounds (only used for highlighting lines or headers)
	ColorHighlightBg = lipgloss.Color("236") // Very dark gray background for active items
)

// Shared styles - minimal and clean
var (
	// Standard Text
	StyleNormal = lipgloss.NewStyle().Foreground(ColorPrimary)
	StyleDimmed = lipgloss.NewStyle().Foreground(ColorDim)
	StyleBold   = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)

	// Status & Feedback
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)

	// UI Elements
	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSecondary)

	StyleTitle  = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent).MarginBottom(1)
	StylePrompt = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)

	// Tab Bar
	StyleTabActive = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent).
			Padding(0, 1)

	StyleTabInactive = lipgloss.NewStyle().
				Foreground(ColorDim).
				Padding(0, 1)

	// Saved source (active)
	StyleListItemActive = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Bold(true)

	// Form labels
	StyleFieldLabel = lipgloss.NewStyle().
			Foreground(ColorDim).
			Width(14)

	StyleFieldLabelFocused = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Bold(true).
				Width(14)

	// Chat roles
	StyleUser = lipgloss.NewStyle().
			Foreground(ColorUser).
			Bold(true)

	StyleAssistant = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	// Chart frame
	StyleChart = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(ColorSecondary).
			PaddingLeft(1)

	// Bottom Bar
	StyleStatusBar = lipgloss.NewStyle().
			Foreground(ColorSecondary)

	// Help Keys
	StyleHelpKey = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	StyleHelpDesc = lipgloss.NewStyle().
			Foreground(ColorDim)
)

// ellipsize shortens s to n runes, marking the cut with "…".
func ellipsize(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
