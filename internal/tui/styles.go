// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package tui holds the interactive terminal views: a verdict log browser
// and a feedback labelling form.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorIce   = lipgloss.Color("159")
	ColorDeep  = lipgloss.Color("25")
	ColorAlert = lipgloss.Color("203")
	ColorMuted = lipgloss.Color("243")

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorIce).
			Background(ColorDeep).
			Padding(0, 1)
	StyleSubtitle = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleAlert    = lipgloss.NewStyle().Foreground(ColorAlert).Bold(true)
	StyleCard     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorDeep)
)
