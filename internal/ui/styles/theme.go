// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the loader screen.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Frame    lipgloss.Style

	Label      lipgloss.Style
	Count      lipgloss.Style
	BarDone    lipgloss.Style
	BarPending lipgloss.Style
	BarGated   lipgloss.Style
	BarEmpty   lipgloss.Style
	Waiting    lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
	Help    lipgloss.Style
	Box     lipgloss.Style
}

// NewTheme creates a new theme with all styles configured. With noColor set
// the profile is forced to ASCII and every style renders as plain text.
func NewTheme(noColor bool) *Theme {
	colorProfile := termenv.ColorProfile()
	if noColor {
		colorProfile = termenv.Ascii
	}

	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}

	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	r := lipgloss.NewRenderer(os.Stdout)
	r.SetColorProfile(t.ColorProfile)
	r.SetHasDarkBackground(t.IsDark)

	t.Title = r.NewStyle().Bold(true).Foreground(Purple)
	t.Subtitle = r.NewStyle().Foreground(TextSecondary).Italic(true)
	t.Frame = r.NewStyle().Foreground(TextMuted)

	t.Label = r.NewStyle().Foreground(TextPrimary)
	t.Count = r.NewStyle().Foreground(TextSecondary)
	t.BarDone = r.NewStyle().Foreground(Emerald)
	t.BarPending = r.NewStyle().Foreground(Cyan)
	t.BarGated = r.NewStyle().Foreground(Amber)
	t.BarEmpty = r.NewStyle().Foreground(Overlay)
	t.Waiting = r.NewStyle().Foreground(TextMuted).Italic(true)

	t.Success = r.NewStyle().Foreground(Emerald).Bold(true)
	t.Error = r.NewStyle().Foreground(Rose).Bold(true)
	t.Help = r.NewStyle().Foreground(TextMuted)
	t.Box = r.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 1)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width > 0 && t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns, or unknown
	LayoutWide                     // > 100 columns
)
