// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/frametrack/internal/loop"
	"github.com/jeranaias/frametrack/internal/ui/styles"
	"github.com/jeranaias/frametrack/internal/util"
)

// =============================================================================
// DOMAIN BAR COMPONENT
// =============================================================================

const (
	labelWidth   = 14
	minBarWidth  = 10
	defaultWidth = 80
)

// DomainBar renders one domain's settled progress for a frame.
//
//	[..] shaders        ##########----------  50%  21/42
//	[  ] network        waiting
//	[OK] textures       nothing to load
type DomainBar struct {
	Status  loop.DomainStatus
	Width   int
	Compact bool
	Theme   *styles.Theme
}

// Render renders the domain bar.
func (b DomainBar) Render() string {
	if b.Compact {
		return b.renderCompact()
	}
	return b.renderFull()
}

func (b DomainBar) renderFull() string {
	t := b.theme()
	width := b.Width
	if width <= 0 {
		width = defaultWidth
	}

	icon := b.indicator()
	label := util.PadWidth(util.TruncateWidth(string(b.Status.Tag), labelWidth), labelWidth)
	prefix := icon + " " + t.Label.Render(label) + " "

	if b.Status.Settled {
		return prefix + t.Waiting.Render("nothing to load")
	}
	if !b.Status.Defined {
		return prefix + t.Waiting.Render("waiting")
	}

	counts := fmt.Sprintf("%s/%s",
		util.FormatCount(b.Status.Counts.Done),
		util.FormatCount(b.Status.Counts.Tasks))
	percent := fmt.Sprintf("%4s", util.FormatRatio(b.Status.Ratio))

	// icon + label + spaces + percent + counts
	barWidth := width - util.StringWidth(icon) - labelWidth - 6 - len(percent) - util.StringWidth(counts)
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}

	filled, empty := styles.SplitProgressBar(barWidth, b.Status.Ratio)
	bar := b.barStyle().Render(filled) + t.BarEmpty.Render(empty)

	return prefix + bar + " " + percent + "  " + t.Count.Render(counts)
}

// renderCompact renders a single short segment: "shaders 50%".
func (b DomainBar) renderCompact() string {
	t := b.theme()
	label := util.TruncateWidth(string(b.Status.Tag), labelWidth)
	if b.Status.Settled {
		return t.Label.Render(label) + " " + t.Waiting.Render("empty")
	}
	if !b.Status.Defined {
		return t.Label.Render(label) + " " + t.Waiting.Render("--")
	}
	return t.Label.Render(label) + " " + b.barStyle().Render(util.FormatRatio(b.Status.Ratio))
}

func (b DomainBar) indicator() string {
	switch {
	case b.Status.Settled:
		return b.theme().Success.Render(styles.StatusIndicators.Done)
	case !b.Status.Defined:
		return styles.StatusIndicators.Waiting
	case b.Status.Complete:
		return b.theme().Success.Render(styles.StatusIndicators.Done)
	default:
		return styles.StatusIndicators.Loading
	}
}

func (b DomainBar) barStyle() lipgloss.Style {
	t := b.theme()
	switch {
	case b.Status.Complete:
		return t.BarDone
	case b.Status.Gate:
		return t.BarGated
	default:
		return t.BarPending
	}
}

func (b DomainBar) theme() *styles.Theme {
	if b.Theme != nil {
		return b.Theme
	}
	return defaultTheme()
}

// =============================================================================
// FRAME SUMMARY
// =============================================================================

// FrameView renders every domain of a frame plus an overall line.
type FrameView struct {
	Frame   loop.Frame
	Width   int
	Compact bool
	Theme   *styles.Theme
}

// Render renders all domain bars, one per line, or a single joined line in
// compact mode.
func (v FrameView) Render() string {
	t := v.Theme
	if t == nil {
		t = defaultTheme()
	}

	if len(v.Frame.Domains) == 0 {
		return t.Waiting.Render("no domains registered")
	}

	parts := make([]string, 0, len(v.Frame.Domains)+1)
	for _, d := range v.Frame.Domains {
		parts = append(parts, DomainBar{Status: d, Width: v.Width, Compact: v.Compact, Theme: t}.Render())
	}

	if v.Compact {
		return strings.Join(parts, t.Help.Render(" | "))
	}

	parts = append(parts, "", v.renderOverall(t))
	return strings.Join(parts, "\n")
}

// Summary returns the one-line overall status, e.g. "frame 12  63/100 (63%)".
func (v FrameView) Summary() string {
	t := v.Theme
	if t == nil {
		t = defaultTheme()
	}
	return v.renderOverall(t)
}

func (v FrameView) renderOverall(t *styles.Theme) string {
	frame := t.Frame.Render(fmt.Sprintf("frame %d", v.Frame.Number))
	ratio, ok := v.Frame.OverallRatio()
	if !ok {
		if v.Frame.Ready() {
			return frame + "  " + t.Success.Render(styles.StatusIndicators.Done+" nothing to load")
		}
		return frame + "  " + t.Waiting.Render("waiting for tasks")
	}

	total := v.Frame.Overall()
	overall := fmt.Sprintf("%s/%s (%s)",
		util.FormatCount(total.Done),
		util.FormatCount(total.Tasks),
		util.FormatRatio(ratio))
	if v.Frame.Ready() {
		return frame + "  " + t.Success.Render(styles.StatusIndicators.Done+" "+overall)
	}
	return frame + "  " + t.Count.Render(overall)
}
