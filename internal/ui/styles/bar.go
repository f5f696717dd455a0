// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "strings"

// Progress bar characters.
var (
	ProgressFull    = "#"
	ProgressEmpty   = "-"
	ProgressPartial = []string{".", ":", "+"}
)

// RenderProgressBar creates a progress bar string.
// width: total width of the bar in characters
// ratio: 0-1 fraction complete, clamped
func RenderProgressBar(width int, ratio float64) string {
	if width <= 0 {
		return ""
	}
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}

	filled := float64(width) * ratio
	fullBlocks := int(filled)
	partialIndex := int((filled - float64(fullBlocks)) * float64(len(ProgressPartial)+1))

	var sb strings.Builder
	sb.Grow(width)

	for i := 0; i < fullBlocks && i < width; i++ {
		sb.WriteString(ProgressFull)
	}

	if fullBlocks < width && partialIndex > 0 {
		sb.WriteString(ProgressPartial[partialIndex-1])
		fullBlocks++
	}

	for i := fullBlocks; i < width; i++ {
		sb.WriteString(ProgressEmpty)
	}

	return sb.String()
}

// SplitProgressBar renders the bar and splits it at the last filled cell so
// callers can color the two halves separately.
func SplitProgressBar(width int, ratio float64) (filled, empty string) {
	bar := RenderProgressBar(width, ratio)
	idx := strings.Index(bar, ProgressEmpty)
	if idx < 0 {
		return bar, ""
	}
	return bar[:idx], bar[idx:]
}
