// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"sync"
	"time"

	"github.com/jeranaias/frametrack/internal/ui/styles"
)

var (
	themeOnce   sync.Once
	sharedTheme *styles.Theme
)

// defaultTheme is used by components constructed without a theme.
func defaultTheme() *styles.Theme {
	themeOnce.Do(func() {
		sharedTheme = styles.NewTheme(false)
	})
	return sharedTheme
}

// formatDuration formats a duration for display
func formatDuration(d time.Duration) string {
	seconds := int(d.Seconds())

	if seconds < 1 {
		// Show milliseconds for very short durations
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}

	minutes := seconds / 60
	secs := seconds % 60

	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, secs)
	}

	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
