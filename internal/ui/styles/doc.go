// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the frametrack loader.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection.

# Color System (colors.go)

  - Purple - Titles and the frame counter
  - Cyan - Domains still loading
  - Emerald - Completed domains
  - Amber - Gated domains still pending
  - Rose - Failed loads

StatusIndicators pair every state with an ASCII shape so output stays
readable without color.

# Progress Bars (bar.go)

	bar := styles.RenderProgressBar(20, 0.5) // "##########----------"

# Theme (theme.go)

Theme detects the terminal color profile with termenv and builds every style
on its own renderer. NewTheme(true) forces the ASCII profile for --no-color.
*/
package styles
