// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatCount formats a task count with thousands separators, e.g. "12,500".
func FormatCount(n uint64) string {
	return printer.Sprintf("%d", n)
}

// FormatRatio formats a completion ratio as a whole percentage, e.g. "66%".
// The percentage is floored so only a ratio of 1 shows "100%".
func FormatRatio(ratio float64) string {
	return printer.Sprintf("%.0f%%", math.Floor(ratio*100+1e-9))
}
