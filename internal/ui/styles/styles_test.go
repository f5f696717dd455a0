// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"

	"github.com/muesli/termenv"
)

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		ratio    float64
		expected string
	}{
		{"empty", 10, 0, "----------"},
		{"half", 10, 0.5, "#####-----"},
		{"full", 10, 1, "##########"},
		{"over", 4, 1.5, "####"},
		{"negative", 4, -1, "----"},
		{"zero width", 0, 0.5, ""},
		{"partial", 4, 0.4, "#:--"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderProgressBar(tt.width, tt.ratio)
			if got != tt.expected {
				t.Errorf("RenderProgressBar(%d, %v) = %q, want %q", tt.width, tt.ratio, got, tt.expected)
			}
		})
	}
}

func TestRenderProgressBarWidthIsStable(t *testing.T) {
	for i := 0; i <= 100; i++ {
		bar := RenderProgressBar(17, float64(i)/100)
		if len(bar) != 17 {
			t.Fatalf("ratio %d%%: bar %q has length %d", i, bar, len(bar))
		}
	}
}

func TestSplitProgressBar(t *testing.T) {
	filled, empty := SplitProgressBar(6, 0.5)
	if filled != "###" || empty != "---" {
		t.Errorf("SplitProgressBar = %q %q", filled, empty)
	}

	filled, empty = SplitProgressBar(3, 1)
	if filled != "###" || empty != "" {
		t.Errorf("SplitProgressBar full = %q %q", filled, empty)
	}
}

func TestNewThemeNoColor(t *testing.T) {
	theme := NewTheme(true)
	if theme.ColorProfile != termenv.Ascii {
		t.Fatalf("expected ASCII profile, got %v", theme.ColorProfile)
	}
	out := theme.BarDone.Render("###")
	if strings.Contains(out, "\x1b[") {
		t.Errorf("no-color theme emitted escape codes: %q", out)
	}
}

func TestLayoutMode(t *testing.T) {
	theme := NewTheme(true)
	cases := map[int]LayoutMode{0: LayoutMedium, 40: LayoutNarrow, 80: LayoutMedium, 120: LayoutWide}
	for width, want := range cases {
		theme.SetSize(width, 24)
		if got := theme.GetLayoutMode(); got != want {
			t.Errorf("width %d: got %v, want %v", width, got, want)
		}
	}
}
