// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/frametrack/internal/progress"
	"github.com/jeranaias/frametrack/internal/ui/loader"
	"github.com/jeranaias/frametrack/internal/util"
)

// summaryMarkdown describes a finished run as a markdown table.
func summaryMarkdown(res loader.Result, failures map[progress.Tag]int, elapsed time.Duration) string {
	var b strings.Builder

	b.WriteString("# frametrack run\n\n")
	fmt.Fprintf(&b, "Stopped **%s** after %s frames (%s).\n\n",
		res.Reason, util.FormatCount(res.Frame.Number), elapsed.Round(time.Millisecond))

	if len(res.Frame.Domains) == 0 {
		b.WriteString("No domains were registered.\n")
		return b.String()
	}

	b.WriteString("| Domain | Done | Tasks | Progress | Failed |\n")
	b.WriteString("|---|---:|---:|---:|---:|\n")
	for _, d := range res.Frame.Domains {
		ratio := "waiting"
		switch {
		case d.Defined:
			ratio = util.FormatRatio(d.Ratio)
		case d.Settled:
			ratio = "empty"
		}
		name := string(d.Tag)
		if d.Gate {
			name += " (gate)"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %d |\n",
			name,
			util.FormatCount(d.Counts.Done),
			util.FormatCount(d.Counts.Tasks),
			ratio,
			failures[d.Tag])
	}

	if ratio, ok := res.Frame.OverallRatio(); ok {
		total := res.Frame.Overall()
		fmt.Fprintf(&b, "\nOverall: %s of %s tasks (%s).\n",
			util.FormatCount(total.Done), util.FormatCount(total.Tasks), util.FormatRatio(ratio))
	}
	return b.String()
}

// printSummary renders md with glamour on a terminal and writes it raw
// everywhere else.
func printSummary(w io.Writer, md string, tty, noColor bool, width int) error {
	if !tty {
		_, err := io.WriteString(w, md)
		return err
	}

	style := glamour.WithAutoStyle()
	if noColor {
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		// Fallback to plain text if renderer initialization fails
		_, err = io.WriteString(w, md)
		return err
	}

	out, err := r.Render(md)
	if err != nil {
		_, err = io.WriteString(w, md)
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
