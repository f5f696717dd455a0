// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package loop

import "github.com/jeranaias/frametrack/internal/progress"

// DomainStatus is one domain's settled progress at the end of a frame.
type DomainStatus struct {
	Tag      progress.Tag
	Counts   progress.Counts
	Ratio    float64
	Defined  bool
	Complete bool
	Settled  bool
	Gate     bool
}

// Frame is the read-only result of one Step.
type Frame struct {
	Number  uint64
	Domains []DomainStatus
}

// Domain returns the status of tag in this frame.
func (f Frame) Domain(tag progress.Tag) (DomainStatus, bool) {
	for _, d := range f.Domains {
		if d.Tag == tag {
			return d, true
		}
	}
	return DomainStatus{}, false
}

// Ready reports whether loading can be considered finished.
//
// With gated domains, all of them must be complete or settled. Without
// gates, every domain that saw tasks must be complete and at least one
// domain must have seen tasks or be settled.
func (f Frame) Ready() bool {
	gated := false
	for _, d := range f.Domains {
		if d.Gate {
			gated = true
			if !d.Complete && !d.Settled {
				return false
			}
		}
	}
	if gated {
		return true
	}

	seen := false
	for _, d := range f.Domains {
		if d.Settled {
			seen = true
		}
		if !d.Defined {
			continue
		}
		seen = true
		if !d.Complete {
			return false
		}
	}
	return seen
}

// Overall sums the counts of every domain in the frame.
func (f Frame) Overall() progress.Counts {
	var total progress.Counts
	for _, d := range f.Domains {
		total.Tasks += d.Counts.Tasks
		total.Done += d.Counts.Done
	}
	return total
}

// OverallRatio returns the combined ratio of all domains, clamped to 1.
// It reports false when no domain saw any tasks.
func (f Frame) OverallRatio() (float64, bool) {
	total := f.Overall()
	if total.Tasks == 0 {
		return 0, false
	}
	ratio := float64(total.Done) / float64(total.Tasks)
	if ratio > 1 {
		ratio = 1
	}
	return ratio, true
}
