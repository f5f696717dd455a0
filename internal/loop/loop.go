// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package loop is the host update loop that owns progress ledgers and
// drives them once per frame.
package loop

import (
	"context"
	"log/slog"
	"time"

	"github.com/jeranaias/frametrack/internal/progress"
)

// =============================================================================
// REPORTERS
// =============================================================================

// Reporter registers the work it knows about into the registry. It is
// called once per frame from the loop goroutine.
type Reporter interface {
	Report(reg *progress.Registry)
}

// ReporterFunc adapts a function to a Reporter.
type ReporterFunc func(reg *progress.Registry)

// Report calls f(reg).
func (f ReporterFunc) Report(reg *progress.Registry) { f(reg) }

// =============================================================================
// DOMAINS
// =============================================================================

// Domain declares a progress domain known at startup.
type Domain struct {
	Tag progress.Tag

	// Gate marks the domain as required for the loop to be Ready
	Gate bool

	// Persisted baseline applied at startup and after Reset
	PersistTasks     uint64
	PersistDone      uint64
	PersistDoneTasks uint64

	// Settled reports that the domain has no tasks and none will arrive.
	// A settled domain does not hold back Ready. Nil means never settled.
	Settled func() bool
}

func (d Domain) apply(l *progress.Ledger) {
	if d.PersistTasks > 0 {
		l.PersistTasks(d.PersistTasks)
	}
	if d.PersistDone > 0 {
		l.PersistDone(d.PersistDone)
	}
	if d.PersistDoneTasks > 0 {
		l.PersistDoneTasks(d.PersistDoneTasks)
	}
}

// Options configures a Loop.
type Options struct {
	Domains []Domain
	Logger  *slog.Logger
}

// =============================================================================
// LOOP
// =============================================================================

// Loop owns a progress.Registry and advances it one frame at a time.
// A Loop is not safe for concurrent use; Step must be called from one goroutine.
type Loop struct {
	reg       *progress.Registry
	domains   []Domain
	gates     map[progress.Tag]bool
	reporters []Reporter
	resets    []func()
	logger    *slog.Logger

	frame    uint64
	complete map[progress.Tag]bool
	last     Frame
}

// New creates a loop with one ledger per configured domain.
func New(opts Options) *Loop {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	l := &Loop{
		reg:      progress.NewRegistry(),
		domains:  opts.Domains,
		gates:    make(map[progress.Tag]bool),
		logger:   opts.Logger,
		complete: make(map[progress.Tag]bool),
	}
	for _, d := range opts.Domains {
		if d.Gate {
			l.gates[d.Tag] = true
		}
	}
	l.applyDomains()
	return l
}

func (l *Loop) applyDomains() {
	for _, d := range l.domains {
		d.apply(l.reg.Ledger(d.Tag))
	}
}

// AddReporter adds a source of per-frame registrations.
func (l *Loop) AddReporter(r Reporter) {
	l.reporters = append(l.reporters, r)
}

// OnReset adds a hook run by Reset before the ledgers are cleared.
func (l *Loop) OnReset(fn func()) {
	l.resets = append(l.resets, fn)
}

// Registry returns the ledgers owned by the loop.
func (l *Loop) Registry() *progress.Registry {
	return l.reg
}

// Last returns the most recent frame, or the zero Frame before the first Step.
func (l *Loop) Last() Frame {
	return l.last
}

// Step runs one frame: every reporter registers its work, then every
// ledger finishes its cycle exactly once.
func (l *Loop) Step() Frame {
	for _, r := range l.reporters {
		r.Report(l.reg)
	}
	l.reg.FinishCycle()
	l.frame++

	f := l.snapshot()
	l.logTransitions(f)
	l.last = f
	return f
}

// Reset runs the reset hooks, fully clears every ledger and re-applies the
// configured baselines.
func (l *Loop) Reset() {
	for _, fn := range l.resets {
		fn()
	}
	l.reg.Clear()
	l.applyDomains()
	l.complete = make(map[progress.Tag]bool)
	l.logger.Info("progress reset", "frame", l.frame)
}

// Run steps the loop every interval until ctx is done or onFrame returns false.
func (l *Loop) Run(ctx context.Context, interval time.Duration, onFrame func(Frame) bool) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !onFrame(l.Step()) {
				return nil
			}
		}
	}
}

func (l *Loop) snapshot() Frame {
	settled := make(map[progress.Tag]func() bool)
	for _, d := range l.domains {
		if d.Settled != nil {
			settled[d.Tag] = d.Settled
		}
	}

	tags := l.reg.Tags()
	f := Frame{
		Number:  l.frame,
		Domains: make([]DomainStatus, 0, len(tags)),
	}
	for _, tag := range tags {
		ledger := l.reg.Ledger(tag)
		ratio, ok := ledger.Ratio()
		fn := settled[tag]
		f.Domains = append(f.Domains, DomainStatus{
			Tag:      tag,
			Counts:   ledger.Previous(),
			Ratio:    ratio,
			Defined:  ok,
			Complete: ledger.Complete(),
			Settled:  !ok && fn != nil && fn(),
			Gate:     l.gates[tag],
		})
	}
	return f
}

func (l *Loop) logTransitions(f Frame) {
	for _, d := range f.Domains {
		was := l.complete[d.Tag]
		if d.Complete && !was {
			l.logger.Info("domain complete", "domain", d.Tag, "frame", f.Number, "tasks", d.Counts.Tasks)
		} else if !d.Complete && was {
			l.logger.Info("domain regressed", "domain", d.Tag, "frame", f.Number, "progress", d.Counts.String())
		}
		l.complete[d.Tag] = d.Complete
	}
}
