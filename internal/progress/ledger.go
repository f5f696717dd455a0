// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package progress

import "fmt"

// =============================================================================
// COUNTS
// =============================================================================

// Counts is a pair of task totals. Done should never exceed Tasks once a
// cycle has settled.
type Counts struct {
	Tasks uint64
	Done  uint64
}

// Add accumulates tasks and done into c.
func (c *Counts) Add(tasks, done uint64) {
	c.Tasks += tasks
	c.Done += done

	assertf(c.Tasks >= c.Done,
		"adding %d tasks and %d done tasks led to more done tasks than there are tasks (%d/%d)",
		tasks, done, c.Done, c.Tasks)
}

// Mark accumulates a single task in the given state.
func (c *Counts) Mark(state Task) {
	if state == Done {
		c.Add(1, 1)
	} else {
		c.Add(1, 0)
	}
}

// IsZero reports whether no tasks and no done tasks are recorded.
func (c Counts) IsZero() bool {
	return c.Tasks == 0 && c.Done == 0
}

func (c Counts) String() string {
	return fmt.Sprintf("%d/%d", c.Done, c.Tasks)
}

// =============================================================================
// TASK STATE
// =============================================================================

// Task is the state of a single registered task.
type Task int

const (
	// InProgress registers a task that still has work left.
	InProgress Task = iota
	// Done registers a finished task.
	Done
)

// String returns the string representation of the task state.
func (t Task) String() string {
	if t == Done {
		return "Done"
	}
	return "InProgress"
}

// =============================================================================
// LEDGER
// =============================================================================

// Ledger records current, previous and persisted progress.
//
// The zero value is ready to use.
type Ledger struct {
	current   Counts
	previous  Counts
	persisted Counts
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// RegisterTasks tracks the given amount of tasks for the current cycle, of
// which done are already completed.
func (l *Ledger) RegisterTasks(tasks, done uint64) {
	l.current.Tasks += tasks
	l.current.Done += done
}

// MarkTask tracks a single task. MarkTask(Done) is RegisterTasks(1, 1) and
// MarkTask(InProgress) is RegisterTasks(1, 0).
func (l *Ledger) MarkTask(state Task) {
	l.current.Mark(state)
}

// FinishCycle stops tracking for the current cycle and clears the current
// counts for the next one. It must be called once per cycle, before
// Progress is read.
func (l *Ledger) FinishCycle() {
	l.RegisterTasks(l.persisted.Tasks, l.persisted.Done)
	l.previous = l.current
	l.current = Counts{}
}

// Progress returns the completion ratio of the last finished cycle, between
// 0 and 1. A cycle that saw no tasks reports 0; use Ratio to tell that
// apart from real zero progress.
func (l *Ledger) Progress() float64 {
	ratio, _ := l.Ratio()
	return ratio
}

// Ratio returns the completion ratio of the last finished cycle and whether
// it is defined. It is undefined when that cycle registered no tasks.
func (l *Ledger) Ratio() (float64, bool) {
	if l.previous.Tasks == 0 {
		return 0, false
	}
	ratio := float64(l.previous.Done) / float64(l.previous.Tasks)
	if ratio > 1 {
		ratio = 1
	}
	return ratio, true
}

// Complete reports whether the last finished cycle had tasks and all of
// them were done.
func (l *Ledger) Complete() bool {
	ratio, ok := l.Ratio()
	return ok && ratio >= 1
}

// PersistTasks adds tasks that count as pending in every later cycle.
// PersistTasks(42) once is the same as RegisterTasks(42, 0) every cycle.
func (l *Ledger) PersistTasks(tasks uint64) {
	l.persisted.Add(tasks, 0)
}

// PersistDone adds done tasks to every later cycle. It is usually paired
// with an earlier PersistTasks call.
func (l *Ledger) PersistDone(done uint64) {
	l.persisted.Add(0, done)
}

// PersistDoneTasks adds n tasks that count as done in every later cycle.
// PersistDoneTasks(42) once is the same as RegisterTasks(42, 42) every cycle.
func (l *Ledger) PersistDoneTasks(n uint64) {
	l.persisted.Add(n, n)
}

// Clear resets all records, including the persisted baseline.
func (l *Ledger) Clear() {
	l.current = Counts{}
	l.previous = Counts{}
	l.persisted = Counts{}
}

// Current returns the counts registered so far in the cycle in progress.
func (l *Ledger) Current() Counts { return l.current }

// Previous returns the counts of the last finished cycle.
func (l *Ledger) Previous() Counts { return l.previous }

// Persisted returns the standing baseline.
func (l *Ledger) Persisted() Counts { return l.persisted }

func (l *Ledger) String() string {
	return fmt.Sprintf("current=%s previous=%s persisted=%s", l.current, l.previous, l.persisted)
}
