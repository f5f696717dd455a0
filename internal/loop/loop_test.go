// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package loop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/frametrack/internal/progress"
	"github.com/jeranaias/frametrack/internal/tasks"
)

func TestNewAppliesDomainBaselines(t *testing.T) {
	l := New(Options{Domains: []Domain{
		{Tag: "shaders", PersistDoneTasks: 42},
		{Tag: "world", PersistTasks: 3, PersistDone: 1, Gate: true},
	}})

	f := l.Step()
	require.Len(t, f.Domains, 2)

	shaders, ok := f.Domain("shaders")
	require.True(t, ok)
	assert.Equal(t, 1.0, shaders.Ratio)
	assert.True(t, shaders.Complete)
	assert.False(t, shaders.Gate)

	world, ok := f.Domain("world")
	require.True(t, ok)
	assert.Equal(t, progress.Counts{Tasks: 3, Done: 1}, world.Counts)
	assert.True(t, world.Gate)
	assert.False(t, f.Ready())
}

func TestStepFinishesEachLedgerOnce(t *testing.T) {
	l := New(Options{Domains: []Domain{{Tag: "assets", PersistDoneTasks: 1}}})
	calls := 0
	l.AddReporter(ReporterFunc(func(reg *progress.Registry) {
		calls++
		reg.Ledger("assets").MarkTask(progress.InProgress)
	}))

	for i := 1; i <= 3; i++ {
		f := l.Step()
		assert.Equal(t, uint64(i), f.Number)
		d, _ := f.Domain("assets")
		// Baseline applied once per frame, never accumulated across frames.
		assert.Equal(t, progress.Counts{Tasks: 2, Done: 1}, d.Counts)
	}
	assert.Equal(t, 3, calls)
	assert.Equal(t, uint64(3), l.Last().Number)
}

func TestStepReportsQueue(t *testing.T) {
	queue := tasks.NewQueue(0)
	a := tasks.NewTask("a", "assets", nil)
	b := tasks.NewTask("b", "assets", nil)
	require.NoError(t, queue.Add(a))
	require.NoError(t, queue.Add(b))

	l := New(Options{Domains: []Domain{{Tag: "assets", Gate: true}}})
	l.AddReporter(queue)

	f := l.Step()
	d, _ := f.Domain("assets")
	assert.Equal(t, 0.0, d.Ratio)
	assert.True(t, d.Defined)
	assert.False(t, f.Ready())

	queue.MarkRunning(a)
	queue.MarkComplete(a)
	f = l.Step()
	d, _ = f.Domain("assets")
	assert.Equal(t, 0.5, d.Ratio)

	queue.MarkRunning(b)
	queue.MarkComplete(b)
	f = l.Step()
	assert.True(t, f.Ready())
}

func TestReadyWithoutGates(t *testing.T) {
	l := New(Options{})
	assert.False(t, l.Step().Ready(), "no tasks anywhere is not ready")

	l.AddReporter(ReporterFunc(func(reg *progress.Registry) {
		reg.Ledger("a").MarkTask(progress.Done)
		reg.Ledger("b") // never sees tasks, does not block readiness
	}))
	f := l.Step()
	assert.True(t, f.Ready())

	ratio, ok := f.OverallRatio()
	assert.True(t, ok)
	assert.Equal(t, 1.0, ratio)
}

func TestReset(t *testing.T) {
	l := New(Options{Domains: []Domain{{Tag: "world", PersistTasks: 2}}})
	l.Registry().Ledger("world").PersistDone(2)
	assert.True(t, l.Step().Ready())

	l.Reset()
	f := l.Step()
	d, _ := f.Domain("world")
	assert.Equal(t, progress.Counts{Tasks: 2, Done: 0}, d.Counts)
}

func TestRunStopsOnCallback(t *testing.T) {
	l := New(Options{Domains: []Domain{{Tag: "world", PersistDoneTasks: 1}}})

	frames := 0
	err := l.Run(context.Background(), time.Millisecond, func(f Frame) bool {
		frames++
		return frames < 3
	})
	require.NoError(t, err)
	assert.Equal(t, 3, frames)
}

func TestRunStopsOnContext(t *testing.T) {
	l := New(Options{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Run(ctx, time.Millisecond, func(Frame) bool { return true })
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestSettledGateDoesNotBlockReady(t *testing.T) {
	idle := true
	l := New(Options{Domains: []Domain{
		{Tag: "assets", Gate: true, Settled: func() bool { return idle }},
		{Tag: "world", Gate: true, PersistDoneTasks: 1},
	}})

	f := l.Step()
	d, _ := f.Domain("assets")
	assert.True(t, d.Settled)
	assert.False(t, d.Defined)
	assert.True(t, f.Ready())

	idle = false
	assert.False(t, l.Step().Ready(), "an unsettled empty gate holds the loop")
}

func TestSettledOnlyAppliesWithoutTasks(t *testing.T) {
	l := New(Options{Domains: []Domain{
		{Tag: "assets", Gate: true, Settled: func() bool { return true }},
	}})
	l.AddReporter(ReporterFunc(func(reg *progress.Registry) {
		reg.Ledger("assets").MarkTask(progress.InProgress)
	}))

	f := l.Step()
	d, _ := f.Domain("assets")
	assert.False(t, d.Settled)
	assert.False(t, f.Ready())
}

func TestReadyWithOnlySettledDomains(t *testing.T) {
	l := New(Options{Domains: []Domain{
		{Tag: "assets", Settled: func() bool { return true }},
	}})
	f := l.Step()
	assert.True(t, f.Ready())
	_, ok := f.OverallRatio()
	assert.False(t, ok)
}

func TestResetRunsHooksBeforeClearing(t *testing.T) {
	l := New(Options{Domains: []Domain{{Tag: "world", PersistTasks: 2}}})

	var seen []progress.Counts
	l.OnReset(func() {
		seen = append(seen, l.Registry().Ledger("world").Persisted())
	})

	l.Reset()
	require.Len(t, seen, 1)
	assert.Equal(t, progress.Counts{Tasks: 2}, seen[0])
	assert.Equal(t, progress.Counts{Tasks: 2}, l.Registry().Ledger("world").Persisted())
}
