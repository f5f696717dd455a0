// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRunner(queue *Queue, maxConcurrent int) *Runner {
	return NewRunnerWithOptions(queue, RunnerOptions{
		MaxConcurrent: maxConcurrent,
		PollInterval:  5 * time.Millisecond,
	})
}

func TestRunnerCompletesTasks(t *testing.T) {
	queue := NewQueue(0)
	var ran atomic.Int32

	for i := 0; i < 5; i++ {
		require.NoError(t, queue.Add(NewTask("work", "assets", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})))
	}
	failing := NewTask("broken", "assets", func(ctx context.Context) error {
		return errors.New("corrupt")
	})
	require.NoError(t, queue.Add(failing))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := fastRunner(queue, 2)
	runner.Start(ctx)

	require.Eventually(t, queue.Idle, 2*time.Second, 5*time.Millisecond)
	runner.Stop()

	assert.Equal(t, int32(5), ran.Load())
	assert.Equal(t, TaskStatusFailed, failing.GetStatus())
	assert.Equal(t, "corrupt", failing.GetError())
	assert.Equal(t, 0, queue.Stats().Running)
}

func TestRunnerRespectsConcurrency(t *testing.T) {
	queue := NewQueue(0)
	var current, peak atomic.Int32
	release := make(chan struct{})

	for i := 0; i < 6; i++ {
		require.NoError(t, queue.Add(NewTask("work", "", func(ctx context.Context) error {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			<-release
			current.Add(-1)
			return nil
		})))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := fastRunner(queue, 2)
	runner.Start(ctx)

	require.Eventually(t, func() bool { return queue.Stats().Running == 2 }, time.Second, 5*time.Millisecond)
	close(release)
	require.Eventually(t, queue.Idle, 2*time.Second, 5*time.Millisecond)
	runner.Stop()

	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRunnerCancelRunningTask(t *testing.T) {
	queue := NewQueue(0)
	started := make(chan struct{})
	task := NewTask("blocking", "", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	require.NoError(t, queue.Add(task))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := fastRunner(queue, 1)
	runner.Start(ctx)

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("task never started")
	}

	assert.True(t, task.Cancel())
	require.Eventually(t, func() bool { return queue.Stats().Running == 0 }, time.Second, 5*time.Millisecond)
	runner.Stop()

	assert.Equal(t, TaskStatusCanceled, task.GetStatus())
}

func TestRunnerTimeout(t *testing.T) {
	queue := NewQueue(0)
	task := NewTask("slow", "", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	require.NoError(t, queue.Add(task))

	runner := NewRunnerWithOptions(queue, RunnerOptions{
		MaxConcurrent: 1,
		TaskTimeout:   20 * time.Millisecond,
		PollInterval:  5 * time.Millisecond,
	})
	runner.Start(context.Background())

	require.Eventually(t, queue.Idle, 2*time.Second, 5*time.Millisecond)
	runner.Stop()

	assert.Equal(t, TaskStatusFailed, task.GetStatus())
	assert.Contains(t, task.GetError(), "task timeout")
}

func TestRunnerStopIsIdempotent(t *testing.T) {
	runner := fastRunner(NewQueue(0), 1)
	runner.Start(context.Background())
	runner.Stop()
	runner.Stop()
}
