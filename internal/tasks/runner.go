// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// TASK RUNNER
// =============================================================================

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	// MaxConcurrent is the maximum number of tasks running at once (default: 5)
	MaxConcurrent int

	// TaskTimeout bounds each task (0 = no timeout)
	TaskTimeout time.Duration

	// StartsPerSecond limits how fast new tasks are started (0 = unlimited)
	StartsPerSecond float64

	// Burst is the number of tasks that may start at once when rate limited (default: 1)
	Burst int

	// PollInterval is how often the queue is checked for new tasks (default: 50ms)
	PollInterval time.Duration

	Logger *slog.Logger
}

// Runner executes background tasks from a queue.
type Runner struct {
	queue       *Queue
	wg          sync.WaitGroup
	stop        chan struct{}
	stopOnce    sync.Once
	stopped     atomic.Bool
	semaphore   chan struct{}
	limiter     *rate.Limiter
	taskTimeout time.Duration
	poll        time.Duration
	logger      *slog.Logger
}

// NewRunnerWithOptions creates a new task runner with custom settings.
func NewRunnerWithOptions(queue *Queue, opts RunnerOptions) *Runner {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 5
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 50 * time.Millisecond
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	limiter := rate.NewLimiter(rate.Inf, opts.Burst)
	if opts.StartsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.StartsPerSecond), opts.Burst)
	}

	return &Runner{
		queue:       queue,
		stop:        make(chan struct{}),
		semaphore:   make(chan struct{}, opts.MaxConcurrent),
		limiter:     limiter,
		taskTimeout: opts.TaskTimeout,
		poll:        opts.PollInterval,
		logger:      opts.Logger,
	}
}

// =============================================================================
// RUNNER LIFECYCLE
// =============================================================================

// Start begins processing tasks from the queue until ctx is done or Stop is called.
func (r *Runner) Start(ctx context.Context) {
	r.wg.Add(1)
	go r.processLoop(ctx)
}

// Stop stops starting new tasks and waits for running tasks to return.
// Running tasks see their context canceled only if the Start context is.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		r.stopped.Store(true)
		close(r.stop)
	})
	r.wg.Wait()
}

// =============================================================================
// TASK PROCESSING
// =============================================================================

func (r *Runner) processLoop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stop:
			return
		case <-ticker.C:
			for _, task := range r.queue.Queued() {
				if r.stopped.Load() {
					return
				}

				if err := r.limiter.Wait(ctx); err != nil {
					return
				}

				select {
				case r.semaphore <- struct{}{}:
				case <-r.stop:
					return
				case <-ctx.Done():
					return
				}

				// The task may have been canceled while waiting for a slot.
				if task.GetStatus() != TaskStatusQueued {
					<-r.semaphore
					continue
				}

				r.queue.MarkRunning(task)
				r.wg.Add(1)
				go r.executeTask(ctx, task)
			}
		}
	}
}

// executeTask runs a task that has already been marked running.
func (r *Runner) executeTask(parent context.Context, task *Task) {
	defer r.wg.Done()
	defer func() { <-r.semaphore }()

	var ctx context.Context
	var cancel context.CancelFunc
	if r.taskTimeout > 0 {
		ctx, cancel = context.WithTimeout(parent, r.taskTimeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}
	task.SetCancelFunc(cancel)
	defer cancel()

	err := runSafely(ctx, task)

	switch {
	case err == nil:
		r.queue.MarkComplete(task)
	case errors.Is(ctx.Err(), context.Canceled):
		r.queue.MarkCanceled(task)
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		r.queue.MarkFailed(task, fmt.Errorf("task timeout after %v: %w", r.taskTimeout, err))
	default:
		r.logger.Debug("task failed", "task", task.ID, "description", task.Description, "error", err)
		r.queue.MarkFailed(task, err)
	}
}

// runSafely turns a panicking task body into an error.
func runSafely(ctx context.Context, task *Task) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("task panicked: %v", rec)
		}
	}()
	return task.Run(ctx)
}
