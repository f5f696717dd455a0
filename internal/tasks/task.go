// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tasks provides background work items whose state is reported into
// progress ledgers once per frame.
package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/frametrack/internal/progress"
)

// =============================================================================
// TASK STATUS
// =============================================================================

// TaskStatus represents the current state of a background task.
type TaskStatus string

const (
	// TaskStatusQueued indicates the task is waiting to be executed
	TaskStatusQueued TaskStatus = "Queued"

	// TaskStatusRunning indicates the task is currently executing
	TaskStatusRunning TaskStatus = "Running"

	// TaskStatusComplete indicates the task finished successfully
	TaskStatusComplete TaskStatus = "Complete"

	// TaskStatusFailed indicates the task encountered an error
	TaskStatusFailed TaskStatus = "Failed"

	// TaskStatusCanceled indicates the task was canceled
	TaskStatusCanceled TaskStatus = "Canceled"
)

// String returns the string representation of the task status.
func (s TaskStatus) String() string {
	return string(s)
}

// Terminal reports whether no further transitions are possible.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusComplete || s == TaskStatusFailed || s == TaskStatusCanceled
}

// =============================================================================
// TASK STRUCTURE
// =============================================================================

// WorkFunc is the body of a task. It should return promptly once ctx is done.
type WorkFunc func(ctx context.Context) error

// Task represents a unit of background work counted towards a progress domain.
type Task struct {
	// ID is a unique identifier for this task
	ID string

	// Description is a human-readable description of what this task does
	Description string

	// Domain is the progress domain this task is counted in
	Domain progress.Tag

	// Status is the current state of the task
	Status TaskStatus

	// StartTime is when the task started running
	StartTime time.Time

	// EndTime is when the task completed or failed
	EndTime time.Time

	// Error is the error message if the task failed
	Error string

	work   WorkFunc
	cancel context.CancelFunc

	// mu protects concurrent access to the task
	mu sync.RWMutex
}

// =============================================================================
// TASK CREATION
// =============================================================================

// NewTask creates a new queued task in the given domain.
func NewTask(description string, domain progress.Tag, work WorkFunc) *Task {
	if domain == "" {
		domain = progress.DefaultTag
	}
	return &Task{
		ID:          uuid.New().String(),
		Description: description,
		Domain:      domain,
		Status:      TaskStatusQueued,
		work:        work,
	}
}

// =============================================================================
// TASK METHODS
// =============================================================================

// SetStatus updates the task status (thread-safe).
// Valid transitions: Queued -> Running -> Complete/Failed/Canceled
func (t *Task) SetStatus(status TaskStatus) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !isValidTransition(t.Status, status) {
		return fmt.Errorf("invalid status transition from %s to %s", t.Status, status)
	}

	t.Status = status
	return nil
}

func isValidTransition(from, to TaskStatus) bool {
	if from == to {
		return true
	}

	switch from {
	case TaskStatusQueued:
		return to == TaskStatusRunning || to == TaskStatusCanceled
	case TaskStatusRunning:
		return to == TaskStatusComplete || to == TaskStatusFailed || to == TaskStatusCanceled
	default:
		return false
	}
}

// GetStatus returns the current task status (thread-safe).
func (t *Task) GetStatus() TaskStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.Status
}

// SetError sets the error message and marks the task as failed (thread-safe).
func (t *Task) SetError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.Error = err.Error()
		t.Status = TaskStatusFailed
		t.EndTime = time.Now()
	}
}

// GetError returns the error message (thread-safe).
func (t *Task) GetError() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.Error
}

// MarkStarted marks the task as running (thread-safe).
func (t *Task) MarkStarted() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Status = TaskStatusRunning
	t.StartTime = time.Now()
}

// MarkComplete marks the task as successfully completed (thread-safe).
func (t *Task) MarkComplete() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Status = TaskStatusComplete
	t.EndTime = time.Now()
}

// MarkCanceled marks the task as canceled (thread-safe).
func (t *Task) MarkCanceled() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Status = TaskStatusCanceled
	t.EndTime = time.Now()
}

// SetCancelFunc stores the context cancel function for this task.
// It must only be called once, when the task starts running.
func (t *Task) SetCancelFunc(cancel context.CancelFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancel = cancel
}

// Cancel cancels the task if it is queued or running.
// Returns true if the task was canceled.
func (t *Task) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.Status != TaskStatusRunning && t.Status != TaskStatusQueued {
		return false
	}

	if t.cancel != nil {
		t.cancel()
	}

	t.Status = TaskStatusCanceled
	t.EndTime = time.Now()
	return true
}

// Run executes the task body. A task without a body succeeds immediately.
func (t *Task) Run(ctx context.Context) error {
	if t.work == nil {
		return nil
	}
	return t.work(ctx)
}

// Duration returns how long the task has been running or took to complete.
func (t *Task) Duration() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.StartTime.IsZero() {
		return 0
	}

	if t.EndTime.IsZero() {
		return time.Since(t.StartTime)
	}

	return t.EndTime.Sub(t.StartTime)
}

// IsComplete returns true if the task has finished (success, failure, or canceled).
func (t *Task) IsComplete() bool {
	return t.GetStatus().Terminal()
}

// LedgerState returns how the task is counted in its progress domain.
// Canceled tasks are not counted. Failed tasks count as done since they
// will not make further progress; they are reported separately by the queue.
func (t *Task) LedgerState() (progress.Task, bool) {
	switch t.GetStatus() {
	case TaskStatusQueued, TaskStatusRunning:
		return progress.InProgress, true
	case TaskStatusComplete, TaskStatusFailed:
		return progress.Done, true
	default:
		return progress.InProgress, false
	}
}
