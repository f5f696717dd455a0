// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jeranaias/frametrack/internal/progress"
)

// =============================================================================
// TASK QUEUE
// =============================================================================

// Queue manages a queue of background tasks with thread-safe operations.
//
// Completed tasks that fall out of the history window are retired: they no
// longer appear in queries but keep counting as done in their domain.
type Queue struct {
	// tasks is the list of all tasks (both queued and completed)
	tasks []*Task

	// running tracks currently running tasks by ID
	running map[string]*Task

	// retired holds counts of tasks dropped from history, per domain
	retired map[progress.Tag]progress.Counts

	// retiredComplete and retiredFailed count retired tasks by outcome
	retiredComplete int
	retiredFailed   map[progress.Tag]int

	// maxHistory is the maximum number of completed tasks to keep
	maxHistory int

	// maxQueueSize is the maximum number of queued tasks allowed (0 = unlimited)
	maxQueueSize int

	logger *slog.Logger

	// mu protects concurrent access to the queue
	mu sync.RWMutex

	// notifyChan sends notifications when tasks finish
	notifyChan chan TaskNotification
}

// TaskNotification represents a notification about a task state change.
type TaskNotification struct {
	TaskID      string
	Description string
	Domain      progress.Tag
	Status      TaskStatus
	Error       string
	Duration    time.Duration
}

// =============================================================================
// QUEUE CREATION
// =============================================================================

// NewQueue creates a new task queue.
// maxHistory sets the maximum number of completed tasks to keep (0 = unlimited).
func NewQueue(maxHistory int) *Queue {
	return NewQueueWithOptions(maxHistory, 0, nil)
}

// NewQueueWithOptions creates a new task queue with custom settings.
// maxHistory: maximum number of completed tasks to keep (0 = unlimited)
// maxQueueSize: maximum number of queued tasks allowed (0 = unlimited)
// logger: destination for queue warnings (nil = slog.Default())
func NewQueueWithOptions(maxHistory, maxQueueSize int, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		tasks:         make([]*Task, 0),
		running:       make(map[string]*Task),
		retired:       make(map[progress.Tag]progress.Counts),
		retiredFailed: make(map[progress.Tag]int),
		maxHistory:    maxHistory,
		maxQueueSize:  maxQueueSize,
		logger:        logger,
		notifyChan:    make(chan TaskNotification, 100),
	}
}

// =============================================================================
// TASK MANAGEMENT
// =============================================================================

// Add adds a new task to the queue.
// Returns an error if the queue has reached its maximum size.
func (q *Queue) Add(task *Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.maxQueueSize > 0 {
		queuedCount := 0
		for _, t := range q.tasks {
			if t.GetStatus() == TaskStatusQueued {
				queuedCount++
			}
		}
		if queuedCount >= q.maxQueueSize {
			return fmt.Errorf("queue is full: %d queued tasks (max: %d)", queuedCount, q.maxQueueSize)
		}
	}

	if err := task.SetStatus(TaskStatusQueued); err != nil {
		return fmt.Errorf("cannot queue task %s: %w", task.ID, err)
	}
	q.tasks = append(q.tasks, task)
	return nil
}

// MarkRunning marks a task as running.
func (q *Queue) MarkRunning(task *Task) {
	q.mu.Lock()
	defer q.mu.Unlock()

	task.MarkStarted()
	q.running[task.ID] = task
}

// MarkComplete marks a task as complete and removes it from running.
func (q *Queue) MarkComplete(task *Task) {
	q.finish(task, TaskStatusComplete, nil)
}

// MarkFailed marks a task as failed and removes it from running.
func (q *Queue) MarkFailed(task *Task, err error) {
	q.finish(task, TaskStatusFailed, err)
}

// MarkCanceled marks a task as canceled and removes it from running.
func (q *Queue) MarkCanceled(task *Task) {
	q.finish(task, TaskStatusCanceled, nil)
}

func (q *Queue) finish(task *Task, status TaskStatus, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := TaskNotification{
		TaskID:      task.ID,
		Description: task.Description,
		Domain:      task.Domain,
		Status:      status,
	}

	switch status {
	case TaskStatusComplete:
		task.MarkComplete()
	case TaskStatusFailed:
		task.SetError(err)
		n.Error = err.Error()
	case TaskStatusCanceled:
		task.MarkCanceled()
	}
	delete(q.running, task.ID)

	n.Duration = task.Duration()
	q.notify(n)
	q.cleanupLocked()
}

// =============================================================================
// QUEUE QUERIES
// =============================================================================

// Queued returns all queued (not yet started) tasks.
// Returns original task pointers so the runner executes the tasks that are
// reported, not clones.
func (q *Queue) Queued() []*Task {
	q.mu.RLock()
	defer q.mu.RUnlock()

	result := make([]*Task, 0)
	for _, task := range q.tasks {
		if task.GetStatus() == TaskStatusQueued {
			result = append(result, task)
		}
	}
	return result
}

// Idle reports whether no task is queued or running.
func (q *Queue) Idle() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	for _, task := range q.tasks {
		if !task.IsComplete() {
			return false
		}
	}
	return true
}

// =============================================================================
// PROGRESS REPORTING
// =============================================================================

// Report registers every counted task, including retired ones, into the
// ledger of its domain. It is meant to be called from the update loop once
// per frame, before the cycle is finished.
func (q *Queue) Report(reg *progress.Registry) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	for tag, counts := range q.retired {
		reg.Ledger(tag).RegisterTasks(counts.Tasks, counts.Done)
	}

	for _, task := range q.tasks {
		if state, ok := task.LedgerState(); ok {
			reg.Ledger(task.Domain).MarkTask(state)
		}
	}
}

// Failures returns the number of failed tasks per domain, retired ones included.
func (q *Queue) Failures() map[progress.Tag]int {
	q.mu.RLock()
	defer q.mu.RUnlock()

	result := make(map[progress.Tag]int, len(q.retiredFailed))
	for tag, n := range q.retiredFailed {
		result[tag] = n
	}
	for _, task := range q.tasks {
		if task.GetStatus() == TaskStatusFailed {
			result[task.Domain]++
		}
	}
	return result
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

// Notifications returns the channel of finished tasks. A full channel drops
// notifications, so a queue that finishes many tasks needs a reader.
func (q *Queue) Notifications() <-chan TaskNotification {
	return q.notifyChan
}

// notify sends a notification (must be called with lock held).
func (q *Queue) notify(notification TaskNotification) {
	select {
	case q.notifyChan <- notification:
	default:
		q.logger.Warn("notification channel full, dropped notification",
			"task", notification.TaskID, "status", notification.Status)
	}
}

// =============================================================================
// CLEANUP
// =============================================================================

// cleanupLocked retires the oldest completed tasks beyond maxHistory.
// Must be called with lock held. Removal is FIFO by slice position.
func (q *Queue) cleanupLocked() {
	if q.maxHistory <= 0 {
		return
	}

	completedCount := 0
	for _, task := range q.tasks {
		if task.IsComplete() {
			completedCount++
		}
	}

	if completedCount > q.maxHistory {
		toRemove := completedCount - q.maxHistory
		newTasks := make([]*Task, 0, len(q.tasks)-toRemove)

		for _, task := range q.tasks {
			if task.IsComplete() && toRemove > 0 {
				toRemove--
				q.retireLocked(task)
				continue
			}
			newTasks = append(newTasks, task)
		}

		q.tasks = newTasks
	}
}

func (q *Queue) retireLocked(task *Task) {
	switch task.GetStatus() {
	case TaskStatusComplete:
		q.retiredComplete++
	case TaskStatusFailed:
		q.retiredFailed[task.Domain]++
	}

	state, ok := task.LedgerState()
	if !ok {
		return
	}
	counts := q.retired[task.Domain]
	counts.Mark(state)
	q.retired[task.Domain] = counts
}

// Reset cancels outstanding tasks and forgets everything, retired counts
// included. Running tasks finish as canceled and are not counted again.
func (q *Queue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, task := range q.tasks {
		task.Cancel()
	}
	q.tasks = make([]*Task, 0)
	q.running = make(map[string]*Task)
	q.retired = make(map[progress.Tag]progress.Counts)
	q.retiredComplete = 0
	q.retiredFailed = make(map[progress.Tag]int)
}

// =============================================================================
// STATISTICS
// =============================================================================

// Stats counts the tasks in a queue by status. Retired tasks are counted in
// Complete or Failed.
type Stats struct {
	Queued   int
	Running  int
	Complete int
	Failed   int
	Canceled int
}

// String formats the stats for logs.
func (s Stats) String() string {
	return fmt.Sprintf("Running: %d | Queued: %d | Completed: %d | Failed: %d | Canceled: %d",
		s.Running, s.Queued, s.Complete, s.Failed, s.Canceled)
}

// Stats returns the current task counts.
func (q *Queue) Stats() Stats {
	q.mu.RLock()
	defer q.mu.RUnlock()

	var st Stats
	for _, task := range q.tasks {
		switch task.GetStatus() {
		case TaskStatusQueued:
			st.Queued++
		case TaskStatusRunning:
			st.Running++
		case TaskStatusComplete:
			st.Complete++
		case TaskStatusFailed:
			st.Failed++
		case TaskStatusCanceled:
			st.Canceled++
		}
	}
	st.Complete += q.retiredComplete
	for _, n := range q.retiredFailed {
		st.Failed += n
	}
	return st
}
