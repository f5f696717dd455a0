// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tasks provides background work items whose state is reported into
// progress ledgers once per frame.
//
// # Key Types
//
//   - Task: a unit of work with status, counted in one progress domain
//   - Queue: task history with thread-safe state changes and per-frame reporting
//   - Runner: executes queued tasks with concurrency, rate and timeout limits
//   - TaskStatus: Queued, Running, Complete, Failed, Canceled
//
// # Usage
//
// Queue work and run it:
//
//	queue := tasks.NewQueue(100)
//	queue.Add(tasks.NewTask("Load textures", "assets", loadTextures))
//
//	runner := tasks.NewRunnerWithOptions(queue, tasks.RunnerOptions{
//	    MaxConcurrent:   4,
//	    StartsPerSecond: 20,
//	})
//	runner.Start(ctx)
//	defer runner.Stop()
//
// Once per frame, from the update loop:
//
//	queue.Report(registry)
//	registry.FinishCycle()
//
// Workers never touch ledgers. Queued and running tasks count as in
// progress, complete and failed tasks count as done, and canceled tasks are
// not counted at all.
package tasks
