// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package progress keeps track of task completion across update cycles (frames).
//
// A Ledger holds three count pairs:
//
//   - current: registrations made during the cycle in progress
//   - previous: the frozen result of the last finished cycle
//   - persisted: a standing baseline applied to every cycle
//
// Anything that knows about work items registers it every frame. The host
// loop then calls FinishCycle exactly once, after which Progress reports the
// settled ratio of the cycle that just ended.
//
// # Usage
//
//	ledger := progress.NewLedger()
//	ledger.PersistDoneTasks(42) // same as RegisterTasks(42, 42) every frame
//
//	// each frame:
//	ledger.MarkTask(progress.InProgress)
//	ledger.RegisterTasks(10, 7)
//	ledger.FinishCycle()
//	fmt.Printf("%.0f%%\n", ledger.Progress()*100)
//
// To track several independent kinds of progress, keep one Ledger per
// domain in a Registry keyed by Tag.
//
// Neither Ledger nor Registry is safe for concurrent use. They are meant to
// be owned by the goroutine running the update loop.
package progress
