// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual building blocks of the loader
// screen.
//
//   - DomainBar: one domain's label, bar, percentage and counts
//   - FrameView: every domain of a frame plus the overall line
//   - Spinner: bubbles spinner shown until the frame is ready
//
// Components render from a loop.Frame only; they never touch a ledger.
package components
