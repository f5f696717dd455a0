// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for frametrack.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe string truncation with ellipsis
//   - TruncateWidth, PadWidth, StringWidth: display-width aware helpers
//
// Formatting:
//   - FormatCount: task counts with thousands separators
//   - FormatRatio: completion ratio as a percentage
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
package util
