// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !progressdebug

package progress

// assertf is a no-op in release builds. Build with -tags progressdebug to
// turn count invariant violations into panics.
func assertf(bool, string, ...any) {}
