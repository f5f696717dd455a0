// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the frametrack command line.
//
// # Commands
//
//   - run (default): load config, start the asset workers and drive the
//     frame loop in the TUI, or with line output when stdout is not a
//     terminal or --plain is given
//   - config show|path|init: inspect or create the config file
//   - version, help
//
// # Errors
//
// Commands return errors; main prints them with DisplayError and exits with
// GetExitCode: 2 for usage errors, 3 for invalid configuration, 1 otherwise.
package cli
