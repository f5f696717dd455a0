// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for frametrack.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - LoopConfig: Frame rate and exit conditions
//   - DomainConfig: A progress domain and its persisted baseline
//   - AssetsConfig: Asset directory loading
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (FRAMETRACK_*)
//   - ~/.frametrack/config.toml
//   - ~/.frametrack/config.json
//   - Built-in defaults
//
// # Example
//
//	[loop]
//	fps = 30
//	quit_when_complete = true
//
//	[[domains]]
//	name = "shaders"
//	persist_done_tasks = 42
//
//	[assets]
//	dir = "./assets"
//	extensions = ["png", "json"]
//	watch = true
package config
