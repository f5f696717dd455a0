// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for frametrack.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.frametrack/config.toml
//   - ~/.frametrack/config.json
//   - Built-in defaults
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/frametrack/internal/loop"
	"github.com/jeranaias/frametrack/internal/progress"
	"github.com/jeranaias/frametrack/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete frametrack configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Loop controls the update loop frame rate and exit conditions
	Loop LoopConfig `toml:"loop" json:"loop"`

	// Domains declares progress domains known at startup
	Domains []DomainConfig `toml:"domains" json:"domains"`

	// Assets configures the asset directory source
	Assets AssetsConfig `toml:"assets" json:"assets"`

	Logging LoggingConfig `toml:"logging" json:"logging"`

	UI UIConfig `toml:"ui" json:"ui"`
}

// LoopConfig contains update loop settings.
type LoopConfig struct {
	// FPS is the number of frames per second (1-240)
	FPS int `toml:"fps" json:"fps"`
	// MaxFrames stops the loop after this many frames (0 = unlimited)
	MaxFrames uint64 `toml:"max_frames" json:"max_frames"`
	// QuitWhenComplete stops the loop once every gated domain is complete
	QuitWhenComplete bool `toml:"quit_when_complete" json:"quit_when_complete"`
}

// DomainConfig declares one progress domain and its persisted baseline.
type DomainConfig struct {
	Name string `toml:"name" json:"name"`
	// Gate makes the domain required for loading to be complete
	Gate             bool   `toml:"gate" json:"gate"`
	PersistTasks     uint64 `toml:"persist_tasks" json:"persist_tasks"`
	PersistDone      uint64 `toml:"persist_done" json:"persist_done"`
	PersistDoneTasks uint64 `toml:"persist_done_tasks" json:"persist_done_tasks"`
}

// AssetsConfig contains asset source settings.
type AssetsConfig struct {
	// Dir is the directory to load (empty = no asset source)
	Dir string `toml:"dir" json:"dir"`
	// Domain is the progress domain asset loads are counted in
	Domain string `toml:"domain" json:"domain"`
	// Extensions limits loading to these extensions (empty = all files)
	Extensions []string `toml:"extensions" json:"extensions"`
	// Watch keeps loading files that appear after startup
	Watch bool `toml:"watch" json:"watch"`
	// DebounceMS delays loading a changed file until it is quiet
	DebounceMS int `toml:"debounce_ms" json:"debounce_ms"`
	// Workers is the number of concurrent loads
	Workers int `toml:"workers" json:"workers"`
	// LoadsPerSecond throttles load starts (0 = unlimited)
	LoadsPerSecond float64 `toml:"loads_per_second" json:"loads_per_second"`
	// Burst is how many loads may start at once when throttled
	Burst int `toml:"burst" json:"burst"`
	// History is how many finished loads are kept for display
	History int `toml:"history" json:"history"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `toml:"level" json:"level"`
	// File receives logs; empty means stderr in plain mode and nothing in the TUI
	File string `toml:"file" json:"file"`
	// Format is "text" or "json"
	Format string `toml:"format" json:"format"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	Compact bool `toml:"compact" json:"compact"`
	// Width of the progress panel in columns (0 = terminal width)
	Width   int  `toml:"width" json:"width"`
	NoColor bool `toml:"no_color" json:"no_color"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Loop: LoopConfig{
			FPS:              30,
			MaxFrames:        0,
			QuitWhenComplete: true,
		},

		Domains: nil,

		Assets: AssetsConfig{
			Dir:            "",
			Domain:         "assets",
			Extensions:     nil,
			Watch:          false,
			DebounceMS:     200,
			Workers:        4,
			LoadsPerSecond: 0,
			Burst:          1,
			History:        256,
		},

		Logging: LoggingConfig{
			Level:  "info",
			File:   "",
			Format: "text",
		},

		UI: UIConfig{
			Compact: false,
			Width:   0,
			NoColor: false,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the frametrack configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".frametrack"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			return LoadFromPath(tomlPath)
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			return LoadFromPath(jsonPath)
		}
	}

	cfg := Default()
	return finish(cfg)
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(strings.ToLower(path), ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// SaveTOML atomically writes cfg as TOML.
func SaveTOML(cfg *Config, path string) error {
	data, err := cfg.TOML()
	if err != nil {
		return err
	}
	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON atomically writes cfg as indented JSON.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// TOML returns cfg encoded as TOML.
func (c *Config) TOML() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Loop.FPS < 1 || c.Loop.FPS > 240 {
		errs = append(errs, ValidationError{
			Field:   "loop.fps",
			Message: fmt.Sprintf("must be between 1 and 240, got %d", c.Loop.FPS),
		})
	}

	names := make(map[string]bool)
	for i, d := range c.Domains {
		field := fmt.Sprintf("domains[%d]", i)
		if strings.TrimSpace(d.Name) == "" {
			errs = append(errs, ValidationError{Field: field + ".name", Message: "must not be empty"})
			continue
		}
		if names[d.Name] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate domain '%s'", d.Name),
			})
		}
		names[d.Name] = true
		if d.PersistDone > d.PersistTasks {
			errs = append(errs, ValidationError{
				Field:   field + ".persist_done",
				Message: "persisted done tasks exceed persisted tasks",
			})
		}
	}

	if c.Assets.Workers < 1 || c.Assets.Workers > 256 {
		errs = append(errs, ValidationError{
			Field:   "assets.workers",
			Message: fmt.Sprintf("must be between 1 and 256, got %d", c.Assets.Workers),
		})
	}
	if c.Assets.LoadsPerSecond < 0 {
		errs = append(errs, ValidationError{Field: "assets.loads_per_second", Message: "must not be negative"})
	}
	if c.Assets.DebounceMS < 0 {
		errs = append(errs, ValidationError{Field: "assets.debounce_ms", Message: "must not be negative"})
	}
	if c.Assets.Watch && c.Assets.Dir == "" {
		errs = append(errs, ValidationError{Field: "assets.watch", Message: "requires assets.dir"})
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Logging.Level),
		})
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: text, json", c.Logging.Format),
		})
	}

	if c.UI.Width < 0 {
		errs = append(errs, ValidationError{Field: "ui.width", Message: "must not be negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills zero values that have no meaningful zero setting.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Loop.FPS == 0 {
		c.Loop.FPS = defaults.Loop.FPS
	}
	if c.Assets.Domain == "" {
		c.Assets.Domain = defaults.Assets.Domain
	}
	if c.Assets.Workers == 0 {
		c.Assets.Workers = defaults.Assets.Workers
	}
	if c.Assets.Burst <= 0 {
		c.Assets.Burst = defaults.Assets.Burst
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaults.Logging.Format
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies FRAMETRACK_* environment variables:
//   - FRAMETRACK_FPS: overrides loop.fps
//   - FRAMETRACK_MAX_FRAMES: overrides loop.max_frames
//   - FRAMETRACK_ASSETS: overrides assets.dir
//   - FRAMETRACK_WATCH: overrides assets.watch
//   - FRAMETRACK_LOG_LEVEL: overrides logging.level
//   - FRAMETRACK_LOG_FILE: overrides logging.file
//   - NO_COLOR / FRAMETRACK_NO_COLOR: sets ui.no_color
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("FRAMETRACK_FPS"); v != "" {
		if fps, err := strconv.Atoi(v); err == nil {
			c.Loop.FPS = fps
		}
	}

	if v := os.Getenv("FRAMETRACK_MAX_FRAMES"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Loop.MaxFrames = n
		}
	}

	if v := os.Getenv("FRAMETRACK_ASSETS"); v != "" {
		c.Assets.Dir = v
	}

	if v := os.Getenv("FRAMETRACK_WATCH"); v != "" {
		c.Assets.Watch = isTrue(v)
	}

	if v := os.Getenv("FRAMETRACK_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv("FRAMETRACK_LOG_FILE"); v != "" {
		c.Logging.File = v
	}

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		c.UI.NoColor = true
	}
	if v := os.Getenv("FRAMETRACK_NO_COLOR"); v != "" {
		c.UI.NoColor = isTrue(v)
	}
}

func isTrue(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

// =============================================================================
// CONVERSION
// =============================================================================

// LoopDomains converts the configured domains for loop.New. The asset domain
// is added as a gate when an asset directory is configured and not declared.
func (c *Config) LoopDomains() []loop.Domain {
	domains := make([]loop.Domain, 0, len(c.Domains)+1)
	declared := make(map[string]bool)
	for _, d := range c.Domains {
		declared[d.Name] = true
		domains = append(domains, loop.Domain{
			Tag:              progress.Tag(d.Name),
			Gate:             d.Gate,
			PersistTasks:     d.PersistTasks,
			PersistDone:      d.PersistDone,
			PersistDoneTasks: d.PersistDoneTasks,
		})
	}
	if c.Assets.Dir != "" && !declared[c.Assets.Domain] {
		domains = append(domains, loop.Domain{Tag: progress.Tag(c.Assets.Domain), Gate: true})
	}
	return domains
}
