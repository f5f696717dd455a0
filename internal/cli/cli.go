// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command routing for frametrack.
package cli

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdRun Command = iota
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	ConfigPath string
	NoColor    bool
	JSONLog    bool

	// run
	AssetsDir string
	Watch     bool
	FPS       int
	MaxFrames int
	Plain     bool
	Compact   bool

	// config
	Subcommand string
	Force      bool
}

// boolFlags never take a value.
var boolFlags = []string{"watch", "plain", "compact", "no-color", "json-log", "force", "help", "h", "version"}

// knownFlags lists every accepted flag.
var knownFlags = map[string]bool{
	"config": true, "assets": true, "fps": true, "max-frames": true,
	"watch": true, "plain": true, "compact": true, "no-color": true, "json-log": true,
	"force": true, "help": true, "h": true, "version": true,
}

const usageText = `frametrack - frame-based loading progress

frametrack tracks how much background work each domain of a program has
finished, settling the counts once per frame, and draws a progress screen
until every gated domain is complete.

Usage:
  frametrack [run] [flags]         Run the loader (default)
  frametrack config [show]         Print the effective configuration
  frametrack config path           Print the config file path
  frametrack config init           Write a default config file
    --force                        Overwrite an existing file
  frametrack version               Show version information
  frametrack help                  Show this help

Run Flags:
  --config PATH     Config file (default: ~/.frametrack/config.toml)
  --assets DIR      Load every file under DIR as a task in the asset domain
  --watch           Keep watching the asset directory for new files
  --fps N           Frames per second (1-240)
  --max-frames N    Stop after N frames (0 = no limit)
  --plain           Line output instead of the TUI
  --compact         One line per frame in the TUI
  --no-color        Disable colors
  --json-log        Log as JSON

Environment:
  FRAMETRACK_FPS, FRAMETRACK_MAX_FRAMES, FRAMETRACK_ASSETS, FRAMETRACK_WATCH,
  FRAMETRACK_LOG_LEVEL, FRAMETRACK_LOG_FILE, NO_COLOR

Keys (TUI):
  r    Reset all progress to the configured baselines
  q    Quit

Version: %s
`

// PrintUsage prints the usage text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "frametrack version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "  Go version: %s\n", runtime.Version())
}

// Parse parses command-line arguments (without the program name) and
// returns the command and args.
func Parse(argv []string) (Command, Args, error) {
	p := NewArgParser(argv, boolFlags...)
	var args Args

	for _, name := range p.FlagNames() {
		if !knownFlags[name] {
			return CmdHelp, args, NewUsageError("unknown flag --%s", name)
		}
	}

	if p.BoolFlag("help") || p.BoolFlag("h") {
		return CmdHelp, args, nil
	}
	if p.BoolFlag("version") {
		return CmdVersion, args, nil
	}

	args.ConfigPath = p.Flag("config")
	args.AssetsDir = p.Flag("assets")
	args.Watch = p.BoolFlag("watch")
	args.Plain = p.BoolFlag("plain")
	args.Compact = p.BoolFlag("compact")
	args.NoColor = p.BoolFlag("no-color")
	args.JSONLog = p.BoolFlag("json-log")
	args.Force = p.BoolFlag("force")

	for _, name := range []string{"config", "assets", "fps", "max-frames"} {
		if p.HasFlag(name) && p.Flag(name) == "" {
			return CmdHelp, args, NewUsageError("flag --%s requires a value", name)
		}
	}

	if p.HasFlag("fps") {
		fps, err := p.FlagInt("fps")
		if err != nil || fps <= 0 {
			return CmdHelp, args, NewUsageError("--fps must be a positive integer, got %q", p.Flag("fps"))
		}
		args.FPS = fps
	}
	if p.HasFlag("max-frames") {
		n, err := p.FlagInt("max-frames")
		if err != nil || n < 0 {
			return CmdHelp, args, NewUsageError("--max-frames must be a non-negative integer, got %q", p.Flag("max-frames"))
		}
		args.MaxFrames = n
	}

	switch cmd := strings.ToLower(p.Subcommand()); cmd {
	case "", "run":
		if p.PositionalCount() > 1 {
			return CmdHelp, args, NewUsageError("unexpected argument %q", p.Positional(1))
		}
		return CmdRun, args, nil

	case "config":
		args.Subcommand = strings.ToLower(p.Positional(1))
		switch args.Subcommand {
		case "", "show", "path", "init":
		default:
			return CmdHelp, args, NewUsageError("unknown config subcommand %q", args.Subcommand)
		}
		if args.Subcommand == "" {
			args.Subcommand = "show"
		}
		return CmdConfig, args, nil

	case "version":
		return CmdVersion, args, nil

	case "help":
		return CmdHelp, args, nil

	default:
		return CmdHelp, args, NewUsageError("unknown command %q", cmd)
	}
}

// Execute runs cmd, writing normal output to stdout and logs or
// diagnostics to stderr.
func Execute(ctx context.Context, cmd Command, args Args, stdout, stderr io.Writer) error {
	switch cmd {
	case CmdRun:
		return Run(ctx, args, stdout, stderr)
	case CmdConfig:
		return HandleConfig(args, stdout)
	case CmdVersion:
		PrintVersion(stdout)
		return nil
	default:
		PrintUsage(stdout)
		return nil
	}
}
