// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/frametrack/internal/config"
	"github.com/jeranaias/frametrack/internal/loop"
	"github.com/jeranaias/frametrack/internal/progress"
	"github.com/jeranaias/frametrack/internal/ui/loader"
)

// =============================================================================
// ARG PARSER TESTS
// =============================================================================

func TestArgParser(t *testing.T) {
	p := NewArgParser([]string{"--watch", "run", "--fps", "60", "--config=x.toml", "--plain=false", "--", "--literal"}, "watch", "plain")

	assert.Equal(t, "run", p.Subcommand())
	assert.True(t, p.BoolFlag("watch"))
	assert.False(t, p.BoolFlag("plain"))
	assert.True(t, p.HasFlag("plain"))
	assert.Equal(t, "60", p.Flag("fps"))
	assert.Equal(t, "x.toml", p.Flag("--config"))
	assert.Equal(t, "--literal", p.Positional(1))
	assert.Equal(t, 2, p.PositionalCount())
	assert.Equal(t, []string{"config", "fps", "plain", "watch"}, p.FlagNames())

	n, err := p.FlagInt("fps")
	require.NoError(t, err)
	assert.Equal(t, 60, n)

	_, err = p.FlagInt("missing")
	assert.Error(t, err)
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"true", "YES", "y", "1", "on"} {
		b, err := ParseBoolString(s)
		require.NoError(t, err, s)
		assert.True(t, b, s)
	}
	for _, s := range []string{"false", "no", "N", "0", "off"} {
		b, err := ParseBoolString(s)
		require.NoError(t, err, s)
		assert.False(t, b, s)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

// =============================================================================
// PARSE TESTS
// =============================================================================

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		cmd  Command
		args Args
	}{
		{"default run", nil, CmdRun, Args{}},
		{"run flags", []string{"run", "--assets", "./a", "--watch", "--fps", "60", "--max-frames", "10", "--plain", "--no-color", "--json-log", "--compact"}, CmdRun,
			Args{AssetsDir: "./a", Watch: true, FPS: 60, MaxFrames: 10, Plain: true, NoColor: true, JSONLog: true, Compact: true}},
		{"flags before command", []string{"--watch", "run"}, CmdRun, Args{Watch: true}},
		{"config default", []string{"config"}, CmdConfig, Args{Subcommand: "show"}},
		{"config init", []string{"config", "init", "--force", "--config", "c.toml"}, CmdConfig, Args{Subcommand: "init", Force: true, ConfigPath: "c.toml"}},
		{"version", []string{"version"}, CmdVersion, Args{}},
		{"version flag", []string{"--version"}, CmdVersion, Args{}},
		{"help", []string{"help"}, CmdHelp, Args{}},
		{"help flag", []string{"run", "-h"}, CmdHelp, Args{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args, err := Parse(tt.argv)
			require.NoError(t, err)
			assert.Equal(t, tt.cmd, cmd)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := [][]string{
		{"launch"},
		{"run", "extra"},
		{"--bogus"},
		{"--fps", "fast"},
		{"--fps", "0"},
		{"--fps"},
		{"--max-frames", "-3"},
		{"config", "delete"},
	}

	for _, argv := range tests {
		t.Run(fmt.Sprint(argv), func(t *testing.T) {
			_, _, err := Parse(argv)
			require.Error(t, err)
			var usageErr *UsageError
			assert.True(t, errors.As(err, &usageErr))
			assert.Equal(t, ExitUsageError, GetExitCode(err))
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitGeneralError, GetExitCode(errors.New("boom")))
	assert.Equal(t, ExitConfigError, GetExitCode(fmt.Errorf("invalid config: %w",
		config.ValidateErrors{{Field: "loop.fps", Message: "bad"}})))

	var buf bytes.Buffer
	DisplayError(&buf, NewUsageError("unknown command %q", "x"))
	assert.Equal(t, "Error: unknown command \"x\"\nRun 'frametrack help' for usage.\n", buf.String())
}

func TestExecuteVersionAndHelp(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Execute(context.Background(), CmdVersion, Args{}, &out, &out))
	assert.Contains(t, out.String(), "frametrack version "+Version)

	out.Reset()
	require.NoError(t, Execute(context.Background(), CmdHelp, Args{}, &out, &out))
	assert.Contains(t, out.String(), "frametrack config init")
}

// =============================================================================
// CONFIG COMMAND TESTS
// =============================================================================

func TestHandleConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	args := Args{ConfigPath: path}

	var out bytes.Buffer
	args.Subcommand = "path"
	require.NoError(t, HandleConfig(args, &out))
	assert.Equal(t, path+"\n", out.String())

	out.Reset()
	args.Subcommand = "init"
	require.NoError(t, HandleConfig(args, &out))
	assert.Contains(t, out.String(), "Wrote "+path)

	// A second init refuses to overwrite without --force.
	err := HandleConfig(args, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	args.Force = true
	require.NoError(t, HandleConfig(args, &out))

	out.Reset()
	args.Subcommand = "show"
	require.NoError(t, HandleConfig(args, &out))
	assert.Contains(t, out.String(), "[loop]")
	assert.Contains(t, out.String(), "fps = 30")
}

func TestApplyFlags(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, applyFlags(cfg, Args{AssetsDir: "./a", Watch: true, FPS: 60, MaxFrames: 5, JSONLog: true}))
	assert.Equal(t, "./a", cfg.Assets.Dir)
	assert.True(t, cfg.Assets.Watch)
	assert.Equal(t, 60, cfg.Loop.FPS)
	assert.Equal(t, uint64(5), cfg.Loop.MaxFrames)
	assert.Equal(t, "json", cfg.Logging.Format)

	err := applyFlags(config.Default(), Args{FPS: 1000})
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, GetExitCode(err))
}

// =============================================================================
// RUN TESTS
// =============================================================================

func TestRunPlainStopsWhenComplete(t *testing.T) {
	cfg := config.Default()
	cfg.Loop.FPS = 200
	l := loop.New(loop.Options{Domains: []loop.Domain{{Tag: "world", PersistDoneTasks: 3, Gate: true}}})

	var out bytes.Buffer
	res, err := runPlain(context.Background(), &out, l, cfg)
	require.NoError(t, err)
	assert.Equal(t, loader.ExitComplete, res.Reason)
	assert.Equal(t, uint64(1), res.Frame.Number)
	assert.Equal(t, "[frame 1] world 100%\n", out.String())
}

func TestRunPlainPrintsOnlyChanges(t *testing.T) {
	cfg := config.Default()
	cfg.Loop.FPS = 200
	cfg.Loop.MaxFrames = 4
	l := loop.New(loop.Options{Domains: []loop.Domain{{Tag: "world", PersistTasks: 2, Gate: true}}})

	var out bytes.Buffer
	res, err := runPlain(context.Background(), &out, l, cfg)
	require.NoError(t, err)
	assert.Equal(t, loader.ExitMaxFrames, res.Reason)
	assert.Equal(t, "[frame 1] world 0%\n", out.String())
}

func TestRunPlainInterrupted(t *testing.T) {
	cfg := config.Default()
	cfg.Loop.FPS = 200
	cfg.Loop.QuitWhenComplete = false
	l := loop.New(loop.Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	res, err := runPlain(ctx, &bytes.Buffer{}, l, cfg)
	require.NoError(t, err)
	assert.Equal(t, loader.ExitInterrupted, res.Reason)
}

func TestRunLoadsAssets(t *testing.T) {
	dir := t.TempDir()
	assetDir := filepath.Join(dir, "assets")
	require.NoError(t, os.MkdirAll(assetDir, 0755))
	for _, name := range []string{"a.png", "b.png", "c.json", "skip.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(assetDir, name), []byte(name), 0644))
	}

	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(`
[loop]
fps = 100
max_frames = 1000

[[domains]]
name = "shaders"
persist_done_tasks = 42

[assets]
extensions = ["png", "json"]

[logging]
file = %q
`, filepath.Join(dir, "frametrack.log"))), 0644))

	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), Args{ConfigPath: cfgPath, AssetsDir: assetDir, Plain: true}, &stdout, &stderr)
	require.NoError(t, err)

	out := stdout.String()
	assert.Contains(t, out, "Stopped **complete**")
	assert.Contains(t, out, "| assets (gate) | 3 | 3 | 100% | 0 |")
	assert.Contains(t, out, "| shaders | 42 | 42 | 100% | 0 |")
	assert.Empty(t, stderr.String(), "logs go to the configured file")

	logData, err := os.ReadFile(filepath.Join(dir, "frametrack.log"))
	require.NoError(t, err)
	assert.Contains(t, string(logData), "assets scanned")
}

func TestRunMissingAssetDir(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[loop]\nfps = 100\n"), 0644))

	err := Run(context.Background(), Args{ConfigPath: cfgPath, AssetsDir: "/does/not/exist", Plain: true}, &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open assets")
}

// =============================================================================
// SUMMARY TESTS
// =============================================================================

func TestSummaryMarkdown(t *testing.T) {
	res := loader.Result{
		Reason: loader.ExitMaxFrames,
		Frame: loop.Frame{Number: 1200, Domains: []loop.DomainStatus{
			{Tag: "assets", Counts: progress.Counts{Tasks: 4, Done: 3}, Ratio: 0.75, Defined: true, Gate: true},
			{Tag: "network"},
		}},
	}

	md := summaryMarkdown(res, map[progress.Tag]int{"assets": 1}, 1500*time.Millisecond)
	assert.Contains(t, md, "Stopped **max-frames** after 1,200 frames (1.5s).")
	assert.Contains(t, md, "| assets (gate) | 3 | 4 | 75% | 1 |")
	assert.Contains(t, md, "| network | 0 | 0 | waiting | 0 |")
	assert.Contains(t, md, "Overall: 3 of 4 tasks (75%).")

	empty := summaryMarkdown(loader.Result{}, nil, 0)
	assert.Contains(t, empty, "No domains were registered.")
}

func TestPrintSummary(t *testing.T) {
	var raw bytes.Buffer
	require.NoError(t, printSummary(&raw, "# title\n", false, false, 80))
	assert.Equal(t, "# title\n", raw.String())

	var rendered bytes.Buffer
	require.NoError(t, printSummary(&rendered, "# title\n\nbody\n", true, true, 80))
	assert.Contains(t, rendered.String(), "title")
	assert.Contains(t, rendered.String(), "body")
}
