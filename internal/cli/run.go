// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/frametrack/internal/config"
	"github.com/jeranaias/frametrack/internal/logging"
	"github.com/jeranaias/frametrack/internal/loop"
	"github.com/jeranaias/frametrack/internal/ui/components"
	"github.com/jeranaias/frametrack/internal/ui/loader"
	"github.com/jeranaias/frametrack/internal/ui/styles"
)

// Run executes the run command: the TUI on a terminal, line output otherwise.
func Run(ctx context.Context, args Args, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	if err := applyFlags(cfg, args); err != nil {
		return err
	}

	tty := IsStdoutTTY()
	plain := args.Plain || !tty
	noColor := !ColorsEnabled(cfg.UI.NoColor)
	if noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	// The TUI owns the terminal, so logs only go to stderr in plain mode.
	var fallback io.Writer
	if plain {
		fallback = stderr
	}
	logger, closer, err := logging.Setup(cfg.Logging, fallback)
	if err != nil {
		return err
	}
	defer closer.Close()

	runCtx, cancel := context.WithCancel(ctx)
	sess, err := newSession(runCtx, cfg, logger)
	if err != nil {
		cancel()
		return err
	}
	defer func() {
		cancel()
		sess.Close()
	}()

	start := time.Now()
	var res loader.Result
	if plain {
		res, err = runPlain(runCtx, stdout, sess.loop, cfg)
	} else {
		res, err = loader.Run(runCtx, loader.Options{
			Loop:             sess.loop,
			FPS:              cfg.Loop.FPS,
			MaxFrames:        cfg.Loop.MaxFrames,
			QuitWhenComplete: cfg.Loop.QuitWhenComplete,
			Compact:          cfg.UI.Compact,
			Width:            cfg.UI.Width,
			Theme:            styles.NewTheme(noColor),
			Logger:           logger,
		})
		if err != nil && runCtx.Err() != nil {
			err = nil
		}
	}
	if err != nil {
		return err
	}

	logger.Info("run finished", "reason", res.Reason.String(), "frames", res.Frame.Number)

	md := summaryMarkdown(res, sess.failures(), time.Since(start))
	return printSummary(stdout, md, tty, noColor, GetTerminalWidth())
}

// runPlain drives the loop without a TUI and prints a line whenever any
// domain's progress changes.
func runPlain(ctx context.Context, w io.Writer, l *loop.Loop, cfg *config.Config) (loader.Result, error) {
	theme := styles.NewTheme(true)
	interval := time.Second / time.Duration(cfg.Loop.FPS)

	var res loader.Result
	last := ""
	err := l.Run(ctx, interval, func(f loop.Frame) bool {
		res.Frame = f

		line := components.FrameView{Frame: f, Compact: true, Theme: theme}.Render()
		if line != last {
			fmt.Fprintf(w, "[frame %d] %s\n", f.Number, line)
			last = line
		}

		if f.Ready() && cfg.Loop.QuitWhenComplete {
			res.Reason = loader.ExitComplete
			return false
		}
		if cfg.Loop.MaxFrames > 0 && f.Number >= cfg.Loop.MaxFrames {
			res.Reason = loader.ExitMaxFrames
			return false
		}
		return true
	})
	if err != nil && ctx.Err() != nil {
		res.Reason = loader.ExitInterrupted
		return res, nil
	}
	return res, err
}
