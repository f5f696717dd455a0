// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/jeranaias/frametrack/internal/config"
)

// HandleConfig handles "config show|path|init".
func HandleConfig(args Args, w io.Writer) error {
	switch args.Subcommand {
	case "", "show":
		cfg, err := loadConfig(args)
		if err != nil {
			return err
		}
		data, err := cfg.TOML()
		if err != nil {
			return &CommandError{Command: "config", Action: "show", Err: err}
		}
		_, err = w.Write(data)
		return err

	case "path":
		path, err := configPath(args)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, path)
		return nil

	case "init":
		path, err := configPath(args)
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !args.Force {
			return &CommandError{
				Command: "config",
				Action:  "init",
				Err:     fmt.Errorf("%s already exists (use --force to overwrite)", path),
			}
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &CommandError{Command: "config", Action: "init", Err: err}
		}
		if err := config.SaveTOML(config.Default(), path); err != nil {
			return &CommandError{Command: "config", Action: "init", Err: err}
		}
		fmt.Fprintf(w, "Wrote %s\n", path)
		return nil

	default:
		return NewUsageError("unknown config subcommand %q", args.Subcommand)
	}
}

// loadConfig loads --config when given, otherwise the default locations.
func loadConfig(args Args) (*config.Config, error) {
	if args.ConfigPath != "" {
		return config.LoadFromPath(args.ConfigPath)
	}
	return config.Load()
}

func configPath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	return config.ConfigPathTOML()
}

// applyFlags layers run flags over the loaded configuration and
// revalidates the result.
func applyFlags(cfg *config.Config, args Args) error {
	if args.AssetsDir != "" {
		cfg.Assets.Dir = args.AssetsDir
	}
	if args.Watch {
		cfg.Assets.Watch = true
	}
	if args.FPS > 0 {
		cfg.Loop.FPS = args.FPS
	}
	if args.MaxFrames > 0 {
		cfg.Loop.MaxFrames = uint64(args.MaxFrames)
	}
	if args.Compact {
		cfg.UI.Compact = true
	}
	if args.NoColor {
		cfg.UI.NoColor = true
	}
	if args.JSONLog {
		cfg.Logging.Format = "json"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
