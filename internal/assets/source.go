// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assets turns files in a directory into load tasks.
package assets

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jeranaias/frametrack/internal/progress"
	"github.com/jeranaias/frametrack/internal/tasks"
)

// LoadFunc consumes the contents of one asset file.
type LoadFunc func(ctx context.Context, path string, data []byte) error

// Options configures a Source.
type Options struct {
	// Dir is the root directory scanned for assets
	Dir string

	// Domain is the progress domain load tasks are counted in
	Domain progress.Tag

	// Extensions limits scanning to these file extensions (empty = all files)
	Extensions []string

	// Load is called with each file's contents (nil = read only)
	Load LoadFunc

	Logger *slog.Logger
}

// Source enqueues one load task per asset file, never the same path twice.
type Source struct {
	dir    string
	domain progress.Tag
	exts   map[string]bool
	load   LoadFunc
	queue  *tasks.Queue
	logger *slog.Logger

	mu   sync.Mutex
	seen map[string]bool
}

// NewSource creates a source that adds tasks to queue.
func NewSource(queue *tasks.Queue, opts Options) (*Source, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("asset directory is required")
	}
	info, err := os.Stat(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open asset directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("asset path %s is not a directory", opts.Dir)
	}

	if opts.Domain == "" {
		opts.Domain = "assets"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	exts := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		exts[normalizeExt(ext)] = true
	}

	return &Source{
		dir:    opts.Dir,
		domain: opts.Domain,
		exts:   exts,
		load:   opts.Load,
		queue:  queue,
		logger: opts.Logger,
		seen:   make(map[string]bool),
	}, nil
}

// Dir returns the scanned directory.
func (s *Source) Dir() string { return s.dir }

// Domain returns the progress domain of the tasks this source creates.
func (s *Source) Domain() progress.Tag { return s.domain }

// Scan walks the directory and enqueues every matching file not seen before.
// It returns the number of tasks added.
func (s *Source) Scan() (int, error) {
	added := 0
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Warn("skipping unreadable asset path", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			if path != s.dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		ok, err := s.Add(path)
		if err != nil {
			return err
		}
		if ok {
			added++
		}
		return nil
	})
	if err != nil {
		return added, fmt.Errorf("failed to scan %s: %w", s.dir, err)
	}
	s.logger.Debug("asset scan finished", "dir", s.dir, "added", added)
	return added, nil
}

// Add enqueues a load task for path if it matches and was not added before.
func (s *Source) Add(path string) (bool, error) {
	if !s.Matches(path) {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seen[path] {
		return false, nil
	}

	rel, err := filepath.Rel(s.dir, path)
	if err != nil {
		rel = filepath.Base(path)
	}

	task := tasks.NewTask("Load "+filepath.ToSlash(rel), s.domain, s.loadTask(path))
	if err := s.queue.Add(task); err != nil {
		return false, fmt.Errorf("failed to queue %s: %w", rel, err)
	}
	s.seen[path] = true
	return true, nil
}

// Matches reports whether path has one of the configured extensions and is
// not a hidden file.
func (s *Source) Matches(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if len(s.exts) == 0 {
		return true
	}
	return s.exts[strings.ToLower(filepath.Ext(base))]
}

// Seen returns the number of paths enqueued so far.
func (s *Source) Seen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

// Forget clears the set of enqueued paths so the next Scan adds every
// matching file again.
func (s *Source) Forget() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = make(map[string]bool)
}

func (s *Source) loadTask(path string) tasks.WorkFunc {
	return func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read asset: %w", err)
		}
		if s.load == nil {
			return nil
		}
		return s.load(ctx, path, data)
	}
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
