// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jeranaias/frametrack/internal/assets"
	"github.com/jeranaias/frametrack/internal/config"
	"github.com/jeranaias/frametrack/internal/loop"
	"github.com/jeranaias/frametrack/internal/progress"
	"github.com/jeranaias/frametrack/internal/tasks"
)

// session wires the background workers to the frame loop for one run.
type session struct {
	loop    *loop.Loop
	queue   *tasks.Queue
	runner  *tasks.Runner
	source  *assets.Source
	watcher *assets.Watcher
	logger  *slog.Logger

	// stop ends the notification reader; drained closes when it has returned
	stop    chan struct{}
	drained chan struct{}
}

// newSession builds the loop and, when an asset directory is configured,
// the queue, runner, source and watcher feeding it.
//
// Without a watcher, the asset domain settles once its queue is idle with
// nothing counted, so an empty asset directory does not hold the run open.
func newSession(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*session, error) {
	s := &session{logger: logger}
	domains := cfg.LoopDomains()
	if cfg.Assets.Dir == "" {
		s.loop = loop.New(loop.Options{Domains: domains, Logger: logger})
		return s, nil
	}

	s.queue = tasks.NewQueueWithOptions(cfg.Assets.History, 0, logger)

	src, err := assets.NewSource(s.queue, assets.Options{
		Dir:        cfg.Assets.Dir,
		Domain:     progress.Tag(cfg.Assets.Domain),
		Extensions: cfg.Assets.Extensions,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open assets: %w", err)
	}
	s.source = src

	n, err := src.Scan()
	if err != nil {
		return nil, fmt.Errorf("failed to scan assets: %w", err)
	}
	logger.Info("assets scanned", "dir", src.Dir(), "domain", src.Domain(), "files", n)

	if !cfg.Assets.Watch {
		for i := range domains {
			if domains[i].Tag == src.Domain() {
				domains[i].Settled = s.queue.Idle
			}
		}
		if n == 0 {
			logger.Warn("no assets matched", "dir", src.Dir(), "extensions", cfg.Assets.Extensions)
		}
	}
	s.loop = loop.New(loop.Options{Domains: domains, Logger: logger})

	s.runner = tasks.NewRunnerWithOptions(s.queue, tasks.RunnerOptions{
		MaxConcurrent:   cfg.Assets.Workers,
		StartsPerSecond: cfg.Assets.LoadsPerSecond,
		Burst:           cfg.Assets.Burst,
		Logger:          logger,
	})
	s.runner.Start(ctx)

	s.stop = make(chan struct{})
	s.drained = make(chan struct{})
	go s.logFinished(ctx)

	if cfg.Assets.Watch {
		w, err := assets.NewWatcher(src, time.Duration(cfg.Assets.DebounceMS)*time.Millisecond)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to create watcher: %w", err)
		}
		if err := w.Watch(ctx); err != nil {
			w.Close()
			s.Close()
			return nil, fmt.Errorf("failed to watch assets: %w", err)
		}
		s.watcher = w
	}

	s.loop.AddReporter(s.queue)
	s.loop.OnReset(s.reload)
	return s, nil
}

// logFinished reads finished tasks off the queue until the session closes.
func (s *session) logFinished(ctx context.Context) {
	defer close(s.drained)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case n := <-s.queue.Notifications():
			if n.Status == tasks.TaskStatusFailed {
				s.logger.Warn("asset failed", "asset", n.Description, "domain", n.Domain, "error", n.Error)
				continue
			}
			s.logger.Debug("asset finished", "asset", n.Description, "status", n.Status, "duration", n.Duration)
		}
	}
}

// reload cancels outstanding loads and scans the asset directory again.
func (s *session) reload() {
	s.queue.Reset()
	s.source.Forget()

	n, err := s.source.Scan()
	if err != nil {
		s.logger.Warn("asset rescan failed", "dir", s.source.Dir(), "error", err)
		return
	}
	s.logger.Info("assets rescanned", "dir", s.source.Dir(), "files", n)
}

// failures returns failed loads per domain, or nil without an asset queue.
func (s *session) failures() map[progress.Tag]int {
	if s.queue == nil {
		return nil
	}
	return s.queue.Failures()
}

// Close stops the watcher, the runner and the notification reader.
func (s *session) Close() {
	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			s.logger.Warn("failed to close watcher", "error", err)
		}
	}
	if s.runner != nil {
		s.runner.Stop()
	}
	if s.stop != nil {
		close(s.stop)
		<-s.drained
		s.stop = nil
	}
	if s.queue != nil {
		s.logger.Info("asset queue finished", "stats", s.queue.Stats().String())
	}
}
