// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assets

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// FSNOTIFY WATCHER
// =============================================================================

// Watcher adds files that appear in a Source's directory while it runs.
// Changes are debounced so a file still being written is loaded once.
type Watcher struct {
	src      *Source
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]time.Time

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewWatcher creates a watcher for src.
func NewWatcher(src *Source, debounce time.Duration) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	return &Watcher{
		src:      src,
		watcher:  w,
		debounce: debounce,
		pending:  make(map[string]time.Time),
		done:     make(chan struct{}),
	}, nil
}

// Watch starts watching until ctx is done. Call Close to release resources.
func (w *Watcher) Watch(ctx context.Context) error {
	if err := w.addRecursive(w.src.dir); err != nil {
		return err
	}

	w.wg.Add(2)
	go w.processEvents(ctx)
	go w.processPending(ctx)
	return nil
}

// Close stops watching and waits for the event goroutines to exit.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	w.wg.Wait()
	return err
}

// addRecursive adds a directory and all its non-hidden subdirectories.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(info.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.src.logger.Warn("cannot watch asset directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}

			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				if event.Op&fsnotify.Create != 0 {
					if err := w.addRecursive(event.Name); err != nil {
						w.src.logger.Warn("cannot watch new directory", "path", event.Name, "error", err)
					}
					// Files may have landed before the directory was watched.
					if _, err := w.src.Scan(); err != nil {
						w.src.logger.Warn("rescan failed", "error", err)
					}
				}
				continue
			}

			if w.src.Matches(event.Name) {
				w.mu.Lock()
				w.pending[event.Name] = time.Now()
				w.mu.Unlock()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.src.logger.Warn("asset watcher error", "error", err)
		}
	}
}

// processPending enqueues files whose last change is older than the debounce.
func (w *Watcher) processPending(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return

		case <-ticker.C:
			now := time.Now()

			w.mu.Lock()
			var ready []string
			for path, changed := range w.pending {
				if now.Sub(changed) >= w.debounce {
					ready = append(ready, path)
					delete(w.pending, path)
				}
			}
			w.mu.Unlock()

			for _, path := range ready {
				added, err := w.src.Add(path)
				if err != nil {
					w.src.logger.Warn("cannot queue new asset", "path", path, "error", err)
					continue
				}
				if added {
					w.src.logger.Info("new asset queued", "path", path)
				}
			}
		}
	}
}
