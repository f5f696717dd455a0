// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/frametrack/internal/config"
	"github.com/jeranaias/frametrack/internal/progress"
	"github.com/jeranaias/frametrack/internal/tasks"
	"github.com/jeranaias/frametrack/internal/ui/loader"
)

func sessionConfig(dir string) *config.Config {
	cfg := config.Default()
	cfg.Loop.FPS = 200
	cfg.Loop.MaxFrames = 400
	cfg.Assets.Dir = dir
	return cfg
}

func openSession(t *testing.T, cfg *config.Config, logger *slog.Logger) *session {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	sess, err := newSession(ctx, cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		cancel()
		sess.Close()
	})
	return sess
}

func TestSessionEmptyAssetDirIsReady(t *testing.T) {
	sess := openSession(t, sessionConfig(t.TempDir()), slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	var out bytes.Buffer
	res, err := runPlain(context.Background(), &out, sess.loop, sessionConfig(""))
	require.NoError(t, err)
	assert.Equal(t, loader.ExitComplete, res.Reason)
	assert.Equal(t, uint64(1), res.Frame.Number)
	assert.Equal(t, "[frame 1] assets empty\n", out.String())
}

func TestSessionWatchedEmptyAssetDirWaits(t *testing.T) {
	cfg := sessionConfig(t.TempDir())
	cfg.Assets.Watch = true
	cfg.Loop.MaxFrames = 3
	sess := openSession(t, cfg, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	var out bytes.Buffer
	res, err := runPlain(context.Background(), &out, sess.loop, cfg)
	require.NoError(t, err)
	assert.Equal(t, loader.ExitMaxFrames, res.Reason)
	assert.Equal(t, "[frame 1] assets --\n", out.String())
}

func TestSessionLogsFinishedAssets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ok.png"), []byte("png"), 0644))
	require.NoError(t, os.Symlink(filepath.Join(dir, "missing.png"), filepath.Join(dir, "broken.png")))

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg := sessionConfig(dir)
	ctx, cancel := context.WithCancel(context.Background())
	sess, err := newSession(ctx, cfg, logger)
	require.NoError(t, err)

	res, err := runPlain(context.Background(), &bytes.Buffer{}, sess.loop, cfg)
	require.NoError(t, err)
	assert.Equal(t, loader.ExitComplete, res.Reason)
	assert.Equal(t, map[progress.Tag]int{"assets": 1}, sess.failures())

	require.Eventually(t, func() bool { return len(sess.queue.Notifications()) == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	sess.Close()

	out := logs.String()
	assert.Contains(t, out, "asset failed")
	assert.Contains(t, out, "broken.png")
	assert.Contains(t, out, "asset finished")
	assert.Contains(t, out, "asset queue finished")
	assert.NotContains(t, out, "notification channel full")
}

func TestSessionResetReloadsAssets(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0644))
	}
	sess := openSession(t, sessionConfig(dir), slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	require.Eventually(t, func() bool { return sess.loop.Step().Ready() }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, tasks.Stats{Complete: 2}, sess.queue.Stats())

	// A new file is picked up by the reload that runs with Reset.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.png"), []byte("c"), 0644))
	sess.loop.Reset()

	f := sess.loop.Step()
	d, ok := f.Domain("assets")
	require.True(t, ok)
	assert.Equal(t, uint64(3), d.Counts.Tasks, "retired and finished loads are forgotten")

	require.Eventually(t, func() bool { return sess.loop.Step().Ready() }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, tasks.Stats{Complete: 3}, sess.queue.Stats())
}
