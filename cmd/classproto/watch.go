// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	// watchDebounce is how long a file must stay quiet before it is
	// processed. Editors often save in several writes.
	watchDebounce = 300 * time.Millisecond

	watchTick = 100 * time.Millisecond
)

// fileWatcher re-runs a handler for watched files once they settle.
//
// Parent directories are watched rather than the files, so files replaced
// by rename (atomic saves) keep being tracked.
type fileWatcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]bool
	pending  map[string]time.Time
	debounce time.Duration
	now      func() time.Time
	handle   func(ctx context.Context, path string)
	logger   *slog.Logger
}

func newFileWatcher(files []string, handle func(context.Context, string), logger *slog.Logger) (*fileWatcher, error) {
	tracked := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", f, err)
		}
		tracked[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	return &fileWatcher{
		watcher:  w,
		files:    tracked,
		pending:  make(map[string]time.Time),
		debounce: watchDebounce,
		now:      time.Now,
		handle:   handle,
		logger:   logger,
	}, nil
}

// run blocks until ctx is done or the watcher fails.
func (fw *fileWatcher) run(ctx context.Context) error {
	defer fw.watcher.Close()

	ticker := time.NewTicker(watchTick)
	defer ticker.Stop()

	fw.logger.Info("watching files", slog.Int("file_count", len(fw.files)))
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return nil
			}
			fw.record(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return nil
			}
			fw.logger.Warn("watch error", slog.String("error", err.Error()))

		case <-ticker.C:
			fw.flush(ctx)
		}
	}
}

// record notes a write or create of a tracked file.
func (fw *fileWatcher) record(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	path, err := filepath.Abs(event.Name)
	if err != nil || !fw.files[path] {
		return
	}
	fw.logger.Debug("file changed", slog.String("path", path), slog.String("op", event.Op.String()))
	fw.pending[path] = fw.now()
}

// flush handles files that have been quiet for the debounce window.
func (fw *fileWatcher) flush(ctx context.Context) {
	now := fw.now()
	for path, at := range fw.pending {
		if now.Sub(at) < fw.debounce {
			continue
		}
		delete(fw.pending, path)
		fw.handle(ctx, path)
	}
}

// watch processes files again whenever they change, until ctx is done.
func (a *app) watch(ctx context.Context, files []string, handle func(context.Context, string)) error {
	fw, err := newFileWatcher(files, handle, a.logger)
	if err != nil {
		return err
	}
	return fw.run(ctx)
}
