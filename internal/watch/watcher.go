// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package watch re-checks analyzable files when they change on disk.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches directories for writes to analyzable files.
//
// # Description
//
// Recursively registers the given roots with fsnotify, re-registering
// subdirectories as they appear. Writes and creations of files passing
// the match filter invoke the callback; everything else is ignored.
// Events arrive sequentially, so callbacks never overlap.
//
// # Thread Safety
//
// Safe for concurrent use. Start should only be called once.
type Watcher struct {
	roots    []string
	match    func(path string) bool
	callback func(path string)
	watcher  *fsnotify.Watcher
}

// NewWatcher creates a watcher over the given root directories.
//
// # Inputs
//
//   - roots: Directories (or single files) to watch.
//   - match: File path filter; nil means every file.
//   - callback: Invoked with the path of each written matching file.
//
// # Outputs
//
//   - *Watcher: Ready-to-start watcher.
//   - error: Non-nil if watcher creation fails.
func NewWatcher(roots []string, match func(string) bool, callback func(string)) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		roots:    roots,
		match:    match,
		callback: callback,
		watcher:  watcher,
	}, nil
}

// Start begins watching. Blocks until the context is cancelled.
//
// # Description
//
// Registers each root (recursively for directories), then processes
// events until cancellation. Registration failures for individual
// directories are logged and skipped, not fatal; a root that cannot
// be walked at all is still only a warning, matching the tolerant
// propagation policy of check cycles.
//
// # Inputs
//
//   - ctx: Context for cancellation.
func (w *Watcher) Start(ctx context.Context) {
	for _, root := range w.roots {
		w.addRecursive(root)
	}

	slog.Debug("Started watching", "roots", w.roots)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Watcher error", "error", err)

		case <-ctx.Done():
			slog.Debug("Watcher stopping")
			return
		}
	}
}

// addRecursive registers a path and, for directories, everything below it.
func (w *Watcher) addRecursive(root string) {
	info, err := os.Stat(root)
	if err != nil {
		slog.Warn("Cannot watch path", "path", root, "error", err)
		return
	}

	if !info.IsDir() {
		if err := w.watcher.Add(filepath.Dir(root)); err != nil {
			slog.Warn("Failed to watch", "path", root, "error", err)
		}
		return
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Continue on error
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			slog.Debug("Failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
	if err != nil {
		slog.Warn("Walk failed", "root", root, "error", err)
	}
}

// handleEvent processes a single fsnotify event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	// New subdirectories need their own watch registration.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.addRecursive(event.Name)
			return
		}
	}

	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	if w.match != nil && !w.match(event.Name) {
		return
	}

	slog.Debug("File changed", "path", event.Name)

	if w.callback != nil {
		w.callback(event.Name)
	}
}

// Stop stops the watcher and releases resources.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}
