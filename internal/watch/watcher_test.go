// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestWatcherSeesWrites(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	var seen []string
	match := func(path string) bool { return strings.HasSuffix(path, ".php") }

	watcher, err := NewWatcher([]string{dir}, match, func(path string) {
		mu.Lock()
		seen = append(seen, path)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer watcher.Stop() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		watcher.Start(ctx)
		close(done)
	}()

	// Give the watcher a beat to register before writing.
	time.Sleep(100 * time.Millisecond)

	phpFile := filepath.Join(dir, "a.php")
	if err := os.WriteFile(phpFile, []byte("<?php\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := len(seen)
		mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("Timed out waiting for a watch event")
		case <-time.After(20 * time.Millisecond):
		}
	}

	mu.Lock()
	defer mu.Unlock()
	for _, path := range seen {
		if !strings.HasSuffix(path, ".php") {
			t.Errorf("Non-matching file passed the filter: %s", path)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("Watcher did not stop on context cancellation")
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	watcher, err := NewWatcher([]string{t.TempDir()}, nil, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	if err := watcher.Stop(); err != nil {
		t.Errorf("First Stop: %v", err)
	}
	// fsnotify tolerates a second Close.
	watcher.Stop() //nolint:errcheck
}
