package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/heatmap"
	"github.com/gogpu/heatmap/palette"
)

// ReloadDelay is how long Watch waits after the last change to a file before
// reloading it. Editors often write a file in several steps.
const ReloadDelay = 100 * time.Millisecond

// Watch reloads the panel file at path whenever it changes and calls fn with
// the result. A file that fails to load is reported through fn's error.
//
// The parent directory is watched rather than the file itself, so editors
// that replace the file by renaming keep working. Watch returns once the
// watcher is set up; it stops when ctx is done.
func Watch(ctx context.Context, path string, fn func(palette.Panel, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watch: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return fmt.Errorf("config: watch: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return fmt.Errorf("config: watch %s: %w", path, err)
	}
	go watchLoop(ctx, w, abs, fn)
	return nil
}

func watchLoop(ctx context.Context, w *fsnotify.Watcher, path string, fn func(palette.Panel, error)) {
	defer w.Close()

	// Fires once per burst of events.
	timer := time.NewTimer(ReloadDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(ReloadDelay)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			heatmap.Logger().Warn("config: watch", "path", path, "err", err)
		case <-timer.C:
			p, err := Load(path)
			fn(p, err)
		}
	}
}
