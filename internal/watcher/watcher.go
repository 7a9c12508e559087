// Package watcher reloads the mood log when its data files change on disk.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last event before
// reloading. Both keys are written back to back, so one reload covers both.
const DefaultDebounce = 200 * time.Millisecond

// Reloader re-reads persisted state and reports whether it changed.
type Reloader interface {
	Reload(ctx context.Context) bool
}

// ReloadCallback is called after a reload that changed the store.
type ReloadCallback func()

// Watch watches dir for changes to the named files and reloads r until ctx is
// cancelled. cb (if non-nil) runs after each reload that changed the store.
func Watch(ctx context.Context, r Reloader, dir string, files []string, debounce time.Duration, logger *slog.Logger, cb ReloadCallback) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directory, not the files: atomic writes replace the inode.
	if err := w.Add(dir); err != nil {
		return err
	}

	watched := make(map[string]struct{}, len(files))
	for _, f := range files {
		watched[f] = struct{}{}
	}

	logger.Info("watcher: started", slog.String("dir", dir))

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			if r.Reload(ctx) {
				logger.Info("watcher: store reloaded")
				if cb != nil {
					cb()
				}
			} else {
				logger.Debug("watcher: no change")
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if _, ok := watched[filepath.Base(ev.Name)]; !ok {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			logger.Debug("watcher: change", slog.String("file", ev.Name), slog.String("op", ev.Op.String()))
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
