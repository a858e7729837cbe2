package windows

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/chess10kp/hexpanel/internal/loop"
)

// Watch refreshes the tracker shortly after the snapshot at path is written.
// The parent directory is watched so atomic replacements are seen. Watch
// blocks until ctx is cancelled. The tracker's Scheduler must accept calls
// from other goroutines.
func (t *Tracker) Watch(ctx context.Context, path string, debounce time.Duration) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create snapshot watcher: %w", err)
	}
	defer w.Close()

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	t.logger.Debug("watching window snapshot", zap.String("path", path))

	target := filepath.Clean(path)
	var pending loop.Timer
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = t.opts.Scheduler.After(debounce, t.Refresh)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			t.logger.Warn("snapshot watcher error", zap.Error(err))
		}
	}
}
