// Package watch re-runs a callback when migration or trigger artifacts
// change on disk, debouncing editor write bursts.
package watch

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hlop3z/strata/internal/sterr"
)

// DefaultDebounce collapses the save-rename-chmod bursts editors emit
// into a single callback invocation.
const DefaultDebounce = 300 * time.Millisecond

// Watch blocks, invoking onChange whenever a file in dirs is created,
// written, renamed or removed. It returns when ctx is cancelled.
func Watch(ctx context.Context, dirs []string, debounce time.Duration, onChange func()) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return sterr.Wrap(sterr.ErrInternal, err, "failed to create file watcher")
	}
	defer watcher.Close()

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return sterr.Wrap(sterr.ErrInternal, err, "failed to watch directory").
				With("dir", dir)
		}
	}

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			slog.Debug("artifact changed", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				timer.Reset(debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("file watcher error", "error", err)

		case <-timerC:
			timer = nil
			timerC = nil
			onChange()
		}
	}
}
