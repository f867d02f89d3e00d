package rules

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 300 * time.Millisecond

// Watcher reloads the cache when the rules file changes on disk. The watch is
// on the containing directory: editors commonly replace the file via rename,
// which drops a watch placed on the file itself.
type Watcher struct {
	cache *Cache
}

func NewWatcher(cache *Cache) *Watcher {
	return &Watcher{cache: cache}
}

func (w *Watcher) Run(ctx context.Context) error {
	dir := filepath.Dir(w.cache.Path())
	file := filepath.Base(w.cache.Path())

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}

	var timer *time.Timer
	reload := make(chan struct{}, 1)
	debounce := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(reloadDebounce, func() {
			select {
			case reload <- struct{}{}:
			default:
			}
		})
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-reload:
			if err := w.cache.Reload(); err != nil {
				slog.Warn("Rules reload failed, keeping previous set", "file", w.cache.Path(), "error", err)
			}
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.EqualFold(filepath.Base(event.Name), file) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounce()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if err != nil {
				slog.Warn("Rules watch error", "error", err)
			}
		}
	}
}
