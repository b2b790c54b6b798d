// # internal/core/watcher/watcher.go
package watcher

import (
	"architect/internal/shared/observability"
	"architect/internal/shared/util"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// PathFilter decides which paths under the watched root matter.
type PathFilter interface {
	Excluded(root, path string) bool
	ExcludedDir(root, dir string) bool
	Supported(path string) bool
}

type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	root       string
	debounce   time.Duration
	filter     PathFilter
	throttle   *util.Throttle
	onChange   func([]string)
	callbackMu sync.Mutex

	pending   map[string]struct{}
	pendingMu sync.Mutex
	timer     *time.Timer
	closed    bool
}

// NewWatcher batches source changes for debounce and hands them to onChange.
// A nil throttle disables rate limiting.
func NewWatcher(debounce time.Duration, filter PathFilter, throttle *util.Throttle, onChange func([]string)) (*Watcher, error) {
	if onChange == nil || filter == nil {
		return nil, os.ErrInvalid
	}
	if throttle == nil {
		throttle = util.NewThrottle(0, 1)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fsWatcher: fsw,
		debounce:  debounce,
		filter:    filter,
		throttle:  throttle,
		onChange:  onChange,
		pending:   make(map[string]struct{}),
	}, nil
}

func (w *Watcher) Watch(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	w.root = abs
	if err := w.watchRecursive(abs); err != nil {
		return err
	}

	go w.run()
	return nil
}

func (w *Watcher) watchRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.filter.ExcludedDir(w.root, path) {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			observability.WatcherEventsTotal.Inc()

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.watchRecursive(event.Name); err != nil {
						slog.Warn("watcher: failed to watch new directory", "path", event.Name, "error", err)
					}
					continue
				}
			}

			if !w.relevant(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.scheduleChange(event.Name, w.debounce)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(path string) bool {
	return w.filter.Supported(path) && !w.filter.Excluded(w.root, path)
}

func (w *Watcher) scheduleChange(path string, delay time.Duration) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	if w.closed {
		return
	}
	if path != "" {
		w.pending[path] = struct{}{}
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(delay, w.flushChanges)
}

func (w *Watcher) flushChanges() {
	w.pendingMu.Lock()
	empty := len(w.pending) == 0
	w.pendingMu.Unlock()
	if empty {
		return
	}

	if !w.throttle.Allow() {
		observability.WatcherDroppedTotal.Inc()
		delay := w.throttle.Delay()
		if delay < w.debounce {
			delay = w.debounce
		}
		slog.Debug("watcher: re-run throttled", "retry_in", delay)
		w.scheduleChange("", delay)
		return
	}

	w.pendingMu.Lock()
	paths := util.SortedStringKeys(w.pending)
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	if len(paths) > 0 {
		w.callbackMu.Lock()
		defer w.callbackMu.Unlock()
		w.onChange(paths)
	}
}

func (w *Watcher) Close() error {
	w.pendingMu.Lock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()
	return w.fsWatcher.Close()
}
