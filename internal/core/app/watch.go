package app

import (
	"architect/internal/core/watcher"
	"architect/internal/shared/util"
	"context"
	"log/slog"
	"time"
)

type WatchOptions struct {
	Filter   watcher.PathFilter
	Debounce time.Duration
	// MinInterval is the minimum time between two re-runs.
	MinInterval time.Duration
	// OnRun receives the result of each re-run.
	OnRun func(Result)
}

// Watch re-runs the full analysis whenever a source file changes, until ctx
// is cancelled. The graph depends on every file, so each change triggers a
// complete run.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	w, err := watcher.NewWatcher(
		opts.Debounce,
		opts.Filter,
		util.NewThrottle(opts.MinInterval, 1),
		func(paths []string) {
			slog.Info("change detected, re-running analysis", "files", len(paths))
			result, err := a.Run(ctx)
			if err != nil {
				slog.Error("watch: run failed", "error", err)
				return
			}
			if opts.OnRun != nil {
				opts.OnRun(result)
			}
		},
	)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch(a.root); err != nil {
		return err
	}
	slog.Info("watching for changes", "root", a.root)

	<-ctx.Done()
	return nil
}
