package main

import (
	"architect/internal/core/app"
	"architect/internal/core/config"
	"architect/internal/core/errors"
	"architect/internal/core/ports"
	"architect/internal/data/history"
	"architect/internal/engine/discovery"
	"architect/internal/engine/parser"
	"architect/internal/shared/observability"
	"architect/internal/ui/cli"
	"architect/internal/ui/report"
	"architect/internal/ui/report/formats"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
)

// interactive is swapped in tests so prompts never open.
var interactive = cli.IsInteractive

const (
	watchDebounce    = 300 * time.Millisecond
	watchMinInterval = time.Second
)

func runCheck(ctx context.Context, args []string, opts *options, stdout, stderr io.Writer) (int, error) {
	root, err := resolveRoot(args)
	if err != nil {
		return 1, err
	}
	cfg, err := loadConfig(root, stderr)
	if err != nil {
		return 1, err
	}
	if opts.checkExported {
		cfg.CheckExportedClasses = true
	}
	ruleCtx, err := cfg.RuleContext(opts.policy)
	if err != nil {
		return 1, errors.Wrap(err, errors.CodeConfiguration, "invalid check policy")
	}
	slog.Debug("configuration loaded",
		"source", cfg.Source,
		"pattern", cfg.ArchitecturePattern,
		"max_lines", ruleCtx.MaxLines(),
		"forbidden_rules", len(cfg.ForbiddenImports),
		"policy", ruleCtx.Policy(),
		"exported_classes", ruleCtx.ChecksExportedClasses(),
	)

	shutdown, err := observability.InitTracing(ctx)
	if err != nil {
		slog.Warn("tracing disabled", "error", err)
	} else {
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				slog.Warn("failed to flush traces", "error", err)
			}
		}()
	}

	if opts.graphOut != "" {
		if _, err := formats.FormatFor(opts.graphOut); err != nil {
			return 1, errors.Wrap(err, errors.CodeValidationError, "invalid --graph-out")
		}
	}

	extractor := parser.NewParser(nil)
	scanner, err := discovery.NewScanner(extractor.SupportedExtensions(), discovery.DefaultExcludeDirs, cfg.Exclude)
	if err != nil {
		return 1, errors.Wrap(err, errors.CodeConfiguration, "invalid exclude pattern")
	}

	var progress ports.Progress
	if !opts.noProgress && interactive() {
		progress = cli.NewProgressBar(stderr)
	}

	var store ports.HistoryStore
	if opts.historyDB != "" {
		s, err := history.Open(opts.historyDB)
		if err != nil {
			return 1, err
		}
		defer s.Close()
		store = s
	}

	a, err := app.New(app.Options{
		Root:       root,
		Project:    root,
		Rules:      ruleCtx,
		Extractor:  extractor,
		Discoverer: scanner,
		Reporter:   report.New(stdout),
		Progress:   progress,
		History:    store,
		Workers:    opts.workers,
	})
	if err != nil {
		return 1, err
	}

	if opts.watch {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
	}

	result, err := a.Run(ctx)
	if err != nil {
		return 1, err
	}
	writeArtifacts(opts, result)

	if !opts.watch {
		return result.ExitCode(), nil
	}

	err = a.Watch(ctx, app.WatchOptions{
		Filter:      scanner,
		Debounce:    watchDebounce,
		MinInterval: watchMinInterval,
		OnRun: func(result app.Result) {
			writeArtifacts(opts, result)
		},
	})
	return 0, err
}

// resolveRoot returns the canonical project root from the argument, or asks
// the user to pick one when none was given.
func resolveRoot(args []string) (string, error) {
	var path string
	if len(args) > 0 {
		path = args[0]
	} else {
		if !interactive() {
			return "", errors.New(errors.CodeConfiguration, "no project path given and no terminal to pick one")
		}
		picked, err := cli.PickProject()
		if err != nil {
			return "", errors.Wrap(err, errors.CodeConfiguration, "no project selected")
		}
		path = picked
	}
	return canonicalRoot(path)
}

func canonicalRoot(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "resolve project root"), errors.CtxPath, path)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "project root is not accessible"), errors.CtxPath, abs)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "project root is not accessible"), errors.CtxPath, resolved)
	}
	if !info.IsDir() {
		return "", errors.AddContext(errors.New(errors.CodeValidationError, "project root is not a directory"), errors.CtxPath, resolved)
	}
	return resolved, nil
}

// loadConfig reads the project configuration, running the wizard when none
// exists and a terminal is available.
func loadConfig(root string, stderr io.Writer) (*config.Config, error) {
	cfg, err := config.Load(root)
	if err == nil {
		return cfg, nil
	}
	if !errors.IsCode(err, errors.CodeNotFound) {
		return nil, err
	}
	if !interactive() {
		return nil, errors.AddContext(
			errors.Wrap(err, errors.CodeConfiguration, "no configuration file and no terminal to create one"),
			errors.CtxPath, root,
		)
	}

	fmt.Fprintf(stderr, "No %s found in %s. Let's configure this project.\n", config.FileJSON, root)
	cfg, err = cli.RunWizard(root)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfiguration, "configuration wizard")
	}
	path, err := config.Save(root, cfg)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(stderr, "✔ Configuration saved to %s\n", path)
	return config.LoadFile(path)
}

// writeArtifacts writes the optional per-run outputs. Failures are logged;
// they never change the verdict.
func writeArtifacts(opts *options, result app.Result) {
	if opts.metricsFile != "" {
		if err := observability.WriteMetricsFile(opts.metricsFile); err != nil {
			slog.Warn("failed to write metrics file", "path", opts.metricsFile, "error", err)
		}
	}
	if opts.graphOut != "" && result.Graph != nil {
		if err := formats.WriteFile(opts.graphOut, result.Graph, result.Cycles); err != nil {
			slog.Warn("failed to export dependency graph", "path", opts.graphOut, "error", err)
		}
	}
}
