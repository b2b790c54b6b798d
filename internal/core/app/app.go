package app

import (
	"architect/internal/core/ports"
	"architect/internal/engine/graph"
	"architect/internal/engine/parser"
	"architect/internal/engine/rules"
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Options wires the orchestrator to its collaborators. Progress and History
// are optional.
type Options struct {
	Root       string
	Project    string
	Rules      *rules.Context
	Extractor  ports.Extractor
	Discoverer ports.FileDiscoverer
	Reporter   ports.Reporter
	Progress   ports.Progress
	History    ports.HistoryStore
	Workers    int
}

type App struct {
	root       string
	project    string
	rules      *rules.Context
	extractor  ports.Extractor
	discoverer ports.FileDiscoverer
	reporter   ports.Reporter
	progress   ports.Progress
	history    ports.HistoryStore
	workers    int
}

func New(opts Options) (*App, error) {
	var missing []string
	if opts.Root == "" {
		missing = append(missing, "root")
	}
	if opts.Rules == nil {
		missing = append(missing, "rules")
	}
	if opts.Extractor == nil {
		missing = append(missing, "extractor")
	}
	if opts.Discoverer == nil {
		missing = append(missing, "discoverer")
	}
	if opts.Reporter == nil {
		missing = append(missing, "reporter")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("app: missing %s", strings.Join(missing, ", "))
	}

	a := &App{
		root:       opts.Root,
		project:    opts.Project,
		rules:      opts.Rules,
		extractor:  opts.Extractor,
		discoverer: opts.Discoverer,
		reporter:   opts.Reporter,
		progress:   opts.Progress,
		history:    opts.History,
		workers:    opts.Workers,
	}
	if a.project == "" {
		a.project = opts.Root
	}
	if a.progress == nil {
		a.progress = ports.NopProgress{}
	}
	if a.workers <= 0 {
		a.workers = runtime.GOMAXPROCS(0)
	}
	return a, nil
}

// Result is the aggregated outcome of one run. Violations counts rule
// violations and parse failures alike.
type Result struct {
	Files         int
	Violations    int
	ParseFailures int
	Cycles        []graph.Cycle
	Warnings      []graph.BuildWarning
	Duration      time.Duration

	// Graph is nil when the graph phase could not complete.
	Graph *graph.Graph
}

func (r Result) Passed() bool {
	return r.Violations == 0 && len(r.Cycles) == 0
}

func (r Result) ExitCode() int {
	if r.Passed() {
		return 0
	}
	return 1
}

func (r Result) Summary() ports.Summary {
	return ports.Summary{
		Files:         r.Files,
		Violations:    r.Violations,
		ParseFailures: r.ParseFailures,
		Cycles:        len(r.Cycles),
		Warnings:      len(r.Warnings),
		Duration:      r.Duration,
		Passed:        r.Passed(),
	}
}

// Run discovers the project's files and analyzes them.
func (a *App) Run(ctx context.Context) (Result, error) {
	started := time.Now()
	files, err := a.discover(ctx)
	if err != nil {
		return Result{}, err
	}

	if len(files) == 0 {
		slog.Info("no source files found", "root", a.root)
		result := Result{Duration: time.Since(started)}
		a.reporter.Summary(result.Summary())
		return result, nil
	}

	result := a.Analyze(ctx, files)
	result.Duration = time.Since(started)
	a.reporter.Cycles(result.Cycles)
	a.reporter.Summary(result.Summary())
	a.record(ctx, started, result)
	return result, nil
}

func (a *App) record(ctx context.Context, started time.Time, result Result) {
	if a.history == nil {
		return
	}
	run := ports.RunRecord{
		ID:            uuid.NewString(),
		Project:       a.project,
		StartedAt:     started,
		Duration:      result.Duration,
		Files:         result.Files,
		Violations:    result.Violations,
		ParseFailures: result.ParseFailures,
		Cycles:        len(result.Cycles),
		Warnings:      len(result.Warnings),
		Passed:        result.Passed(),
	}
	if err := a.history.SaveRun(ctx, run); err != nil {
		slog.Warn("history: failed to save run", "error", err)
	}
}

// newRunCache returns a per-run extraction cache shared by both phases.
func (a *App) newRunCache(files int) *parser.CachedSource {
	return parser.NewCachedSource(a.extractor, files)
}
