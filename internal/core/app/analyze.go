package app

import (
	"architect/internal/engine/graph"
	"architect/internal/engine/parser"
	"architect/internal/engine/rules"
	"architect/internal/shared/observability"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

func (a *App) discover(ctx context.Context) ([]string, error) {
	_, span := observability.Tracer.Start(ctx, "app.discover")
	defer span.End()
	defer observePhase("discover", time.Now())

	files, err := a.discoverer.Discover(a.root)
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", a.root, err)
	}
	span.SetAttributes(attribute.Int("files", len(files)))
	return files, nil
}

// Analyze checks every file in parallel, then builds the dependency graph and
// detects cycles once all checks have finished.
func (a *App) Analyze(ctx context.Context, files []string) Result {
	ctx, span := observability.Tracer.Start(ctx, "app.Analyze",
		trace.WithAttributes(attribute.Int("files", len(files))))
	defer span.End()

	source := a.newRunCache(len(files))

	violations, parseFailures := a.checkPhase(ctx, files, source)
	g, cycles, warnings := a.graphPhase(ctx, files, source)

	hits, misses := source.Stats()
	slog.Debug("extraction cache", "hits", hits, "misses", misses)

	span.SetAttributes(
		attribute.Int("violations", violations),
		attribute.Int("cycles", len(cycles)),
	)
	return Result{
		Files:         len(files),
		Violations:    violations,
		ParseFailures: parseFailures,
		Cycles:        cycles,
		Warnings:      warnings,
		Graph:         g,
	}
}

// violationCounter is the only state shared by check workers.
type violationCounter struct {
	mu            sync.Mutex
	violations    int
	parseFailures int
}

func (c *violationCounter) add(violations, parseFailures int) {
	c.mu.Lock()
	c.violations += violations + parseFailures
	c.parseFailures += parseFailures
	c.mu.Unlock()
}

func (a *App) checkPhase(ctx context.Context, files []string, source parser.Source) (int, int) {
	_, span := observability.Tracer.Start(ctx, "app.checkPhase")
	defer span.End()
	defer observePhase("check", time.Now())

	var counter violationCounter
	a.progress.Start(len(files))
	defer a.progress.Finish()

	var g errgroup.Group
	g.SetLimit(a.workers)
	for _, filePath := range files {
		g.Go(func() error {
			defer a.progress.Increment()
			a.checkFile(filePath, source, &counter)
			return nil
		})
	}
	_ = g.Wait()

	return counter.violations, counter.parseFailures
}

func (a *App) checkFile(filePath string, source parser.Source, counter *violationCounter) {
	observability.FilesChecked.Inc()

	file, err := source.Extract(filePath)
	if err != nil {
		observability.ParseFailuresTotal.Inc()
		a.reporter.ParseFailure(filePath, err)
		counter.add(0, 1)
		return
	}

	found := rules.Check(filePath, file, a.rules)
	for _, v := range found {
		observability.ViolationsTotal.WithLabelValues(string(v.Kind)).Inc()
		a.reporter.Violation(v)
	}
	if len(found) > 0 {
		counter.add(len(found), 0)
	}
}

func (a *App) graphPhase(ctx context.Context, files []string, source parser.Source) (g *graph.Graph, cycles []graph.Cycle, warnings []graph.BuildWarning) {
	_, span := observability.Tracer.Start(ctx, "app.graphPhase")
	defer span.End()
	defer observePhase("graph", time.Now())

	defer func() {
		if r := recover(); r != nil {
			slog.Warn("graph: construction failed, skipping cycle detection", "error", r)
			g, cycles = nil, nil
		}
	}()

	g, warnings = graph.NewBuilder(a.root, source).Build(files)
	for _, w := range warnings {
		a.reporter.Warning(w.Path, w.Err)
	}

	start := time.Now()
	cycles = graph.DetectCycles(g)
	observePhase("cycles", start)
	observability.CyclesDetected.Set(float64(len(cycles)))
	span.SetAttributes(
		attribute.Int("nodes", g.NodeCount()),
		attribute.Int("edges", g.EdgeCount()),
	)
	return g, cycles, warnings
}

func observePhase(phase string, start time.Time) {
	observability.PhaseDuration.WithLabelValues(phase).Observe(time.Since(start).Seconds())
}
