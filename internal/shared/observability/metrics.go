package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "architect_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "architect_graph_nodes_total",
		Help: "Total number of nodes in the dependency graph.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "architect_graph_edges_total",
		Help: "Total number of edges in the dependency graph.",
	})

	PhaseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "architect_phase_seconds",
		Help:    "Time spent in each phase of a run (discover, check, graph, cycles).",
		Buckets: prometheus.DefBuckets,
	}, []string{"phase"})

	FilesChecked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "architect_files_checked_total",
		Help: "Total number of source files processed by the rule checker.",
	})

	ViolationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "architect_violations_total",
		Help: "Total number of violations reported, by kind.",
	}, []string{"kind"})

	ParseFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "architect_parse_failures_total",
		Help: "Total number of files that could not be parsed.",
	})

	CyclesDetected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "architect_cycles_detected",
		Help: "Number of circular dependencies found by the last run.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "architect_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	WatcherDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "architect_watcher_dropped_total",
		Help: "Total number of re-runs suppressed by the watcher rate limit.",
	})
)

// WriteMetricsFile dumps the default registry in the Prometheus text format,
// suitable for the node_exporter textfile collector.
func WriteMetricsFile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
