package ports

import (
	"architect/internal/engine/graph"
	"architect/internal/engine/parser"
	"architect/internal/engine/rules"
	"context"
	"time"
)

// Extractor turns a source file into its ordered top-level items.
type Extractor interface {
	Extract(path string) (*parser.File, error)
}

// FileDiscoverer lists the source files of a project.
type FileDiscoverer interface {
	Discover(root string) ([]string, error)
}

// Reporter renders diagnostics as they are produced. Violation and
// ParseFailure are called from worker goroutines and must be safe for
// concurrent use; the remaining methods run on the orchestrating goroutine.
type Reporter interface {
	Violation(v rules.Violation)
	ParseFailure(path string, err error)
	Warning(path string, err error)
	Cycles(cycles []graph.Cycle)
	Summary(summary Summary)
}

// Progress is a thread-safe progress indicator for the check phase.
type Progress interface {
	Start(total int)
	Increment()
	Finish()
}

// RunRecord is one persisted analysis run.
type RunRecord struct {
	ID            string
	Project       string
	StartedAt     time.Time
	Duration      time.Duration
	Files         int
	Violations    int
	ParseFailures int
	Cycles        int
	Warnings      int
	Passed        bool
}

// HistoryStore persists run records.
type HistoryStore interface {
	SaveRun(ctx context.Context, run RunRecord) error
	ListRuns(ctx context.Context, project string, limit int) ([]RunRecord, error)
}

// Summary is the final verdict of one run.
type Summary struct {
	Files         int
	Violations    int
	ParseFailures int
	Cycles        int
	Warnings      int
	Duration      time.Duration
	Passed        bool
}

// NopProgress discards progress updates.
type NopProgress struct{}

func (NopProgress) Start(int)  {}
func (NopProgress) Increment() {}
func (NopProgress) Finish()    {}
