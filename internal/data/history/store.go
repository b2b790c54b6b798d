package history

import (
	"architect/internal/core/ports"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	driverName     = "sqlite"
	maxAttempts    = 5
	defaultProject = "default"

	// Fixed-width so timestamps sort lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

// Store keeps one row per analysis run in a SQLite file.
type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

var _ ports.HistoryStore = (*Store)(nil)

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts when watch mode writes often.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func (s *Store) SaveRun(ctx context.Context, run ports.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if strings.TrimSpace(run.Project) == "" {
		run.Project = defaultProject
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	passed := 0
	if run.Passed {
		passed = 1
	}

	const query = `
INSERT INTO runs (
  id, project, started_at_utc, duration_ms, file_count, violation_count,
  parse_failure_count, cycle_count, warning_count, passed
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`
	return s.withRetry("save run", func() error {
		_, err := s.db.ExecContext(ctx, query,
			run.ID,
			run.Project,
			run.StartedAt.UTC().Format(timeLayout),
			run.Duration.Milliseconds(),
			run.Files,
			run.Violations,
			run.ParseFailures,
			run.Cycles,
			run.Warnings,
			passed,
		)
		return err
	})
}

// ListRuns returns the most recent runs of project, newest first. An empty
// project lists every project; limit <= 0 means no limit.
func (s *Store) ListRuns(ctx context.Context, project string, limit int) ([]ports.RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
SELECT id, project, started_at_utc, duration_ms, file_count, violation_count,
  parse_failure_count, cycle_count, warning_count, passed
FROM runs
`
	args := make([]any, 0, 2)
	if p := strings.TrimSpace(project); p != "" {
		query += " WHERE project = ?"
		args = append(args, p)
	}
	query += " ORDER BY started_at_utc DESC, id ASC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var rows *sql.Rows
	err := s.withRetry("list runs", func() error {
		var qErr error
		rows, qErr = s.db.QueryContext(ctx, query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]ports.RunRecord, 0)
	for rows.Next() {
		var (
			run        ports.RunRecord
			startedRaw string
			durationMS int64
			passed     int
		)
		if err := rows.Scan(
			&run.ID,
			&run.Project,
			&startedRaw,
			&durationMS,
			&run.Files,
			&run.Violations,
			&run.ParseFailures,
			&run.Cycles,
			&run.Warnings,
			&passed,
		); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}

		started, err := time.Parse(timeLayout, startedRaw)
		if err != nil {
			return nil, fmt.Errorf("parse run timestamp %q: %w", startedRaw, err)
		}
		run.StartedAt = started.UTC()
		run.Duration = time.Duration(durationMS) * time.Millisecond
		run.Passed = passed != 0
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
