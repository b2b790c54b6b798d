package history

import (
	"architect/internal/core/ports"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestStore_OpenInitializesSchemaAndSaveList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)
	first := ports.RunRecord{
		Project:    "shop",
		StartedAt:  base,
		Duration:   1500 * time.Millisecond,
		Files:      8,
		Violations: 2,
		Cycles:     1,
		Passed:     false,
	}
	second := ports.RunRecord{
		ID:        "fixed-id",
		Project:   "shop",
		StartedAt: base.Add(time.Hour),
		Files:     9,
		Warnings:  1,
		Passed:    true,
	}
	for _, run := range []ports.RunRecord{first, second} {
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("save run: %v", err)
		}
	}

	got, err := store.ListRuns(ctx, "shop", 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(got))
	}
	if got[0].ID != "fixed-id" || !got[0].Passed || got[0].Warnings != 1 {
		t.Fatalf("expected newest run first, got %+v", got[0])
	}
	if got[1].ID == "" {
		t.Fatal("expected generated run id")
	}
	if got[1].Duration != 1500*time.Millisecond || got[1].Violations != 2 || got[1].Cycles != 1 {
		t.Fatalf("expected counters to roundtrip, got %+v", got[1])
	}
	if !got[1].StartedAt.Equal(base) {
		t.Fatalf("expected start %v, got %v", base, got[1].StartedAt)
	}

	limited, err := store.ListRuns(ctx, "shop", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d rows", len(limited))
	}
}

func TestStore_ProjectIsolation(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.SaveRun(ctx, ports.RunRecord{Project: "a", Files: 1}); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveRun(ctx, ports.RunRecord{Project: "b", Files: 2}); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveRun(ctx, ports.RunRecord{Files: 3}); err != nil {
		t.Fatal(err)
	}

	aRows, err := store.ListRuns(ctx, "a", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(aRows) != 1 || aRows[0].Files != 1 {
		t.Fatalf("unexpected project a rows: %+v", aRows)
	}

	defaults, err := store.ListRuns(ctx, defaultProject, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(defaults) != 1 || defaults[0].Files != 3 {
		t.Fatalf("expected blank project to be stored as default, got %+v", defaults)
	}

	all, err := store.ListRuns(ctx, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs across projects, got %d", len(all))
	}
}

func TestStore_OpenRejectsDirectoryPath(t *testing.T) {
	_, err := Open(t.TempDir())
	if err == nil {
		t.Fatal("expected open error for directory path")
	}
	if !strings.Contains(err.Error(), "is a directory") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStore_OpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestStore_OpenCorruptDBPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	if err := os.WriteFile(path, []byte("this is not sqlite"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(path)
	if err == nil {
		t.Fatal("expected sqlite open error")
	}
	lower := strings.ToLower(err.Error())
	if !strings.Contains(lower, "not a database") && !strings.Contains(lower, "schema") {
		t.Fatalf("expected schema/open error, got: %v", err)
	}
}

func TestEnsureSchema_DetectsNewerVersionDrift(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if _, err := store.db.Exec(`INSERT OR REPLACE INTO schema_migrations(version) VALUES (?)`, SchemaVersion+1); err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open(driverName, "file:"+path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	err = EnsureSchema(db)
	if err == nil {
		t.Fatal("expected drift error")
	}
	if !strings.Contains(err.Error(), "newer than supported") {
		t.Fatalf("unexpected error: %v", err)
	}
}
