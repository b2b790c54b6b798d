// # internal/core/watcher/watcher_test.go
package watcher

import (
	"architect/internal/engine/discovery"
	"architect/internal/shared/util"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newFilter(t *testing.T) *discovery.Scanner {
	t.Helper()
	s, err := discovery.NewScanner([]string{".ts", ".js"}, append([]string{"exclude_dir"}, discovery.DefaultExcludeDirs...), []string{"*.spec.ts"})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func waitFor(t *testing.T, ch <-chan []string, want string, timeout time.Duration) {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case paths := <-ch:
			for _, p := range paths {
				if p == want {
					return
				}
			}
		case <-deadline:
			t.Fatalf("timed out waiting for change to %s", want)
		}
	}
}

func TestNewWatcher_RejectsNilCallback(t *testing.T) {
	w, err := NewWatcher(100*time.Millisecond, newFilter(t), nil, nil)
	if !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("expected os.ErrInvalid, got %v", err)
	}
	if w != nil {
		t.Fatal("expected nil watcher when callback is invalid")
	}
}

func TestWatcher(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, "exclude_dir"), 0o755); err != nil {
		t.Fatal(err)
	}

	changedFiles := make(chan []string, 8)
	w, err := NewWatcher(50*time.Millisecond, newFilter(t), nil, func(paths []string) {
		changedFiles <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch(tmpDir); err != nil {
		t.Fatal(err)
	}

	testFile := filepath.Join(tmpDir, "app.ts")
	if err := os.WriteFile(testFile, []byte("export {};"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, changedFiles, testFile, 2*time.Second)

	for _, ignored := range []string{
		filepath.Join(tmpDir, "notes.md"),
		filepath.Join(tmpDir, "app.spec.ts"),
		filepath.Join(tmpDir, "exclude_dir", "x.ts"),
	} {
		if err := os.WriteFile(ignored, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	select {
	case paths := <-changedFiles:
		t.Errorf("excluded files triggered a change: %v", paths)
	case <-time.After(300 * time.Millisecond):
	}

	subdir := filepath.Join(tmpDir, "newdir")
	if err := os.MkdirAll(subdir, 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	nested := filepath.Join(subdir, "nested.ts")
	if err := os.WriteFile(nested, []byte("export {};"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, changedFiles, nested, 2*time.Second)
}

func TestWatcher_ThrottleDefersButKeepsChanges(t *testing.T) {
	tmpDir := t.TempDir()

	changedFiles := make(chan []string, 8)
	throttle := util.NewThrottle(400*time.Millisecond, 1)
	w, err := NewWatcher(20*time.Millisecond, newFilter(t), throttle, func(paths []string) {
		changedFiles <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.Watch(tmpDir); err != nil {
		t.Fatal(err)
	}

	first := filepath.Join(tmpDir, "a.ts")
	if err := os.WriteFile(first, []byte("1"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, changedFiles, first, 2*time.Second)

	second := filepath.Join(tmpDir, "b.ts")
	start := time.Now()
	if err := os.WriteFile(second, []byte("2"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, changedFiles, second, 3*time.Second)
	if elapsed := time.Since(start); elapsed < 200*time.Millisecond {
		t.Fatalf("expected throttled re-run to be deferred, fired after %v", elapsed)
	}
}
