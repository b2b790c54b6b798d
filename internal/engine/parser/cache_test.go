// # internal/engine/parser/cache_test.go
package parser

import (
	"fmt"
	"sync"
	"testing"
)

type countingSource struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]bool
}

func newCountingSource() *countingSource {
	return &countingSource{calls: make(map[string]int), fail: make(map[string]bool)}
}

func (s *countingSource) Extract(path string) (*File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[path]++
	if s.fail[path] {
		return nil, fmt.Errorf("cannot parse %s", path)
	}
	return &File{Path: path}, nil
}

func TestCachedSource_HitAfterMiss(t *testing.T) {
	inner := newCountingSource()
	c := NewCachedSource(inner, 4)

	for i := 0; i < 3; i++ {
		f, err := c.Extract("a.ts")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Path != "a.ts" {
			t.Fatalf("unexpected path %q", f.Path)
		}
	}
	if inner.calls["a.ts"] != 1 {
		t.Fatalf("expected 1 inner call, got %d", inner.calls["a.ts"])
	}
	hits, misses := c.Stats()
	if hits != 2 || misses != 1 {
		t.Fatalf("expected 2 hits / 1 miss, got %d / %d", hits, misses)
	}
}

func TestCachedSource_FailuresAreNotCached(t *testing.T) {
	inner := newCountingSource()
	inner.fail["bad.ts"] = true
	c := NewCachedSource(inner, 4)

	for i := 0; i < 2; i++ {
		if _, err := c.Extract("bad.ts"); err == nil {
			t.Fatal("expected error")
		}
	}
	if inner.calls["bad.ts"] != 2 {
		t.Fatalf("expected failures to be retried, got %d calls", inner.calls["bad.ts"])
	}
	if c.Len() != 0 {
		t.Fatalf("expected empty cache, got %d", c.Len())
	}
}

func TestCachedSource_EvictsLeastRecentlyUsed(t *testing.T) {
	inner := newCountingSource()
	c := NewCachedSource(inner, 2)

	_, _ = c.Extract("a.ts")
	_, _ = c.Extract("b.ts")
	_, _ = c.Extract("a.ts") // b becomes LRU
	_, _ = c.Extract("c.ts")

	if c.Len() != 2 {
		t.Fatalf("expected len 2, got %d", c.Len())
	}
	_, _ = c.Extract("b.ts")
	if inner.calls["b.ts"] != 2 {
		t.Fatalf("expected b.ts to be re-extracted after eviction, got %d calls", inner.calls["b.ts"])
	}
	if inner.calls["a.ts"] != 1 {
		t.Fatalf("expected a.ts to stay cached, got %d calls", inner.calls["a.ts"])
	}
}

func TestCachedSource_ExplicitEvict(t *testing.T) {
	inner := newCountingSource()
	c := NewCachedSource(inner, 4)

	_, _ = c.Extract("a.ts")
	c.Evict("a.ts")
	c.Evict("missing.ts")
	_, _ = c.Extract("a.ts")
	if inner.calls["a.ts"] != 2 {
		t.Fatalf("expected re-extract after Evict, got %d calls", inner.calls["a.ts"])
	}
}

func TestCachedSource_Concurrent(t *testing.T) {
	inner := newCountingSource()
	c := NewCachedSource(inner, 64)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				path := fmt.Sprintf("f%d.ts", (i+j)%32)
				if _, err := c.Extract(path); err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		}(i)
	}
	wg.Wait()
	if c.Len() != 32 {
		t.Fatalf("expected 32 cached files, got %d", c.Len())
	}
}
