// # internal/engine/parser/cache.go
package parser

import (
	"container/list"
	"sync"
)

// Source yields the extracted items of one file.
type Source interface {
	Extract(path string) (*File, error)
}

// CachedSource memoizes successful extractions by path in a bounded LRU so
// the check phase and the graph phase parse each file once. Failures are not
// cached. Every path is written by a single worker per run; a concurrent
// second extraction of the same path only costs a redundant parse.
type CachedSource struct {
	inner Source

	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List // front = most-recently used
	hits     int
	misses   int
}

type cacheEntry struct {
	path string
	file *File
}

// NewCachedSource wraps inner. Capacity <= 0 is normalised to 1.
func NewCachedSource(inner Source, capacity int) *CachedSource {
	if capacity <= 0 {
		capacity = 1
	}
	return &CachedSource{
		inner:    inner,
		capacity: capacity,
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

func (c *CachedSource) Extract(path string) (*File, error) {
	if file, ok := c.get(path); ok {
		return file, nil
	}
	file, err := c.inner.Extract(path)
	if err != nil {
		return nil, err
	}
	c.put(path, file)
	return file, nil
}

// Stats returns cache hits and misses so far.
func (c *CachedSource) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *CachedSource) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Evict drops path so the next Extract re-parses it.
func (c *CachedSource) Evict(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[path]
	if !ok {
		return
	}
	c.order.Remove(el)
	delete(c.items, path)
}

func (c *CachedSource) get(path string) (*File, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[path]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).file, true
}

func (c *CachedSource) put(path string, file *File) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[path]; ok {
		c.order.MoveToFront(el)
		el.Value.(*cacheEntry).file = file
		return
	}
	if c.order.Len() >= c.capacity {
		if back := c.order.Back(); back != nil {
			c.order.Remove(back)
			delete(c.items, back.Value.(*cacheEntry).path)
		}
	}
	c.items[path] = c.order.PushFront(&cacheEntry{path: path, file: file})
}
