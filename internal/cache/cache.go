// Package cache memoizes rendered element artifacts across a batch.
package cache

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCapacity is the number of artifacts kept when no capacity is configured
const DefaultCapacity = 4096

// Key identifies a rendered artifact by everything that affects its pixels
type Key struct {
	Kind       string
	Value      string
	Color      string
	Background string
	Width      float64
	Height     float64
	Format     string
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%s/%s:%gx%g:%s", k.Kind, k.Value, k.Color, k.Background, k.Width, k.Height, k.Format)
}

// Stats is a point-in-time snapshot of cache counters
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Len       int
}

// HitRate returns hits / (hits + misses), or 0 before any lookup
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache is a thread-safe LRU of rendered artifacts. Two callers missing the same
// key concurrently both render; the later store wins, which is harmless because
// renders are deterministic.
type Cache[V any] struct {
	entries *lru.Cache[Key, V]

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates a cache holding up to capacity artifacts.
// If capacity <= 0, DefaultCapacity is used.
func New[V any](capacity int) *Cache[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	entries, err := lru.New[Key, V](capacity)
	if err != nil {
		// lru.New only fails on a non-positive size
		panic(fmt.Sprintf("cache: %v", err))
	}
	return &Cache[V]{entries: entries}
}

// Get returns a cached artifact
func (c *Cache[V]) Get(key Key) (V, bool) {
	v, ok := c.entries.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Add stores an artifact, evicting the least recently used one when full
func (c *Cache[V]) Add(key Key, value V) {
	if c.entries.Add(key, value) {
		c.evictions.Add(1)
	}
}

// GetOrRender returns the cached artifact for key or renders and stores it.
// Render errors are returned to the caller and never cached.
func (c *Cache[V]) GetOrRender(key Key, render func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err := render()
	if err != nil {
		var zero V
		return zero, err
	}
	c.Add(key, v)
	return v, nil
}

// Clear drops every artifact. Counters are kept.
func (c *Cache[V]) Clear() {
	c.entries.Purge()
}

// Len returns the number of cached artifacts
func (c *Cache[V]) Len() int {
	return c.entries.Len()
}

// Stats returns the current counters
func (c *Cache[V]) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Len:       c.entries.Len(),
	}
}

// ResetStats zeroes the hit, miss and eviction counters
func (c *Cache[V]) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}
