// Package cache provides a TTL-bounded LRU with explicit, injectable hit and
// miss accounting. Counters live on a Stats value owned by the caller, never
// in package-level state.
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
	"time"
)

// Stats collects cache hit/miss counters. Create one per process and share
// it with whoever reports on it; Reset starts a new measurement window.
type Stats struct {
	hits   atomic.Int64
	misses atomic.Int64
}

func (s *Stats) Hits() int64   { return s.hits.Load() }
func (s *Stats) Misses() int64 { return s.misses.Load() }

// Reset zeroes both counters.
func (s *Stats) Reset() {
	s.hits.Store(0)
	s.misses.Store(0)
}

func (s *Stats) recordHit() {
	if s != nil {
		s.hits.Add(1)
	}
}

func (s *Stats) recordMiss() {
	if s != nil {
		s.misses.Add(1)
	}
}

// LRU is a size-bounded cache with per-entry TTL expiry.
type LRU[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	order   *list.List
	stats   *Stats
}

type entry[T any] struct {
	key       string
	value     T
	expiresAt time.Time
}

// NewLRU creates a cache holding at most maxSize entries for at most ttl
// each. stats may be nil when no accounting is wanted.
func NewLRU[T any](maxSize int, ttl time.Duration, stats *Stats) *LRU[T] {
	return &LRU[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		order:   list.New(),
		stats:   stats,
	}
}

// Get returns the cached value for key, counting a hit or miss. Expired
// entries count as misses and are dropped.
func (c *LRU[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, exists := c.items[key]
	if !exists {
		c.stats.recordMiss()
		return zero, false
	}

	item := elem.Value.(*entry[T])
	if time.Now().After(item.expiresAt) {
		c.remove(elem)
		c.stats.recordMiss()
		return zero, false
	}

	c.order.MoveToFront(elem)
	c.stats.recordHit()
	return item.value, true
}

// Set stores a value, evicting the least recently used entry when full.
func (c *LRU[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := &entry[T]{key: key, value: value, expiresAt: time.Now().Add(c.ttl)}

	if elem, exists := c.items[key]; exists {
		elem.Value = item
		c.order.MoveToFront(elem)
		return
	}

	c.items[key] = c.order.PushFront(item)
	if c.order.Len() > c.maxSize {
		if oldest := c.order.Back(); oldest != nil {
			c.remove(oldest)
		}
	}
}

// Delete removes a key if present.
func (c *LRU[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, exists := c.items[key]; exists {
		c.remove(elem)
	}
}

// Size returns the current number of entries.
func (c *LRU[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *LRU[T]) remove(elem *list.Element) {
	item := elem.Value.(*entry[T])
	delete(c.items, item.key)
	c.order.Remove(elem)
}
