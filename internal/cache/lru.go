package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRUCache is a fixed-capacity cache with per-entry TTL. Month views are
// keyed by (user, project, month); the TTL bounds how stale a view can get
// when a worker rewrites the month behind the server's back.
type LRUCache[T any] struct {
	mu      sync.Mutex
	cap     int
	ttl     time.Duration
	byKey   map[string]*list.Element
	recency *list.List // front = most recently used
}

type entry[T any] struct {
	key      string
	value    T
	deadline time.Time
}

func NewLRUCache[T any](capacity int, ttl time.Duration) *LRUCache[T] {
	return &LRUCache[T]{
		cap:     capacity,
		ttl:     ttl,
		byKey:   make(map[string]*list.Element, capacity),
		recency: list.New(),
	}
}

// Get returns the cached value when present and not expired. An expired
// entry is dropped on the spot.
func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, ok := c.byKey[key]
	if !ok {
		return zero, false
	}

	e := elem.Value.(*entry[T])
	if time.Now().After(e.deadline) {
		c.drop(elem)
		return zero, false
	}

	c.recency.MoveToFront(elem)
	return e.value, true
}

// Set stores a value, refreshing the TTL. The least recently used entry is
// evicted when the cache is full.
func (c *LRUCache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry[T]{
		key:      key,
		value:    value,
		deadline: time.Now().Add(c.ttl),
	}

	if elem, ok := c.byKey[key]; ok {
		elem.Value = e
		c.recency.MoveToFront(elem)
		return
	}

	c.byKey[key] = c.recency.PushFront(e)

	if c.recency.Len() > c.cap {
		if oldest := c.recency.Back(); oldest != nil {
			c.drop(oldest)
		}
	}
}

// Delete removes a key. Used to invalidate a month view after a write.
func (c *LRUCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.byKey[key]; ok {
		c.drop(elem)
	}
}

// CleanExpired removes every expired entry and reports how many went.
func (c *LRUCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0

	elem := c.recency.Front()
	for elem != nil {
		next := elem.Next()
		if now.After(elem.Value.(*entry[T]).deadline) {
			c.drop(elem)
			removed++
		}
		elem = next
	}
	return removed
}

// Size returns the current number of entries.
func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byKey)
}

func (c *LRUCache[T]) drop(elem *list.Element) {
	delete(c.byKey, elem.Value.(*entry[T]).key)
	c.recency.Remove(elem)
}
