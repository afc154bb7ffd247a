// Package cache provides a generic, thread-safe LRU cache with built-in
// statistics. The service layer uses it to cache query results keyed by
// request digest and engine generation.
package cache

import (
	"container/list"
	"sync"

	"github.com/c360/semkernel/errors"
)

// Cache is the generic cache interface, parameterized by value type V.
type Cache[V any] interface {
	// Get retrieves a value by key. Returns the zero value and false on miss.
	Get(key string) (V, bool)

	// Set stores a value. Returns true if a new entry was created, false
	// if an existing entry was updated.
	Set(key string, value V) (bool, error)

	// Delete removes an entry. Returns true if the key existed.
	Delete(key string) bool

	// Clear removes all entries.
	Clear()

	// Size returns the current number of entries.
	Size() int

	// Stats returns cache statistics. Always non-nil.
	Stats() *Statistics
}

// lruEntry is one entry in the LRU ordering list.
type lruEntry[V any] struct {
	key   string
	value V
}

// lruCache evicts the least recently used entry when maxSize is exceeded.
type lruCache[V any] struct {
	mu      sync.RWMutex
	maxSize int
	items   map[string]*list.Element
	order   *list.List // front = most recently used
	stats   *Statistics
}

// NewLRU creates an LRU cache holding at most maxSize entries.
func NewLRU[V any](maxSize int) (Cache[V], error) {
	if maxSize <= 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "cache", "NewLRU",
			"max size must be > 0")
	}
	return &lruCache[V]{
		maxSize: maxSize,
		items:   make(map[string]*list.Element),
		order:   list.New(),
		stats:   NewStatistics(),
	}, nil
}

// Get retrieves a value and marks it most recently used.
func (c *lruCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, exists := c.items[key]
	if !exists {
		var zero V
		c.stats.Miss()
		return zero, false
	}
	c.order.MoveToFront(element)
	c.stats.Hit()
	return element.Value.(*lruEntry[V]).value, true
}

// Set stores a value, evicting the least recently used entry if full.
func (c *lruCache[V]) Set(key string, value V) (bool, error) {
	if key == "" {
		return false, errors.WrapInvalid(errors.ErrInvalidConfig, "cache", "Set",
			"key must be non-empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if element, exists := c.items[key]; exists {
		element.Value.(*lruEntry[V]).value = value
		c.order.MoveToFront(element)
		return false, nil
	}

	if c.order.Len() >= c.maxSize {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*lruEntry[V]).key)
			c.stats.Evict()
		}
	}

	c.items[key] = c.order.PushFront(&lruEntry[V]{key: key, value: value})
	c.stats.SetSize(c.order.Len())
	return true, nil
}

// Delete removes an entry by key.
func (c *lruCache[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, exists := c.items[key]
	if !exists {
		return false
	}
	c.order.Remove(element)
	delete(c.items, key)
	c.stats.SetSize(c.order.Len())
	return true
}

// Clear removes all entries.
func (c *lruCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
	c.stats.SetSize(0)
}

// Size returns the current number of entries.
func (c *lruCache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.order.Len()
}

// Stats returns the cache statistics.
func (c *lruCache[V]) Stats() *Statistics {
	return c.stats
}
