// Package cache provides an in-process LRU cache for embedding vectors.
// Transcripts repeat segments across runs and reference corpora are re-embedded
// on every reload, so caching by text avoids redundant provider calls.
package cache

import (
	"container/list"
	"slices"
	"sync"
	"time"
)

const (
	DefaultCapacity = 1000
	DefaultTTL      = 30 * time.Minute
)

// VectorCache is an LRU cache with TTL mapping text keys to embedding vectors.
type VectorCache struct {
	capacity   int
	defaultTTL time.Duration
	mu         sync.Mutex

	entries map[string]*entry
	order   *list.List
}

type entry struct {
	key       string
	vector    []float32
	expiresAt time.Time
	element   *list.Element
}

// NewVectorCache creates a cache holding up to capacity vectors.
func NewVectorCache(capacity int, ttl time.Duration) *VectorCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &VectorCache{
		capacity:   capacity,
		defaultTTL: ttl,
		entries:    make(map[string]*entry),
		order:      list.New(),
	}
}

// Get returns the cached vector for the key, or false when absent or expired.
// The returned slice is a copy; mutating it cannot poison later hits.
func (c *VectorCache) Get(key string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.removeEntry(e)
		return nil, false
	}

	c.order.MoveToFront(e.element)
	return slices.Clone(e.vector), true
}

// Set stores the vector, evicting the least recently used entries at capacity.
func (c *VectorCache) Set(key string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.vector = vector
		e.expiresAt = time.Now().Add(c.defaultTTL)
		c.order.MoveToFront(e.element)
		return
	}

	for len(c.entries) >= c.capacity {
		c.evictOldest()
	}

	e := &entry{
		key:       key,
		vector:    vector,
		expiresAt: time.Now().Add(c.defaultTTL),
	}
	e.element = c.order.PushFront(e)
	c.entries[key] = e
}

// Len returns the number of live entries, expired ones included until touched.
func (c *VectorCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Purge drops all entries.
func (c *VectorCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
	c.order.Init()
}

func (c *VectorCache) evictOldest() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}
	c.removeEntry(oldest.Value.(*entry))
}

func (c *VectorCache) removeEntry(e *entry) {
	c.order.Remove(e.element)
	delete(c.entries, e.key)
}
