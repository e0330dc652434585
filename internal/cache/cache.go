// Package cache provides a bounded, mutex-guarded in-memory cache used for
// memoized dataset parses and dashboard sessions.
package cache

import (
	"sync"
	"time"
)

// Entry is a cached value with its bookkeeping
type Entry[V any] struct {
	Value      V         `json:"value"`
	CachedAt   time.Time `json:"cached_at"`
	AccessedAt time.Time `json:"accessed_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	HitCount   int       `json:"hit_count"`
}

// Options configures a Cache
type Options struct {
	// TTL of an entry. Zero keeps entries for the life of the process.
	TTL time.Duration
	// Sliding extends an entry's expiry on every hit.
	Sliding bool
	// MaxSize bounds the entry count; the least recently used entry is evicted.
	// Zero or less disables storing.
	MaxSize int
	// CleanupInterval is how often expired entries are swept. Defaults to 5m.
	CleanupInterval time.Duration
}

// Stats is a snapshot of cache counters
type Stats struct {
	Entries    int     `json:"entries"`
	MaxSize    int     `json:"max_size"`
	Hits       int64   `json:"hit_count"`
	Misses     int64   `json:"miss_count"`
	Evictions  int64   `json:"eviction_count"`
	HitRatio   float64 `json:"hit_ratio"`
	TTLSeconds float64 `json:"ttl_seconds"`
}

// Cache is a string-keyed cache safe for concurrent use
type Cache[V any] struct {
	entries   map[string]Entry[V]
	mutex     sync.RWMutex
	opts      Options
	hits      int64
	misses    int64
	evictions int64
	now       func() time.Time
	stopChan  chan struct{}
	stopOnce  sync.Once
}

// New creates a cache. A sweeper goroutine runs only when entries can expire;
// call Stop to release it.
func New[V any](opts Options) *Cache[V] {
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = 5 * time.Minute
	}
	c := &Cache[V]{
		entries:  make(map[string]Entry[V]),
		opts:     opts,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	if opts.TTL > 0 {
		go c.cleanup()
	}
	return c
}

// Get returns the value stored under key
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	entry, exists := c.entries[key]
	if !exists || c.expired(entry, now) {
		if exists {
			delete(c.entries, key)
		}
		c.misses++
		var zero V
		return zero, false
	}

	entry.HitCount++
	entry.AccessedAt = now
	if c.opts.Sliding && c.opts.TTL > 0 {
		entry.ExpiresAt = now.Add(c.opts.TTL)
	}
	c.entries[key] = entry
	c.hits++

	return entry.Value, true
}

// Set stores value under key, evicting the least recently used entry when full
func (c *Cache[V]) Set(key string, value V) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.opts.MaxSize <= 0 {
		return
	}

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.opts.MaxSize {
		c.evictOldest()
	}

	now := c.now()
	entry := Entry[V]{
		Value:      value,
		CachedAt:   now,
		AccessedAt: now,
	}
	if c.opts.TTL > 0 {
		entry.ExpiresAt = now.Add(c.opts.TTL)
	}
	c.entries[key] = entry
}

// Delete removes key and reports whether it was present
func (c *Cache[V]) Delete(key string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	_, exists := c.entries[key]
	delete(c.entries, key)
	return exists
}

// Len returns the number of stored entries, expired ones included until swept
func (c *Cache[V]) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.entries)
}

// Stats returns cache statistics
func (c *Cache[V]) Stats() Stats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	total := c.hits + c.misses
	ratio := float64(0)
	if total > 0 {
		ratio = float64(c.hits) / float64(total)
	}

	return Stats{
		Entries:    len(c.entries),
		MaxSize:    c.opts.MaxSize,
		Hits:       c.hits,
		Misses:     c.misses,
		Evictions:  c.evictions,
		HitRatio:   ratio,
		TTLSeconds: c.opts.TTL.Seconds(),
	}
}

// Stop ends the sweeper goroutine. Safe to call more than once.
func (c *Cache[V]) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
}

// Sweep removes expired entries and returns how many were dropped
func (c *Cache[V]) Sweep() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	removed := 0
	for key, entry := range c.entries {
		if c.expired(entry, now) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

func (c *Cache[V]) expired(entry Entry[V], now time.Time) bool {
	return !entry.ExpiresAt.IsZero() && now.After(entry.ExpiresAt)
}

func (c *Cache[V]) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.entries {
		if oldestKey == "" || entry.AccessedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.AccessedAt
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
		c.evictions++
	}
}

func (c *Cache[V]) cleanup() {
	ticker := time.NewTicker(c.opts.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Sweep()
		case <-c.stopChan:
			return
		}
	}
}
