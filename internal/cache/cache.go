// Package cache holds loaded frames in memory and rendered reports in memory or Redis.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Stats holds cache performance counters.
type Stats struct {
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Sets        int64 `json:"sets"`
	Evictions   int64 `json:"evictions"`
	CurrentSize int   `json:"current_size"`
}

// Blob caches serialized payloads such as report JSON.
type Blob interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Stats() Stats
}

type entry[V any] struct {
	value      V
	expiration time.Time // zero means no expiry
}

func (e entry[V]) expired(now time.Time) bool {
	return !e.expiration.IsZero() && now.After(e.expiration)
}

type counters struct {
	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	evictions atomic.Int64
}

// Memory is a thread-safe in-process cache with per-entry expiry. A janitor
// goroutine removes expired entries until Stop is called.
type Memory[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     time.Duration
	stats   counters

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewMemory creates a cache whose entries live for ttl (forever when ttl <= 0).
// A positive cleanupInterval starts the janitor.
func NewMemory[V any](ttl, cleanupInterval time.Duration) *Memory[V] {
	c := &Memory[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go c.janitor(cleanupInterval)
	} else {
		close(c.done)
	}
	return c
}

// Get returns the value for key unless it is missing or expired.
func (c *Memory[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, found := c.entries[key]
	c.mu.RUnlock()

	if !found || e.expired(time.Now()) {
		c.stats.misses.Add(1)
		var zero V
		return zero, false
	}
	c.stats.hits.Add(1)
	return e.value, true
}

// Set stores value with the cache's default TTL.
func (c *Memory[V]) Set(key string, value V) {
	c.SetTTL(key, value, c.ttl)
}

// SetTTL stores value with an explicit TTL.
func (c *Memory[V]) SetTTL(key string, value V, ttl time.Duration) {
	e := entry[V]{value: value}
	if ttl > 0 {
		e.expiration = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	c.stats.sets.Add(1)
}

// Delete removes key.
func (c *Memory[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired or not.
func (c *Memory[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns cache statistics.
func (c *Memory[V]) Stats() Stats {
	return Stats{
		Hits:        c.stats.hits.Load(),
		Misses:      c.stats.misses.Load(),
		Sets:        c.stats.sets.Load(),
		Evictions:   c.stats.evictions.Load(),
		CurrentSize: c.Len(),
	}
}

// Stop terminates the janitor and waits for it to exit. It is safe to call twice.
func (c *Memory[V]) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.done
}

// deleteExpired removes all expired entries and returns how many went.
func (c *Memory[V]) deleteExpired() int {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
			count++
		}
	}
	c.stats.evictions.Add(int64(count))
	return count
}

func (c *Memory[V]) janitor(interval time.Duration) {
	defer close(c.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-c.stop:
			return
		}
	}
}

// MemoryBlob adapts Memory to the Blob interface.
type MemoryBlob struct {
	*Memory[[]byte]
}

// NewMemoryBlob creates an in-process Blob cache.
func NewMemoryBlob(cleanupInterval time.Duration) *MemoryBlob {
	return &MemoryBlob{Memory: NewMemory[[]byte](0, cleanupInterval)}
}

func (b *MemoryBlob) Get(_ context.Context, key string) ([]byte, bool) {
	return b.Memory.Get(key)
}

func (b *MemoryBlob) Set(_ context.Context, key string, data []byte, ttl time.Duration) {
	b.Memory.SetTTL(key, data, ttl)
}

func (b *MemoryBlob) Delete(_ context.Context, key string) {
	b.Memory.Delete(key)
}
