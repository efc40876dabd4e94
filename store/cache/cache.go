// Package cache provides an in-memory TTL cache for store lookups.
package cache

import (
	"context"
	"sync"
	"time"
)

// Config holds cache settings.
type Config struct {
	DefaultTTL      time.Duration
	CleanupInterval time.Duration
	MaxItems        int
	// OnEviction is called with the key and value of every expired or
	// evicted entry.
	OnEviction func(key string, value any)
}

type item struct {
	value     any
	expiresAt time.Time
}

// Cache is a size-bounded TTL cache safe for concurrent use.
type Cache struct {
	mu     sync.RWMutex
	items  map[string]item
	config Config

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a cache and starts its cleanup loop.
func New(config Config) *Cache {
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = 10 * time.Minute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = time.Minute
	}
	if config.MaxItems <= 0 {
		config.MaxItems = 1000
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Cache{
		items:  make(map[string]item),
		config: config,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go c.cleanupLoop(ctx)
	return c
}

// Set stores value with the default TTL.
func (c *Cache) Set(_ context.Context, key string, value any) {
	c.SetWithTTL(context.Background(), key, value, c.config.DefaultTTL)
}

// SetWithTTL stores value with a custom TTL.
func (c *Cache) SetWithTTL(_ context.Context, key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.config.MaxItems {
		c.evictOldestLocked()
	}
	c.items[key] = item{value: value, expiresAt: time.Now().Add(ttl)}
}

// Get returns the cached value for key if present and not expired.
func (c *Cache) Get(_ context.Context, key string) (any, bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(it.expiresAt) {
		return nil, false
	}
	return it.value, true
}

// Delete removes key.
func (c *Cache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Len returns the number of entries, including expired ones not yet swept.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the cleanup loop.
func (c *Cache) Close() {
	c.cancel()
	<-c.done
}

// evictOldestLocked drops the entry closest to expiry. Caller holds mu.
func (c *Cache) evictOldestLocked() {
	var (
		oldestKey string
		oldest    time.Time
	)
	for k, it := range c.items {
		if oldestKey == "" || it.expiresAt.Before(oldest) {
			oldestKey, oldest = k, it.expiresAt
		}
	}
	if oldestKey == "" {
		return
	}
	evicted := c.items[oldestKey]
	delete(c.items, oldestKey)
	if c.config.OnEviction != nil {
		c.config.OnEviction(oldestKey, evicted.value)
	}
}

func (c *Cache) cleanupLoop(ctx context.Context) {
	defer close(c.done)
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *Cache) sweep() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, it := range c.items {
		if now.After(it.expiresAt) {
			delete(c.items, k)
			if c.config.OnEviction != nil {
				c.config.OnEviction(k, it.value)
			}
		}
	}
}
