package cache

import (
	"sync"
	"time"
)

// Thread-safe in-memory cache with TTL expiry. Scraping the upstream
// planner costs a full headless-browser render, so fetched pages are
// cached briefly; hint lookups are cheap but hot and cached longer.
//
// Usage:
//
//	c := NewCache(90*time.Second, 5*time.Minute)
//	c.Set(url, html)
//	if html, found := c.Get(url); found { ... }

// CacheItem is one stored value with its expiry timestamp.
type CacheItem struct {
	Value      interface{}
	Expiration int64 // unix nanoseconds; 0 means no expiry
}

// Cache is a thread-safe key-value store with TTL.
type Cache struct {
	items             map[string]CacheItem
	mu                sync.RWMutex
	defaultExpiration time.Duration
	cleanupInterval   time.Duration
	stopCleanup       chan bool
}

// NewCache creates a cache with the given default TTL; expired items are
// swept every cleanupInterval.
func NewCache(defaultExpiration, cleanupInterval time.Duration) *Cache {
	cache := &Cache{
		items:             make(map[string]CacheItem),
		defaultExpiration: defaultExpiration,
		cleanupInterval:   cleanupInterval,
		stopCleanup:       make(chan bool),
	}
	go cache.startCleanupTimer()
	return cache
}

// Set stores a value with the default TTL.
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.defaultExpiration)
}

// SetWithTTL stores a value with a specific TTL.
func (c *Cache) SetWithTTL(key string, value interface{}, duration time.Duration) {
	var expiration int64
	if duration > 0 {
		expiration = time.Now().Add(duration).UnixNano()
	}

	c.mu.Lock()
	c.items[key] = CacheItem{
		Value:      value,
		Expiration: expiration,
	}
	c.mu.Unlock()
}

// Get returns (value, true) if present and not expired.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	item, found := c.items[key]
	c.mu.RUnlock()

	if !found {
		return nil, false
	}
	if item.Expiration > 0 && time.Now().UnixNano() > item.Expiration {
		c.Delete(key)
		return nil, false
	}
	return item.Value, true
}

// Delete removes a key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// DeletePrefix removes every key with the given prefix and returns how
// many were dropped. Useful for invalidating one search's page variants.
func (c *Cache) DeletePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for key := range c.items {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.items, key)
			count++
		}
	}
	return count
}

// Clear drops everything.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]CacheItem)
	c.mu.Unlock()
}

// Count returns the number of stored items, expired included.
func (c *Cache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// CacheStats summarizes cache occupancy.
type CacheStats struct {
	TotalItems   int
	ExpiredItems int
	ValidItems   int
}

// GetStats returns current occupancy counters.
func (c *Cache) GetStats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := CacheStats{TotalItems: len(c.items)}
	now := time.Now().UnixNano()
	for _, item := range c.items {
		if item.Expiration > 0 && now > item.Expiration {
			stats.ExpiredItems++
		} else {
			stats.ValidItems++
		}
	}
	return stats
}

func (c *Cache) startCleanupTimer() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *Cache) deleteExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UnixNano()
	for key, item := range c.items {
		if item.Expiration > 0 && now > item.Expiration {
			delete(c.items, key)
		}
	}
}

// Stop ends the background sweeper.
func (c *Cache) Stop() {
	c.stopCleanup <- true
}

// Pre-configured caches, one per use case.
var (
	// PageCache holds rendered upstream result pages. Short TTL: the
	// schedule data changes seasonally but the page embeds the query
	// clock time, so stale pages go bad fast.
	PageCache *Cache

	// HintCache holds resolved stop-hint lists per place name.
	HintCache *Cache
)

// InitCaches builds the preset caches.
func InitCaches() {
	PageCache = NewCache(90*time.Second, 5*time.Minute)
	HintCache = NewCache(5*time.Minute, 10*time.Minute)
}

// StopCaches stops all preset caches.
func StopCaches() {
	if PageCache != nil {
		PageCache.Stop()
	}
	if HintCache != nil {
		HintCache.Stop()
	}
}

// GetAllCacheStats returns stats for every preset cache.
func GetAllCacheStats() map[string]CacheStats {
	stats := make(map[string]CacheStats)
	if PageCache != nil {
		stats["pages"] = PageCache.GetStats()
	}
	if HintCache != nil {
		stats["hints"] = HintCache.GetStats()
	}
	return stats
}
