package recurrence

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// cacheEntry represents one cached expansion result
type cacheEntry struct {
	occurrences []TimeOccurrence
	expiresAt   time.Time
}

// Cache provides TTL caching for expansion results
type Cache struct {
	entries         map[string]*cacheEntry
	mutex           sync.RWMutex
	ttl             time.Duration
	maxEntries      int
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
}

// CacheConfig holds configuration for the expansion cache
type CacheConfig struct {
	TTL             time.Duration // How long entries stay valid
	MaxEntries      int           // Maximum number of entries before eviction
	CleanupInterval time.Duration // How often to run cleanup
}

// DefaultCacheConfig provides sensible defaults for expansion caching
var DefaultCacheConfig = CacheConfig{
	TTL:             15 * time.Minute,
	MaxEntries:      1000,
	CleanupInterval: 5 * time.Minute,
}

// NewCache creates a new expansion cache with the given configuration
func NewCache(config CacheConfig) *Cache {
	cache := &Cache{
		entries:         make(map[string]*cacheEntry),
		ttl:             config.TTL,
		maxEntries:      config.MaxEntries,
		cleanupInterval: config.CleanupInterval,
		stopCleanup:     make(chan struct{}),
	}

	go cache.cleanupLoop()

	return cache
}

// cacheKey creates a unique key from everything expansion depends on.
func cacheKey(series Series, windowStart, windowEnd time.Time) string {
	hasher := sha256.New()

	hasher.Write([]byte(series.Rule))
	hasher.Write([]byte(series.Start.Format(time.RFC3339Nano)))
	hasher.Write([]byte(series.End.Format(time.RFC3339Nano)))
	for _, ex := range series.ExceptionDates {
		hasher.Write([]byte(ex.Format(time.RFC3339Nano)))
	}
	hasher.Write([]byte(windowStart.Format(time.RFC3339Nano)))
	hasher.Write([]byte(windowEnd.Format(time.RFC3339Nano)))

	return fmt.Sprintf("%x", hasher.Sum(nil))
}

// Get returns the cached occurrences for key, if present and unexpired.
func (c *Cache) Get(key string) ([]TimeOccurrence, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}

	// Hand out a copy so callers cannot poison the cache.
	occurrences := make([]TimeOccurrence, len(entry.occurrences))
	copy(occurrences, entry.occurrences)
	return occurrences, true
}

// Put stores occurrences under key.
func (c *Cache) Put(key string, occurrences []TimeOccurrence) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}

	stored := make([]TimeOccurrence, len(occurrences))
	copy(stored, occurrences)
	c.entries[key] = &cacheEntry{
		occurrences: stored,
		expiresAt:   time.Now().Add(c.ttl),
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.entries)
}

// Close stops the background cleanup goroutine.
func (c *Cache) Close() {
	c.stopOnce.Do(func() {
		close(c.stopCleanup)
	})
}

// evictOldestLocked drops the entry closest to expiry. Caller holds the lock.
func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldestExpiry time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.expiresAt.Before(oldestExpiry) {
			oldestKey = key
			oldestExpiry = entry.expiresAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *Cache) removeExpired() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}
