package llm

import (
	"crypto/md5"
	"encoding/hex"
	"sync"
	"time"

	"github.com/danielsultan7/audit-anomaly-service/internal/logging"
)

// CacheEntry is one cached classification label.
type CacheEntry struct {
	Label     string
	Timestamp time.Time
	HitCount  int
}

// ClassificationCache memoizes classification labels keyed by the tagged
// log text. Entries expire after the configured TTL; a background sweeper
// drops expired entries so repeated misses do not accumulate.
type ClassificationCache struct {
	entries map[string]*CacheEntry
	ttl     time.Duration
	mu      sync.RWMutex
	stop    chan struct{}
}

func NewClassificationCache(ttlSeconds int) *ClassificationCache {
	c := &ClassificationCache{
		entries: make(map[string]*CacheEntry),
		ttl:     time.Duration(ttlSeconds) * time.Second,
		stop:    make(chan struct{}),
	}
	go c.cleanupExpired()
	return c
}

func cacheKey(taggedText string) string {
	sum := md5.Sum([]byte(taggedText))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached label for the tagged text, if present and fresh.
func (c *ClassificationCache) Get(taggedText string) (string, bool) {
	key := cacheKey(taggedText)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return "", false
	}
	if time.Since(entry.Timestamp) > c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return "", false
	}

	c.mu.Lock()
	entry.HitCount++
	c.mu.Unlock()

	logging.Debug("[CACHE] hit for key %s (hits: %d)", key[:8], entry.HitCount)
	return entry.Label, true
}

// Set stores the label for the tagged text.
func (c *ClassificationCache) Set(taggedText, label string) {
	key := cacheKey(taggedText)

	c.mu.Lock()
	c.entries[key] = &CacheEntry{
		Label:     label,
		Timestamp: time.Now(),
	}
	c.mu.Unlock()
}

// Stats reports cache size, total hits, and the configured TTL.
func (c *ClassificationCache) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	totalHits := 0
	for _, entry := range c.entries {
		totalHits += entry.HitCount
	}

	return map[string]interface{}{
		"entries":     len(c.entries),
		"total_hits":  totalHits,
		"ttl_seconds": int(c.ttl.Seconds()),
	}
}

// Clear removes all entries and returns how many were dropped.
func (c *ClassificationCache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.entries)
	c.entries = make(map[string]*CacheEntry)
	logging.Info("[CACHE] cleared %d entries", n)
	return n
}

// Close stops the background sweeper.
func (c *ClassificationCache) Close() {
	close(c.stop)
}

func (c *ClassificationCache) cleanupExpired() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			removed := 0
			for key, entry := range c.entries {
				if time.Since(entry.Timestamp) > c.ttl {
					delete(c.entries, key)
					removed++
				}
			}
			c.mu.Unlock()
			if removed > 0 {
				logging.Debug("[CACHE] swept %d expired entries", removed)
			}
		}
	}
}
