package catalog

import (
	"sync"
	"time"
)

// cacheTTL bounds how long catalog responses are reused across requests.
const cacheTTL = time.Hour

// ttlCache is a read-mostly, last-write-wins map. Entries are never evicted
// proactively; stale reads simply miss.
type ttlCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	val any
	exp time.Time
}

func newTTLCache() *ttlCache {
	return &ttlCache{entries: make(map[string]cacheEntry)}
}

func (c *ttlCache) get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.exp) {
		return nil, false
	}
	return e.val, true
}

func (c *ttlCache) put(key string, v any) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{val: v, exp: time.Now().Add(cacheTTL)}
	c.mu.Unlock()
}
