package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// maxCleanupInterval caps how often expired lookup entries are swept.
const maxCleanupInterval = 10 * time.Minute

// MemoryCache keeps lookup results for the lifetime of the process. It
// fronts repeated reference-graph and citation lookups within one run;
// nothing in it survives the process, so a fresh run always re-observes
// the graphs.
type MemoryCache struct {
	entries *gocache.Cache
}

// NewMemoryCache creates a memory cache whose entries expire after ttl.
// The sweep interval follows the TTL, capped so short-lived caches do
// not spin.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	cleanup := ttl
	if cleanup <= 0 || cleanup > maxCleanupInterval {
		cleanup = maxCleanupInterval
	}
	return &MemoryCache{entries: gocache.New(ttl, cleanup)}
}

// Get returns the stored entry for key. An entry of the wrong shape
// counts as a miss rather than a failure, since the caller falls back
// to the live lookup either way.
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	val, found := c.entries.Get(key)
	if !found {
		return nil, false
	}
	data, ok := val.([]byte)
	return data, ok
}

// Set stores an entry; a zero ttl uses the cache default.
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	c.entries.Set(key, value, ttl)
	return nil
}

// Delete drops one entry.
func (c *MemoryCache) Delete(key string) error {
	c.entries.Delete(key)
	return nil
}

// Clear drops every entry.
func (c *MemoryCache) Clear() error {
	c.entries.Flush()
	return nil
}
