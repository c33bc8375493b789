package evidence

import (
	"sync"
	"time"
)

// DefaultCacheTTL is the retrieval cache lifetime when none is configured.
const DefaultCacheTTL = 300 * time.Second

// retrievalCache is a short-lived in-process cache for search results.
// Entries are immutable once stored; a stale read is bounded by the TTL and
// is not a correctness hazard. Eviction is lazy, on lookup. The clock is
// injected for test isolation.
type retrievalCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

type cacheEntry struct {
	at   time.Time
	docs []Document
}

func newRetrievalCache(ttl time.Duration, now func() time.Time) *retrievalCache {
	if now == nil {
		now = time.Now
	}
	return &retrievalCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]cacheEntry),
	}
}

// get returns the cached documents for key, or (nil, false) when absent or
// expired. An expired entry is removed on the spot.
func (c *retrievalCache) get(key string) ([]Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.at) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.docs, true
}

// put stores documents under key. Last writer wins per key.
func (c *retrievalCache) put(key string, docs []Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{at: c.now(), docs: docs}
}
