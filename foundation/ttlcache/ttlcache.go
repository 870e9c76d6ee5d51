// Package ttlcache provides a small expiring cache for prediction responses,
// reporting each hit's age so callers can surface freshness.
package ttlcache

import (
	"time"

	"github.com/bluele/gcache"
)

type entry struct {
	value    interface{}
	storedAt time.Time
}

// Cache is an LRU cache whose entries expire after a fixed TTL.
type Cache struct {
	ttl     time.Duration
	entries gcache.Cache
	now     func() time.Time
}

// New builds a Cache holding up to size entries for ttl each.
func New(size int, ttl time.Duration) *Cache {
	return &Cache{
		ttl: ttl,
		entries: gcache.New(size).
			LRU().
			Expiration(ttl).
			Build(),
		now: time.Now,
	}
}

// Set stores value under key. Failures are ignored; the cache is advisory.
func (c *Cache) Set(key string, value interface{}) {
	_ = c.entries.Set(key, entry{value: value, storedAt: c.now()})
}

// Get returns the cached value for key along with its age. The third return
// is false on a miss or after expiry.
func (c *Cache) Get(key string) (interface{}, time.Duration, bool) {
	cached, err := c.entries.Get(key)
	if err != nil {
		return nil, 0, false
	}
	e, ok := cached.(entry)
	if !ok {
		return nil, 0, false
	}
	return e.value, c.now().Sub(e.storedAt), true
}

// TTL reports the cache's configured entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}
