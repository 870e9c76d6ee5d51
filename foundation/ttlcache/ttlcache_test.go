package ttlcache

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestCacheHitReportsAge(t *testing.T) {
	is := is.New(t)
	cache := New(10, time.Minute)

	current := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return current }

	cache.Set("actransit|55558|NL", "cached-response")
	current = current.Add(20 * time.Second)

	value, age, ok := cache.Get("actransit|55558|NL")
	is.True(ok)
	is.Equal(value, "cached-response")
	is.Equal(age, 20*time.Second)
	is.Equal(cache.TTL(), time.Minute)
}

func TestCacheMiss(t *testing.T) {
	is := is.New(t)
	cache := New(10, time.Minute)

	_, _, ok := cache.Get("nothing-here")
	is.True(!ok)
}

func TestCacheExpiry(t *testing.T) {
	is := is.New(t)
	cache := New(10, 50*time.Millisecond)

	cache.Set("key", "value")
	_, _, ok := cache.Get("key")
	is.True(ok)

	time.Sleep(80 * time.Millisecond)
	_, _, ok = cache.Get("key")
	is.True(!ok)
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	is := is.New(t)
	cache := New(2, time.Minute)

	cache.Set("a", 1)
	cache.Set("b", 2)
	_, _, _ = cache.Get("a")
	cache.Set("c", 3)

	_, _, ok := cache.Get("b")
	is.True(!ok)
	_, _, ok = cache.Get("a")
	is.True(ok)
}
