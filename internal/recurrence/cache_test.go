package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(ttl time.Duration, maxEntries int) *Cache {
	return NewCache(CacheConfig{
		TTL:             ttl,
		MaxEntries:      maxEntries,
		CleanupInterval: time.Hour, // never fires during a test
	})
}

func TestCache_PutGet(t *testing.T) {
	cache := newTestCache(time.Minute, 10)
	defer cache.Close()

	series := weeklySeries()
	key := cacheKey(series, monday, monday.Add(24*time.Hour))

	_, ok := cache.Get(key)
	assert.False(t, ok, "empty cache should miss")

	occurrences := []TimeOccurrence{{Start: monday, End: monday.Add(time.Hour)}}
	cache.Put(key, occurrences)

	got, ok := cache.Get(key)
	require.True(t, ok)
	assert.Equal(t, occurrences, got)
}

func TestCache_GetReturnsCopy(t *testing.T) {
	cache := newTestCache(time.Minute, 10)
	defer cache.Close()

	key := "k"
	cache.Put(key, []TimeOccurrence{{Start: monday, End: monday.Add(time.Hour)}})

	got, ok := cache.Get(key)
	require.True(t, ok)
	got[0].Start = got[0].Start.Add(time.Hour)

	again, ok := cache.Get(key)
	require.True(t, ok)
	assert.True(t, again[0].Start.Equal(monday), "cached entry mutated through returned slice")
}

func TestCache_Expiry(t *testing.T) {
	cache := newTestCache(10*time.Millisecond, 10)
	defer cache.Close()

	cache.Put("k", []TimeOccurrence{{Start: monday, End: monday.Add(time.Hour)}})
	time.Sleep(20 * time.Millisecond)

	_, ok := cache.Get("k")
	assert.False(t, ok, "expired entry should miss")
}

func TestCache_Eviction(t *testing.T) {
	cache := newTestCache(time.Minute, 2)
	defer cache.Close()

	cache.Put("a", nil)
	cache.Put("b", nil)
	cache.Put("c", nil)

	assert.Equal(t, 2, cache.Len(), "eviction keeps the cache at its cap")
}

func TestCacheKey_DistinguishesInputs(t *testing.T) {
	window := monday.Add(24 * time.Hour)

	base := cacheKey(weeklySeries(), monday, window)

	assert.NotEqual(t, base, cacheKey(weeklySeries(monday), monday, window),
		"exception dates must change the key")

	daily := weeklySeries()
	daily.Rule = "FREQ=DAILY"
	assert.NotEqual(t, base, cacheKey(daily, monday, window))

	assert.NotEqual(t, base, cacheKey(weeklySeries(), monday, window.Add(time.Hour)),
		"window must change the key")
}
