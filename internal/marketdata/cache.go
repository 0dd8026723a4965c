package marketdata

import (
	"context"
	"sync"
	"time"

	"fxsignals/internal/model"
)

// MemoryCache is an in-process TTL candle cache. It is the default when
// no Redis address is configured.
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry

	now func() time.Time // injectable clock for tests
}

type memoryEntry struct {
	candles   []model.Candle
	fetchedAt time.Time
}

// NewMemoryCache creates a cache whose entries expire after ttl
// (default 60s).
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func cacheKey(symbol, interval, period string) string {
	return symbol + "|" + interval + "|" + period
}

// Get returns the cached candles for a request, or ok=false when the
// entry is missing or expired. Expired entries are dropped on read.
func (c *MemoryCache) Get(_ context.Context, symbol, interval, period string) ([]model.Candle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(symbol, interval, period)
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.fetchedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return entry.candles, true
}

// Set stores a fetched candle batch under the request key.
func (c *MemoryCache) Set(_ context.Context, symbol, interval, period string, candles []model.Candle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(symbol, interval, period)] = memoryEntry{
		candles:   candles,
		fetchedAt: c.now(),
	}
}
