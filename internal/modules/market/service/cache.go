package service

import (
	"context"
	"sync"
	"time"

	"dex_trader/internal/models"
)

type cacheEntry struct {
	candles []models.Candle
	expires time.Time
}

// OHLCVCache: короткоживущий кэш свечей по ключу pool+timeframe+aggregate.
type OHLCVCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]cacheEntry
}

func NewOHLCVCache(ttl time.Duration) *OHLCVCache {
	return &OHLCVCache{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]cacheEntry),
	}
}

// GetOrFetch отдаёт свежие свечи из кэша либо вызывает fetch.
// Ошибки и пустые ответы не кэшируются.
func (c *OHLCVCache) GetOrFetch(
	ctx context.Context,
	key string,
	fetch func(ctx context.Context) ([]models.Candle, error),
) ([]models.Candle, error) {
	now := c.now()

	c.mu.Lock()
	if e, ok := c.items[key]; ok && now.Before(e.expires) {
		c.mu.Unlock()
		return e.candles, nil
	}
	c.mu.Unlock()

	candles, err := fetch(ctx)
	if err != nil || len(candles) == 0 || c.ttl <= 0 {
		return candles, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.items {
		if !now.Before(e.expires) {
			delete(c.items, k)
		}
	}
	c.items[key] = cacheEntry{candles: candles, expires: now.Add(c.ttl)}
	return candles, nil
}

func (c *OHLCVCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
