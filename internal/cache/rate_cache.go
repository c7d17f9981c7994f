// Package cache provides a Redis-backed read-through cache for the
// active rate. The active-rate lookup runs on every guest ticket close
// and on every reconciliation pass; caching it keeps those paths off
// the database. Everything here is best-effort: a cold, failed or
// absent Redis only means the caller reads the database instead.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/parking-lot/internal/model"
)

const activeRateKey = "parking:rate:active"

// RateCache caches the serialized active rate under a fixed key with a
// short TTL. Writers to the rate catalog invalidate it.
type RateCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRateCache returns a RateCache over the given client. A zero ttl
// defaults to 30 seconds.
func NewRateCache(rdb *redis.Client, ttl time.Duration) *RateCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RateCache{rdb: rdb, ttl: ttl}
}

// GetActive returns the cached active rate and whether the cache held
// one. Any Redis or decode failure reads as a miss.
func (c *RateCache) GetActive(ctx context.Context) (*model.Rate, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, activeRateKey).Bytes()
	if err != nil {
		return nil, false
	}
	var r model.Rate
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, false
	}
	return &r, true
}

// SetActive stores the rate under the cache key. Errors are dropped;
// the next read falls through to the database.
func (c *RateCache) SetActive(ctx context.Context, r *model.Rate) {
	if c == nil || c.rdb == nil || r == nil {
		return
	}
	data, err := json.Marshal(r)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, activeRateKey, data, c.ttl).Err()
}

// Invalidate drops the cached rate after any write to the catalog.
func (c *RateCache) Invalidate(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	_ = c.rdb.Del(ctx, activeRateKey).Err()
}
