// Package cache holds the Redis-backed read caches. Only derived,
// re-computable data lives here; a cold or unavailable cache degrades to
// a database read, never to an error.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SeatMapCache stores the rendered seat map JSON per flight. Entries are
// written with a short TTL and invalidated eagerly on every seat
// transition, so staleness is bounded both ways.
type SeatMapCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSeatMapCache constructs a SeatMapCache. A nil client disables the
// cache: Get always misses and Set/Invalidate become no-ops.
func NewSeatMapCache(client *redis.Client, ttl time.Duration) *SeatMapCache {
	return &SeatMapCache{client: client, ttl: ttl}
}

func seatMapKey(flightID string) string {
	return fmt.Sprintf("seatmap:%s", flightID)
}

// Get returns the cached seat map JSON and whether it was present.
// Store errors are reported as misses so callers fall through to the
// database.
func (c *SeatMapCache) Get(ctx context.Context, flightID string) ([]byte, bool) {
	if c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, seatMapKey(flightID)).Bytes()
	if err != nil {
		// redis.Nil and store errors alike: the DB is the source of truth.
		return nil, false
	}
	return data, true
}

// Set stores the rendered seat map JSON under the flight's key.
func (c *SeatMapCache) Set(ctx context.Context, flightID string, data []byte) {
	if c.client == nil {
		return
	}
	// Best effort; a failed write only costs the next reader a DB query.
	c.client.Set(ctx, seatMapKey(flightID), data, c.ttl)
}

// Invalidate drops the flight's cached seat map. Called after every
// successful seat transition.
func (c *SeatMapCache) Invalidate(ctx context.Context, flightID string) {
	if c.client == nil {
		return
	}
	c.client.Del(ctx, seatMapKey(flightID))
}
