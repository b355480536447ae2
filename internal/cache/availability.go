// Package cache provides an optional redis-backed read cache for day
// availability lookups. All operations are nil-safe: a zero-value cache is
// a no-op, so callers never branch on whether redis is configured.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/oggycat-dev/dot-net-booking-swp391-be-sub000/internal/models"
)

// Interval is one occupied time range on a facility's day.
type Interval struct {
	Start  models.TimeOfDay `json:"start"`
	End    models.TimeOfDay `json:"end"`
	Status models.Status    `json:"status"`
}

// AvailabilityCache caches day availability per (facility, date).
type AvailabilityCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New creates a cache over rdb. A nil client or non-positive TTL disables
// caching.
func New(rdb *redis.Client, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{rdb: rdb, ttl: ttl}
}

func (c *AvailabilityCache) enabled() bool {
	return c != nil && c.rdb != nil && c.ttl > 0
}

func key(facilityID uuid.UUID, date time.Time) string {
	return fmt.Sprintf("availability:%s:%s", facilityID, date.Format("2006-01-02"))
}

// Get returns the cached intervals, or ok=false on miss or disabled cache.
func (c *AvailabilityCache) Get(ctx context.Context, facilityID uuid.UUID, date time.Time) ([]Interval, bool) {
	if !c.enabled() {
		return nil, false
	}
	val, err := c.rdb.Get(ctx, key(facilityID, date)).Result()
	if err != nil {
		return nil, false
	}
	var intervals []Interval
	if err := json.Unmarshal([]byte(val), &intervals); err != nil {
		return nil, false
	}
	return intervals, true
}

// Set stores intervals best-effort; failures are ignored.
func (c *AvailabilityCache) Set(ctx context.Context, facilityID uuid.UUID, date time.Time, intervals []Interval) {
	if !c.enabled() {
		return
	}
	data, err := json.Marshal(intervals)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, key(facilityID, date), data, c.ttl).Err()
}

// Invalidate drops the cached day after a booking mutation.
func (c *AvailabilityCache) Invalidate(ctx context.Context, facilityID uuid.UUID, date time.Time) {
	if !c.enabled() {
		return
	}
	_ = c.rdb.Del(ctx, key(facilityID, date)).Err()
}
