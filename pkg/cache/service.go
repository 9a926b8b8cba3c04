package cache

import (
	"context"
	"time"
)

// Key prefixes and TTLs for cached projections
const (
	PrefixAds = "ads:"

	KeyApprovedSchedule = PrefixAds + "approved_schedule"
	// KeyScheduleGeneration counts invalidations of KeyApprovedSchedule.
	KeyScheduleGeneration = PrefixAds + "schedule_generation"
)

// CacheService stores JSON-encodable values. Implementations encode on Set
// and decode into dest on Get, so callers never share mutable state.
type CacheService interface {
	// Get decodes the cached value into dest.
	// Returns false with a nil error on a miss.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value for ttl
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes keys
	Delete(ctx context.Context, keys ...string) error

	// Incr bumps a counter and returns the new value. Counters never expire.
	Incr(ctx context.Context, key string) (int64, error)

	// Counter returns the current value of a counter, 0 when unset.
	Counter(ctx context.Context, key string) (int64, error)
}
