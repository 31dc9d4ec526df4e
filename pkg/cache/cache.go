package cache

import (
	"context"
	"time"
)

// Cache is the contract of the key/value layer.
// Implementations: Redis (infrastructure/cache) and in-memory (MemoryCache).
// Values are JSON encoded.
type Cache interface {
	// Get loads key into dest.
	// found = false on a miss, dest is left untouched
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value with TTL (0 = no expiry)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
	Ping(ctx context.Context) error
}
