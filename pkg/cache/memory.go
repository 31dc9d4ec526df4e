package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const memoryCleanupInterval = 10 * time.Minute

// MemoryCache is a process-local Cache on go-cache.
// Values are stored JSON encoded so reads behave like Redis (copies, not shared pointers).
// Used by tests, the memory store driver and as the fallback when Redis is down.
type MemoryCache struct {
	store *gocache.Cache
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{store: gocache.New(gocache.NoExpiration, memoryCleanupInterval)}
}

func (m *MemoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := m.store.Get(key)
	if !ok {
		return false, nil
	}

	data, ok := raw.([]byte)
	if !ok {
		return false, fmt.Errorf("unexpected cached type %T for %s", raw, key)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached value %s: %w", key, err)
	}
	return true, nil
}

// Set stores value; ttl <= 0 means no expiry.
func (m *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for %s: %w", key, err)
	}

	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	m.store.Set(key, data, ttl)
	return nil
}

func (m *MemoryCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		m.store.Delete(key)
	}
	return nil
}

func (m *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.store.Get(key)
	return ok, nil
}

// TTL follows Redis semantics: -2 missing key, -1 no expiry.
func (m *MemoryCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	_, expiresAt, ok := m.store.GetWithExpiration(key)
	if !ok {
		return -2, nil
	}
	if expiresAt.IsZero() {
		return -1, nil
	}
	return time.Until(expiresAt), nil
}

func (m *MemoryCache) Ping(ctx context.Context) error {
	return nil
}
