package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Total int    `json:"total"`
	File  string `json:"file"`
}

func TestMemoryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "k", sample{Total: 3, File: "a.csv"}, time.Hour))

	var got sample
	found, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, sample{Total: 3, File: "a.csv"}, got)

	found, err = c.Get(ctx, "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCache_ValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	in := &sample{Total: 1}
	require.NoError(t, c.Set(ctx, "k", in, 0))
	in.Total = 99

	var got sample
	_, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Total)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "k", 1, 50*time.Millisecond))

	ttl, err := c.TTL(ctx, "k")
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, 50*time.Millisecond)

	assert.Eventually(t, func() bool {
		exists, err := c.Exists(ctx, "k")
		return err == nil && !exists
	}, time.Second, 10*time.Millisecond)

	ttl, err = c.TTL(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-2), ttl)
}

func TestMemoryCache_NoExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "k", 1, 0))

	ttl, err := c.TTL(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-1), ttl)
}

func TestMemoryCache_Delete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "a", 1, 0))
	require.NoError(t, c.Set(ctx, "b", 2, 0))
	require.NoError(t, c.Delete(ctx, "a", "b", "c"))

	for _, key := range []string{"a", "b"} {
		exists, err := c.Exists(ctx, key)
		require.NoError(t, err)
		assert.False(t, exists, key)
	}

	ttl, err := c.TTL(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-2), ttl)
}
