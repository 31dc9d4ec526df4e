package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	FilePath string `json:"file_path"`
	Total    int    `json:"total"`
}

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := NewRedisCache(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = rc.Close() })
	require.NoError(t, rc.Connect(context.Background()))
	return rc, mr
}

func TestRedisCache_SetGet(t *testing.T) {
	ctx := context.Background()
	rc, mr := newTestRedis(t)

	require.NoError(t, rc.Set(ctx, "import:job:total", entry{FilePath: "a.csv", Total: 9}, time.Hour))

	raw, err := mr.Get("import:job:total")
	require.NoError(t, err)
	assert.JSONEq(t, `{"file_path":"a.csv","total":9}`, raw)

	var got entry
	found, err := rc.Get(ctx, "import:job:total", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, entry{FilePath: "a.csv", Total: 9}, got)

	found, err = rc.Get(ctx, "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_Expiry(t *testing.T) {
	ctx := context.Background()
	rc, mr := newTestRedis(t)

	require.NoError(t, rc.Set(ctx, "k", 1, time.Hour))

	ttl, err := rc.TTL(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, ttl)

	mr.FastForward(time.Hour)

	exists, err := rc.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)

	ttl, err = rc.TTL(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-2), ttl)
}

func TestRedisCache_DeleteAndPing(t *testing.T) {
	ctx := context.Background()
	rc, mr := newTestRedis(t)

	require.NoError(t, rc.Set(ctx, "a", 1, 0))
	require.NoError(t, rc.Set(ctx, "b", 2, 0))
	require.NoError(t, rc.Delete(ctx, "a", "b", "c"))
	require.NoError(t, rc.Delete(ctx))
	assert.False(t, mr.Exists("a"))
	assert.False(t, mr.Exists("b"))

	require.NoError(t, rc.Ping(ctx))
	mr.Close()
	assert.Error(t, rc.Ping(ctx))
}
