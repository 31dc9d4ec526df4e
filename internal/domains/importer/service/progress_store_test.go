package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-importer/internal/domains/importer/model"
	infraCache "catalog-importer/internal/infrastructure/cache"
	"catalog-importer/pkg/cache"
)

func TestProgressStore_TotalComputedOnce(t *testing.T) {
	ctx := context.Background()
	store := NewProgressStore(cache.NewMemoryCache(), time.Hour)

	calls := 0
	count := func() (int, error) {
		calls++
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		total, err := store.GetOrComputeTotal(ctx, "job", "/data/a.csv", count)
		require.NoError(t, err)
		assert.Equal(t, 42, total)
	}
	assert.Equal(t, 1, calls)
}

func TestProgressStore_OtherFileRecounts(t *testing.T) {
	ctx := context.Background()
	store := NewProgressStore(cache.NewMemoryCache(), time.Hour)

	_, err := store.GetOrComputeTotal(ctx, "job", "/data/a.csv", func() (int, error) { return 10, nil })
	require.NoError(t, err)
	_, err = store.RecordProgress(ctx, model.JobState{JobID: "job", FilePath: "/data/a.csv", Total: 10, Cursor: 4}, 4)
	require.NoError(t, err)

	total, err := store.GetOrComputeTotal(ctx, "job", "/data/b.csv", func() (int, error) { return 3, nil })
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	state, err := store.Get(ctx, "job")
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestProgressStore_RecordProgress(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store := &cacheProgressStore{cache: cache.NewMemoryCache(), ttl: time.Hour, now: func() time.Time { return now }}

	base := model.JobState{JobID: "job", FilePath: "/data/a.csv", Total: 5}

	base.Cursor = 3
	state, err := store.RecordProgress(ctx, base, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, state.Imported)
	assert.Equal(t, now, state.UpdatedAt)

	base.Cursor = 9
	state, err = store.RecordProgress(ctx, base, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, state.Imported, "capped at total")
	assert.Equal(t, 9, state.Cursor)

	stored, err := store.Get(ctx, "job")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 5, stored.Imported)
}

func TestProgressStore_CursorNeverMovesBack(t *testing.T) {
	ctx := context.Background()
	store := NewProgressStore(cache.NewMemoryCache(), time.Hour)

	_, err := store.RecordProgress(ctx, model.JobState{JobID: "job", Total: 9, Cursor: 6}, 6)
	require.NoError(t, err)

	state, err := store.RecordProgress(ctx, model.JobState{JobID: "job", Total: 9, Cursor: 3}, 0)
	require.NoError(t, err)
	assert.Equal(t, 6, state.Imported)
	assert.Equal(t, 6, state.Cursor)
}

func TestProgressStore_JobsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewProgressStore(cache.NewMemoryCache(), time.Hour)

	_, err := store.RecordProgress(ctx, model.JobState{JobID: "a", Total: 10}, 2)
	require.NoError(t, err)
	_, err = store.RecordProgress(ctx, model.JobState{JobID: "b", Total: 10}, 7)
	require.NoError(t, err)

	a, err := store.Get(ctx, "a")
	require.NoError(t, err)
	b, err := store.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 2, a.Imported)
	assert.Equal(t, 7, b.Imported)
}

func TestProgressStore_ExpiresAndClears(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rc := infraCache.NewRedisCache(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = rc.Close() })
	store := NewProgressStore(rc, time.Hour)

	_, err := store.GetOrComputeTotal(ctx, "job", "f", func() (int, error) { return 1, nil })
	require.NoError(t, err)
	_, err = store.RecordProgress(ctx, model.JobState{JobID: "job", Total: 1}, 1)
	require.NoError(t, err)

	mr.FastForward(61 * time.Minute)
	state, err := store.Get(ctx, "job")
	require.NoError(t, err)
	assert.Nil(t, state)

	calls := 0
	_, err = store.GetOrComputeTotal(ctx, "job", "f", func() (int, error) { calls++; return 1, nil })
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	_, err = store.RecordProgress(ctx, model.JobState{JobID: "job", Total: 1}, 1)
	require.NoError(t, err)
	require.NoError(t, store.Clear(ctx, "job"))

	state, err = store.Get(ctx, "job")
	require.NoError(t, err)
	assert.Nil(t, state)
	assert.False(t, mr.Exists("import:job:total"))
}
