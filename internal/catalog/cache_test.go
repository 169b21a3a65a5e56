package catalog

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, ttl), mr
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	stored := Product{ID: "p-1", Slug: "bottle", Name: "Bottle", BasePrice: 1299, Stock: 50, MOQ: 1}
	require.NoError(t, cache.SetJSON(ctx, "catalog:product:id:p-1", stored))

	var got Product
	ok, err := cache.GetJSON(ctx, "catalog:product:id:p-1", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, stored, got)
}

func TestCacheMiss(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)

	var got Product
	ok, err := cache.GetJSON(context.Background(), "missing", &got)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCacheEntriesExpire(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.SetJSON(ctx, "k", Product{ID: "p-1"}))
	mr.FastForward(2 * time.Minute)

	var got Product
	ok, err := cache.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNilCacheIsSafe(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	require.NoError(t, cache.SetJSON(ctx, "k", 1))
	var got int
	ok, err := cache.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	require.False(t, ok)
}
