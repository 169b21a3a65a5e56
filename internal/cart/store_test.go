package cart

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, ttl time.Duration) (RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return RedisStore{Client: client, TTL: ttl}, mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := newRedisStore(t, time.Hour)
	ctx := context.Background()

	c := Cart{
		ID: "cart-1",
		Items: []Item{
			{ID: "line-1", ProductID: "prod-1", Name: "Bottle", Slug: "bottle", Quantity: 5, UnitPrice: 1199, TierMinQuantity: 5, LineTotal: 5995},
		},
		Totals:    Totals{Subtotal: 5995, Tax: 1079, ShippingCost: 20000, TotalAmount: 27074},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.Save(ctx, c))

	loaded, err := store.Load(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, c, loaded)
}

func TestRedisStoreMissingCart(t *testing.T) {
	store, _ := newRedisStore(t, time.Hour)
	_, err := store.Load(context.Background(), "does-not-exist")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreSaveRefreshesTTL(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	ctx := context.Background()

	c := Cart{ID: "cart-ttl", Items: []Item{}}
	require.NoError(t, store.Save(ctx, c))

	mr.FastForward(30 * time.Second)
	require.NoError(t, store.Save(ctx, c))

	// The second save reset the clock: the original window's end passes
	// without eviction.
	mr.FastForward(45 * time.Second)
	_, err := store.Load(ctx, c.ID)
	require.NoError(t, err)

	mr.FastForward(time.Minute)
	_, err = store.Load(ctx, c.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreDelete(t *testing.T) {
	store, _ := newRedisStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Cart{ID: "cart-del"}))
	require.NoError(t, store.Delete(ctx, "cart-del"))
	_, err := store.Load(ctx, "cart-del")
	require.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent blob is not an error.
	require.NoError(t, store.Delete(ctx, "cart-del"))
}
