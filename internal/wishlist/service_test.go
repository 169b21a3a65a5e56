package wishlist

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const productA = "6f1c1f9a-8d6f-4f7e-9a3e-aaaaaaaaaaaa"
const productB = "6f1c1f9a-8d6f-4f7e-9a3e-bbbbbbbbbbbb"

func newTestService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &Service{Client: client, TTL: time.Hour}, mr
}

func TestGetMissingReturnsEmptyWishlist(t *testing.T) {
	svc, _ := newTestService(t)

	wl, err := svc.Get(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Equal(t, "owner-1", wl.ID)
	require.Empty(t, wl.ProductIDs)
}

func TestAddDeduplicates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	wl, err := svc.Add(ctx, "owner-1", productA)
	require.NoError(t, err)
	require.Equal(t, []string{productA}, wl.ProductIDs)

	wl, err = svc.Add(ctx, "owner-1", productA)
	require.NoError(t, err)
	require.Equal(t, []string{productA}, wl.ProductIDs)

	wl, err = svc.Add(ctx, "owner-1", productB)
	require.NoError(t, err)
	require.Equal(t, []string{productA, productB}, wl.ProductIDs)
}

func TestAddRejectsMalformedProductID(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Add(context.Background(), "owner-1", "not-a-uuid")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "owner-1", productA)
	require.NoError(t, err)

	wl, err := svc.Remove(ctx, "owner-1", productB)
	require.NoError(t, err)
	require.Equal(t, []string{productA}, wl.ProductIDs)

	wl, err = svc.Remove(ctx, "owner-1", productA)
	require.NoError(t, err)
	require.Empty(t, wl.ProductIDs)
}

func TestWishlistExpires(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "owner-1", productA)
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	wl, err := svc.Get(ctx, "owner-1")
	require.NoError(t, err)
	require.Empty(t, wl.ProductIDs)
}
