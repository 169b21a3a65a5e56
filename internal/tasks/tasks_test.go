package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/velora-shop/backend-storefront/internal/lock"
)

type stubExpirer struct {
	expired []string
	err     error
}

func (s *stubExpirer) Expire(_ context.Context, cartID string) error {
	s.expired = append(s.expired, cartID)
	return s.err
}

func TestNewCartExpireTask(t *testing.T) {
	task, err := NewCartExpireTask("cart-1")
	require.NoError(t, err)
	require.Equal(t, TypeCartExpire, task.Type())

	var payload CartExpirePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.Equal(t, "cart-1", payload.CartID)
}

func TestNewCartExpireTaskRequiresID(t *testing.T) {
	_, err := NewCartExpireTask("")
	require.Error(t, err)
}

func TestCartExpireWorker(t *testing.T) {
	svc := &stubExpirer{}
	worker := CartExpireWorker{Svc: svc}

	task, err := NewCartExpireTask("cart-9")
	require.NoError(t, err)
	require.NoError(t, worker.ProcessTask(context.Background(), task))
	require.Equal(t, []string{"cart-9"}, svc.expired)
}

func TestCartExpireWorkerSkipsMalformedPayloads(t *testing.T) {
	svc := &stubExpirer{}
	worker := CartExpireWorker{Svc: svc}

	err := worker.ProcessTask(context.Background(), asynq.NewTask(TypeCartExpire, []byte("not-json")))
	require.ErrorIs(t, err, asynq.SkipRetry)

	err = worker.ProcessTask(context.Background(), asynq.NewTask(TypeCartExpire, []byte(`{"cart_id":""}`)))
	require.ErrorIs(t, err, asynq.SkipRetry)

	require.Empty(t, svc.expired)
}

func TestCartExpireWorkerPropagatesServiceError(t *testing.T) {
	want := errors.New("redis down")
	svc := &stubExpirer{err: want}
	worker := CartExpireWorker{Svc: svc}

	task, err := NewCartExpireTask("cart-2")
	require.NoError(t, err)
	require.ErrorIs(t, worker.ProcessTask(context.Background(), task), want)
}

func TestCartExpireWorkerSweepsUnderLock(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := &stubExpirer{}
	worker := CartExpireWorker{
		Svc:     svc,
		Locker:  lock.Locker{R: client},
		LockTTL: time.Second,
	}

	task, err := NewCartExpireTask("cart-locked")
	require.NoError(t, err)
	require.NoError(t, worker.ProcessTask(context.Background(), task))
	require.Equal(t, []string{"cart-locked"}, svc.expired)

	// The lock was released after the sweep.
	require.False(t, mr.Exists("lock:cart-expire:cart-locked"))
}
