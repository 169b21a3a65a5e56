package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/velora-shop/backend-storefront/internal/lock"
	"github.com/velora-shop/backend-storefront/internal/obs"
)

// TypeCartExpire sweeps an abandoned cart once its session TTL has elapsed.
const TypeCartExpire = "cart:expire"

// CartExpirePayload carries the cart identifier for an expiry sweep.
type CartExpirePayload struct {
	CartID string `json:"cart_id"`
}

// NewCartExpireTask builds the asynq task for a cart expiry sweep.
func NewCartExpireTask(cartID string) (*asynq.Task, error) {
	if cartID == "" {
		return nil, errors.New("tasks: cart id is required")
	}
	payload, err := json.Marshal(CartExpirePayload{CartID: cartID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeCartExpire, payload, asynq.MaxRetry(5)), nil
}

// Enqueuer schedules cart sweeps on the task queue. The delay is the cart
// session TTL plus a small slack so the Redis TTL fires first.
type Enqueuer struct {
	Client *asynq.Client
	Delay  time.Duration
}

func (e Enqueuer) delay() time.Duration {
	if e.Delay <= 0 {
		return 7 * 24 * time.Hour
	}
	return e.Delay + time.Minute
}

// ScheduleExpiry implements cart.ExpiryScheduler.
func (e Enqueuer) ScheduleExpiry(ctx context.Context, cartID string) error {
	if e.Client == nil {
		return errors.New("tasks: client not configured")
	}
	task, err := NewCartExpireTask(cartID)
	if err != nil {
		return err
	}
	_, err = e.Client.EnqueueContext(ctx, task, asynq.ProcessIn(e.delay()), asynq.TaskID("cart-expire:"+cartID))
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

// CartExpirer is the slice of the cart service the worker needs.
type CartExpirer interface {
	Expire(ctx context.Context, cartID string) error
}

// CartExpireWorker processes expiry sweep tasks. The lock guards against two
// workers sweeping the same cart; with no lock configured the sweep runs
// unguarded, which is safe because Expire is idempotent.
type CartExpireWorker struct {
	Svc     CartExpirer
	Locker  lock.Locker
	LockTTL time.Duration
}

// ProcessTask implements asynq.Handler.
func (w CartExpireWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload CartExpirePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		w.observe("malformed")
		return fmt.Errorf("decode %s payload: %v: %w", TypeCartExpire, err, asynq.SkipRetry)
	}
	if payload.CartID == "" {
		w.observe("malformed")
		return fmt.Errorf("empty cart id: %w", asynq.SkipRetry)
	}
	err := w.sweep(ctx, payload.CartID)
	if err != nil {
		w.observe("error")
		return err
	}
	w.observe("ok")
	return nil
}

func (w CartExpireWorker) sweep(ctx context.Context, cartID string) error {
	if w.Locker.R == nil {
		return w.Svc.Expire(ctx, cartID)
	}
	ttl := w.LockTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return w.Locker.WithLock(ctx, "lock:cart-expire:"+cartID, ttl, func(ctx context.Context) error {
		return w.Svc.Expire(ctx, cartID)
	})
}

func (w CartExpireWorker) observe(result string) {
	if obs.CartExpirySweepsTotal != nil {
		obs.CartExpirySweepsTotal.WithLabelValues(result).Inc()
	}
}
