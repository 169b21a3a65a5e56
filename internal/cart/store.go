package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the persistence port for carts. Implementations persist the whole
// cart as one document; there is no partial-write guarantee and none is
// needed because every mutation rewrites the full blob.
type Store interface {
	Load(ctx context.Context, cartID string) (Cart, error)
	Save(ctx context.Context, c Cart) error
	Delete(ctx context.Context, cartID string) error
}

// RedisStore keeps each cart as a single JSON value under cart:{id} with a
// session TTL.
type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func (s RedisStore) key(cartID string) string {
	return "cart:" + cartID
}

func (s RedisStore) ttl() time.Duration {
	if s.TTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.TTL
}

// Load deserializes the stored cart. Missing keys map to ErrNotFound.
func (s RedisStore) Load(ctx context.Context, cartID string) (Cart, error) {
	if s.Client == nil {
		return Cart{}, errors.New("cart store not configured")
	}
	if cartID == "" {
		return Cart{}, ErrInvalidInput
	}
	data, err := s.Client.Get(ctx, s.key(cartID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Cart{}, ErrNotFound
		}
		return Cart{}, err
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return Cart{}, fmt.Errorf("decode cart %s: %w", cartID, err)
	}
	return c, nil
}

// Save serializes the cart wholesale, refreshing the TTL.
func (s RedisStore) Save(ctx context.Context, c Cart) error {
	if s.Client == nil {
		return errors.New("cart store not configured")
	}
	if c.ID == "" {
		return ErrInvalidInput
	}
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, s.key(c.ID), data, s.ttl()).Err()
}

// Delete removes the stored cart. Deleting a missing cart is a no-op.
func (s RedisStore) Delete(ctx context.Context, cartID string) error {
	if s.Client == nil {
		return errors.New("cart store not configured")
	}
	if cartID == "" {
		return ErrInvalidInput
	}
	return s.Client.Del(ctx, s.key(cartID)).Err()
}
