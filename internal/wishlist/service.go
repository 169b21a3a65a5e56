package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrInvalidInput is returned when the provided identifiers are invalid.
var ErrInvalidInput = errors.New("invalid input")

// Wishlist is a plain set of product references, serialized wholesale as one
// JSON blob per owner like the cart.
type Wishlist struct {
	ID         string    `json:"id"`
	ProductIDs []string  `json:"productIds"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Service stores wishlists in Redis under wishlist:{id}.
type Service struct {
	Client *redis.Client
	TTL    time.Duration
	Now    func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return 30 * 24 * time.Hour
	}
	return s.TTL
}

func key(id string) string { return "wishlist:" + id }

// Get loads a wishlist; a missing blob is an empty wishlist, not an error.
func (s *Service) Get(ctx context.Context, id string) (Wishlist, error) {
	if s == nil || s.Client == nil {
		return Wishlist{}, errors.New("wishlist service not configured")
	}
	if id == "" {
		return Wishlist{}, fmt.Errorf("wishlist id required: %w", ErrInvalidInput)
	}
	data, err := s.Client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Wishlist{ID: id, ProductIDs: []string{}}, nil
		}
		return Wishlist{}, err
	}
	var wl Wishlist
	if err := json.Unmarshal(data, &wl); err != nil {
		return Wishlist{}, fmt.Errorf("decode wishlist %s: %w", id, err)
	}
	return wl, nil
}

// Add appends a product reference if not already present.
func (s *Service) Add(ctx context.Context, id, productID string) (Wishlist, error) {
	if _, err := uuid.Parse(productID); err != nil {
		return Wishlist{}, fmt.Errorf("parse product id: %w", ErrInvalidInput)
	}
	wl, err := s.Get(ctx, id)
	if err != nil {
		return Wishlist{}, err
	}
	for _, existing := range wl.ProductIDs {
		if existing == productID {
			return wl, nil
		}
	}
	wl.ProductIDs = append(wl.ProductIDs, productID)
	if err := s.save(ctx, &wl); err != nil {
		return Wishlist{}, err
	}
	return wl, nil
}

// Remove drops a product reference. Removing an absent product is a no-op.
func (s *Service) Remove(ctx context.Context, id, productID string) (Wishlist, error) {
	wl, err := s.Get(ctx, id)
	if err != nil {
		return Wishlist{}, err
	}
	kept := wl.ProductIDs[:0]
	for _, existing := range wl.ProductIDs {
		if existing != productID {
			kept = append(kept, existing)
		}
	}
	if len(kept) == len(wl.ProductIDs) {
		return wl, nil
	}
	wl.ProductIDs = kept
	if err := s.save(ctx, &wl); err != nil {
		return Wishlist{}, err
	}
	return wl, nil
}

func (s *Service) save(ctx context.Context, wl *Wishlist) error {
	wl.UpdatedAt = s.now()
	data, err := json.Marshal(wl)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, key(wl.ID), data, s.ttl()).Err()
}
