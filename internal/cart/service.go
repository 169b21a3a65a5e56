package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/velora-shop/backend-storefront/internal/events"
	"github.com/velora-shop/backend-storefront/internal/obs"
	"github.com/velora-shop/backend-storefront/internal/pricing"
)

// ErrNotFound indicates the requested cart could not be located.
var ErrNotFound = errors.New("cart not found")

// ErrItemNotFound indicates the referenced cart line does not exist.
var ErrItemNotFound = errors.New("cart item not found")

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// ErrBelowMinimumOrder rejects quantities under the product's MOQ.
var ErrBelowMinimumOrder = errors.New("quantity below minimum order quantity")

// ErrInsufficientStock rejects quantities exceeding the product's stock.
var ErrInsufficientStock = errors.New("insufficient stock")

// Product is the read-only catalog view the cart engine depends on.
type Product struct {
	ID        string
	Name      string
	Slug      string
	BasePrice pricing.Money
	Stock     int
	MOQ       int
	Tiers     []pricing.Tier
}

// ProductSource supplies product records by id. Implementations report an
// unknown id by wrapping ErrInvalidInput.
type ProductSource interface {
	ProductByID(ctx context.Context, productID string) (Product, error)
}

// ExpiryScheduler schedules a background sweep for a newly created cart.
type ExpiryScheduler interface {
	ScheduleExpiry(ctx context.Context, cartID string) error
}

// Service encapsulates cart domain operations. Every mutation follows the
// same shape: validate, mutate a loaded copy, recompute all aggregates from
// the full item list, persist wholesale. A rejected mutation never persists.
type Service struct {
	Store    Store
	Products ProductSource
	Policy   pricing.Policy
	Events   *events.Bus
	Expiry   ExpiryScheduler
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) emit(ctx context.Context, topic, cartID string, payload any) {
	if s == nil || s.Events == nil {
		return
	}
	// Notifier failures must not fail the mutation.
	_, _ = s.Events.Emit(ctx, topic, cartID, payload)
}

// resolveTier wraps the pure lookup with an outcome counter: did a configured
// tier match, or did the base-price fallback apply.
func resolveTier(p Product, qty int) pricing.Tier {
	tier := pricing.ResolveTier(p.Tiers, p.BasePrice, qty)
	if obs.TierResolutionsTotal != nil {
		outcome := "fallback"
		for _, t := range p.Tiers {
			if t.MinQuantity == tier.MinQuantity && t.UnitPrice == tier.UnitPrice {
				outcome = "matched"
				break
			}
		}
		obs.TierResolutionsTotal.WithLabelValues(outcome).Inc()
	}
	return tier
}

func (s *Service) recompute(c *Cart) {
	summary := pricing.Compute(c.pricingItems(), c.Totals.Discount, s.Policy)
	c.Totals = Totals{
		Subtotal:     summary.Subtotal,
		Tax:          summary.Tax,
		ShippingCost: summary.Shipping,
		Discount:     summary.Discount,
		TotalAmount:  summary.Total,
	}
	c.UpdatedAt = s.now()
}

// Create initialises and persists a fresh empty cart.
func (s *Service) Create(ctx context.Context) (Cart, error) {
	if s == nil || s.Store == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	now := s.now()
	c := Cart{
		ID:        uuid.NewString(),
		Items:     []Item{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.Save(ctx, c); err != nil {
		return Cart{}, err
	}
	if s.Expiry != nil {
		// Best effort: a missed sweep only delays the expiry event.
		_ = s.Expiry.ScheduleExpiry(ctx, c.ID)
	}
	s.emit(ctx, events.TopicCartCreated, c.ID, map[string]any{"cartId": c.ID})
	return c, nil
}

// Get loads a cart by id.
func (s *Service) Get(ctx context.Context, cartID string) (Cart, error) {
	if s == nil || s.Store == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	if cartID == "" {
		return Cart{}, fmt.Errorf("cart id required: %w", ErrInvalidInput)
	}
	return s.Store.Load(ctx, cartID)
}

// AddItem inserts a new line or merges into an existing line for the same
// product. The merged quantity is re-validated against stock and re-priced by
// tier lookup before anything is persisted.
func (s *Service) AddItem(ctx context.Context, cartID, productID string, qty int) (Cart, error) {
	if s == nil || s.Store == nil || s.Products == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	if cartID == "" || productID == "" {
		return Cart{}, fmt.Errorf("cart and product ids required: %w", ErrInvalidInput)
	}
	if qty <= 0 {
		return Cart{}, fmt.Errorf("qty must be positive: %w", ErrInvalidInput)
	}
	c, err := s.Store.Load(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	product, err := s.Products.ProductByID(ctx, productID)
	if err != nil {
		return Cart{}, err
	}
	if qty < product.MOQ {
		return Cart{}, fmt.Errorf("product %s requires at least %d units: %w", product.Slug, product.MOQ, ErrBelowMinimumOrder)
	}
	if qty > product.Stock {
		return Cart{}, fmt.Errorf("only %d units of %s in stock: %w", product.Stock, product.Slug, ErrInsufficientStock)
	}

	if idx := c.findProduct(productID); idx >= 0 {
		merged := c.Items[idx].Quantity + qty
		if merged > product.Stock {
			return Cart{}, fmt.Errorf("only %d units of %s in stock: %w", product.Stock, product.Slug, ErrInsufficientStock)
		}
		tier := resolveTier(product, merged)
		c.Items[idx].Quantity = merged
		c.Items[idx].UnitPrice = tier.UnitPrice
		c.Items[idx].TierMinQuantity = tier.MinQuantity
		c.Items[idx].LineTotal = pricing.Money(merged) * tier.UnitPrice
	} else {
		tier := resolveTier(product, qty)
		c.Items = append(c.Items, Item{
			ID:              uuid.NewString(),
			ProductID:       product.ID,
			Name:            product.Name,
			Slug:            product.Slug,
			Quantity:        qty,
			UnitPrice:       tier.UnitPrice,
			TierMinQuantity: tier.MinQuantity,
			LineTotal:       pricing.Money(qty) * tier.UnitPrice,
		})
	}
	s.recompute(&c)
	if err := s.Store.Save(ctx, c); err != nil {
		return Cart{}, err
	}
	s.emit(ctx, events.TopicCartItemAdded, c.ID, map[string]any{"productId": productID, "qty": qty})
	return c, nil
}

// UpdateQuantity sets a line's quantity, re-resolving its tier. A quantity of
// zero removes the line; negative quantities are rejected.
func (s *Service) UpdateQuantity(ctx context.Context, cartID, itemID string, qty int) (Cart, error) {
	if s == nil || s.Store == nil || s.Products == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	if cartID == "" || itemID == "" {
		return Cart{}, fmt.Errorf("cart and item ids required: %w", ErrInvalidInput)
	}
	if qty < 0 {
		return Cart{}, fmt.Errorf("qty must not be negative: %w", ErrInvalidInput)
	}
	c, err := s.Store.Load(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	idx := c.findItem(itemID)
	if idx < 0 {
		return Cart{}, ErrItemNotFound
	}
	if qty == 0 {
		return s.removeAt(ctx, c, idx)
	}
	product, err := s.Products.ProductByID(ctx, c.Items[idx].ProductID)
	if err != nil {
		return Cart{}, err
	}
	if qty < product.MOQ {
		return Cart{}, fmt.Errorf("product %s requires at least %d units: %w", product.Slug, product.MOQ, ErrBelowMinimumOrder)
	}
	if qty > product.Stock {
		return Cart{}, fmt.Errorf("only %d units of %s in stock: %w", product.Stock, product.Slug, ErrInsufficientStock)
	}
	tier := resolveTier(product, qty)
	c.Items[idx].Quantity = qty
	c.Items[idx].UnitPrice = tier.UnitPrice
	c.Items[idx].TierMinQuantity = tier.MinQuantity
	c.Items[idx].LineTotal = pricing.Money(qty) * tier.UnitPrice
	s.recompute(&c)
	if err := s.Store.Save(ctx, c); err != nil {
		return Cart{}, err
	}
	s.emit(ctx, events.TopicCartItemUpdated, c.ID, map[string]any{"itemId": itemID, "qty": qty})
	return c, nil
}

// RemoveItem filters the line out. Removing an unknown id is a no-op.
func (s *Service) RemoveItem(ctx context.Context, cartID, itemID string) (Cart, error) {
	if s == nil || s.Store == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	if cartID == "" || itemID == "" {
		return Cart{}, fmt.Errorf("cart and item ids required: %w", ErrInvalidInput)
	}
	c, err := s.Store.Load(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	idx := c.findItem(itemID)
	if idx < 0 {
		return c, nil
	}
	return s.removeAt(ctx, c, idx)
}

func (s *Service) removeAt(ctx context.Context, c Cart, idx int) (Cart, error) {
	itemID := c.Items[idx].ID
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	s.recompute(&c)
	if err := s.Store.Save(ctx, c); err != nil {
		return Cart{}, err
	}
	s.emit(ctx, events.TopicCartItemRemoved, c.ID, map[string]any{"itemId": itemID})
	return c, nil
}

// Clear replaces the cart with a fresh empty one under a new identifier and
// deletes the old blob.
func (s *Service) Clear(ctx context.Context, cartID string) (Cart, error) {
	if s == nil || s.Store == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	if cartID == "" {
		return Cart{}, fmt.Errorf("cart id required: %w", ErrInvalidInput)
	}
	if _, err := s.Store.Load(ctx, cartID); err != nil {
		return Cart{}, err
	}
	fresh, err := s.Create(ctx)
	if err != nil {
		return Cart{}, err
	}
	if err := s.Store.Delete(ctx, cartID); err != nil {
		return Cart{}, err
	}
	s.emit(ctx, events.TopicCartCleared, cartID, map[string]any{"replacedBy": fresh.ID})
	return fresh, nil
}

// Expire records the expiry of an abandoned cart. The Redis TTL already
// removes the blob; this backs the delayed sweep task, which fires once the
// original session TTL has elapsed. A blob that is still present means the
// cart was touched since (every Save refreshes the TTL), so nothing happens.
func (s *Service) Expire(ctx context.Context, cartID string) error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	_, err := s.Store.Load(ctx, cartID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	s.emit(ctx, events.TopicCartExpired, cartID, map[string]any{"cartId": cartID})
	return nil
}
