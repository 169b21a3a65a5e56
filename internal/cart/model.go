package cart

import (
	"time"

	"github.com/velora-shop/backend-storefront/internal/pricing"
)

// Item is a cart line holding a denormalized product snapshot. UnitPrice is
// the tier price selected at the last recompute; LineTotal is always
// Quantity × UnitPrice.
type Item struct {
	ID              string        `json:"id"`
	ProductID       string        `json:"productId"`
	Name            string        `json:"name"`
	Slug            string        `json:"slug"`
	Quantity        int           `json:"quantity"`
	UnitPrice       pricing.Money `json:"unitPrice"`
	TierMinQuantity int           `json:"tierMinQuantity"`
	LineTotal       pricing.Money `json:"lineTotal"`
}

// Totals holds the derived aggregates. They are a pure function of the item
// list and are overwritten in full on every mutation. Discount is carried in
// the model but no coupon engine exists, so it stays zero.
type Totals struct {
	Subtotal     pricing.Money `json:"subtotal"`
	Tax          pricing.Money `json:"tax"`
	ShippingCost pricing.Money `json:"shippingCost"`
	Discount     pricing.Money `json:"discount"`
	TotalAmount  pricing.Money `json:"totalAmount"`
}

// Cart is the single client-owned state blob. It is serialized wholesale on
// every mutation and deserialized wholesale on load.
type Cart struct {
	ID        string    `json:"id"`
	Items     []Item    `json:"items"`
	Totals    Totals    `json:"totals"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Cart) findItem(itemID string) int {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

func (c *Cart) findProduct(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// pricingItems projects the cart lines into the pricing engine's input shape.
func (c *Cart) pricingItems() []pricing.Item {
	out := make([]pricing.Item, 0, len(c.Items))
	for _, it := range c.Items {
		out = append(out, pricing.Item{Qty: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return out
}
