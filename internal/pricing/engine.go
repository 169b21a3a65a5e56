package pricing

// Money represents a monetary value stored in minor units.
type Money = int64

// Item describes a line item used for pricing calculation.
type Item struct {
	Qty       int
	UnitPrice Money
}

// Policy groups the pricing constants applied to every cart.
type Policy struct {
	TaxBps                int
	FreeShippingThreshold Money
	ShippingFlat          Money
}

// Summary aggregates computed pricing components.
type Summary struct {
	Subtotal Money `json:"subtotal"`
	Discount Money `json:"discount"`
	Tax      Money `json:"tax"`
	Shipping Money `json:"shippingCost"`
	Total    Money `json:"totalAmount"`
}

// Compute calculates cart totals given the provided inputs. It is total over
// all well-formed item lists, including the empty list. No coupon engine
// exists; callers pass 0 for discount and the field is carried through as-is.
func Compute(items []Item, discount Money, policy Policy) Summary {
	var subtotal Money
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		subtotal += Money(it.Qty) * it.UnitPrice
	}
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	taxable := subtotal - discount
	tax := (taxable * Money(policy.TaxBps)) / 10000
	shipping := policy.ShippingFlat
	if subtotal == 0 || subtotal >= policy.FreeShippingThreshold {
		shipping = 0
	}
	total := taxable + tax + shipping
	if total < 0 {
		total = 0
	}
	return Summary{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Shipping: shipping,
		Total:    total,
	}
}
