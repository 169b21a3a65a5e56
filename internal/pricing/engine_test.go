package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/velora-shop/backend-storefront/internal/pricing"
)

var testPolicy = pricing.Policy{
	TaxBps:                1800,
	FreeShippingThreshold: 500000,
	ShippingFlat:          20000,
}

func TestComputeEmptyCart(t *testing.T) {
	got := pricing.Compute(nil, 0, testPolicy)
	require.Equal(t, pricing.Summary{}, got)
}

func TestComputeSubtotalTaxAndShipping(t *testing.T) {
	items := []pricing.Item{
		{Qty: 2, UnitPrice: 10000},
		{Qty: 1, UnitPrice: 5000},
	}
	got := pricing.Compute(items, 0, testPolicy)
	require.Equal(t, pricing.Money(25000), got.Subtotal)
	require.Equal(t, pricing.Money(4500), got.Tax)
	require.Equal(t, pricing.Money(20000), got.Shipping)
	require.Equal(t, pricing.Money(0), got.Discount)
	require.Equal(t, pricing.Money(49500), got.Total)
}

func TestComputeFreeShippingBoundary(t *testing.T) {
	atThreshold := []pricing.Item{{Qty: 1, UnitPrice: testPolicy.FreeShippingThreshold}}
	got := pricing.Compute(atThreshold, 0, testPolicy)
	require.Equal(t, pricing.Money(0), got.Shipping)

	oneBelow := []pricing.Item{{Qty: 1, UnitPrice: testPolicy.FreeShippingThreshold - 1}}
	got = pricing.Compute(oneBelow, 0, testPolicy)
	require.Equal(t, testPolicy.ShippingFlat, got.Shipping)
}

func TestComputeIgnoresNonPositiveQuantities(t *testing.T) {
	items := []pricing.Item{
		{Qty: 0, UnitPrice: 10000},
		{Qty: -3, UnitPrice: 10000},
		{Qty: 1, UnitPrice: 10000},
	}
	got := pricing.Compute(items, 0, testPolicy)
	require.Equal(t, pricing.Money(10000), got.Subtotal)
}

func TestComputeDiscountClampedToSubtotal(t *testing.T) {
	items := []pricing.Item{{Qty: 1, UnitPrice: 1000}}
	got := pricing.Compute(items, 5000, testPolicy)
	require.Equal(t, pricing.Money(1000), got.Discount)
	require.Equal(t, pricing.Money(0), got.Tax)
	require.Equal(t, testPolicy.ShippingFlat, got.Shipping)
	require.Equal(t, testPolicy.ShippingFlat, got.Total)
}

func TestComputeIsIdempotent(t *testing.T) {
	items := []pricing.Item{
		{Qty: 7, UnitPrice: 1199},
		{Qty: 2, UnitPrice: 349},
	}
	first := pricing.Compute(items, 0, testPolicy)
	second := pricing.Compute(items, 0, testPolicy)
	require.Equal(t, first, second)
	require.Equal(t, first.Subtotal-first.Discount+first.Tax+first.Shipping, first.Total)
}
