package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/velora-shop/backend-storefront/internal/pricing"
)

func bulkTiers() []pricing.Tier {
	return []pricing.Tier{
		{MinQuantity: 1, UnitPrice: 1299},
		{MinQuantity: 5, UnitPrice: 1199},
		{MinQuantity: 10, UnitPrice: 1099},
	}
}

func TestResolveTierPicksHighestSatisfiedMinQuantity(t *testing.T) {
	tiers := bulkTiers()
	require.Equal(t, pricing.Money(1299), pricing.ResolveTier(tiers, 1299, 1).UnitPrice)
	require.Equal(t, pricing.Money(1299), pricing.ResolveTier(tiers, 1299, 4).UnitPrice)
	require.Equal(t, pricing.Money(1199), pricing.ResolveTier(tiers, 1299, 5).UnitPrice)
	require.Equal(t, pricing.Money(1199), pricing.ResolveTier(tiers, 1299, 7).UnitPrice)
	require.Equal(t, pricing.Money(1099), pricing.ResolveTier(tiers, 1299, 10).UnitPrice)
	require.Equal(t, pricing.Money(1099), pricing.ResolveTier(tiers, 1299, 500).UnitPrice)
}

func TestResolveTierToleratesUnsortedInput(t *testing.T) {
	tiers := []pricing.Tier{
		{MinQuantity: 10, UnitPrice: 1099},
		{MinQuantity: 1, UnitPrice: 1299},
		{MinQuantity: 5, UnitPrice: 1199},
	}
	require.Equal(t, pricing.Money(1199), pricing.ResolveTier(tiers, 1299, 6).UnitPrice)
}

func TestResolveTierFallsBackToBasePrice(t *testing.T) {
	got := pricing.ResolveTier(nil, 450, 3)
	require.Equal(t, pricing.Money(450), got.UnitPrice)
	require.Equal(t, 1, got.MinQuantity)
}

func TestResolveTierGapDegradesToBasePrice(t *testing.T) {
	// Bounded tiers leaving [21, ∞) unconfigured.
	tiers := []pricing.Tier{
		{MinQuantity: 1, MaxQuantity: 10, UnitPrice: 900},
		{MinQuantity: 11, MaxQuantity: 20, UnitPrice: 800},
	}
	require.Equal(t, pricing.Money(800), pricing.ResolveTier(tiers, 1000, 15).UnitPrice)
	got := pricing.ResolveTier(tiers, 1000, 21)
	require.Equal(t, pricing.Money(1000), got.UnitPrice)
}

func TestResolveTierIgnoresMalformedTiers(t *testing.T) {
	tiers := []pricing.Tier{
		{MinQuantity: 0, UnitPrice: 1},
		{MinQuantity: 2, UnitPrice: 0},
		{MinQuantity: 1, UnitPrice: 700},
	}
	require.Equal(t, pricing.Money(700), pricing.ResolveTier(tiers, 900, 3).UnitPrice)
}

func TestResolveTierMonotonicAcrossBoundaries(t *testing.T) {
	tiers := bulkTiers()
	prev := pricing.ResolveTier(tiers, 1299, 1).UnitPrice
	for qty := 2; qty <= 30; qty++ {
		cur := pricing.ResolveTier(tiers, 1299, qty).UnitPrice
		require.LessOrEqual(t, cur, prev, "unit price must be non-increasing at qty %d", qty)
		prev = cur
	}
}
