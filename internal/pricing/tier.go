package pricing

import "sort"

// Tier is a quantity range with an associated per-unit price. MaxQuantity of 0
// means the range is unbounded above.
type Tier struct {
	MinQuantity int   `json:"minQuantity"`
	MaxQuantity int   `json:"maxQuantity,omitempty"`
	UnitPrice   Money `json:"unitPrice"`
}

// Contains reports whether qty falls inside the tier's range.
func (t Tier) Contains(qty int) bool {
	if qty < t.MinQuantity {
		return false
	}
	if t.MaxQuantity > 0 && qty > t.MaxQuantity {
		return false
	}
	return true
}

// ResolveTier selects the unit price tier for the requested quantity. Tiers
// may arrive unsorted or with gaps; the highest MinQuantity tier whose range
// contains the quantity wins. When nothing matches the product's base price
// stands in as a synthetic tier covering [1, ∞).
func ResolveTier(tiers []Tier, basePrice Money, qty int) Tier {
	if qty < 1 {
		qty = 1
	}
	candidates := make([]Tier, 0, len(tiers))
	for _, t := range tiers {
		if t.MinQuantity >= 1 && t.UnitPrice > 0 {
			candidates = append(candidates, t)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].MinQuantity > candidates[j].MinQuantity
	})
	for _, t := range candidates {
		if t.Contains(qty) {
			return t
		}
	}
	return Tier{MinQuantity: 1, UnitPrice: basePrice}
}
