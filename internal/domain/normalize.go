package domain

import "math"

// MaxRating is the top of the rating scale.
const MaxRating = 5

// Normalize returns the item with corrupt numbers coerced: NaN, infinite or
// negative amounts become 0, rating is clamped into [0, MaxRating] and the
// discount into [0, 100]. A bad record degrades instead of failing a load,
// and the result always encodes as JSON.
func (it Item) Normalize() Item {
	it.Price = nonNegative(finite(it.Price))
	it.OriginalPrice = nonNegative(finite(it.OriginalPrice))
	it.Rating = math.Min(nonNegative(finite(it.Rating)), MaxRating)
	if it.ReviewCount < 0 {
		it.ReviewCount = 0
	}
	switch {
	case it.DiscountPercent < 0:
		it.DiscountPercent = 0
	case it.DiscountPercent > 100:
		it.DiscountPercent = 100
	}
	return it
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func nonNegative(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}
