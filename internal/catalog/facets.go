package catalog

import (
	"math"

	"storefront-catalog-service/internal/domain"
)

// priceBoundStep is the granularity the derived price bound is rounded up to.
const priceBoundStep = 100

// DeriveFacets computes the category list and the price bound used to seed
// filter controls. An empty collection yields the fallback price bound.
func DeriveFacets(items []domain.Item, priceMaxFallback float64) domain.Facets {
	facets := domain.Facets{
		Categories: []string{domain.CategoryAll},
		MaxPrice:   priceMaxFallback,
	}
	if len(items) == 0 {
		return facets
	}

	seen := map[string]struct{}{domain.CategoryAll: {}}
	maxPrice := 0.0
	for i := range items {
		it := items[i].Normalize()
		if it.Price > maxPrice {
			maxPrice = it.Price
		}
		if it.Category == "" {
			continue
		}
		if _, ok := seen[it.Category]; ok {
			continue
		}
		seen[it.Category] = struct{}{}
		facets.Categories = append(facets.Categories, it.Category)
	}

	facets.MaxPrice = roundUpPrice(maxPrice)
	return facets
}

// roundUpPrice rounds p up to the next multiple of priceBoundStep (733 -> 800, 800 -> 800).
func roundUpPrice(p float64) float64 {
	return math.Ceil(p/priceBoundStep) * priceBoundStep
}
