package domain

import (
	"time"
)

// CategoryAll is the sentinel category meaning "no category filter".
const CategoryAll = "all"

// Item represents a single catalog entry.
// The json tags correspond to the fields expected in API responses and item source files.
type Item struct {
	ID              string    `json:"id" yaml:"id"`
	Name            string    `json:"name" yaml:"name"`
	Description     string    `json:"description" yaml:"description"`
	Category        string    `json:"category" yaml:"category"`
	Price           float64   `json:"price" yaml:"price"`
	OriginalPrice   float64   `json:"original_price" yaml:"original_price"`     // >= Price when a discount applies
	DiscountPercent int       `json:"discount_percent" yaml:"discount_percent"` // Informational only, 0-100
	Rating          float64   `json:"rating" yaml:"rating"`
	ReviewCount     int       `json:"review_count" yaml:"review_count"`
	CreatedAt       time.Time `json:"created_at" yaml:"created_at"`
	Availability    bool      `json:"availability" yaml:"availability"`
}

// FilterCriteria describes the active narrowing of a catalog view.
// It is replaced wholesale whenever a control changes, never partially mutated.
type FilterCriteria struct {
	SearchText string  `json:"search_text"`
	Category   string  `json:"category"`   // A specific tag or CategoryAll
	PriceMax   float64 `json:"price_max"`  // Inclusive upper bound, lower bound is fixed at 0
	MinRating  float64 `json:"min_rating"` // 0 means no constraint
}

// DefaultCriteria returns criteria that match every item priced at or below priceMax.
func DefaultCriteria(priceMax float64) FilterCriteria {
	return FilterCriteria{Category: CategoryAll, PriceMax: priceMax}
}

// Facets are summary values derived from a whole collection, used to populate filter controls.
type Facets struct {
	Categories []string `json:"categories"` // CategoryAll first, then first-seen order
	MaxPrice   float64  `json:"max_price"`
}

// QueryResult is the ordered output of the filter-sort pipeline.
type QueryResult struct {
	Items []Item `json:"items"`
}

// Len returns the number of items in the result.
func (r QueryResult) Len() int {
	return len(r.Items)
}
