package domain

import "strings"

// SortKey is one of the closed set of catalog orderings.
type SortKey string

const (
	// SortNone means no explicit ordering was chosen by the shopper.
	SortNone      SortKey = ""
	SortNewest    SortKey = "newest"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortRating    SortKey = "rating"
	SortPopular   SortKey = "popular"
	SortName      SortKey = "name"
)

// SortKeys lists every valid explicit sort key in display order.
var SortKeys = []SortKey{SortNewest, SortPriceLow, SortPriceHigh, SortRating, SortPopular, SortName}

// Valid reports whether k is one of the explicit sort keys.
func (k SortKey) Valid() bool {
	for _, known := range SortKeys {
		if k == known {
			return true
		}
	}
	return false
}

// ParseSortKey maps user input to a SortKey.
// Empty input yields SortNone; anything unrecognised fails closed to SortNewest.
func ParseSortKey(s string) SortKey {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortNone
	}
	if k := SortKey(s); k.Valid() {
		return k
	}
	return SortNewest
}
