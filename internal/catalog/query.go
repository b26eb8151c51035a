package catalog

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"storefront-catalog-service/internal/domain"
)

// Filter returns the items that satisfy every predicate of c, in input order.
// Returned items have their numeric fields normalized.
func Filter(items []domain.Item, c domain.FilterCriteria) []domain.Item {
	m := newMatcher(c)
	out := make([]domain.Item, 0, len(items))
	for i := range items {
		it := items[i].Normalize()
		if m.match(it) {
			out = append(out, it)
		}
	}
	return out
}

// Sort returns a stably sorted copy of items ordered by key.
// SortNone and unknown keys order by newest.
func Sort(items []domain.Item, key domain.SortKey) []domain.Item {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, comparator(key))
	return sorted
}

// Query runs the filter-sort pipeline. An empty collection yields an empty result.
func Query(items []domain.Item, c domain.FilterCriteria, key domain.SortKey) domain.QueryResult {
	return domain.QueryResult{Items: Sort(Filter(items, c), key)}
}

type matcher struct {
	criteria domain.FilterCriteria
	category string
	needle   string
	fold     cases.Caser
}

func newMatcher(c domain.FilterCriteria) *matcher {
	m := &matcher{
		criteria: c,
		category: c.Category,
		// Casers carry state, so each matcher gets its own.
		fold: cases.Lower(language.Und),
	}
	if m.category == "" {
		m.category = domain.CategoryAll
	}
	if q := strings.TrimSpace(c.SearchText); q != "" {
		m.needle = m.fold.String(q)
	}
	return m
}

func (m *matcher) match(it domain.Item) bool {
	if m.category != domain.CategoryAll && it.Category != m.category {
		return false
	}
	if it.Price > m.criteria.PriceMax {
		return false
	}
	if it.Rating < m.criteria.MinRating {
		return false
	}
	if m.needle == "" {
		return true
	}
	return strings.Contains(m.fold.String(it.Name), m.needle) ||
		strings.Contains(m.fold.String(it.Description), m.needle)
}

func comparator(key domain.SortKey) func(a, b domain.Item) int {
	switch key {
	case domain.SortPriceLow:
		return func(a, b domain.Item) int { return cmp.Compare(a.Price, b.Price) }
	case domain.SortPriceHigh:
		return func(a, b domain.Item) int { return cmp.Compare(b.Price, a.Price) }
	case domain.SortRating:
		return func(a, b domain.Item) int { return cmp.Compare(b.Rating, a.Rating) }
	case domain.SortPopular:
		return func(a, b domain.Item) int { return cmp.Compare(b.ReviewCount, a.ReviewCount) }
	case domain.SortName:
		// A collator is not safe for concurrent use; one per sort.
		col := collate.New(language.English)
		return func(a, b domain.Item) int { return col.CompareString(a.Name, b.Name) }
	default:
		return compareNewest
	}
}

// compareNewest orders by CreatedAt descending with missing timestamps last.
func compareNewest(a, b domain.Item) int {
	am, bm := missingTime(a.CreatedAt), missingTime(b.CreatedAt)
	switch {
	case am && bm:
		return 0
	case am:
		return 1
	case bm:
		return -1
	}
	return b.CreatedAt.Compare(a.CreatedAt)
}

func missingTime(t time.Time) bool {
	return t.IsZero() || t.Unix() == 0
}
