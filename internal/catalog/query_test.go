package catalog

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-catalog-service/internal/domain"
)

var baseTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func ids(items []domain.Item) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[i].ID
	}
	return out
}

func allCriteria() domain.FilterCriteria {
	return domain.FilterCriteria{Category: domain.CategoryAll, PriceMax: 1000}
}

func TestFilter_Conjunction(t *testing.T) {
	criteria := domain.FilterCriteria{
		SearchText: "lamp",
		Category:   "home",
		PriceMax:   100,
		MinRating:  3,
	}

	// Each predicate can be satisfied or violated independently.
	build := func(category, search, price, rating bool) domain.Item {
		it := domain.Item{ID: "x", Name: "Desk lamp", Category: "home", Price: 50, Rating: 4}
		if !category {
			it.Category = "garden"
		}
		if !search {
			it.Name = "Desk chair"
		}
		if !price {
			it.Price = 150
		}
		if !rating {
			it.Rating = 2
		}
		return it
	}

	for mask := 0; mask < 16; mask++ {
		category, search, price, rating := mask&1 != 0, mask&2 != 0, mask&4 != 0, mask&8 != 0
		it := build(category, search, price, rating)
		got := Filter([]domain.Item{it}, criteria)
		want := category && search && price && rating
		assert.Equal(t, want, len(got) == 1, "mask %04b", mask)
	}
}

func TestFilter_Predicates(t *testing.T) {
	items := []domain.Item{
		{ID: "a", Name: "Alpha", Description: "first", Category: "books", Price: 10, Rating: 4.5},
		{ID: "b", Name: "Beta", Description: "Contains LAMP oil", Category: "home", Price: 100, Rating: 3},
		{ID: "c", Name: "Gamma", Description: "third", Category: "home", Price: 100.01, Rating: 5},
		{ID: "d", Name: "Delta lamp", Description: "", Category: "garden", Price: 0, Rating: 0},
	}

	tests := []struct {
		name     string
		criteria domain.FilterCriteria
		want     []string
	}{
		{name: "no constraints", criteria: allCriteria(), want: []string{"a", "b", "c", "d"}},
		{name: "empty category means all", criteria: domain.FilterCriteria{PriceMax: 1000}, want: []string{"a", "b", "c", "d"}},
		{name: "category", criteria: domain.FilterCriteria{Category: "home", PriceMax: 1000}, want: []string{"b", "c"}},
		{name: "price max is inclusive", criteria: domain.FilterCriteria{Category: domain.CategoryAll, PriceMax: 100}, want: []string{"a", "b", "d"}},
		{name: "min rating is inclusive", criteria: domain.FilterCriteria{Category: domain.CategoryAll, PriceMax: 1000, MinRating: 4.5}, want: []string{"a", "c"}},
		{name: "search name or description, case-insensitive", criteria: domain.FilterCriteria{Category: domain.CategoryAll, PriceMax: 1000, SearchText: "  Lamp "}, want: []string{"b", "d"}},
		{name: "whitespace search is ignored", criteria: domain.FilterCriteria{Category: domain.CategoryAll, PriceMax: 1000, SearchText: "   "}, want: []string{"a", "b", "c", "d"}},
		{name: "no match", criteria: domain.FilterCriteria{Category: "toys", PriceMax: 1000}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(items, tt.criteria)))
		})
	}
}

func TestFilter_CoercesCorruptNumbers(t *testing.T) {
	items := []domain.Item{
		{ID: "nan", Price: math.NaN(), Rating: math.NaN()},
		{ID: "inf", Price: math.Inf(1), Rating: math.Inf(-1)},
		{ID: "neg", Price: -5, Rating: 9, ReviewCount: -3},
	}

	got := Filter(items, domain.FilterCriteria{Category: domain.CategoryAll, PriceMax: 0})
	require.Len(t, got, 3)
	assert.Equal(t, 0.0, got[0].Price)
	assert.Equal(t, 0.0, got[0].Rating)
	assert.Equal(t, 0.0, got[1].Price)
	assert.Equal(t, 0.0, got[1].Rating)
	assert.Equal(t, 0.0, got[2].Price)
	assert.Equal(t, 5.0, got[2].Rating)
	assert.Equal(t, 0, got[2].ReviewCount)
}

func TestQuery_EmptyCollection(t *testing.T) {
	res := Query(nil, allCriteria(), domain.SortNewest)
	assert.Equal(t, 0, res.Len())
	assert.NotNil(t, res.Items)
}

func TestSort_Keys(t *testing.T) {
	items := []domain.Item{
		{ID: "a", Name: "banana", Price: 30, Rating: 4, ReviewCount: 10, CreatedAt: baseTime.Add(2 * time.Hour)},
		{ID: "b", Name: "Apple", Price: 10, Rating: 5, ReviewCount: 3, CreatedAt: baseTime.Add(3 * time.Hour)},
		{ID: "c", Name: "cherry", Price: 20, Rating: 3, ReviewCount: 50, CreatedAt: baseTime.Add(1 * time.Hour)},
		{ID: "d", Name: "Éclair", Price: 15, Rating: 1, ReviewCount: 0},
	}

	tests := []struct {
		key  domain.SortKey
		want []string
	}{
		{key: domain.SortNewest, want: []string{"b", "a", "c", "d"}},
		{key: domain.SortPriceLow, want: []string{"b", "d", "c", "a"}},
		{key: domain.SortPriceHigh, want: []string{"a", "c", "d", "b"}},
		{key: domain.SortRating, want: []string{"b", "a", "c", "d"}},
		{key: domain.SortPopular, want: []string{"c", "a", "b", "d"}},
		{key: domain.SortName, want: []string{"b", "a", "c", "d"}},
		{key: domain.SortNone, want: []string{"b", "a", "c", "d"}},
		{key: domain.SortKey("bogus"), want: []string{"b", "a", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Sort(items, tt.key)))
		})
	}
}

func TestSort_EpochTimestampsSortLast(t *testing.T) {
	items := []domain.Item{
		{ID: "epoch", CreatedAt: time.Unix(0, 0)},
		{ID: "old", CreatedAt: baseTime},
		{ID: "zero"},
		{ID: "new", CreatedAt: baseTime.Add(time.Hour)},
	}
	assert.Equal(t, []string{"new", "old", "epoch", "zero"}, ids(Sort(items, domain.SortNewest)))
}

func TestSort_StableForEveryKey(t *testing.T) {
	// All items tie under every key, so order must be preserved.
	items := make([]domain.Item, 6)
	for i := range items {
		items[i] = domain.Item{
			ID:          string(rune('a' + i)),
			Name:        "Same",
			Price:       42,
			Rating:      3.5,
			ReviewCount: 7,
			CreatedAt:   baseTime,
		}
	}
	want := ids(items)

	for _, key := range append([]domain.SortKey{domain.SortNone}, domain.SortKeys...) {
		t.Run(string(key), func(t *testing.T) {
			assert.Equal(t, want, ids(Sort(items, key)))
		})
	}
}

func TestSort_StableWithinTies(t *testing.T) {
	items := []domain.Item{
		{ID: "p1", Price: 20},
		{ID: "q1", Price: 10},
		{ID: "p2", Price: 20},
		{ID: "q2", Price: 10},
		{ID: "p3", Price: 20},
	}
	assert.Equal(t, []string{"q1", "q2", "p1", "p2", "p3"}, ids(Sort(items, domain.SortPriceLow)))
	assert.Equal(t, []string{"p1", "p2", "p3", "q1", "q2"}, ids(Sort(items, domain.SortPriceHigh)))
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	items := []domain.Item{{ID: "a", Price: 2}, {ID: "b", Price: 1}}
	_ = Sort(items, domain.SortPriceLow)
	assert.Equal(t, []string{"a", "b"}, ids(items))
}

func TestQuery_EndToEnd(t *testing.T) {
	t1 := baseTime
	t2 := baseTime.Add(time.Hour)
	items := []domain.Item{
		{ID: "a", Price: 10, Rating: 4, Category: "a", CreatedAt: t1},
		{ID: "b", Price: 20, Rating: 2, Category: "b", CreatedAt: t2},
	}
	criteria := domain.FilterCriteria{Category: "a", PriceMax: 1000}

	res := Query(items, criteria, domain.SortNewest)
	page := Paginate(res, 12, 1, NarrowWindow)

	assert.Equal(t, []string{"a"}, ids(res.Items))
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 1, page.ClampedPage)
	assert.Equal(t, []string{"a"}, ids(page.Slice))
}
