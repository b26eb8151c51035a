package catalog

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-catalog-service/internal/domain"
)

func makeResult(n int) domain.QueryResult {
	items := make([]domain.Item, n)
	for i := range items {
		items[i] = domain.Item{ID: fmt.Sprintf("item-%02d", i+1)}
	}
	return domain.QueryResult{Items: items}
}

func labelString(labels []domain.PageLabel) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = l.String()
	}
	return strings.Join(parts, " ")
}

func TestPaginate_Totality(t *testing.T) {
	for _, n := range []int{0, 1, 11, 12, 13, 24, 100} {
		for _, size := range []int{1, 5, 12, 50} {
			for _, req := range []int{-1000, -1, 0, 1, 2, 3, 1 << 30} {
				page := Paginate(makeResult(n), size, req, NarrowWindow)
				assert.GreaterOrEqual(t, page.TotalPages, 1)
				assert.GreaterOrEqual(t, page.ClampedPage, 1)
				assert.LessOrEqual(t, page.ClampedPage, page.TotalPages)
				assert.LessOrEqual(t, len(page.Slice), size)
			}
		}
	}
}

func TestPaginate_SliceCoverage(t *testing.T) {
	for _, n := range []int{0, 1, 7, 12, 13, 37} {
		for _, size := range []int{1, 4, 12} {
			res := makeResult(n)
			total := TotalPages(n, size)

			var collected []domain.Item
			for p := 1; p <= total; p++ {
				collected = append(collected, Paginate(res, size, p, CompactWindow).Slice...)
			}
			assert.Equal(t, ids(res.Items), ids(collected), "n=%d size=%d", n, size)
		}
	}
}

func TestPaginate_EmptyResultHasOnePage(t *testing.T) {
	page := Paginate(domain.QueryResult{}, 12, 3, NarrowWindow)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 1, page.ClampedPage)
	assert.Empty(t, page.Slice)
	assert.Equal(t, "1", labelString(page.Labels))
}

func TestPaginate_OutOfRangeClampsToLastPage(t *testing.T) {
	page := Paginate(makeResult(13), 12, 5, NarrowWindow)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 2, page.ClampedPage)
	assert.Equal(t, []string{"item-13"}, ids(page.Slice))
	assert.Equal(t, 13, page.TotalItems)
}

func TestPaginate_NonPositivePageSize(t *testing.T) {
	page := Paginate(makeResult(5), 0, 2, NarrowWindow)
	assert.Equal(t, 1, page.TotalPages)
	assert.Len(t, page.Slice, 5)
}

func TestPageWindow_Narrow(t *testing.T) {
	tests := []struct {
		total, page int
		want        string
	}{
		{total: 1, page: 1, want: "1"},
		{total: 5, page: 3, want: "1 2 3 4 5"},
		{total: 6, page: 1, want: "1 2 3 4 5 6"},
		{total: 10, page: 1, want: "1 2 3 4 5 ... 10"},
		{total: 10, page: 3, want: "1 2 3 4 5 ... 10"},
		{total: 10, page: 4, want: "1 2 3 4 5 6 ... 10"},
		{total: 10, page: 6, want: "1 ... 4 5 6 7 8 ... 10"},
		{total: 10, page: 8, want: "1 ... 6 7 8 9 10"},
		{total: 10, page: 10, want: "1 ... 6 7 8 9 10"},
		{total: 10, page: 42, want: "1 ... 6 7 8 9 10"},
		{total: 10, page: -3, want: "1 2 3 4 5 ... 10"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_of_%d", tt.page, tt.total), func(t *testing.T) {
			assert.Equal(t, tt.want, labelString(PageWindow(tt.total, tt.page, NarrowWindow)))
		})
	}
}

func TestPageWindow_Compact(t *testing.T) {
	tests := []struct {
		total, page int
		want        string
	}{
		{total: 1, page: 1, want: "1"},
		{total: 2, page: 2, want: "1 2"},
		{total: 3, page: 3, want: "1 2 3"},
		{total: 9, page: 1, want: "1 2 3"},
		{total: 9, page: 2, want: "1 2 3"},
		{total: 9, page: 5, want: "4 5 6"},
		{total: 9, page: 8, want: "7 8 9"},
		{total: 9, page: 9, want: "7 8 9"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_of_%d", tt.page, tt.total), func(t *testing.T) {
			labels := PageWindow(tt.total, tt.page, CompactWindow)
			assert.Equal(t, tt.want, labelString(labels))
			assert.Len(t, labels, min(3, tt.total))
		})
	}
}

func TestPageWindow_ContainsCurrentPage(t *testing.T) {
	for _, opts := range []WindowOptions{NarrowWindow, CompactWindow, {Size: 4, Boundaries: true}, {}} {
		for total := 1; total <= 15; total++ {
			for page := 1; page <= total; page++ {
				labels := PageWindow(total, page, opts)
				require.NotEmpty(t, labels)
				assert.Contains(t, labels, domain.PageLabel{Page: page}, "opts=%+v total=%d page=%d", opts, total, page)
			}
		}
	}
}

func TestPageWindow_ZeroSizeShowsAllPages(t *testing.T) {
	assert.Equal(t, "1 2 3 4 5 6 7", labelString(PageWindow(7, 4, WindowOptions{})))
}
