package catalog

import (
	"storefront-catalog-service/internal/domain"
)

// WindowOptions configures which page numbers a control bar shows.
type WindowOptions struct {
	// Size is the number of contiguous page buttons around the current page.
	// A non-positive size shows every page.
	Size int `json:"size"`
	// Boundaries adds the first and last page, with ellipsis markers over gaps.
	Boundaries bool `json:"boundaries"`
}

var (
	// NarrowWindow is the 5-page window with first/last anchors and ellipses used for large catalogs.
	NarrowWindow = WindowOptions{Size: 5, Boundaries: true}
	// CompactWindow is the fixed 3-button sliding window used for compact control bars.
	CompactWindow = WindowOptions{Size: 3}
)

// TotalPages returns ceil(n/pageSize), never less than 1.
func TotalPages(n, pageSize int) int {
	if pageSize <= 0 || n <= 0 {
		return 1
	}
	return (n + pageSize - 1) / pageSize
}

// ClampPage constrains requested into [1, totalPages].
func ClampPage(requested, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	switch {
	case requested < 1:
		return 1
	case requested > totalPages:
		return totalPages
	default:
		return requested
	}
}

// Paginate clamps requestedPage into range and returns the visible slice and
// page-control labels. A non-positive pageSize puts every result on one page.
func Paginate(result domain.QueryResult, pageSize, requestedPage int, window WindowOptions) domain.Page {
	n := result.Len()
	if pageSize <= 0 {
		pageSize = max(n, 1)
	}
	total := TotalPages(n, pageSize)
	page := ClampPage(requestedPage, total)

	start := (page - 1) * pageSize
	end := min(start+pageSize, n)

	slice := []domain.Item{}
	if start < end {
		slice = result.Items[start:end:end]
	}

	return domain.Page{
		ClampedPage: page,
		PageSize:    pageSize,
		TotalPages:  total,
		TotalItems:  n,
		Slice:       slice,
		Labels:      PageWindow(total, page, window),
	}
}

// PageWindow computes the page-control labels for page out of totalPages.
// The contiguous run is centred on page as closely as the range allows.
func PageWindow(totalPages, page int, opts WindowOptions) []domain.PageLabel {
	totalPages = max(totalPages, 1)
	page = ClampPage(page, totalPages)

	size := opts.Size
	if size <= 0 || size > totalPages {
		size = totalPages
	}

	start := max(page-size/2, 1)
	end := start + size - 1
	if end > totalPages {
		end = totalPages
		start = end - size + 1
	}

	labels := make([]domain.PageLabel, 0, size+4)
	if opts.Boundaries && start > 1 {
		labels = append(labels, domain.PageLabel{Page: 1})
		if start > 2 {
			labels = append(labels, domain.PageLabel{Ellipsis: true})
		}
	}
	for p := start; p <= end; p++ {
		labels = append(labels, domain.PageLabel{Page: p})
	}
	if opts.Boundaries && end < totalPages {
		if end < totalPages-1 {
			labels = append(labels, domain.PageLabel{Ellipsis: true})
		}
		labels = append(labels, domain.PageLabel{Page: totalPages})
	}
	return labels
}
