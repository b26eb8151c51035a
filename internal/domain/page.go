package domain

import "strconv"

// PageState is the requested paging of a view.
// RequestedPage is user intent and is clamped by the paginator, never trusted directly.
type PageState struct {
	PageSize      int `json:"page_size"`
	RequestedPage int `json:"requested_page"`
}

// PageLabel is one entry of a page-control bar: either a page number or an ellipsis marker.
type PageLabel struct {
	Page     int  `json:"page,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

// String renders the label the way a control bar shows it.
func (l PageLabel) String() string {
	if l.Ellipsis {
		return "..."
	}
	return strconv.Itoa(l.Page)
}

// Page is the paginated view of a QueryResult.
type Page struct {
	ClampedPage int         `json:"page"`
	PageSize    int         `json:"limit"`
	TotalPages  int         `json:"total_pages"`
	TotalItems  int         `json:"total_items"`
	Slice       []Item      `json:"-"`
	Labels      []PageLabel `json:"page_labels"`
}
