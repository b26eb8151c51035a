package catalog

import (
	"storefront-catalog-service/internal/domain"
)

// View is the browsing state of one catalog view as an immutable value.
// Every transition returns a new View; the receiver is left untouched, so
// concurrent updates resolve as last write wins at the holder.
//
// Changing criteria, sort key or page size resets the page to 1 and re-runs
// the query. Changing only the page re-paginates the existing result.
type View struct {
	engine   *Engine
	loaded   bool
	version  uint64
	items    []domain.Item
	facets   domain.Facets
	criteria domain.FilterCriteria
	seeded   bool
	sortKey  domain.SortKey
	page     domain.PageState
	result   domain.QueryResult
}

// NewView returns an empty, unloaded view using e's page size.
func NewView(e *Engine) View {
	return View{
		engine:   e,
		criteria: domain.DefaultCriteria(e.opts.PriceMaxFallback),
		page:     domain.PageState{PageSize: e.opts.PageSize, RequestedPage: 1},
		facets:   e.Facets(nil),
	}
}

// Load replaces the collection, discarding the previous result. The first
// load seeds the price filter from the derived facets; later loads keep the
// shopper's criteria as they are, even if the price bound is now stale.
func (v View) Load(version uint64, items []domain.Item) View {
	v.loaded = true
	v.version = version
	v.items = items
	v.facets = v.engine.Facets(items)
	if !v.seeded {
		v.criteria = domain.DefaultCriteria(v.facets.MaxPrice)
		v.seeded = true
	}
	v.page.RequestedPage = 1
	return v.requery()
}

// WithCriteria replaces the filter criteria and resets to page 1.
func (v View) WithCriteria(c domain.FilterCriteria) View {
	v.criteria = c
	v.seeded = true
	v.page.RequestedPage = 1
	return v.requery()
}

// WithSort changes the sort key and resets to page 1.
func (v View) WithSort(key domain.SortKey) View {
	v.sortKey = key
	v.page.RequestedPage = 1
	return v.requery()
}

// WithPageSize changes the page size and resets to page 1.
// Non-positive sizes fall back to the engine's page size.
func (v View) WithPageSize(size int) View {
	if size <= 0 {
		size = v.engine.opts.PageSize
	}
	v.page = domain.PageState{PageSize: size, RequestedPage: 1}
	return v
}

// WithPage records a page request without re-running the query.
// The request is clamped when the view is rendered.
func (v View) WithPage(page int) View {
	v.page.RequestedPage = page
	return v
}

// Render paginates the current result.
func (v View) Render() domain.Page {
	return v.engine.Paginate(v.result, v.page.PageSize, v.page.RequestedPage)
}

func (v View) requery() View {
	v.result = v.engine.Query(v.items, v.criteria, v.sortKey)
	return v
}

// Version is the snapshot version of the loaded collection.
func (v View) Version() uint64 { return v.version }

// Loaded reports whether a collection has been loaded into the view.
func (v View) Loaded() bool { return v.loaded }

// Facets are the facets of the loaded collection.
func (v View) Facets() domain.Facets { return v.facets }

// Criteria is the active filter criteria.
func (v View) Criteria() domain.FilterCriteria { return v.criteria }

// SortKey is the selected sort key, SortNone until one is chosen.
func (v View) SortKey() domain.SortKey { return v.sortKey }

// PageState is the page size and the requested, unclamped page.
func (v View) PageState() domain.PageState { return v.page }

// Result is the filtered and sorted collection the view pages over.
func (v View) Result() domain.QueryResult { return v.result }
