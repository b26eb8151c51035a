// Package catalog implements the catalog query engine: facet derivation,
// the filter-sort pipeline, and windowed pagination. Every stage is a pure
// function over in-memory items; the Loader is the only stateful piece and
// owns the one-shot fetch of the collection.
package catalog

import (
	"math/rand/v2"
	"slices"

	"storefront-catalog-service/internal/domain"
)

// Default engine settings.
const (
	DefaultPageSize         = 12
	DigitalPriceMaxFallback = 1000
	// PhysicalPriceMaxFallback is the bound for the higher-value catalog.
	PhysicalPriceMaxFallback = 1_000_000
)

// Options parametrises one catalog variant.
type Options struct {
	PageSize         int
	PriceMaxFallback float64
	// ShuffleOnLoad randomises the collection once per load. That order is
	// what a view shows until an explicit sort key is chosen.
	ShuffleOnLoad bool
	// ShuffleSeed makes the load shuffle reproducible. Zero means unseeded.
	ShuffleSeed uint64
	Window      WindowOptions
}

// DigitalVariant returns the options of the digital goods catalog.
func DigitalVariant() Options {
	return Options{
		PageSize:         DefaultPageSize,
		PriceMaxFallback: DigitalPriceMaxFallback,
		ShuffleOnLoad:    true,
		Window:           NarrowWindow,
	}
}

// PhysicalVariant returns the options of the physical goods catalog.
func PhysicalVariant() Options {
	return Options{
		PageSize:         9,
		PriceMaxFallback: PhysicalPriceMaxFallback,
		Window:           CompactWindow,
	}
}

// Engine bundles the query stages with one variant's options.
type Engine struct {
	opts Options
}

// NewEngine creates an Engine, replacing invalid options with defaults.
func NewEngine(opts Options) *Engine {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.PriceMaxFallback <= 0 {
		opts.PriceMaxFallback = DigitalPriceMaxFallback
	}
	if opts.Window.Size <= 0 {
		opts.Window = NarrowWindow
	}
	return &Engine{opts: opts}
}

// Options returns the effective options.
func (e *Engine) Options() Options {
	return e.opts
}

// Prepare returns the normalized collection in the order a fresh load
// presents it: shuffled when the variant asks for it, otherwise as fetched.
func (e *Engine) Prepare(items []domain.Item) []domain.Item {
	prepared := slices.Clone(items)
	for i := range prepared {
		prepared[i] = prepared[i].Normalize()
	}
	if !e.opts.ShuffleOnLoad {
		return prepared
	}
	swap := func(i, j int) { prepared[i], prepared[j] = prepared[j], prepared[i] }
	if e.opts.ShuffleSeed == 0 {
		rand.Shuffle(len(prepared), swap)
		return prepared
	}
	rand.New(rand.NewPCG(e.opts.ShuffleSeed, e.opts.ShuffleSeed)).Shuffle(len(prepared), swap)
	return prepared
}

// Facets derives filter facets using the variant's price fallback.
func (e *Engine) Facets(items []domain.Item) domain.Facets {
	return DeriveFacets(items, e.opts.PriceMaxFallback)
}

// Query filters and sorts items. With no explicit sort key, a shuffling
// variant keeps the load order; otherwise items are ordered newest first.
func (e *Engine) Query(items []domain.Item, c domain.FilterCriteria, key domain.SortKey) domain.QueryResult {
	if key == domain.SortNone && e.opts.ShuffleOnLoad {
		return domain.QueryResult{Items: Filter(items, c)}
	}
	return Query(items, c, key)
}

// Paginate pages a result with the variant's window. A non-positive
// pageSize falls back to the variant's page size.
func (e *Engine) Paginate(result domain.QueryResult, pageSize, requestedPage int) domain.Page {
	if pageSize <= 0 {
		pageSize = e.opts.PageSize
	}
	return Paginate(result, pageSize, requestedPage, e.opts.Window)
}

// PaginateWindow is Paginate with an explicit window, for control bars that
// differ from the variant default.
func (e *Engine) PaginateWindow(result domain.QueryResult, pageSize, requestedPage int, window WindowOptions) domain.Page {
	if pageSize <= 0 {
		pageSize = e.opts.PageSize
	}
	return Paginate(result, pageSize, requestedPage, window)
}
