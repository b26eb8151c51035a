package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"storefront-catalog-service/internal/domain"
)

// ErrNotLoaded is returned while no collection has been loaded yet.
var ErrNotLoaded = errors.New("catalog: collection not loaded")

// ItemSource supplies the full item collection.
type ItemSource interface {
	ListItems(ctx context.Context) ([]domain.Item, error)
}

// Snapshot is one loaded collection. It is never mutated after publication.
type Snapshot struct {
	Version  uint64
	Items    []domain.Item
	Facets   domain.Facets
	LoadedAt time.Time
}

// LoadObserver is told about every reload attempt, successful or not.
type LoadObserver func(snap *Snapshot, err error)

// Loader fetches the collection from an ItemSource and publishes it as a
// Snapshot. A reload replaces the previous snapshot wholesale; a failed
// reload leaves it in place.
type Loader struct {
	source     ItemSource
	engine     *Engine
	logger     *zap.Logger
	retries    int
	retryDelay time.Duration
	observers  []LoadObserver
	now        func() time.Time

	mu      sync.Mutex // serialises reloads
	current atomic.Pointer[Snapshot]
	version uint64
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithRetries retries a failed fetch n times, waiting delay between attempts.
func WithRetries(n int, delay time.Duration) LoaderOption {
	return func(l *Loader) {
		l.retries = max(n, 0)
		l.retryDelay = delay
	}
}

// WithObserver registers fn to be called after every reload.
func WithObserver(fn LoadObserver) LoaderOption {
	return func(l *Loader) {
		l.observers = append(l.observers, fn)
	}
}

// WithClock overrides the time source used for LoadedAt.
func WithClock(now func() time.Time) LoaderOption {
	return func(l *Loader) {
		l.now = now
	}
}

// NewLoader creates a Loader. Nothing is fetched until Reload is called.
func NewLoader(source ItemSource, engine *Engine, logger *zap.Logger, opts ...LoaderOption) *Loader {
	l := &Loader{
		source: source,
		engine: engine,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Engine returns the engine the loader prepares collections with.
func (l *Loader) Engine() *Engine {
	return l.engine
}

// Snapshot returns the current collection or ErrNotLoaded.
func (l *Loader) Snapshot() (*Snapshot, error) {
	snap := l.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap, nil
}

// Loaded reports whether a collection is available.
func (l *Loader) Loaded() bool {
	return l.current.Load() != nil
}

// Reload fetches the full collection and publishes it as a new snapshot.
func (l *Loader) Reload(ctx context.Context) (*Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	items, err := l.fetch(ctx)
	if err != nil {
		l.logger.Error("catalog reload failed", zap.Error(err))
		l.notify(nil, err)
		return nil, err
	}

	prepared := l.engine.Prepare(items)
	if prepared == nil {
		prepared = []domain.Item{}
	}
	l.version++
	snap := &Snapshot{
		Version:  l.version,
		Items:    prepared,
		Facets:   l.engine.Facets(prepared),
		LoadedAt: l.now(),
	}
	l.current.Store(snap)

	l.logger.Info("catalog loaded",
		zap.Uint64("version", snap.Version),
		zap.Int("items", len(snap.Items)),
		zap.Int("categories", len(snap.Facets.Categories)-1),
		zap.Float64("max_price", snap.Facets.MaxPrice),
	)
	l.notify(snap, nil)
	return snap, nil
}

func (l *Loader) fetch(ctx context.Context) ([]domain.Item, error) {
	var lastErr error
	for attempt := 0; attempt <= l.retries; attempt++ {
		if attempt > 0 {
			l.logger.Warn("retrying catalog fetch",
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", l.retryDelay),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("catalog: fetch canceled after %d attempts: %w", attempt, ctx.Err())
			case <-time.After(l.retryDelay):
			}
		}
		items, err := l.source.ListItems(ctx)
		if err == nil {
			return items, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("catalog: fetch failed after %d attempts: %w", l.retries+1, lastErr)
}

func (l *Loader) notify(snap *Snapshot, err error) {
	for _, fn := range l.observers {
		fn(snap, err)
	}
}
