// Package session keeps per-shopper browsing state: the catalog view, the
// cart and the pending notifications. Sessions live in memory only.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront-catalog-service/internal/catalog"
	"storefront-catalog-service/internal/domain"
	"storefront-catalog-service/internal/notify"
)

var ErrSessionNotFound = errors.New("session: not found")

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 30 * time.Minute

// Session is one shopper's state.
type Session struct {
	ID   uuid.UUID
	Cart *Cart
	Feed *notify.Feed

	mu       sync.Mutex
	view     catalog.View
	lastSeen time.Time
}

// View returns the current view value.
func (s *Session) View() catalog.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Manager creates, looks up and expires sessions.
type Manager struct {
	engine   *catalog.Engine
	notifier notify.Notifier
	logger   *zap.Logger
	ttl      time.Duration
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewManager creates a Manager. notifier receives every session notification
// in addition to the session's own feed; it may be nil.
func NewManager(engine *catalog.Engine, notifier notify.Notifier, logger *zap.Logger, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		engine:   engine,
		notifier: notifier,
		logger:   logger,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Create starts a new session with an empty cart and an unloaded view.
func (m *Manager) Create() *Session {
	s := &Session{
		ID:       uuid.New(),
		Cart:     NewCart(),
		Feed:     notify.NewFeed(notify.DefaultFeedCapacity),
		view:     catalog.NewView(m.engine),
		lastSeen: m.now(),
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	m.logger.Debug("session created", zap.String("session_id", s.ID.String()))
	return s
}

// Get returns the session with id and marks it as seen.
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.mu.Lock()
	s.lastSeen = m.now()
	s.mu.Unlock()
	return s, nil
}

// Update applies fn to the session's view after bringing the view up to date
// with snap, and stores the result. Concurrent updates are serialised and the
// last one wins.
func (m *Manager) Update(id uuid.UUID, snap *catalog.Snapshot, fn func(catalog.View) catalog.View) (catalog.View, error) {
	s, err := m.Get(id)
	if err != nil {
		return catalog.View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.view.Loaded() || s.view.Version() != snap.Version {
		s.view = s.view.Load(snap.Version, snap.Items)
	}
	if fn != nil {
		s.view = fn(s.view)
	}
	return s.view, nil
}

// Notifier returns the notifier for s: its feed plus the manager-wide notifier.
func (m *Manager) Notifier(s *Session) notify.Notifier {
	return notify.Multi{s.Feed, m.notifier}
}

// AddToCart adds item to the session's cart and notifies the shopper.
// It returns false when the item was already in the cart.
func (m *Manager) AddToCart(id uuid.UUID, item domain.Item) (bool, error) {
	s, err := m.Get(id)
	if err != nil {
		return false, err
	}
	n := m.Notifier(s)
	if !s.Cart.Add(item) {
		n.Notify(notify.KindInfo, "Already in cart", item.Name+" is already in your cart.")
		return false, nil
	}
	n.Notify(notify.KindSuccess, "Added to cart", item.Name+" was added to your cart.")
	return true, nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Expire drops sessions idle for longer than the TTL and returns how many were removed.
func (m *Manager) Expire() int {
	cutoff := m.now().Add(-m.ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := s.lastSeen.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Run expires idle sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Expire(); n > 0 {
				m.logger.Info("expired idle sessions", zap.Int("count", n), zap.Int("remaining", m.Len()))
			}
		}
	}
}
