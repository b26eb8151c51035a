// Package notify delivers transient shopper notifications (toasts).
// Delivery is fire-and-forget: Notify never reports failure.
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Kind classifies a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Notification is one delivered message.
type Notification struct {
	Kind    Kind      `json:"kind"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier accepts notifications.
type Notifier interface {
	Notify(kind Kind, title, message string)
}

// LogNotifier writes notifications to a zap logger.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(kind Kind, title, message string) {
	fields := []zap.Field{zap.String("kind", string(kind)), zap.String("title", title), zap.String("message", message)}
	if kind == KindError {
		n.logger.Warn("notification", fields...)
		return
	}
	n.logger.Debug("notification", fields...)
}

// DefaultFeedCapacity bounds a Feed when no capacity is given.
const DefaultFeedCapacity = 20

// Feed queues notifications in memory until they are drained.
// When full, the oldest notification is dropped.
type Feed struct {
	mu       sync.Mutex
	items    []Notification
	capacity int
	now      func() time.Time
}

// NewFeed creates a Feed holding at most capacity notifications.
func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = DefaultFeedCapacity
	}
	return &Feed{capacity: capacity, now: time.Now}
}

func (f *Feed) Notify(kind Kind, title, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.items) == f.capacity {
		f.items = f.items[1:]
	}
	f.items = append(f.items, Notification{Kind: kind, Title: title, Message: message, At: f.now()})
}

// Drain returns the queued notifications, oldest first, and empties the feed.
func (f *Feed) Drain() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.items
	f.items = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}

// Multi fans a notification out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(kind Kind, title, message string) {
	for _, n := range m {
		if n != nil {
			n.Notify(kind, title, message)
		}
	}
}
