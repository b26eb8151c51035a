package session

import (
	"sync"

	"storefront-catalog-service/internal/domain"
)

// Cart tracks the items a shopper selected. It is safe for concurrent use.
type Cart struct {
	mu    sync.RWMutex
	items []domain.Item
	ids   map[string]struct{}
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{ids: make(map[string]struct{})}
}

// Add puts item in the cart. It returns false if an item with the same id is already there.
func (c *Cart) Add(item domain.Item) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.ids[item.ID]; ok {
		return false
	}
	c.ids[item.ID] = struct{}{}
	c.items = append(c.items, item)
	return true
}

// Contains reports whether an item with id is in the cart.
func (c *Cart) Contains(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.ids[id]
	return ok
}

// Items returns the cart contents in the order they were added.
func (c *Cart) Items() []domain.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of items in the cart.
func (c *Cart) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Total returns the sum of item prices.
func (c *Cart) Total() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := 0.0
	for i := range c.items {
		total += c.items[i].Price
	}
	return total
}
