package store

import (
	"context"

	"storefront-catalog-service/internal/domain"
)

// ItemStorer defines the read operations of an item source.
// ListItems returns the whole collection; the catalog engine pages it in memory.
type ItemStorer interface {
	ListItems(ctx context.Context) ([]domain.Item, error)
	GetItemByID(ctx context.Context, id string) (*domain.Item, error)
}
