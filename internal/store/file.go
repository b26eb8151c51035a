package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"storefront-catalog-service/internal/domain"
)

// itemFile is the layout of an item source file. JSON files parse as well,
// since JSON is a subset of YAML.
type itemFile struct {
	Items []domain.Item `yaml:"items"`
}

// FileStore implements ItemStorer over a YAML file that is re-read on every
// ListItems call, so a catalog reload picks up edits.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore creates a FileStore reading from path.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

func (s *FileStore) ListItems(ctx context.Context) ([]domain.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("store: failed to read item file %s: %w", s.path, err)
	}
	var f itemFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		// Mistyped fields are left at zero and the rest of the file still decodes.
		var typeErr *yaml.TypeError
		if !errors.As(err, &typeErr) {
			return nil, fmt.Errorf("store: failed to parse item file %s: %w", s.path, err)
		}
		s.logger.Warn("item file fields with invalid values coerced to 0",
			zap.String("path", s.path),
			zap.Int("count", len(typeErr.Errors)),
			zap.Strings("errors", typeErr.Errors),
		)
	}

	items := make([]domain.Item, len(f.Items))
	for i := range f.Items {
		items[i] = f.Items[i].Normalize()
	}
	return items, nil
}

func (s *FileStore) GetItemByID(ctx context.Context, id string) (*domain.Item, error) {
	if id == "" {
		return nil, ErrInvalidItemID
	}
	items, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, ErrItemNotFound
}
