package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"storefront-catalog-service/internal/domain"
)

// Predefined errors for store operations
var (
	ErrItemNotFound  = errors.New("store: item not found")
	ErrInvalidItemID = errors.New("store: item id must not be empty")
)

const itemColumns = `id, name, description, category, price, original_price, discount_percent, rating, review_count, created_at, availability`

// PostgresStore implements ItemStorer using PostgreSQL.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresStore creates a new PostgresStore instance.
func NewPostgresStore(db *sql.DB, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

// itemRow mirrors products.items, where every numeric column is nullable.
type itemRow struct {
	id              string
	name            sql.NullString
	description     sql.NullString
	category        sql.NullString
	price           sql.NullFloat64
	originalPrice   sql.NullFloat64
	discountPercent sql.NullInt64
	rating          sql.NullFloat64
	reviewCount     sql.NullInt64
	createdAt       sql.NullTime
	availability    sql.NullBool
}

func (r *itemRow) dest() []any {
	return []any{
		&r.id, &r.name, &r.description, &r.category,
		&r.price, &r.originalPrice, &r.discountPercent,
		&r.rating, &r.reviewCount, &r.createdAt, &r.availability,
	}
}

// item converts the row, coercing NULL and corrupt numbers to 0.
func (r *itemRow) item() domain.Item {
	it := domain.Item{
		ID:              r.id,
		Name:            r.name.String,
		Description:     r.description.String,
		Category:        r.category.String,
		Price:           r.price.Float64,
		OriginalPrice:   r.originalPrice.Float64,
		DiscountPercent: int(r.discountPercent.Int64),
		Rating:          r.rating.Float64,
		ReviewCount:     int(r.reviewCount.Int64),
		CreatedAt:       r.createdAt.Time,
		Availability:    r.availability.Bool,
	}
	if !r.originalPrice.Valid {
		it.OriginalPrice = it.Price
	}
	return it.Normalize()
}

func (s *PostgresStore) ListItems(ctx context.Context) ([]domain.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM products.items
		ORDER BY id ASC;
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: ListItems failed to query items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Item, 0)
	coerced := 0
	for rows.Next() {
		var r itemRow
		if err := rows.Scan(r.dest()...); err != nil {
			return nil, fmt.Errorf("store: ListItems failed to scan item row: %w", err)
		}
		if !r.price.Valid || !r.rating.Valid {
			coerced++
		}
		items = append(items, r.item())
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListItems iteration error: %w", err)
	}

	if coerced > 0 {
		s.logger.Warn("items with missing price or rating coerced to 0", zap.Int("count", coerced))
	}
	return items, nil
}

func (s *PostgresStore) GetItemByID(ctx context.Context, id string) (*domain.Item, error) {
	if id == "" {
		return nil, ErrInvalidItemID
	}
	query := `
		SELECT ` + itemColumns + `
		FROM products.items
		WHERE id = $1;
	`
	var r itemRow
	if err := s.db.QueryRowContext(ctx, query, id).Scan(r.dest()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("store: GetItemByID failed to scan row: %w", err)
	}
	it := r.item()
	return &it, nil
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	if s.db == nil {
		return nil
	}
	s.logger.Info("closing database connection pool")
	if err := s.db.Close(); err != nil {
		s.logger.Error("failed to close database connection pool", zap.Error(err))
		return err
	}
	s.logger.Info("database connection pool closed")
	return nil
}
