package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/vendra/salescore/internal/domain/catalog"
)

const (
	getItemSQL = `SELECT id, name, category, price, stock
		FROM catalog_items WHERE id = $1`

	lockItemSQL = `SELECT id, name, category, price, stock
		FROM catalog_items WHERE id = $1 FOR UPDATE`

	// The WHERE clause enforces stock >= 0 atomically: when the change would
	// go negative, no row matches and nothing is written.
	applyStockChangeSQL = `UPDATE catalog_items
		SET stock = stock + $2 WHERE id = $1 AND stock + $2 >= 0`

	updatePriceSQL = `UPDATE catalog_items SET price = $2 WHERE id = $1`

	listItemsSQL = `SELECT id, name, category, price, stock
		FROM catalog_items ORDER BY id`

	searchItemsSQL = `SELECT id, name, category, price, stock
		FROM catalog_items
		WHERE name ILIKE '%' || $1 || '%' OR category ILIKE '%' || $1 || '%'
		ORDER BY id`

	itemExistsSQL = `SELECT EXISTS(SELECT 1 FROM catalog_items WHERE id = $1)`

	listItemIDsSQL = `SELECT id FROM catalog_items ORDER BY id`
)

var _ catalog.Store = (*CatalogStore)(nil)

// CatalogStore implements catalog.Store backed by PostgreSQL. Constructed
// over a pool it serves plain reads; constructed over a transaction its
// LockForUpdate holds the row lock until the transaction ends.
type CatalogStore struct {
	db DBTX
}

// NewCatalogStore returns a CatalogStore over the given pool or transaction.
func NewCatalogStore(db DBTX) *CatalogStore {
	return &CatalogStore{db: db}
}

// GetByID returns a single catalog item by its identifier.
func (s *CatalogStore) GetByID(ctx context.Context, id int64) (*catalog.Item, error) {
	return s.getOne(ctx, getItemSQL, id)
}

// LockForUpdate reads an item under an exclusive row lock. Must run inside a
// transaction; the lock is released by commit or rollback.
func (s *CatalogStore) LockForUpdate(ctx context.Context, id int64) (*catalog.Item, error) {
	return s.getOne(ctx, lockItemSQL, id)
}

func (s *CatalogStore) getOne(ctx context.Context, query string, id int64) (*catalog.Item, error) {
	rows, err := s.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("getting item %d: %w", id, err)
	}

	item, err := pgx.CollectExactlyOneRow(rows, scanItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting item %d: %w", id, err)
	}
	return &item, nil
}

// ApplyStockChange adjusts an item's stock by delta in one atomic statement.
// Returns catalog.ErrStockExhausted when the change would drive stock below
// zero, catalog.ErrNotFound when the item does not exist.
func (s *CatalogStore) ApplyStockChange(ctx context.Context, id int64, delta int) error {
	ct, err := s.db.Exec(ctx, applyStockChangeSQL, id, delta)
	if err != nil {
		return fmt.Errorf("applying stock change for item %d: %w", id, err)
	}
	if ct.RowsAffected() == 1 {
		return nil
	}

	// Zero rows: distinguish a missing item from an exhausted one.
	var exists bool
	if err := s.db.QueryRow(ctx, itemExistsSQL, id).Scan(&exists); err != nil {
		return fmt.Errorf("checking item %d: %w", id, err)
	}
	if !exists {
		return catalog.ErrNotFound
	}
	return catalog.ErrStockExhausted
}

// UpdatePrice sets a new unit price for an item.
func (s *CatalogStore) UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) error {
	if price.IsNegative() {
		return catalog.ErrNegativePrice
	}
	ct, err := s.db.Exec(ctx, updatePriceSQL, id, price)
	if err != nil {
		return fmt.Errorf("updating price for item %d: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// List returns all catalog items ordered by ID.
func (s *CatalogStore) List(ctx context.Context) ([]catalog.Item, error) {
	rows, err := s.db.Query(ctx, listItemsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return pgx.CollectRows(rows, scanItem)
}

// Search returns items whose name or category matches the keyword.
func (s *CatalogStore) Search(ctx context.Context, keyword string) ([]catalog.Item, error) {
	rows, err := s.db.Query(ctx, searchItemsSQL, keyword)
	if err != nil {
		return nil, fmt.Errorf("searching items %q: %w", keyword, err)
	}
	return pgx.CollectRows(rows, scanItem)
}

// ListIDs returns all item IDs, used to seed the existence prefilter.
func (s *CatalogStore) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.Query(ctx, listItemIDsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing item ids: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (int64, error) {
		var id int64
		err := row.Scan(&id)
		return id, err
	})
}

func scanItem(row pgx.CollectableRow) (catalog.Item, error) {
	var (
		it    catalog.Item
		price decimal.Decimal
	)
	err := row.Scan(&it.ID, &it.Name, &it.Category, &price, &it.Stock)
	it.Price = price
	return it, err
}
