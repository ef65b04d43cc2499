package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for catalog operations.
var (
	// ErrNotFound is returned when a requested catalog item does not exist.
	ErrNotFound = errors.New("catalog item not found")

	// ErrStockExhausted is returned by ApplyStockChange when the requested
	// change would drive an item's stock below zero. The store state is left
	// untouched.
	ErrStockExhausted = errors.New("stock exhausted")

	// ErrNegativePrice is returned by UpdatePrice for prices below zero.
	ErrNegativePrice = errors.New("price must not be negative")
)

// Item represents a sellable catalog item with its price and available stock.
type Item struct {
	ID       int64
	Name     string
	Category string
	Price    decimal.Decimal
	Stock    int
}

// Store defines the catalog storage operations.
//
// LockForUpdate and ApplyStockChange are transaction-scoped: callers reach
// them through a sale.Tx, and the exclusive row lock taken by LockForUpdate
// is held until that transaction commits or rolls back.
type Store interface {
	// GetByID returns a single item, or ErrNotFound.
	GetByID(ctx context.Context, id int64) (*Item, error)

	// LockForUpdate reads an item under an exclusive row lock. Concurrent
	// callers locking the same item block until the holder's transaction
	// ends; different items do not contend.
	LockForUpdate(ctx context.Context, id int64) (*Item, error)

	// ApplyStockChange adjusts an item's stock by delta (negative for a
	// sale). The stock-never-negative invariant is enforced here, as one
	// routine shared by every write path: the change applies atomically or
	// fails with ErrStockExhausted.
	ApplyStockChange(ctx context.Context, id int64, delta int) error

	// UpdatePrice sets a new unit price for an item. Existing line items
	// keep the price snapshot taken at sale time.
	UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) error

	// List returns all items ordered by ID.
	List(ctx context.Context) ([]Item, error)

	// Search returns items whose name or category matches the keyword.
	Search(ctx context.Context, keyword string) ([]Item, error)
}
