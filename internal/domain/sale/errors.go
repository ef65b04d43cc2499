package sale

import (
	"fmt"

	"github.com/go-faster/errors"
)

// ErrInvalidQuantity rejects non-positive quantities before any storage
// access or lock acquisition.
var ErrInvalidQuantity = errors.New("quantity must be greater than 0")

// ItemNotFoundError indicates the requested catalog item does not exist.
type ItemNotFoundError struct {
	ItemID int64
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("catalog item %d not found", e.ItemID)
}

// InsufficientStockError indicates the requested quantity exceeds the item's
// stock as read under the exclusive lock.
type InsufficientStockError struct {
	ItemID    int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %d: requested %d, available %d",
		e.ItemID, e.Requested, e.Available)
}

// ConsistencyViolationError indicates an uncoordinated line-item write would
// have driven stock negative. It never occurs on the coordinated path; seeing
// one means a writer bypassed the processor with a quantity the catalog
// cannot cover, and the offending write was aborted.
type ConsistencyViolationError struct {
	ItemID   int64
	Quantity int
}

func (e *ConsistencyViolationError) Error() string {
	return fmt.Sprintf("consistency violation: uncoordinated write of %d units would drive item %d stock negative",
		e.Quantity, e.ItemID)
}
