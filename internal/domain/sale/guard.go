package sale

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/vendra/salescore/internal/domain/catalog"
	"github.com/vendra/salescore/internal/domain/ledger"
)

// Guard is the stock guard: the line-item append path for every writer that
// is not the Processor. It applies the matching inventory effect itself, so
// a line item can never reach the ledger without its stock decrement, and
// aborts the write when that decrement would drive stock negative.
//
// There is no coordination flag between Guard and Processor. Both paths call
// catalog.Store.ApplyStockChange exactly once per line item they create;
// which path created the line item decides who makes the call.
type Guard struct {
	catalog catalog.Store
	ledger  ledger.Ledger
}

// NewGuard creates a Guard over transaction-bound catalog and ledger views.
// Both must belong to the same transaction so the append and the decrement
// commit or roll back together.
func NewGuard(cat catalog.Store, led ledger.Ledger) *Guard {
	return &Guard{catalog: cat, ledger: led}
}

// AddLineItem appends li and decrements the referenced item's stock by the
// line quantity. When the decrement would drive stock negative, the append
// is aborted with a ConsistencyViolationError and the enclosing transaction
// must roll back.
func (g *Guard) AddLineItem(ctx context.Context, li *ledger.LineItem) error {
	if err := g.ledger.AddLineItem(ctx, li); err != nil {
		return errors.Wrap(err, "add line item")
	}

	if err := g.catalog.ApplyStockChange(ctx, li.ItemID, -li.Quantity); err != nil {
		if errors.Is(err, catalog.ErrStockExhausted) {
			return &ConsistencyViolationError{ItemID: li.ItemID, Quantity: li.Quantity}
		}
		return errors.Wrap(err, "apply stock change")
	}
	return nil
}
