package sale

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/vendra/salescore/internal/domain/catalog"
	"github.com/vendra/salescore/internal/domain/ledger"
)

// SaleRequest holds the input for processing a single-item sale.
// SalespersonID is nil when the sale is unassigned.
type SaleRequest struct {
	CustomerID    int64
	ItemID        int64
	Quantity      int
	SalespersonID *int64
}

// SaleResult holds the output of a successfully committed sale.
type SaleResult struct {
	OrderID     int64
	TotalAmount decimal.Decimal
}

// Processor orchestrates one sale end-to-end inside a single transaction.
type Processor struct {
	storage Storage
}

// NewProcessor creates a Processor over the given transactional storage.
func NewProcessor(storage Storage) *Processor {
	return &Processor{storage: storage}
}

// ProcessSale executes one sale: it locks the target catalog item, validates
// quantity and availability, writes the order, line item, and payment
// records, and decrements stock exactly once. All writes commit together or
// not at all; on any failure after the lock is taken, rollback releases the
// lock and leaves every store unchanged.
//
// Concurrent sales against the same item serialize on the exclusive row
// lock; sales against different items proceed in parallel. The processor
// makes exactly one attempt and never retries internally.
func (p *Processor) ProcessSale(ctx context.Context, req SaleRequest) (*SaleResult, error) {
	// Reject bad quantities before touching storage.
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var result *SaleResult
	err := p.storage.InTx(ctx, func(tx Tx) error {
		// Existence and stock are checked under the lock; the values read
		// here cannot change until this transaction ends.
		item, err := tx.Catalog().LockForUpdate(ctx, req.ItemID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return &ItemNotFoundError{ItemID: req.ItemID}
			}
			return errors.Wrap(err, "lock item")
		}
		if item.Stock < req.Quantity {
			return &InsufficientStockError{
				ItemID:    req.ItemID,
				Requested: req.Quantity,
				Available: item.Stock,
			}
		}

		// Order starts with a zero total; it is finalized below once the
		// line total is known.
		o := &ledger.Order{
			CustomerID:    req.CustomerID,
			SalespersonID: req.SalespersonID,
			TotalAmount:   decimal.Zero,
		}
		if err := tx.Ledger().CreateOrder(ctx, o); err != nil {
			return errors.Wrap(err, "create order")
		}

		// UnitPrice snapshots the catalog price at sale time.
		li := &ledger.LineItem{
			OrderID:   o.ID,
			ItemID:    req.ItemID,
			Quantity:  req.Quantity,
			UnitPrice: item.Price,
		}
		if err := tx.Ledger().AddLineItem(ctx, li); err != nil {
			return errors.Wrap(err, "add line item")
		}

		// The single, authoritative stock decrement for this sale. The
		// guard never runs here: the coordinated path owns the inventory
		// effect for the line items it creates.
		if err := tx.Catalog().ApplyStockChange(ctx, req.ItemID, -req.Quantity); err != nil {
			if errors.Is(err, catalog.ErrStockExhausted) {
				// Unreachable while the lock is held and the stock check
				// above passed; surfaced rather than swallowed.
				return &ConsistencyViolationError{ItemID: req.ItemID, Quantity: req.Quantity}
			}
			return errors.Wrap(err, "apply stock change")
		}

		total := li.Total()
		if err := tx.Ledger().FinalizeTotal(ctx, o.ID, total); err != nil {
			return errors.Wrap(err, "finalize total")
		}

		if err := tx.Ledger().CreatePayment(ctx, &ledger.Payment{
			OrderID: o.ID,
			Mode:    ledger.PaymentModeDefault,
			Status:  ledger.PaymentStatusOK,
		}); err != nil {
			return errors.Wrap(err, "create payment")
		}

		result = &SaleResult{OrderID: o.ID, TotalAmount: total}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
