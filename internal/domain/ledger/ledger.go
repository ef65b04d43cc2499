// Package ledger holds the order ledger: orders, their line items, and
// payment records. The ledger is append-only from the sale core's
// perspective; the only post-insert mutations are the in-transaction total
// finalization and out-of-band payment mode updates.
package ledger

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrOrderNotFound is returned when a referenced order does not exist.
var ErrOrderNotFound = errors.New("order not found")

// Payment modes and statuses.
const (
	PaymentModeDefault = "cash"
	PaymentStatusOK    = "success"
)

// Order is a single sale transaction linking a customer to its line items.
// SalespersonID is nil for unassigned sales.
type Order struct {
	ID            int64
	CustomerID    int64
	SalespersonID *int64
	CreatedAt     time.Time
	TotalAmount   decimal.Decimal
}

// LineItem is one catalog item and quantity within an order. UnitPrice is a
// snapshot of the catalog price at sale time and never changes afterward.
type LineItem struct {
	ID        int64
	OrderID   int64
	ItemID    int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// Total returns the line's contribution to the order total.
func (li LineItem) Total() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity))).Round(2)
}

// Payment is the settlement record attached to a completed order. Status is
// fixed at creation; Mode may be updated later by reporting.
type Payment struct {
	ID      int64
	OrderID int64
	Mode    string
	Status  string
}

// Ledger defines persistence operations for orders and their satellites.
type Ledger interface {
	// CreateOrder inserts an order with a zero total and assigns its ID and
	// creation timestamp.
	CreateOrder(ctx context.Context, o *Order) error

	// AddLineItem appends a line item and assigns its ID. It has no
	// inventory effect of its own; the caller owns the matching stock
	// change (see sale.Guard for uncoordinated writers).
	AddLineItem(ctx context.Context, li *LineItem) error

	// FinalizeTotal persists the order's total before commit.
	FinalizeTotal(ctx context.Context, orderID int64, total decimal.Decimal) error

	// CreatePayment inserts the order's payment record and assigns its ID.
	CreatePayment(ctx context.Context, p *Payment) error

	// Read helpers consumed by reporting and the API layer.
	GetOrder(ctx context.Context, id int64) (*Order, error)
	LineItemsByOrder(ctx context.Context, orderID int64) ([]LineItem, error)
	PaymentByOrder(ctx context.Context, orderID int64) (*Payment, error)
}
