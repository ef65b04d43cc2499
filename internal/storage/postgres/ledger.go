package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/vendra/salescore/internal/domain/ledger"
)

const (
	createOrderSQL = `INSERT INTO orders (customer_id, salesperson_id, total_amount)
		VALUES ($1, $2, $3) RETURNING id, created_at`

	addLineItemSQL = `INSERT INTO line_items (order_id, item_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4) RETURNING id`

	finalizeTotalSQL = `UPDATE orders SET total_amount = $2 WHERE id = $1`

	createPaymentSQL = `INSERT INTO payments (order_id, mode, status)
		VALUES ($1, $2, $3) RETURNING id`

	getOrderSQL = `SELECT id, customer_id, salesperson_id, created_at, total_amount
		FROM orders WHERE id = $1`

	lineItemsByOrderSQL = `SELECT id, order_id, item_id, quantity, unit_price
		FROM line_items WHERE order_id = $1 ORDER BY id`

	paymentByOrderSQL = `SELECT id, order_id, mode, status
		FROM payments WHERE order_id = $1`
)

var _ ledger.Ledger = (*Ledger)(nil)

// Ledger implements ledger.Ledger backed by PostgreSQL. Constructed over a
// transaction, all of its writes belong to that transaction.
type Ledger struct {
	db DBTX
}

// NewLedger returns a Ledger over the given pool or transaction.
func NewLedger(db DBTX) *Ledger {
	return &Ledger{db: db}
}

// CreateOrder inserts an order and fills in its assigned ID and timestamp.
func (l *Ledger) CreateOrder(ctx context.Context, o *ledger.Order) error {
	err := l.db.QueryRow(ctx, createOrderSQL,
		o.CustomerID, o.SalespersonID, o.TotalAmount,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating order: %w", err)
	}
	return nil
}

// AddLineItem appends a line item and fills in its assigned ID.
func (l *Ledger) AddLineItem(ctx context.Context, li *ledger.LineItem) error {
	err := l.db.QueryRow(ctx, addLineItemSQL,
		li.OrderID, li.ItemID, li.Quantity, li.UnitPrice,
	).Scan(&li.ID)
	if err != nil {
		return fmt.Errorf("adding line item to order %d: %w", li.OrderID, err)
	}
	return nil
}

// FinalizeTotal persists the order's total amount.
func (l *Ledger) FinalizeTotal(ctx context.Context, orderID int64, total decimal.Decimal) error {
	ct, err := l.db.Exec(ctx, finalizeTotalSQL, orderID, total)
	if err != nil {
		return fmt.Errorf("finalizing total for order %d: %w", orderID, err)
	}
	if ct.RowsAffected() == 0 {
		return ledger.ErrOrderNotFound
	}
	return nil
}

// CreatePayment inserts the order's payment record and fills in its ID.
func (l *Ledger) CreatePayment(ctx context.Context, p *ledger.Payment) error {
	err := l.db.QueryRow(ctx, createPaymentSQL,
		p.OrderID, p.Mode, p.Status,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("creating payment for order %d: %w", p.OrderID, err)
	}
	return nil
}

// GetOrder returns a single order by its identifier.
func (l *Ledger) GetOrder(ctx context.Context, id int64) (*ledger.Order, error) {
	rows, err := l.db.Query(ctx, getOrderSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.ErrOrderNotFound
		}
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}
	return &o, nil
}

// LineItemsByOrder returns an order's line items ordered by ID.
func (l *Ledger) LineItemsByOrder(ctx context.Context, orderID int64) ([]ledger.LineItem, error) {
	rows, err := l.db.Query(ctx, lineItemsByOrderSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("listing line items for order %d: %w", orderID, err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (ledger.LineItem, error) {
		var li ledger.LineItem
		err := row.Scan(&li.ID, &li.OrderID, &li.ItemID, &li.Quantity, &li.UnitPrice)
		return li, err
	})
}

// PaymentByOrder returns the payment record attached to an order.
func (l *Ledger) PaymentByOrder(ctx context.Context, orderID int64) (*ledger.Payment, error) {
	rows, err := l.db.Query(ctx, paymentByOrderSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("getting payment for order %d: %w", orderID, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (ledger.Payment, error) {
		var p ledger.Payment
		err := row.Scan(&p.ID, &p.OrderID, &p.Mode, &p.Status)
		return p, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.ErrOrderNotFound
		}
		return nil, fmt.Errorf("getting payment for order %d: %w", orderID, err)
	}
	return &p, nil
}

func scanOrder(row pgx.CollectableRow) (ledger.Order, error) {
	var o ledger.Order
	err := row.Scan(&o.ID, &o.CustomerID, &o.SalespersonID, &o.CreatedAt, &o.TotalAmount)
	return o, err
}
