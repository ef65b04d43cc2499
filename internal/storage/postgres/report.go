package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/vendra/salescore/internal/domain/report"
)

const (
	dailyTotalSQL = `SELECT COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE created_at >= $1 AND created_at < $1 + INTERVAL '1 day'`

	topItemsSQL = `SELECT li.item_id, ci.name,
			SUM(li.quantity) AS units,
			SUM(li.quantity * li.unit_price) AS revenue
		FROM line_items li
		JOIN catalog_items ci ON ci.id = li.item_id
		GROUP BY li.item_id, ci.name
		ORDER BY units DESC, li.item_id
		LIMIT $1`

	revenueBySalespersonSQL = `SELECT o.salesperson_id, sp.name,
			COUNT(*) AS orders,
			COALESCE(SUM(o.total_amount), 0) AS revenue
		FROM orders o
		JOIN salespersons sp ON sp.id = o.salesperson_id
		WHERE o.salesperson_id IS NOT NULL
		GROUP BY o.salesperson_id, sp.name
		ORDER BY revenue DESC`
)

var _ report.Repository = (*ReportRepository)(nil)

// ReportRepository implements report.Repository backed by PostgreSQL.
// All queries are read-only aggregates.
type ReportRepository struct {
	db DBTX
}

// NewReportRepository returns a ReportRepository over the given pool.
func NewReportRepository(db DBTX) *ReportRepository {
	return &ReportRepository{db: db}
}

// DailyTotal returns order count and revenue for one calendar day. The day
// is truncated to midnight UTC.
func (r *ReportRepository) DailyTotal(ctx context.Context, day time.Time) (*report.DailyTotal, error) {
	day = day.UTC().Truncate(24 * time.Hour)

	var (
		orders  int
		revenue decimal.Decimal
	)
	err := r.db.QueryRow(ctx, dailyTotalSQL, day).Scan(&orders, &revenue)
	if err != nil {
		return nil, fmt.Errorf("computing daily total for %s: %w", day.Format("2006-01-02"), err)
	}

	return &report.DailyTotal{Day: day, Orders: orders, Revenue: revenue}, nil
}

// TopItems ranks items by units sold, descending.
func (r *ReportRepository) TopItems(ctx context.Context, limit int) ([]report.ItemSales, error) {
	rows, err := r.db.Query(ctx, topItemsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("querying top items: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (report.ItemSales, error) {
		var is report.ItemSales
		err := row.Scan(&is.ItemID, &is.Name, &is.UnitsSold, &is.Revenue)
		return is, err
	})
}

// RevenueBySalesperson aggregates committed revenue per assigned salesperson.
func (r *ReportRepository) RevenueBySalesperson(ctx context.Context) ([]report.SalespersonRevenue, error) {
	rows, err := r.db.Query(ctx, revenueBySalespersonSQL)
	if err != nil {
		return nil, fmt.Errorf("querying salesperson revenue: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (report.SalespersonRevenue, error) {
		var sr report.SalespersonRevenue
		err := row.Scan(&sr.SalespersonID, &sr.Name, &sr.Orders, &sr.Revenue)
		return sr, err
	})
}
