// Package report defines the read-only aggregation queries consumed by the
// reporting endpoints. Reports never mutate state.
package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DailyTotal summarizes all sales committed on one calendar day.
type DailyTotal struct {
	Day     time.Time
	Orders  int
	Revenue decimal.Decimal
}

// ItemSales ranks a catalog item by units sold.
type ItemSales struct {
	ItemID    int64
	Name      string
	UnitsSold int
	Revenue   decimal.Decimal
}

// SalespersonRevenue aggregates revenue credited to one salesperson.
type SalespersonRevenue struct {
	SalespersonID int64
	Name          string
	Orders        int
	Revenue       decimal.Decimal
}

// Repository defines the reporting queries.
type Repository interface {
	DailyTotal(ctx context.Context, day time.Time) (*DailyTotal, error)
	TopItems(ctx context.Context, limit int) ([]ItemSales, error)
	RevenueBySalesperson(ctx context.Context) ([]SalespersonRevenue, error)
}
