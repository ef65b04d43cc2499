package sale

import (
	"context"
	"sync"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendra/salescore/internal/domain/catalog"
	"github.com/vendra/salescore/internal/domain/ledger"
)

func newTestItem(id int64, price string, stock int) catalog.Item {
	return catalog.Item{
		ID:       id,
		Name:     "Widget",
		Category: "test",
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
	}
}

func TestProcessSale_Success(t *testing.T) {
	s := newMemStorage(newTestItem(1, "129.99", 30))
	p := NewProcessor(s)

	result, err := p.ProcessSale(context.Background(), SaleRequest{
		CustomerID: 1,
		ItemID:     1,
		Quantity:   2,
	})

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("259.98").Equal(result.TotalAmount))
	assert.Equal(t, 28, s.stockOf(1))

	o, ok := s.orderOf(result.OrderID)
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("259.98").Equal(o.TotalAmount))
	assert.Equal(t, int64(1), o.CustomerID)
	assert.Nil(t, o.SalespersonID)

	lines := s.lineItemsOf(result.OrderID)
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.True(t, decimal.RequireFromString("129.99").Equal(lines[0].UnitPrice))

	pay, ok := s.paymentOf(result.OrderID)
	require.True(t, ok)
	assert.Equal(t, ledger.PaymentModeDefault, pay.Mode)
	assert.Equal(t, ledger.PaymentStatusOK, pay.Status)
}

func TestProcessSale_WithSalesperson(t *testing.T) {
	s := newMemStorage(newTestItem(1, "10.00", 5))
	p := NewProcessor(s)

	sp := int64(7)
	result, err := p.ProcessSale(context.Background(), SaleRequest{
		CustomerID:    1,
		ItemID:        1,
		Quantity:      1,
		SalespersonID: &sp,
	})

	require.NoError(t, err)
	o, ok := s.orderOf(result.OrderID)
	require.True(t, ok)
	require.NotNil(t, o.SalespersonID)
	assert.Equal(t, int64(7), *o.SalespersonID)
}

func TestProcessSale_InvalidQuantity(t *testing.T) {
	s := newMemStorage(newTestItem(1, "10.00", 5))
	p := NewProcessor(s)

	for _, qty := range []int{0, -1, -100} {
		_, err := p.ProcessSale(context.Background(), SaleRequest{
			CustomerID: 1, ItemID: 1, Quantity: qty,
		})
		require.ErrorIs(t, err, ErrInvalidQuantity)
	}

	// Rejected before any storage access.
	orders, lines, payments := s.counts()
	assert.Zero(t, orders)
	assert.Zero(t, lines)
	assert.Zero(t, payments)
	assert.Equal(t, 5, s.stockOf(1))
}

func TestProcessSale_ItemNotFound(t *testing.T) {
	s := newMemStorage(newTestItem(1, "10.00", 5))
	p := NewProcessor(s)

	_, err := p.ProcessSale(context.Background(), SaleRequest{
		CustomerID: 1, ItemID: 999999, Quantity: 1,
	})

	var nfErr *ItemNotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, int64(999999), nfErr.ItemID)

	orders, _, _ := s.counts()
	assert.Zero(t, orders)
}

func TestProcessSale_InsufficientStock(t *testing.T) {
	s := newMemStorage(newTestItem(1, "10.00", 5))
	p := NewProcessor(s)

	_, err := p.ProcessSale(context.Background(), SaleRequest{
		CustomerID: 1, ItemID: 1, Quantity: 6,
	})

	var isErr *InsufficientStockError
	require.ErrorAs(t, err, &isErr)
	assert.Equal(t, 6, isErr.Requested)
	assert.Equal(t, 5, isErr.Available)

	// Nothing persisted, stock unchanged.
	assert.Equal(t, 5, s.stockOf(1))
	orders, lines, payments := s.counts()
	assert.Zero(t, orders)
	assert.Zero(t, lines)
	assert.Zero(t, payments)
}

func TestProcessSale_ConservationAcrossItems(t *testing.T) {
	s := newMemStorage(
		newTestItem(1, "10.00", 10),
		newTestItem(2, "20.00", 7),
	)
	p := NewProcessor(s)

	_, err := p.ProcessSale(context.Background(), SaleRequest{
		CustomerID: 1, ItemID: 1, Quantity: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, 7, s.stockOf(1))
	assert.Equal(t, 7, s.stockOf(2)) // untouched
}

func TestProcessSale_PriceSnapshotImmutable(t *testing.T) {
	s := newMemStorage(newTestItem(1, "129.99", 30))
	p := NewProcessor(s)

	result, err := p.ProcessSale(context.Background(), SaleRequest{
		CustomerID: 1, ItemID: 1, Quantity: 1,
	})
	require.NoError(t, err)

	// Raise the catalog price after the sale.
	err = s.InTx(context.Background(), func(tx Tx) error {
		return tx.Catalog().UpdatePrice(context.Background(), 1, decimal.RequireFromString("199.99"))
	})
	require.NoError(t, err)

	lines := s.lineItemsOf(result.OrderID)
	require.Len(t, lines, 1)
	assert.True(t, decimal.RequireFromString("129.99").Equal(lines[0].UnitPrice))

	o, _ := s.orderOf(result.OrderID)
	assert.True(t, decimal.RequireFromString("129.99").Equal(o.TotalAmount))
}

func TestProcessSale_AtomicRollbackAtEachStep(t *testing.T) {
	steps := []string{"createOrder", "addLineItem", "applyStockChange", "finalizeTotal", "createPayment"}
	boom := errors.New("storage down")

	for _, step := range steps {
		t.Run(step, func(t *testing.T) {
			s := newMemStorage(newTestItem(1, "10.00", 5))
			s.failAt[step] = boom
			p := NewProcessor(s)

			_, err := p.ProcessSale(context.Background(), SaleRequest{
				CustomerID: 1, ItemID: 1, Quantity: 2,
			})
			require.ErrorIs(t, err, boom)

			// Direct storage inspection: nothing partial survives.
			orders, lines, payments := s.counts()
			assert.Zero(t, orders)
			assert.Zero(t, lines)
			assert.Zero(t, payments)
			assert.Equal(t, 5, s.stockOf(1))
		})
	}
}

func TestProcessSale_TwoRacersOneUnit(t *testing.T) {
	s := newMemStorage(newTestItem(1, "10.00", 1))
	p := NewProcessor(s)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = p.ProcessSale(context.Background(), SaleRequest{
				CustomerID: int64(i + 1), ItemID: 1, Quantity: 1,
			})
		}(i)
	}
	wg.Wait()

	var successes, stockFailures int
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		var isErr *InsufficientStockError
		require.ErrorAs(t, err, &isErr)
		stockFailures++
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, stockFailures)
	assert.Equal(t, 0, s.stockOf(1))
}

func TestProcessSale_SerializationUnderContention(t *testing.T) {
	const (
		stock   = 7
		workers = 8
		qty     = 2
	)
	s := newMemStorage(newTestItem(1, "10.00", stock))
	p := NewProcessor(s)

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = p.ProcessSale(context.Background(), SaleRequest{
				CustomerID: int64(i + 1), ItemID: 1, Quantity: qty,
			})
		}(i)
	}
	wg.Wait()

	var successes int
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			var isErr *InsufficientStockError
			require.ErrorAs(t, err, &isErr)
		}
	}

	// Exactly the prefix (in lock-acquisition order) whose cumulative
	// quantity fits within stock succeeds.
	assert.Equal(t, stock/qty, successes)
	assert.Equal(t, stock-successes*qty, s.stockOf(1))
	assert.GreaterOrEqual(t, s.stockOf(1), 0)

	orders, lines, payments := s.counts()
	assert.Equal(t, successes, orders)
	assert.Equal(t, successes, lines)
	assert.Equal(t, successes, payments)
}

func TestProcessSale_ParallelDistinctItems(t *testing.T) {
	s := newMemStorage(
		newTestItem(1, "10.00", 100),
		newTestItem(2, "20.00", 100),
	)
	p := NewProcessor(s)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := p.ProcessSale(context.Background(), SaleRequest{
				CustomerID: 1, ItemID: int64(i%2 + 1), Quantity: 1,
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 75, s.stockOf(1)+s.stockOf(2))
}
