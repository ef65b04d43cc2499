package sale

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/vendra/salescore/internal/domain/catalog"
	"github.com/vendra/salescore/internal/domain/ledger"
)

// memStorage is an in-memory Storage with real transactional semantics:
// per-item exclusive locks held until the transaction ends, staged writes
// that only become visible on commit, and full rollback on error. It also
// supports injecting a failure at a named step for atomicity tests.
type memStorage struct {
	mu        sync.Mutex
	items     map[int64]catalog.Item
	itemLocks map[int64]*sync.Mutex
	orders    map[int64]ledger.Order
	lineItems map[int64]ledger.LineItem
	payments  map[int64]ledger.Payment

	nextOrderID    int64
	nextLineItemID int64
	nextPaymentID  int64

	// failAt maps a step name (createOrder, addLineItem, applyStockChange,
	// finalizeTotal, createPayment) to the error that step should return.
	failAt map[string]error
}

func newMemStorage(items ...catalog.Item) *memStorage {
	s := &memStorage{
		items:     make(map[int64]catalog.Item),
		itemLocks: make(map[int64]*sync.Mutex),
		orders:    make(map[int64]ledger.Order),
		lineItems: make(map[int64]ledger.LineItem),
		payments:  make(map[int64]ledger.Payment),
		failAt:    make(map[string]error),
	}
	for _, it := range items {
		s.items[it.ID] = it
	}
	return s
}

func (s *memStorage) InTx(_ context.Context, fn func(tx Tx) error) error {
	tx := &memTx{
		s:          s,
		stockDelta: make(map[int64]int),
		prices:     make(map[int64]decimal.Decimal),
		totals:     make(map[int64]decimal.Decimal),
	}
	defer tx.releaseLocks()

	if err := fn(tx); err != nil {
		return err // staged writes discarded
	}
	tx.commit()
	return nil
}

func (s *memStorage) itemLock(id int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.itemLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.itemLocks[id] = l
	}
	return l
}

func (s *memStorage) stepErr(step string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failAt[step]
}

// Direct inspection helpers for assertions.

func (s *memStorage) stockOf(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[id].Stock
}

func (s *memStorage) counts() (orders, lineItems, payments int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders), len(s.lineItems), len(s.payments)
}

func (s *memStorage) lineItemsOf(orderID int64) []ledger.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ledger.LineItem
	for _, li := range s.lineItems {
		if li.OrderID == orderID {
			out = append(out, li)
		}
	}
	return out
}

func (s *memStorage) paymentOf(orderID int64) (ledger.Payment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.payments {
		if p.OrderID == orderID {
			return p, true
		}
	}
	return ledger.Payment{}, false
}

func (s *memStorage) orderOf(id int64) (ledger.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	return o, ok
}

// memTx stages all writes until commit. It implements both the catalog.Store
// and ledger.Ledger views handed out by Tx.
type memTx struct {
	s      *memStorage
	locked []int64

	stockDelta map[int64]int
	prices     map[int64]decimal.Decimal
	newOrders  []ledger.Order
	newLines   []ledger.LineItem
	newPaym    []ledger.Payment
	totals     map[int64]decimal.Decimal
}

func (tx *memTx) Catalog() catalog.Store { return (*memCatalogView)(tx) }
func (tx *memTx) Ledger() ledger.Ledger  { return (*memLedgerView)(tx) }

func (tx *memTx) releaseLocks() {
	for _, id := range tx.locked {
		tx.s.itemLock(id).Unlock()
	}
	tx.locked = nil
}

func (tx *memTx) commit() {
	s := tx.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, delta := range tx.stockDelta {
		it := s.items[id]
		it.Stock += delta
		s.items[id] = it
	}
	for id, price := range tx.prices {
		it := s.items[id]
		it.Price = price
		s.items[id] = it
	}
	for _, o := range tx.newOrders {
		if total, ok := tx.totals[o.ID]; ok {
			o.TotalAmount = total
		}
		s.orders[o.ID] = o
	}
	for _, li := range tx.newLines {
		s.lineItems[li.ID] = li
	}
	for _, p := range tx.newPaym {
		s.payments[p.ID] = p
	}
}

// committedItem reads an item's committed state plus this tx's staged delta.
func (tx *memTx) committedItem(id int64) (catalog.Item, bool) {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	it, ok := tx.s.items[id]
	if !ok {
		return catalog.Item{}, false
	}
	it.Stock += tx.stockDelta[id]
	if p, ok := tx.prices[id]; ok {
		it.Price = p
	}
	return it, true
}

type memCatalogView memTx

func (v *memCatalogView) GetByID(_ context.Context, id int64) (*catalog.Item, error) {
	it, ok := (*memTx)(v).committedItem(id)
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &it, nil
}

func (v *memCatalogView) LockForUpdate(ctx context.Context, id int64) (*catalog.Item, error) {
	tx := (*memTx)(v)
	tx.s.itemLock(id).Lock()
	tx.locked = append(tx.locked, id)

	it, ok := tx.committedItem(id)
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &it, nil
}

func (v *memCatalogView) ApplyStockChange(_ context.Context, id int64, delta int) error {
	tx := (*memTx)(v)
	if err := tx.s.stepErr("applyStockChange"); err != nil {
		return err
	}
	it, ok := tx.committedItem(id)
	if !ok {
		return catalog.ErrNotFound
	}
	if it.Stock+delta < 0 {
		return catalog.ErrStockExhausted
	}
	tx.stockDelta[id] += delta
	return nil
}

func (v *memCatalogView) UpdatePrice(_ context.Context, id int64, price decimal.Decimal) error {
	tx := (*memTx)(v)
	if price.IsNegative() {
		return catalog.ErrNegativePrice
	}
	if _, ok := tx.committedItem(id); !ok {
		return catalog.ErrNotFound
	}
	tx.prices[id] = price
	return nil
}

func (v *memCatalogView) List(_ context.Context) ([]catalog.Item, error) {
	tx := (*memTx)(v)
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	out := make([]catalog.Item, 0, len(tx.s.items))
	for _, it := range tx.s.items {
		out = append(out, it)
	}
	return out, nil
}

func (v *memCatalogView) Search(_ context.Context, keyword string) ([]catalog.Item, error) {
	items, _ := v.List(context.Background())
	var out []catalog.Item
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name), strings.ToLower(keyword)) {
			out = append(out, it)
		}
	}
	return out, nil
}

type memLedgerView memTx

func (v *memLedgerView) CreateOrder(_ context.Context, o *ledger.Order) error {
	tx := (*memTx)(v)
	if err := tx.s.stepErr("createOrder"); err != nil {
		return err
	}
	tx.s.mu.Lock()
	tx.s.nextOrderID++
	o.ID = tx.s.nextOrderID
	tx.s.mu.Unlock()
	tx.newOrders = append(tx.newOrders, *o)
	return nil
}

func (v *memLedgerView) AddLineItem(_ context.Context, li *ledger.LineItem) error {
	tx := (*memTx)(v)
	if err := tx.s.stepErr("addLineItem"); err != nil {
		return err
	}
	tx.s.mu.Lock()
	tx.s.nextLineItemID++
	li.ID = tx.s.nextLineItemID
	tx.s.mu.Unlock()
	tx.newLines = append(tx.newLines, *li)
	return nil
}

func (v *memLedgerView) FinalizeTotal(_ context.Context, orderID int64, total decimal.Decimal) error {
	tx := (*memTx)(v)
	if err := tx.s.stepErr("finalizeTotal"); err != nil {
		return err
	}
	tx.totals[orderID] = total
	return nil
}

func (v *memLedgerView) CreatePayment(_ context.Context, p *ledger.Payment) error {
	tx := (*memTx)(v)
	if err := tx.s.stepErr("createPayment"); err != nil {
		return err
	}
	tx.s.mu.Lock()
	tx.s.nextPaymentID++
	p.ID = tx.s.nextPaymentID
	tx.s.mu.Unlock()
	tx.newPaym = append(tx.newPaym, *p)
	return nil
}

func (v *memLedgerView) GetOrder(_ context.Context, id int64) (*ledger.Order, error) {
	o, ok := (*memTx)(v).s.orderOf(id)
	if !ok {
		return nil, ledger.ErrOrderNotFound
	}
	return &o, nil
}

func (v *memLedgerView) LineItemsByOrder(_ context.Context, orderID int64) ([]ledger.LineItem, error) {
	return (*memTx)(v).s.lineItemsOf(orderID), nil
}

func (v *memLedgerView) PaymentByOrder(_ context.Context, orderID int64) (*ledger.Payment, error) {
	p, ok := (*memTx)(v).s.paymentOf(orderID)
	if !ok {
		return nil, ledger.ErrOrderNotFound
	}
	return &p, nil
}
