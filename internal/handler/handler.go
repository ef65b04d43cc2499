// Package handler implements the JSON HTTP API over the domain services.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/vendra/salescore/internal/domain/catalog"
	"github.com/vendra/salescore/internal/domain/identity"
	"github.com/vendra/salescore/internal/domain/ledger"
	"github.com/vendra/salescore/internal/domain/report"
	"github.com/vendra/salescore/internal/domain/sale"
)

// IdempotencyStore claims client-provided idempotency keys. Optional; a nil
// store disables idempotency handling.
type IdempotencyStore interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// Handler serves the HTTP API, delegating business logic to the injected
// domain services and repositories.
type Handler struct {
	catalog      catalog.Store
	filter       *catalog.ExistenceFilter
	processor    *sale.Processor
	ledger       ledger.Ledger
	customers    identity.CustomerRepository
	salespersons identity.SalespersonRepository
	reports      report.Repository
	idem         IdempotencyStore
}

// NewHandler constructs a Handler with the required domain dependencies.
// filter and idem may be nil.
func NewHandler(
	cat catalog.Store,
	filter *catalog.ExistenceFilter,
	processor *sale.Processor,
	led ledger.Ledger,
	customers identity.CustomerRepository,
	salespersons identity.SalespersonRepository,
	reports report.Repository,
	idem IdempotencyStore,
) *Handler {
	return &Handler{
		catalog:      cat,
		filter:       filter,
		processor:    processor,
		ledger:       led,
		customers:    customers,
		salespersons: salespersons,
		reports:      reports,
		idem:         idem,
	}
}

// Routes registers all API routes on the given mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sales", h.SubmitSale)

	mux.HandleFunc("GET /api/items", h.ListItems)
	mux.HandleFunc("GET /api/items/search", h.SearchItems)
	mux.HandleFunc("GET /api/items/{id}", h.GetItem)

	mux.HandleFunc("GET /api/orders/{id}", h.GetOrder)

	mux.HandleFunc("POST /api/customers", h.RegisterCustomer)
	mux.HandleFunc("GET /api/customers/lookup", h.LookupCustomer)
	mux.HandleFunc("GET /api/customers/{id}", h.GetCustomer)
	mux.HandleFunc("POST /api/salespersons", h.RegisterSalesperson)

	mux.HandleFunc("GET /api/reports/daily", h.DailyReport)
	mux.HandleFunc("GET /api/reports/top-items", h.TopItemsReport)
	mux.HandleFunc("GET /api/reports/salespersons", h.SalespersonReport)
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Code: status, Message: message})
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	zctx.From(r.Context()).Error(msg, zap.Error(err))
	respondError(w, http.StatusInternalServerError, "internal error")
}
