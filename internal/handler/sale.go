package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/vendra/salescore/internal/domain/catalog"
	"github.com/vendra/salescore/internal/domain/sale"
)

type submitSaleRequest struct {
	CustomerID    int64  `json:"customer_id"`
	ItemID        int64  `json:"item_id"`
	Quantity      int    `json:"quantity"`
	SalespersonID *int64 `json:"salesperson_id,omitempty"`
}

type submitSaleResponse struct {
	OrderID     int64 `json:"order_id"`
	TotalAmount money `json:"total_amount"`
}

// SubmitSale handles POST /api/sales: it validates the request, optionally
// claims the Idempotency-Key, and delegates to the sale processor.
func (h *Handler) SubmitSale(w http.ResponseWriter, r *http.Request) {
	var req submitSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CustomerID <= 0 || req.ItemID <= 0 {
		respondError(w, http.StatusBadRequest, "customer_id and item_id must be positive")
		return
	}

	// Bloom prefilter: a positive check is not proof of existence (the
	// processor re-checks under lock), and a miss only means the item was
	// absent when the filter was seeded. Items added since then fall to the
	// slow path: confirm with the database before rejecting.
	if h.filter != nil && !h.filter.MayExist(req.ItemID) {
		if _, err := h.catalog.GetByID(r.Context(), req.ItemID); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				respondError(w, http.StatusUnprocessableEntity,
					(&sale.ItemNotFoundError{ItemID: req.ItemID}).Error())
				return
			}
			h.internalError(w, r, err, "check item existence")
			return
		}
		h.filter.Add(req.ItemID)
	}

	idemKey := r.Header.Get("Idempotency-Key")
	if h.idem != nil && idemKey != "" {
		claimed, err := h.idem.Claim(r.Context(), idemKey)
		if err != nil {
			h.internalError(w, r, err, "claim idempotency key")
			return
		}
		if !claimed {
			respondError(w, http.StatusConflict, "duplicate submission")
			return
		}
	}

	result, err := h.processor.ProcessSale(r.Context(), sale.SaleRequest{
		CustomerID:    req.CustomerID,
		ItemID:        req.ItemID,
		Quantity:      req.Quantity,
		SalespersonID: req.SalespersonID,
	})
	if err != nil {
		// A failed attempt left no state behind; free the key so the
		// client may retry.
		if h.idem != nil && idemKey != "" {
			if relErr := h.idem.Release(r.Context(), idemKey); relErr != nil {
				zctx.From(r.Context()).Warn("release idempotency key", zap.Error(relErr))
			}
		}
		h.mapSaleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, submitSaleResponse{
		OrderID:     result.OrderID,
		TotalAmount: money{result.TotalAmount},
	})
}

// mapSaleError converts domain errors to HTTP error responses. Business
// failures carry the domain message; anything else is a system error.
func (h *Handler) mapSaleError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, sale.ErrInvalidQuantity) {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var nfErr *sale.ItemNotFoundError
	if errors.As(err, &nfErr) {
		respondError(w, http.StatusUnprocessableEntity, nfErr.Error())
		return
	}

	var isErr *sale.InsufficientStockError
	if errors.As(err, &isErr) {
		respondError(w, http.StatusConflict, isErr.Error())
		return
	}

	var cvErr *sale.ConsistencyViolationError
	if errors.As(err, &cvErr) {
		// Signals a coordination bug, not a user error.
		zctx.From(r.Context()).Error("consistency violation", zap.Error(cvErr))
		respondError(w, http.StatusInternalServerError, cvErr.Error())
		return
	}

	h.internalError(w, r, err, "process sale")
}
