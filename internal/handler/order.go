package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"

	"github.com/vendra/salescore/internal/domain/ledger"
)

type orderResponse struct {
	ID            int64              `json:"id"`
	CustomerID    int64              `json:"customer_id"`
	SalespersonID *int64             `json:"salesperson_id,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	TotalAmount   money              `json:"total_amount"`
	LineItems     []lineItemResponse `json:"line_items"`
	Payment       *paymentResponse   `json:"payment,omitempty"`
}

type lineItemResponse struct {
	ID        int64 `json:"id"`
	ItemID    int64 `json:"item_id"`
	Quantity  int   `json:"quantity"`
	UnitPrice money `json:"unit_price"`
}

type paymentResponse struct {
	ID     int64  `json:"id"`
	Mode   string `json:"mode"`
	Status string `json:"status"`
}

// GetOrder handles GET /api/orders/{id}, returning the order with its line
// items and payment record.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	o, err := h.ledger.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, ledger.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "order not found")
			return
		}
		h.internalError(w, r, err, "get order")
		return
	}

	lines, err := h.ledger.LineItemsByOrder(r.Context(), id)
	if err != nil {
		h.internalError(w, r, err, "list line items")
		return
	}

	resp := orderResponse{
		ID:            o.ID,
		CustomerID:    o.CustomerID,
		SalespersonID: o.SalespersonID,
		CreatedAt:     o.CreatedAt,
		TotalAmount:   money{o.TotalAmount},
		LineItems:     make([]lineItemResponse, len(lines)),
	}
	for i, li := range lines {
		resp.LineItems[i] = lineItemResponse{
			ID:        li.ID,
			ItemID:    li.ItemID,
			Quantity:  li.Quantity,
			UnitPrice: money{li.UnitPrice},
		}
	}

	// An order may legitimately lack a payment row; any other failure is a
	// storage error and must not render as a payment-less order.
	p, err := h.ledger.PaymentByOrder(r.Context(), id)
	switch {
	case err == nil:
		resp.Payment = &paymentResponse{ID: p.ID, Mode: p.Mode, Status: p.Status}
	case !errors.Is(err, ledger.ErrOrderNotFound):
		h.internalError(w, r, err, "get payment")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
