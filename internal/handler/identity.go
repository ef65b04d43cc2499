package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"

	"github.com/vendra/salescore/internal/domain/identity"
)

type customerResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type registerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// RegisterCustomer handles POST /api/customers.
func (h *Handler) RegisterCustomer(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c := &identity.Customer{Name: req.Name, Email: req.Email, Phone: req.Phone}
	if err := h.customers.Register(r.Context(), c); err != nil {
		if errors.Is(err, identity.ErrEmptyName) || errors.Is(err, identity.ErrEmptyContact) {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.internalError(w, r, err, "register customer")
		return
	}

	respondJSON(w, http.StatusCreated, customerResponse{
		ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone,
	})
}

// GetCustomer handles GET /api/customers/{id}.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	c, err := h.customers.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			respondError(w, http.StatusNotFound, "customer not found")
			return
		}
		h.internalError(w, r, err, "get customer")
		return
	}
	respondJSON(w, http.StatusOK, customerResponse{
		ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone,
	})
}

// LookupCustomer handles GET /api/customers/lookup?email=...|phone=...
func (h *Handler) LookupCustomer(w http.ResponseWriter, r *http.Request) {
	var (
		c   *identity.Customer
		err error
	)
	switch {
	case r.URL.Query().Get("email") != "":
		c, err = h.customers.FindByEmail(r.Context(), r.URL.Query().Get("email"))
	case r.URL.Query().Get("phone") != "":
		c, err = h.customers.FindByPhone(r.Context(), r.URL.Query().Get("phone"))
	default:
		respondError(w, http.StatusBadRequest, "email or phone query parameter is required")
		return
	}

	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			respondError(w, http.StatusNotFound, "customer not found")
			return
		}
		h.internalError(w, r, err, "lookup customer")
		return
	}
	respondJSON(w, http.StatusOK, customerResponse{
		ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone,
	})
}

// RegisterSalesperson handles POST /api/salespersons.
func (h *Handler) RegisterSalesperson(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s := &identity.Salesperson{Name: req.Name, Email: req.Email, Phone: req.Phone}
	if err := h.salespersons.Register(r.Context(), s); err != nil {
		if errors.Is(err, identity.ErrEmptyName) || errors.Is(err, identity.ErrEmptyContact) {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.internalError(w, r, err, "register salesperson")
		return
	}

	respondJSON(w, http.StatusCreated, customerResponse{
		ID: s.ID, Name: s.Name, Email: s.Email, Phone: s.Phone,
	})
}
