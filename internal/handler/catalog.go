package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"

	"github.com/vendra/salescore/internal/domain/catalog"
)

type itemResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    money  `json:"price"`
	Stock    int    `json:"stock"`
}

func toItemResponse(it catalog.Item) itemResponse {
	return itemResponse{
		ID:       it.ID,
		Name:     it.Name,
		Category: it.Category,
		Price:    money{it.Price},
		Stock:    it.Stock,
	}
}

// ListItems handles GET /api/items.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.List(r.Context())
	if err != nil {
		h.internalError(w, r, err, "list items")
		return
	}

	out := make([]itemResponse, len(items))
	for i, it := range items {
		out[i] = toItemResponse(it)
	}
	respondJSON(w, http.StatusOK, out)
}

// GetItem handles GET /api/items/{id}.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	it, err := h.catalog.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(w, http.StatusNotFound, "item not found")
			return
		}
		h.internalError(w, r, err, "get item")
		return
	}
	respondJSON(w, http.StatusOK, toItemResponse(*it))
}

// SearchItems handles GET /api/items/search?q=keyword.
func (h *Handler) SearchItems(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("q")
	if keyword == "" {
		respondError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	items, err := h.catalog.Search(r.Context(), keyword)
	if err != nil {
		h.internalError(w, r, err, "search items")
		return
	}

	out := make([]itemResponse, len(items))
	for i, it := range items {
		out[i] = toItemResponse(it)
	}
	respondJSON(w, http.StatusOK, out)
}
