package handler

import (
	"net/http"
	"strconv"
	"time"
)

type dailyReportResponse struct {
	Day     string `json:"day"`
	Orders  int    `json:"orders"`
	Revenue money  `json:"revenue"`
}

type itemSalesResponse struct {
	ItemID    int64  `json:"item_id"`
	Name      string `json:"name"`
	UnitsSold int    `json:"units_sold"`
	Revenue   money  `json:"revenue"`
}

type salespersonRevenueResponse struct {
	SalespersonID int64  `json:"salesperson_id"`
	Name          string `json:"name"`
	Orders        int    `json:"orders"`
	Revenue       money  `json:"revenue"`
}

// DailyReport handles GET /api/reports/daily?day=2006-01-02. The day
// defaults to today (UTC).
func (h *Handler) DailyReport(w http.ResponseWriter, r *http.Request) {
	day := time.Now().UTC()
	if v := r.URL.Query().Get("day"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "day must be formatted as YYYY-MM-DD")
			return
		}
		day = parsed
	}

	total, err := h.reports.DailyTotal(r.Context(), day)
	if err != nil {
		h.internalError(w, r, err, "daily report")
		return
	}

	respondJSON(w, http.StatusOK, dailyReportResponse{
		Day:     total.Day.Format("2006-01-02"),
		Orders:  total.Orders,
		Revenue: money{total.Revenue},
	})
}

// TopItemsReport handles GET /api/reports/top-items?limit=N (default 10).
func (h *Handler) TopItemsReport(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			respondError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	items, err := h.reports.TopItems(r.Context(), limit)
	if err != nil {
		h.internalError(w, r, err, "top items report")
		return
	}

	out := make([]itemSalesResponse, len(items))
	for i, it := range items {
		out[i] = itemSalesResponse{
			ItemID:    it.ItemID,
			Name:      it.Name,
			UnitsSold: it.UnitsSold,
			Revenue:   money{it.Revenue},
		}
	}
	respondJSON(w, http.StatusOK, out)
}

// SalespersonReport handles GET /api/reports/salespersons.
func (h *Handler) SalespersonReport(w http.ResponseWriter, r *http.Request) {
	revs, err := h.reports.RevenueBySalesperson(r.Context())
	if err != nil {
		h.internalError(w, r, err, "salesperson report")
		return
	}

	out := make([]salespersonRevenueResponse, len(revs))
	for i, sr := range revs {
		out[i] = salespersonRevenueResponse{
			SalespersonID: sr.SalespersonID,
			Name:          sr.Name,
			Orders:        sr.Orders,
			Revenue:       money{sr.Revenue},
		}
	}
	respondJSON(w, http.StatusOK, out)
}
