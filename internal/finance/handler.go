package finance

import (
	"net/http"
	"time"

	"furnimart-be/internal/transport"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// Summary handles GET /api/finance/revenue-profit (staff only)
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.repo.Summary(r.Context())
	if err != nil {
		transport.WriteError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}
	transport.WriteJSON(w, http.StatusOK, s)
}

// Range handles GET /api/finance/revenue-profit-by-date?startDate=...&endDate=... (staff only)
func (h *Handler) Range(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	startStr, endStr := q.Get("startDate"), q.Get("endDate")
	if startStr == "" || endStr == "" {
		transport.WriteError(w, http.StatusBadRequest, "startDate and endDate are required")
		return
	}

	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid startDate")
		return
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid endDate")
		return
	}

	// The end date is inclusive through its last instant.
	end = end.Add(24*time.Hour - time.Nanosecond)

	report, err := h.repo.Range(r.Context(), start, end)
	if err != nil {
		transport.WriteError(w, http.StatusInternalServerError, "failed to compute report")
		return
	}
	transport.WriteJSON(w, http.StatusOK, report)
}
