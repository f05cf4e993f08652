package handlers

import "net/http"

// GetStats returns store-wide totals (authenticated).
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	if _, ok := identityFrom(r); !ok {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to fetch stats")
		return
	}

	h.JSON(w, http.StatusOK, stats)
}
