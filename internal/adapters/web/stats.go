package web

import "net/http"

// statistics handles GET /api/estadisticas.
func (h *Handler) statistics(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Dashboard(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// salesStatistics handles GET /api/estadisticas/ventas.
func (h *Handler) salesStatistics(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.SalesOverview(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
