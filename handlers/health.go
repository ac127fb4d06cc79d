package handlers

import "net/http"

// HealthReport is the body served by the health endpoint.
type HealthReport struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Note    string `json:"note"`
}

// DefaultReport returns the report of an unconfigured deployment.
func DefaultReport() HealthReport {
	return HealthReport{OK: true, Service: "bb-3d-studio", Note: "health endpoint"}
}

// Health handles GET /health and GET /api/health.
// The response never depends on the request and must not be cached.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, h.report)
}
