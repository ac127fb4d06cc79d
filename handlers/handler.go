// Package handlers implements the HTTP handlers served by the studio API.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ContentTypeJSON is the Content-Type of every JSON response.
const ContentTypeJSON = "application/json; charset=utf-8"

// Handler holds shared dependencies for all HTTP handlers.
type Handler struct {
	report HealthReport
}

// New returns a Handler that reports the given service identity.
func New(report HealthReport) *Handler {
	return &Handler{report: report}
}

// writeJSON sends v with the given status. An encode failure means the client
// connection is gone; it is logged and the request ends.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
