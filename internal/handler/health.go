package handler

import (
	"net/http"
	"time"
)

// HandleHealth reports service liveness.
//
// HTTP: GET /health
// Auth: None — load balancers and uptime checks hit this without a token.
// RESPONSE: 200 {"status": "OK", "timestamp": "2026-01-02T15:04:05Z"}
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
