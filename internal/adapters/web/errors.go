package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"finance-tracker/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error body. The body carries only the message;
// root causes are logged, never leaked.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message})
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeReportError maps a report failure to its HTTP status: 403 for
// authorization failures, 400 for validation failures, 500 with a generic
// body for everything else.
func writeReportError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, core.ErrAccessDenied) {
		writeError(w, core.ErrAccessDenied.Error(), http.StatusForbidden)
		return
	}
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		writeError(w, ve.Message, http.StatusBadRequest)
		return
	}
	log.Printf("request %s failed: %v", r.URL.Path, err)
	writeError(w, "Internal server error", http.StatusInternalServerError)
}
