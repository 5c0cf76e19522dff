package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"finance-tracker/internal/ai"
	"finance-tracker/internal/core"

	"github.com/go-chi/chi/v5"
)

// Handler holds the reporting service, the AI agent, and the chi router.
type Handler struct {
	reports core.ReportingService
	agent   ai.AgentService
	router  chi.Router
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(reports core.ReportingService, agent ai.AgentService, allowedOrigins string) http.Handler {
	h := &Handler{reports: reports, agent: agent}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	r.Get("/api/health", h.health)

	r.Route("/reports", func(r chi.Router) {
		r.Get("/income-summary", h.incomeSummary)
		r.Get("/expense-summary", h.expenseSummary)
		r.Get("/project-finance", h.projectFinance)
		r.Get("/tender-status", h.tenderStatus)
		r.Get("/overall-summary", h.overallSummary)
		r.Get("/trends", h.trends)
		r.With(RequestBodyLimit(1<<20)).Post("/analyze-tender", h.analyzeTender)
	})

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// RequestBodyLimit returns a middleware that caps the request body at
// maxBytes. Oversized bodies fail during decode with HTTP 413.
func RequestBodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// decodeJSON decodes the request body into v, writing the error response
// itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}
