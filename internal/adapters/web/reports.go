package web

import (
	"net/http"

	"finance-tracker/internal/core"
)

// userFromRequest reads the caller context supplied out-of-band by the
// host. No session handling happens here; identity is the upstream's job.
func userFromRequest(r *http.Request) core.UserContext {
	return core.UserContext{
		CompanyID: r.Header.Get("X-Company-ID"),
		Role:      core.Role(r.Header.Get("X-User-Role")),
	}
}

func entryFilterFromRequest(r *http.Request, user core.UserContext) core.EntryFilter {
	q := r.URL.Query()
	return core.EntryFilter{
		CompanyID: user.CompanyID,
		ProjectID: q.Get("project_id"),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	}
}

// incomeSummary handles GET /reports/income-summary.
func (h *Handler) incomeSummary(w http.ResponseWriter, r *http.Request) {
	user := userFromRequest(r)
	result, err := h.reports.IncomeSummary(r.Context(), user, entryFilterFromRequest(r, user))
	if err != nil {
		writeReportError(w, r, err)
		return
	}
	exportReport(w, result, r.URL.Query().Get("export"), "income_summary")
}

// expenseSummary handles GET /reports/expense-summary.
func (h *Handler) expenseSummary(w http.ResponseWriter, r *http.Request) {
	user := userFromRequest(r)
	result, err := h.reports.ExpenseSummary(r.Context(), user, entryFilterFromRequest(r, user))
	if err != nil {
		writeReportError(w, r, err)
		return
	}
	exportReport(w, result, r.URL.Query().Get("export"), "expense_summary")
}

// projectFinance handles GET /reports/project-finance.
func (h *Handler) projectFinance(w http.ResponseWriter, r *http.Request) {
	user := userFromRequest(r)
	result, err := h.reports.ProjectFinance(r.Context(), user, entryFilterFromRequest(r, user))
	if err != nil {
		writeReportError(w, r, err)
		return
	}
	exportReport(w, result, r.URL.Query().Get("export"), "finance_summary")
}

// tenderStatus handles GET /reports/tender-status.
func (h *Handler) tenderStatus(w http.ResponseWriter, r *http.Request) {
	user := userFromRequest(r)
	q := r.URL.Query()
	f := core.TenderFilter{
		CompanyID: user.CompanyID,
		ProjectID: q.Get("project_id"),
		Status:    q.Get("status"),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	}
	result, err := h.reports.TenderStatus(r.Context(), user, f)
	if err != nil {
		writeReportError(w, r, err)
		return
	}
	exportReport(w, result, q.Get("export"), "tender_status")
}

// overallSummary handles GET /reports/overall-summary.
func (h *Handler) overallSummary(w http.ResponseWriter, r *http.Request) {
	user := userFromRequest(r)
	q := r.URL.Query()
	result, err := h.reports.OverallSummary(r.Context(), user,
		entryFilterFromRequest(r, user), q.Get("status"))
	if err != nil {
		writeReportError(w, r, err)
		return
	}
	exportReport(w, result, q.Get("export"), "overall_summary")
}

// trends handles GET /reports/trends.
func (h *Handler) trends(w http.ResponseWriter, r *http.Request) {
	user := userFromRequest(r)
	result, err := h.reports.Trends(r.Context(), user, entryFilterFromRequest(r, user))
	if err != nil {
		writeReportError(w, r, err)
		return
	}
	writeJSON(w, result)
}

type analyzeTenderRequest struct {
	TenderText string `json:"tender_text"`
}

// analyzeTender handles POST /reports/analyze-tender.
func (h *Handler) analyzeTender(w http.ResponseWriter, r *http.Request) {
	user := userFromRequest(r)
	if err := core.Authorize(user); err != nil {
		writeReportError(w, r, err)
		return
	}

	var req analyzeTenderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.TenderText == "" {
		writeError(w, "Tender text is required", http.StatusBadRequest)
		return
	}

	analysis, err := h.agent.AnalyzeTender(r.Context(), req.TenderText)
	if err != nil {
		writeReportError(w, r, err)
		return
	}
	writeJSON(w, map[string]*core.TenderAnalysis{"analysis": analysis})
}
