package core

import "fmt"

// EntryFilter scopes ledger-entry queries. CompanyID is mandatory; the
// rest are optional and contribute nothing when empty. Dates are opaque
// strings here — ValidateDates runs separately, before any query.
type EntryFilter struct {
	CompanyID string
	ProjectID string
	StartDate string
	EndDate   string
}

// Build returns WHERE fragments and the matching bound values. Fragments
// are emitted in a fixed order — tenant scope, project, date range — and
// use positional $n placeholders so that fragments and params zip
// positionally. Callers join the fragments with AND.
func (f EntryFilter) Build() ([]string, []any) {
	clauses := []string{"company_id = $1"}
	args := []any{f.CompanyID}

	if f.ProjectID != "" {
		args = append(args, f.ProjectID)
		clauses = append(clauses, fmt.Sprintf("project_id = $%d", len(args)))
	}
	if f.StartDate != "" {
		args = append(args, f.StartDate)
		clauses = append(clauses, fmt.Sprintf("date >= $%d", len(args)))
	}
	if f.EndDate != "" {
		args = append(args, f.EndDate)
		clauses = append(clauses, fmt.Sprintf("date <= $%d", len(args)))
	}
	return clauses, args
}

// TenderFilter scopes tender queries. Tenders have no single date column;
// the range applies to start_date/end_date instead.
type TenderFilter struct {
	CompanyID string
	ProjectID string
	Status    string
	StartDate string
	EndDate   string
}

// Build emits fragments against the aliased tenders table ("t.") in the
// same canonical order as EntryFilter: tenant, entity (project, status),
// then date range.
func (f TenderFilter) Build() ([]string, []any) {
	clauses := []string{"t.company_id = $1"}
	args := []any{f.CompanyID}

	if f.ProjectID != "" {
		args = append(args, f.ProjectID)
		clauses = append(clauses, fmt.Sprintf("t.project_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		clauses = append(clauses, fmt.Sprintf("t.status = $%d", len(args)))
	}
	if f.StartDate != "" {
		args = append(args, f.StartDate)
		clauses = append(clauses, fmt.Sprintf("t.start_date >= $%d", len(args)))
	}
	if f.EndDate != "" {
		args = append(args, f.EndDate)
		clauses = append(clauses, fmt.Sprintf("t.end_date <= $%d", len(args)))
	}
	return clauses, args
}
