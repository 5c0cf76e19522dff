package core_test

import (
	"reflect"
	"testing"

	"finance-tracker/internal/core"
)

func TestEntryFilter_Build(t *testing.T) {
	tests := []struct {
		name        string
		filter      core.EntryFilter
		wantClauses []string
		wantArgs    []any
	}{
		{
			name:        "company only",
			filter:      core.EntryFilter{CompanyID: "1"},
			wantClauses: []string{"company_id = $1"},
			wantArgs:    []any{"1"},
		},
		{
			name:   "all filters in canonical order",
			filter: core.EntryFilter{CompanyID: "1", ProjectID: "42", StartDate: "2025-01-01", EndDate: "2025-12-31"},
			wantClauses: []string{
				"company_id = $1",
				"project_id = $2",
				"date >= $3",
				"date <= $4",
			},
			wantArgs: []any{"1", "42", "2025-01-01", "2025-12-31"},
		},
		{
			name:   "dates without project keep positional numbering",
			filter: core.EntryFilter{CompanyID: "7", StartDate: "2024-06-01", EndDate: "2024-06-30"},
			wantClauses: []string{
				"company_id = $1",
				"date >= $2",
				"date <= $3",
			},
			wantArgs: []any{"7", "2024-06-01", "2024-06-30"},
		},
		{
			name:        "end date only",
			filter:      core.EntryFilter{CompanyID: "7", EndDate: "2024-06-30"},
			wantClauses: []string{"company_id = $1", "date <= $2"},
			wantArgs:    []any{"7", "2024-06-30"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clauses, args := tt.filter.Build()
			if !reflect.DeepEqual(clauses, tt.wantClauses) {
				t.Errorf("clauses = %v, want %v", clauses, tt.wantClauses)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestTenderFilter_Build(t *testing.T) {
	f := core.TenderFilter{
		CompanyID: "1",
		ProjectID: "9",
		Status:    "Won",
		StartDate: "2025-01-01",
		EndDate:   "2025-06-30",
	}
	clauses, args := f.Build()

	wantClauses := []string{
		"t.company_id = $1",
		"t.project_id = $2",
		"t.status = $3",
		"t.start_date >= $4",
		"t.end_date <= $5",
	}
	wantArgs := []any{"1", "9", "Won", "2025-01-01", "2025-06-30"}

	if !reflect.DeepEqual(clauses, wantClauses) {
		t.Errorf("clauses = %v, want %v", clauses, wantClauses)
	}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("args = %v, want %v", args, wantArgs)
	}
}

func TestTenderFilter_Build_StatusOnly(t *testing.T) {
	clauses, args := core.TenderFilter{CompanyID: "1", Status: "Open"}.Build()
	if !reflect.DeepEqual(clauses, []string{"t.company_id = $1", "t.status = $2"}) {
		t.Errorf("unexpected clauses: %v", clauses)
	}
	if !reflect.DeepEqual(args, []any{"1", "Open"}) {
		t.Errorf("unexpected args: %v", args)
	}
}
