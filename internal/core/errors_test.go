package core_test

import (
	"errors"
	"testing"

	"finance-tracker/internal/core"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name       string
		user       core.UserContext
		wantDenied bool
		wantValMsg string
	}{
		{name: "admin allowed", user: core.UserContext{CompanyID: "1", Role: core.RoleAdmin}},
		{name: "finance allowed", user: core.UserContext{CompanyID: "1", Role: core.RoleFinance}},
		{name: "hr allowed", user: core.UserContext{CompanyID: "1", Role: core.RoleHR}},
		{
			name:       "staff denied",
			user:       core.UserContext{CompanyID: "1", Role: "Staff"},
			wantDenied: true,
		},
		{
			name:       "empty role denied",
			user:       core.UserContext{CompanyID: "1"},
			wantDenied: true,
		},
		{
			name:       "missing company is a validation failure",
			user:       core.UserContext{Role: core.RoleFinance},
			wantValMsg: "company_id is required in context",
		},
		{
			// The role check runs first: both problems at once still
			// yield an authorization failure.
			name:       "bad role and missing company yields denial",
			user:       core.UserContext{Role: "Staff"},
			wantDenied: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := core.Authorize(tt.user)
			switch {
			case tt.wantDenied:
				if !errors.Is(err, core.ErrAccessDenied) {
					t.Errorf("expected ErrAccessDenied, got %v", err)
				}
			case tt.wantValMsg != "":
				var ve *core.ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				if ve.Message != tt.wantValMsg {
					t.Errorf("message = %q, want %q", ve.Message, tt.wantValMsg)
				}
			default:
				if err != nil {
					t.Errorf("expected nil error, got %v", err)
				}
			}
		})
	}
}

func TestValidateDates(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		wantErr bool
	}{
		{name: "both absent", start: "", end: ""},
		{name: "start only", start: "2022-01-01"},
		{name: "end only", end: "2022-12-31"},
		{name: "both valid", start: "2022-01-01", end: "2022-12-31"},
		{name: "garbage start", start: "not-a-date", wantErr: true},
		{name: "wrong format end", end: "31-12-2022", wantErr: true},
		// Inverted ranges are deliberately permitted.
		{name: "start after end passes", start: "2023-12-31", end: "2023-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := core.ValidateDates(tt.start, tt.end)
			if !tt.wantErr {
				if err != nil {
					t.Errorf("expected nil, got %v", err)
				}
				return
			}
			var ve *core.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Message != "Invalid date format. Please use YYYY-MM-DD." {
				t.Errorf("unexpected message: %q", ve.Message)
			}
		})
	}
}
