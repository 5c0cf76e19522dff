package core

import (
	"errors"
	"time"
)

// ErrAccessDenied is returned when the caller's role is outside the report
// allow-set. The message doubles as the HTTP response body.
var ErrAccessDenied = errors.New("Access denied: insufficient permissions")

// ValidationError marks bad caller input (missing tenant scope, malformed
// date) detected before any data access.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var reportRoles = map[Role]bool{
	RoleAdmin:   true,
	RoleFinance: true,
	RoleHR:      true,
}

// Authorize checks the caller against the report allow-set and verifies
// that a tenant scope is present. The role check runs first: a caller with
// a disallowed role and no company gets an authorization failure, not a
// validation one.
func Authorize(user UserContext) error {
	if !reportRoles[user.Role] {
		return ErrAccessDenied
	}
	if user.CompanyID == "" {
		return &ValidationError{Message: "company_id is required in context"}
	}
	return nil
}

// ValidateDates checks that each provided date parses as YYYY-MM-DD.
// Absent dates are valid. start <= end is deliberately not enforced; an
// inverted range simply selects no rows.
func ValidateDates(startDate, endDate string) error {
	for _, d := range []string{startDate, endDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return &ValidationError{Message: "Invalid date format. Please use YYYY-MM-DD."}
		}
	}
	return nil
}
