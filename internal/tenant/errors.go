package tenant

import (
	"fmt"

	"github.com/kennethjason07/schoolmangmentsystem-sub005/internal/model"
)

// Code identifies one tenant-resolution failure mode. Every failure is a
// distinct tagged variant so callers can render specific guidance instead of
// guessing from message text. There is deliberately no fallback tenant: an
// unresolvable principal always surfaces one of these.
type Code string

const (
	CodeNotAuthenticated Code = "NOT_AUTHENTICATED"
	CodeInvalidEmail     Code = "INVALID_EMAIL"
	CodeAccountNotFound  Code = "ACCOUNT_NOT_FOUND"
	CodeNotAssigned      Code = "TENANT_NOT_ASSIGNED"
	CodeConfigError      Code = "TENANT_CONFIG_ERROR"
	CodeInactive         Code = "TENANT_INACTIVE"
)

// Error is a tenant-resolution failure. Suggestions are user-actionable and
// part of the contract with the UI layer, not a convenience.
type Error struct {
	Code        Code
	Message     string
	Status      model.TenantStatus // populated for CodeInactive
	Suggestions []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("tenant resolution failed (%s): %s", e.Code, e.Message)
}

// Is makes errors.Is match on the code, so callers can compare against a
// bare &Error{Code: ...}.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func errNotAuthenticated() *Error {
	return &Error{
		Code:    CodeNotAuthenticated,
		Message: "no authenticated user session",
		Suggestions: []string{
			"Sign in again",
			"If the problem persists, clear the app session and retry",
		},
	}
}

func errInvalidEmail(email string) *Error {
	return &Error{
		Code:    CodeInvalidEmail,
		Message: fmt.Sprintf("%q is not a valid email address", email),
		Suggestions: []string{
			"Check the email address for typos",
		},
	}
}

func errAccountNotFound(email string) *Error {
	return &Error{
		Code:    CodeAccountNotFound,
		Message: fmt.Sprintf("no account exists for %s", email),
		Suggestions: []string{
			"Verify the email address is the one used at signup",
			"Contact your school administrator to create an account",
		},
	}
}

func errNotAssigned(email string) *Error {
	return &Error{
		Code:    CodeNotAssigned,
		Message: fmt.Sprintf("account %s is not assigned to any school", email),
		Suggestions: []string{
			"Contact your school administrator to complete account setup",
		},
	}
}

func errConfigError(tenantID string) *Error {
	return &Error{
		Code:    CodeConfigError,
		Message: fmt.Sprintf("account references tenant %s which does not exist", tenantID),
		Suggestions: []string{
			"Contact support; the account's school configuration is broken",
		},
	}
}

func errInactive(status model.TenantStatus) *Error {
	return &Error{
		Code:    CodeInactive,
		Message: fmt.Sprintf("school account is %s", status),
		Status:  status,
		Suggestions: []string{
			"Contact your school administrator about the account status",
		},
	}
}
