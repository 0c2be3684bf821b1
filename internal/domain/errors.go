package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the requested resource does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when a record fails business rule validation
// (e.g. negative revenue, zero guests, unparseable date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrUnauthorized is returned when an admin-only operation is attempted
// without passing the admin gate. Handlers should map this to HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden is returned when the delete PIN does not match.
// Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrSync is the sentinel every SyncFailure matches with errors.Is.
var ErrSync = errors.New("sync failed")

// ErrInsight is the sentinel every InsightError matches with errors.Is.
var ErrInsight = errors.New("insight failed")

// ValidationError names the record field that violated a rule.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Reason)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// SyncFailure is returned when a push or pull against the sync endpoint
// fails. Local state is never modified when a SyncFailure is returned.
type SyncFailure struct {
	// Op is the step that failed, e.g. "push" or "fetch".
	Op  string
	Err error
}

func (e *SyncFailure) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrSync, e.Op, e.Err)
}

func (e *SyncFailure) Unwrap() []error {
	return []error{ErrSync, e.Err}
}

// InsightKind classifies an InsightError.
type InsightKind string

const (
	InsightNoData             InsightKind = "no-data"
	InsightMissingCredentials InsightKind = "missing-credentials"
	InsightInvalidCredentials InsightKind = "invalid-credentials"
	InsightQuotaExceeded      InsightKind = "quota-exceeded"
	InsightTransient          InsightKind = "transient-error"
)

// InsightError is the typed failure of the insight dependency.
type InsightError struct {
	Kind InsightKind
	Err  error
}

func (e *InsightError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrInsight, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", ErrInsight, e.Kind, e.Err)
}

func (e *InsightError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInsight}
	}
	return []error{ErrInsight, e.Err}
}
