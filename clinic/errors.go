/*
errors.go - Centralized error types for the clinic core

PURPOSE:
  All error kinds in one place. Access and validation checks run before
  any store I/O and short-circuit with the corresponding error; store
  failures propagate unchanged as a StoreError. The core performs no
  retries.

ERROR CATEGORIES:
  1. Validation errors - missing or malformed input
  2. NotFound          - unknown customer/user/record id
  3. AccessDenied      - access policy rejection
  4. Conflict          - duplicate email at registration
  5. NothingToExport   - distinguished empty invoice outcome (not a failure)
  6. StoreError        - persistence failure, opaque to the core

SEE ALSO:
  - policy.go: produces AccessDenied
  - service.go: produces validation and not-found errors
  - invoice.go: produces NothingToExport
*/
package clinic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced user or record doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrAccessDenied is returned when the access policy rejects the caller.
	ErrAccessDenied = errors.New("access denied")

	// ErrDuplicateEmail is returned when registering an email that exists.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrNothingToExport is returned when an invoice is requested for a
	// month with zero matching records. It is a distinguished outcome,
	// not a failure: the caller turns it into a "nothing to export"
	// message instead of producing an empty document silently.
	ErrNothingToExport = errors.New("no records to export for this month")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationError reports missing or malformed input. It is raised
// before any store I/O.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StoreError wraps a persistence failure. The core never retries;
// retries, if any, belong to the store collaborator.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store: %s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicateEmail) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// =============================================================================
// CLASSIFICATION HELPERS
// =============================================================================

func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
func IsAccessDenied(err error) bool { return errors.Is(err, ErrAccessDenied) }
func IsConflict(err error) bool     { return errors.Is(err, ErrDuplicateEmail) }

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsClientError reports whether the error is due to the caller's input
// rather than a server-side failure.
func IsClientError(err error) bool {
	return IsValidation(err) || IsNotFound(err) || IsAccessDenied(err) ||
		IsConflict(err) || errors.Is(err, ErrNothingToExport)
}
