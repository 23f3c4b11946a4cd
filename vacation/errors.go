/*
errors.go - Centralized error types for the vacation engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers should match with errors.Is / errors.As.

ERROR CATEGORIES:
  1. Validation errors - rejected before any mutation, safe to retry
  2. Balance errors    - rejected before any mutation, carry available days
  3. Persistence errors - the operation did not complete, no partial state

NOTE:
  A restriction conflict is deliberately NOT an error. It is a soft signal
  (Decision with VerdictNeedsConfirmation) that the caller may override.
*/
package vacation

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidRange is returned by the workday calendar when start > end.
	ErrInvalidRange = errors.New("invalid range: start after end")

	// ErrInsufficientBalance is returned when a request needs more chargeable
	// days than the employee has available for that year.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrVacationNotFound is returned when a referenced vacation doesn't exist.
	ErrVacationNotFound = errors.New("vacation not found")

	// ErrRestrictionNotFound is returned when a referenced restriction doesn't exist.
	ErrRestrictionNotFound = errors.New("restriction not found")

	// ErrHolidayNotFound is returned when a referenced holiday doesn't exist.
	ErrHolidayNotFound = errors.New("holiday not found")

	// ErrDuplicateName is returned when an employee name is already taken
	// (names are unique case-insensitively).
	ErrDuplicateName = errors.New("employee name already exists")

	// ErrDuplicateRestriction is returned when the unordered pair is already
	// restricted.
	ErrDuplicateRestriction = errors.New("restriction already exists for this pair")

	// ErrSelfRestriction is returned when both sides of a restriction name the
	// same employee.
	ErrSelfRestriction = errors.New("restriction must name two distinct employees")

	// ErrTerminalStatus is returned when approving or rejecting a request that
	// is already approved or rejected.
	ErrTerminalStatus = errors.New("request status is terminal")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports invalid input: a missing field, bad date ordering,
// or a reference to a non-existent record. No mutation has occurred.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// InsufficientBalanceError reports a would-be overdraft. Available is the
// number of days the employee could still take for that year, accounting for
// the record being replaced when the operation is an update.
type InsufficientBalanceError struct {
	EmployeeID EmployeeID
	Year       int
	Requested  int
	Available  int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for %s in %d: requested %d, available %d",
		e.EmployeeID, e.Year, e.Requested, e.Available)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// PersistenceError wraps a store failure. The surrounding transaction has
// been rolled back: ledger and vacation state remain consistent.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input and
// is safe to retry after correcting it.
func IsClientError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrDuplicateName) ||
		errors.Is(err, ErrDuplicateRestriction) ||
		errors.Is(err, ErrSelfRestriction) ||
		errors.Is(err, ErrTerminalStatus)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrVacationNotFound) ||
		errors.Is(err, ErrRestrictionNotFound) ||
		errors.Is(err, ErrHolidayNotFound)
}
