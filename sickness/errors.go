/*
errors.go - Error types for the sickness entitlement engine
*/
package sickness

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidPattern is returned for structurally invalid work patterns
	// (duplicate weekdays).
	ErrInvalidPattern = errors.New("invalid work pattern")

	// ErrNoRules is returned when a scheme has no eligibility rules at all.
	ErrNoRules = errors.New("no eligibility rules configured")

	// ErrInvalidDateRange is returned when a record's end precedes its start.
	ErrInvalidDateRange = errors.New("invalid date range: end before start")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrRecordNotFound is returned when a referenced sickness record doesn't exist.
	ErrRecordNotFound = errors.New("sickness record not found")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// DuplicateWeekdayError reports a weekday appearing twice in a pattern.
type DuplicateWeekdayError struct {
	Weekday time.Weekday
}

func (e *DuplicateWeekdayError) Error() string {
	return fmt.Sprintf("work pattern has duplicate entry for %s", e.Weekday)
}

func (e *DuplicateWeekdayError) Unwrap() error { return ErrInvalidPattern }

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) || errors.Is(err, ErrRecordNotFound)
}
