/*
errors.go - Centralized error types for the payroll engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The api package maps these onto HTTP status codes; the engine itself
  never formats user-facing messages.

ERROR CATEGORIES:
  1. Tax code errors  - Unrecognized or regionally unsupported codes
  2. Numeric errors   - Out-of-range or non-finite calculation inputs
  3. Snapshot errors  - Broken period chains (prior snapshot missing/wrong)

INTEGRITY WARNINGS:
  Band reconciliation mismatches are NOT errors. They are logged through the
  calculator's Logf hook and calculation proceeds. See ni.go.

USAGE:
  Callers can branch with errors.Is():

    if errors.Is(err, paye.ErrUnsupportedTaxRegion) {
        // tell the user Scottish/Welsh codes are not handled
    }

  or unwrap for detail:

    var ue *paye.UnrecognizedTaxCodeError
    if errors.As(err, &ue) { log.Printf("bad code %q", ue.Code) }
*/
package paye

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnrecognizedTaxCode is returned when a tax code string matches no
	// known pattern.
	ErrUnrecognizedTaxCode = errors.New("unrecognized tax code")

	// ErrUnsupportedTaxRegion is returned when a tax code carries a regional
	// prefix this engine does not implement. The code is deliberately rejected
	// rather than approximated with the default band table.
	ErrUnsupportedTaxRegion = errors.New("unsupported tax region")

	// ErrInvalidNumericInput is returned when a calculation input is negative,
	// non-finite, out of range, or otherwise implausible.
	ErrInvalidNumericInput = errors.New("invalid numeric input")

	// ErrSnapshotMismatch is returned when the prior YTD snapshot does not
	// belong immediately before the period being settled.
	ErrSnapshotMismatch = errors.New("prior snapshot does not match period")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// UnrecognizedTaxCodeError carries the offending input string.
type UnrecognizedTaxCodeError struct {
	Code string
}

func (e *UnrecognizedTaxCodeError) Error() string {
	return fmt.Sprintf("unrecognized tax code %q", e.Code)
}

func (e *UnrecognizedTaxCodeError) Unwrap() error { return ErrUnrecognizedTaxCode }

// UnsupportedTaxRegionError names the region the prefix designates.
type UnsupportedTaxRegionError struct {
	Region string // e.g. "Scotland", "Wales"
	Code   string // the full rejected code
}

func (e *UnsupportedTaxRegionError) Error() string {
	return fmt.Sprintf("tax code %q is for %s, which this engine does not support", e.Code, e.Region)
}

func (e *UnsupportedTaxRegionError) Unwrap() error { return ErrUnsupportedTaxRegion }

// InvalidNumericInputError identifies the field and value that failed
// validation so the caller can translate it for the user.
type InvalidNumericInputError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InvalidNumericInputError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidNumericInputError) Unwrap() error { return ErrInvalidNumericInput }

// SnapshotMismatchError describes a broken settlement chain.
type SnapshotMismatchError struct {
	WantPeriod int
	GotPeriod  int
	Detail     string
}

func (e *SnapshotMismatchError) Error() string {
	return fmt.Sprintf("snapshot mismatch: want period %d, got %d: %s", e.WantPeriod, e.GotPeriod, e.Detail)
}

func (e *SnapshotMismatchError) Unwrap() error { return ErrSnapshotMismatch }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input
// (as opposed to an engine or storage fault).
func IsClientError(err error) bool {
	return errors.Is(err, ErrUnrecognizedTaxCode) ||
		errors.Is(err, ErrUnsupportedTaxRegion) ||
		errors.Is(err, ErrInvalidNumericInput) ||
		errors.Is(err, ErrSnapshotMismatch)
}
