/*
Package sickness implements the sickness-entitlement rolling-window engine.

PURPOSE:
  Computes a point-in-time entitlement summary for an employee: how many
  full-pay, half-pay, and statutory sick pay days remain, given historical
  sickness records, the applicable service-length eligibility rule, the
  weekly work pattern, and a reference date. Usage is bounded by a rolling
  12-month window ending at the reference date, so old absences age out
  and entitlement recovers over time.

KEY CONCEPTS IN THIS FILE (types.go):
  - Date: day-granularity time point used throughout the engine
  - Employee: identity + hire date (service length derives from it)
  - SicknessRecord: one absence, possibly open-ended/ongoing
  - WorkDay / WorkPattern: the 7-day weekly working pattern
  - EligibilityRule: service-length band -> entitlement amounts
  - EntitlementUsage: per-employee entitlement state incl. opening balances

DESIGN PRINCIPLES:
  1. Purity: the engine consumes explicit inputs (records, pattern, rules,
     reference date) and returns a summary; it never reads storage.
  2. Precision: day counts use decimal.Decimal - half days are real.
  3. Explicit reference dates: "as of when?" is a parameter, not an
     implicit now. Two reference dates give two different answers.

SEE ALSO:
  - workdays.go: working-day counting against the pattern
  - rules.go: eligibility rule resolution
  - entitlement.go: the rolling-window engine itself
*/
package sickness

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DATE - Day-granularity time point
// =============================================================================

// Date is a calendar day in UTC. All engine arithmetic is day-granular.
type Date struct {
	Time time.Time
}

// NewDate constructs a Date at day granularity.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current day.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// ParseDate parses "2006-01-02". The zero Date is returned on failure.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Comparison
func (d Date) Before(other Date) bool        { return d.normalize().Before(other.normalize()) }
func (d Date) Equal(other Date) bool         { return d.normalize().Equal(other.normalize()) }
func (d Date) After(other Date) bool         { return d.normalize().After(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{Time: d.Time.AddDate(0, n, 0)} }
func (d Date) AddYears(n int) Date  { return Date{Time: d.Time.AddDate(n, 0, 0)} }

// Properties
func (d Date) Year() int             { return d.Time.Year() }
func (d Date) Weekday() time.Weekday { return d.Time.Weekday() }
func (d Date) IsZero() bool          { return d.Time.IsZero() }
func (d Date) String() string        { return d.normalize().Format("2006-01-02") }

// MonthsBetween returns whole calendar months from 'from' to 'to',
// anchored on the day of month (a month completes when the anchor day
// recurs). Negative when 'to' precedes 'from'.
func MonthsBetween(from, to Date) int {
	if to.Before(from) {
		return -MonthsBetween(to, from)
	}
	months := (to.Year()-from.Year())*12 + int(to.Time.Month()) - int(from.Time.Month())
	if to.Time.Day() < from.Time.Day() {
		months--
	}
	return months
}

// =============================================================================
// EMPLOYEE
// =============================================================================

// Employee is the identity record the engines key off.
type Employee struct {
	ID       string
	Name     string
	NINumber string
	HireDate Date
}

// =============================================================================
// SICKNESS RECORD
// =============================================================================

// SicknessRecord is one absence. Immutable once created; corrections go
// through explicit update or delete by an authorized actor, never in-place
// mutation by the engine.
type SicknessRecord struct {
	ID         string
	EmployeeID string

	Start Date

	// End is nil for an open-ended record. For window-overlap purposes an
	// open-ended record ends at its start date unless Ongoing is set, in
	// which case it extends to the reference date.
	End     *Date
	Ongoing bool

	// TotalDays is the working-day count of the absence, pre-computed at
	// record creation from the work pattern (half days allowed).
	TotalDays decimal.Decimal

	Certified bool
}

// EffectiveEnd resolves the record's end for overlap testing as of a
// reference date.
func (r SicknessRecord) EffectiveEnd(asOf Date) Date {
	switch {
	case r.End != nil:
		return *r.End
	case r.Ongoing:
		return asOf
	default:
		return r.Start
	}
}

// Overlaps reports whether the record's date range intersects [from, to].
func (r SicknessRecord) Overlaps(from, to, asOf Date) bool {
	return r.Start.BeforeOrEqual(to) && r.EffectiveEnd(asOf).AfterOrEqual(from)
}

// =============================================================================
// WORK PATTERN
// =============================================================================

// WorkDay is one weekday of the weekly pattern.
type WorkDay struct {
	Weekday time.Weekday
	Working bool

	// Optional shift times, "15:04" strings. Informational only; the
	// entitlement engine counts whole days.
	Start *string
	End   *string
}

// WorkPattern is the weekly pattern: a full pattern has exactly 7 entries,
// one per weekday. See NormalizePattern in workdays.go for validation.
type WorkPattern []WorkDay

// =============================================================================
// ELIGIBILITY RULES
// =============================================================================

// ServiceUnit declares the unit of a rule's service-length band.
type ServiceUnit string

// EntitlementUnit declares the unit of a rule's entitlement amounts.
type EntitlementUnit string

const (
	UnitDays   = "days"
	UnitWeeks  = "weeks"
	UnitMonths = "months"
)

// EligibilityRule is one service-length band of a scheme's rule set.
// The band is the half-open interval [ServiceFrom, ServiceTo) in
// ServiceUnit; a nil ServiceTo means unbounded.
type EligibilityRule struct {
	ID       string
	SchemeID string

	ServiceFrom int
	ServiceTo   *int
	ServiceUnit ServiceUnit

	FullPayAmount int
	FullPayUnit   EntitlementUnit

	HalfPayAmount int
	HalfPayUnit   EntitlementUnit
}

// =============================================================================
// ENTITLEMENT USAGE - Per-employee entitlement state
// =============================================================================

// EntitlementUsage is the stored entitlement state for one employee in one
// scheme. It is recalculated (replaced, not mutated) whenever the applicable
// rule, service length, or pattern-derived day conversion changes.
type EntitlementUsage struct {
	EmployeeID string
	SchemeID   string

	// Entitled days resolved from the applicable rule, converted to days.
	FullPayDays decimal.Decimal
	HalfPayDays decimal.Decimal

	// Opening balances carried over from before this system's own records
	// began, as of OpeningBalanceDate.
	OpeningFullPayDays decimal.Decimal
	OpeningHalfPayDays decimal.Decimal
	OpeningBalanceDate *Date

	RuleID        string
	ServiceMonths int
}
