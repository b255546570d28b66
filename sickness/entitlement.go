/*
entitlement.go - The rolling-window entitlement engine

PURPOSE:
  Produces a point-in-time entitlement summary. The critical property is
  the ROLLING WINDOW: usage is the sum of sickness-day counts for records
  overlapping [asOf - 1 year + 1 day, asOf]. As records age out of the
  window, entitlement recovers - advancing the reference date with no new
  records can only hold or increase remaining entitlement, never decrease
  it.

ALLOCATION:
  Window usage is allocated across the three compensation bands in fixed
  priority order: full pay first (allowance + opening balance), then half
  pay (likewise), then statutory sick pay. Each band clamps at its own
  allowance before spilling into the next.

  SSP entitlement itself is independent of the full/half allowances:
  28 weeks x working days per week from the current pattern, reduced only
  by usage that spilled past the half-pay band.

TWO FIGURES, NOT ONE:
  The calendar-year allocation (Jan 1 to asOf) is computed separately for
  reporting and is a DIFFERENT number from the rolling-window allocation.
  Both are exposed; neither substitutes for the other.
*/
package sickness

import (
	"log"

	"github.com/shopspring/decimal"
)

var sspWeeks = decimal.NewFromInt(28)

// =============================================================================
// INPUT / SUMMARY
// =============================================================================

// EntitlementInput carries everything the engine consumes. The caller
// fetches records, pattern, rules, and stored usage; the engine only
// calculates.
type EntitlementInput struct {
	Employee Employee
	Records  []SicknessRecord
	Pattern  WorkPattern
	Rules    []EligibilityRule

	// Usage carries opening balances and scheme identity; nil means no
	// opening balances.
	Usage *EntitlementUsage

	// AsOf is the reference date; the zero value means today.
	AsOf Date
}

// BandAllocation is usage split across the three compensation bands.
type BandAllocation struct {
	FullPay decimal.Decimal
	HalfPay decimal.Decimal
	SSP     decimal.Decimal
}

// EntitlementSummary is the computed entitlement state as of a date.
type EntitlementSummary struct {
	EmployeeID  string
	AsOf        Date
	WindowStart Date

	ServiceMonths int
	RuleID        string
	RuleFellBack  bool

	// Entitled days include opening balances.
	FullPayEntitled decimal.Decimal
	HalfPayEntitled decimal.Decimal

	// Rolling-window usage and its allocation.
	RollingUsed decimal.Decimal
	Rolling     BandAllocation

	FullPayRemaining decimal.Decimal
	HalfPayRemaining decimal.Decimal

	// SSP entitlement: 28 weeks x working days/week, independent of the
	// full/half allowances.
	SSPEntitled        decimal.Decimal
	SSPRemaining       decimal.Decimal
	WorkingDaysPerWeek int

	// Calendar-year usage (Jan 1 to asOf) and its allocation - a separate
	// reporting figure, NOT the rolling-window figure.
	CalendarYearUsed decimal.Decimal
	CalendarYear     BandAllocation
}

// =============================================================================
// ENGINE
// =============================================================================

// EntitlementEngine computes entitlement summaries.
// Logf receives pattern-defaulting notices; nil means log.Printf.
type EntitlementEngine struct {
	Logf func(format string, args ...any)
}

// Summary computes the entitlement state as of the reference date.
func (e EntitlementEngine) Summary(in EntitlementInput) (*EntitlementSummary, error) {
	asOf := in.AsOf
	if asOf.IsZero() {
		asOf = Today()
	}

	pattern, defaulted, err := NormalizePattern(in.Pattern)
	if err != nil {
		return nil, err
	}
	if len(defaulted) > 0 {
		logf := e.Logf
		if logf == nil {
			logf = log.Printf
		}
		logf("WARN: work pattern for %s missing %v; treating as non-working", in.Employee.ID, defaulted)
	}
	workingPerWeek := WorkingDaysPerWeek(pattern)

	serviceMonths := MonthsBetween(in.Employee.HireDate, asOf)
	if serviceMonths < 0 {
		serviceMonths = 0
	}

	res, err := ResolveRule(serviceMonths, in.Rules)
	if err != nil {
		return nil, err
	}

	fullEntitled := entitlementToDays(res.Rule.FullPayAmount, res.Rule.FullPayUnit, workingPerWeek)
	halfEntitled := entitlementToDays(res.Rule.HalfPayAmount, res.Rule.HalfPayUnit, workingPerWeek)
	if in.Usage != nil {
		fullEntitled = fullEntitled.Add(in.Usage.OpeningFullPayDays)
		halfEntitled = halfEntitled.Add(in.Usage.OpeningHalfPayDays)
	}

	windowStart := asOf.AddYears(-1).AddDays(1)
	rollingUsed := sumOverlapping(in.Records, windowStart, asOf)
	rolling := allocate(rollingUsed, fullEntitled, halfEntitled)

	yearStart := NewDate(asOf.Year(), 1, 1)
	calendarUsed := sumOverlapping(in.Records, yearStart, asOf)
	calendar := allocate(calendarUsed, fullEntitled, halfEntitled)

	sspEntitled := sspWeeks.Mul(decimal.NewFromInt(int64(workingPerWeek)))

	return &EntitlementSummary{
		EmployeeID:         in.Employee.ID,
		AsOf:               asOf,
		WindowStart:        windowStart,
		ServiceMonths:      serviceMonths,
		RuleID:             res.Rule.ID,
		RuleFellBack:       res.FellBack,
		FullPayEntitled:    fullEntitled,
		HalfPayEntitled:    halfEntitled,
		RollingUsed:        rollingUsed,
		Rolling:            rolling,
		FullPayRemaining:   fullEntitled.Sub(rolling.FullPay),
		HalfPayRemaining:   halfEntitled.Sub(rolling.HalfPay),
		SSPEntitled:        sspEntitled,
		SSPRemaining:       maxZero(sspEntitled.Sub(rolling.SSP)),
		WorkingDaysPerWeek: workingPerWeek,
		CalendarYearUsed:   calendarUsed,
		CalendarYear:       calendar,
	}, nil
}

// RebuildUsage recomputes the stored entitlement state for an employee,
// preserving opening balances from the previous state. The result REPLACES
// the prior EntitlementUsage; nothing is mutated in place.
func (e EntitlementEngine) RebuildUsage(in EntitlementInput) (*EntitlementUsage, error) {
	summary, err := e.Summary(in)
	if err != nil {
		return nil, err
	}

	usage := &EntitlementUsage{
		EmployeeID:    in.Employee.ID,
		RuleID:        summary.RuleID,
		ServiceMonths: summary.ServiceMonths,
		FullPayDays:   summary.FullPayEntitled,
		HalfPayDays:   summary.HalfPayEntitled,
	}
	if in.Usage != nil {
		usage.SchemeID = in.Usage.SchemeID
		usage.OpeningFullPayDays = in.Usage.OpeningFullPayDays
		usage.OpeningHalfPayDays = in.Usage.OpeningHalfPayDays
		usage.OpeningBalanceDate = in.Usage.OpeningBalanceDate
	}
	return usage, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// sumOverlapping totals the day counts of records intersecting [from, to].
func sumOverlapping(records []SicknessRecord, from, to Date) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		if r.Overlaps(from, to, to) {
			total = total.Add(r.TotalDays)
		}
	}
	return total
}

// allocate distributes used days across the bands in priority order:
// full pay, half pay, then SSP. Each band clamps at its allowance.
func allocate(used, fullAllowance, halfAllowance decimal.Decimal) BandAllocation {
	full := decimal.Min(used, fullAllowance)
	rest := maxZero(used.Sub(full))
	half := decimal.Min(rest, halfAllowance)
	ssp := maxZero(rest.Sub(half))
	return BandAllocation{FullPay: full, HalfPay: half, SSP: ssp}
}

// entitlementToDays converts a rule amount to working days: weeks scale by
// the pattern's working days per week, months by working days per mean
// month (52 weeks / 12), rounded to whole days.
func entitlementToDays(amount int, unit EntitlementUnit, workingPerWeek int) decimal.Decimal {
	v := decimal.NewFromInt(int64(amount))
	perWeek := decimal.NewFromInt(int64(workingPerWeek))
	switch unit {
	case UnitWeeks:
		return v.Mul(perWeek)
	case UnitMonths:
		return v.Mul(perWeek).Mul(decimal.NewFromInt(52)).Div(twelveD).Round(0)
	default:
		return v
	}
}

var twelveD = decimal.NewFromInt(12)

func maxZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
