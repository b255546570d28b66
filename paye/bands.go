/*
bands.go - Versioned band tables

PURPOSE:
  Numeric tables for one tax year: income tax bands, National Insurance
  thresholds and rates, student-loan plan thresholds, and pension
  contribution tiers. Tables are plain values passed INTO calculators,
  never package-level singletons, so historical years can be replayed by
  supplying the table version that was in force.

LOADING:
  The factory package builds TaxYearTables from YAML configuration and
  carries compiled-in defaults for the current year. Nothing in this
  package knows where tables come from.

RATE SLOTS:
  NI contribution rates are a closed enum (NIRateSlot) with an exhaustive
  mapping in NIRates.RateFor. There is no string-matching dispatch; an
  unknown slot is a programming error, not a fallback.

SEE ALSO:
  - factory/tables.go: YAML loading + 2025-26 defaults
  - incometax.go, ni.go, studentloan.go, pension.go: consumers
*/
package paye

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// INCOME TAX BANDS
// =============================================================================

// TaxBand is one slice of the income tax schedule. Bands are ordered
// ascending; AnnualLimit is the cumulative upper bound of the band in annual
// taxable pounds. The last band has Unbounded set and its limit is ignored.
type TaxBand struct {
	Name        string
	Rate        decimal.Decimal
	AnnualLimit decimal.Decimal
	Unbounded   bool
}

// IncomeTaxBands is the full ascending schedule for a year.
type IncomeTaxBands []TaxBand

// RateAt returns the rate of band i, or zero if out of range. Used by
// flat-rate codes (BR = band 0, D0 = band 1, D1 = band 2).
func (b IncomeTaxBands) RateAt(i int) decimal.Decimal {
	if i < 0 || i >= len(b) {
		return decimal.Zero
	}
	return b[i].Rate
}

// AnnualTaxOn computes tax on an annual taxable amount by applying each band
// slice in ascending order. The input must already be floored to whole
// pounds; the result is NOT rounded (callers round at their boundary).
func (b IncomeTaxBands) AnnualTaxOn(taxable decimal.Decimal) decimal.Decimal {
	return b.taxOn(taxable, func(band TaxBand) decimal.Decimal { return band.AnnualLimit })
}

// MonthlyTaxOn computes tax on a single period's taxable amount using
// monthly band limits: the annual limits divided by 12 and floored.
func (b IncomeTaxBands) MonthlyTaxOn(taxable decimal.Decimal) decimal.Decimal {
	return b.taxOn(taxable, func(band TaxBand) decimal.Decimal {
		return FloorPounds(band.AnnualLimit.Div(twelve))
	})
}

func (b IncomeTaxBands) taxOn(taxable decimal.Decimal, limit func(TaxBand) decimal.Decimal) decimal.Decimal {
	if !taxable.IsPositive() {
		return decimal.Zero
	}
	tax := decimal.Zero
	prev := decimal.Zero
	for _, band := range b {
		upper := taxable
		if !band.Unbounded {
			upper = decimal.Min(taxable, limit(band))
		}
		slice := upper.Sub(prev)
		if slice.IsPositive() {
			tax = tax.Add(slice.Mul(band.Rate))
		}
		if band.Unbounded || taxable.LessThanOrEqual(limit(band)) {
			break
		}
		prev = limit(band)
	}
	return tax
}

// =============================================================================
// NATIONAL INSURANCE
// =============================================================================

// NIRateSlot is the closed set of contribution rates the NI table carries.
type NIRateSlot string

const (
	NIEmployeeMain       NIRateSlot = "employee_main"       // PT to UEL
	NIEmployeeAdditional NIRateSlot = "employee_additional" // above UEL
	NIEmployerMain       NIRateSlot = "employer_main"       // above secondary threshold
	NIEmployerAdditional NIRateSlot = "employer_additional" // above UEL (same as main today)
)

// NIRates holds all four contribution rates.
type NIRates struct {
	EmployeeMain       decimal.Decimal
	EmployeeAdditional decimal.Decimal
	EmployerMain       decimal.Decimal
	EmployerAdditional decimal.Decimal
}

// RateFor maps a slot to its rate. The switch is exhaustive over NIRateSlot;
// an unknown slot panics because it cannot arise from well-formed code.
func (r NIRates) RateFor(slot NIRateSlot) decimal.Decimal {
	switch slot {
	case NIEmployeeMain:
		return r.EmployeeMain
	case NIEmployeeAdditional:
		return r.EmployeeAdditional
	case NIEmployerMain:
		return r.EmployerMain
	case NIEmployerAdditional:
		return r.EmployerAdditional
	default:
		panic(fmt.Sprintf("unknown NI rate slot %q", slot))
	}
}

// NITable holds the monthly thresholds and rates for one year.
type NITable struct {
	// Monthly thresholds, in pounds.
	LowerEarningsLimit decimal.Decimal // LEL: below this, no NI record accrues
	PrimaryThreshold   decimal.Decimal // PT: employee contributions start
	UpperEarningsLimit decimal.Decimal // UEL: main rate stops, additional starts
	SecondaryThreshold decimal.Decimal // ST: employer contributions start

	Rates NIRates
}

// =============================================================================
// STUDENT LOANS
// =============================================================================

type StudentLoanPlan string

const (
	StudentLoanPlan1 StudentLoanPlan = "plan1"
	StudentLoanPlan2 StudentLoanPlan = "plan2"
	StudentLoanPlan4 StudentLoanPlan = "plan4"
)

// StudentLoanTable is the threshold and rate for one plan.
type StudentLoanTable struct {
	AnnualThreshold decimal.Decimal
	Rate            decimal.Decimal
}

// =============================================================================
// PENSION TIERS
// =============================================================================

// PensionTier is one row of a tiered (NHS-style) contribution table,
// ordered ascending by AnnualUpper. The last tier has Unbounded set.
type PensionTier struct {
	AnnualUpper  decimal.Decimal
	Unbounded    bool
	EmployeeRate decimal.Decimal
}

// PensionTable holds the tier schedule plus the single employer rate.
type PensionTable struct {
	Tiers        []PensionTier
	EmployerRate decimal.Decimal
}

// TierFor resolves the 1-based tier index for an annual salary.
// Returns 0 when the table is empty.
func (p PensionTable) TierFor(annualSalary decimal.Decimal) int {
	for i, t := range p.Tiers {
		if t.Unbounded || annualSalary.LessThanOrEqual(t.AnnualUpper) {
			return i + 1
		}
	}
	if n := len(p.Tiers); n > 0 {
		return n
	}
	return 0
}

// =============================================================================
// TAX YEAR TABLES - One versioned bundle per tax year
// =============================================================================

// TaxYearTables bundles every table for one tax year. These are configuration
// values: the engine never hard-codes them.
type TaxYearTables struct {
	// Year labels the version, e.g. "2025-26".
	Year string

	IncomeTax    IncomeTaxBands
	NI           NITable
	StudentLoans map[StudentLoanPlan]StudentLoanTable
	Pension      PensionTable

	// MonthlyGrossCeiling is the sanity ceiling for a single period's gross
	// pay; values above it are rejected as implausible.
	MonthlyGrossCeiling decimal.Decimal
}

// Validate checks structural invariants: ascending bands, exactly one
// unbounded terminal band/tier, positive thresholds in order.
func (t TaxYearTables) Validate() error {
	if t.Year == "" {
		return fmt.Errorf("tables: year label is required")
	}
	if len(t.IncomeTax) == 0 {
		return fmt.Errorf("tables %s: no income tax bands", t.Year)
	}
	prev := decimal.Zero
	for i, b := range t.IncomeTax {
		last := i == len(t.IncomeTax)-1
		if b.Unbounded != last {
			return fmt.Errorf("tables %s: band %d: only the last band may be unbounded", t.Year, i)
		}
		if !last {
			if !b.AnnualLimit.GreaterThan(prev) {
				return fmt.Errorf("tables %s: band %d: limits must ascend", t.Year, i)
			}
			prev = b.AnnualLimit
		}
	}
	ni := t.NI
	if ni.LowerEarningsLimit.GreaterThan(ni.PrimaryThreshold) ||
		ni.PrimaryThreshold.GreaterThan(ni.UpperEarningsLimit) {
		return fmt.Errorf("tables %s: NI thresholds must satisfy LEL <= PT <= UEL", t.Year)
	}
	prev = decimal.Zero
	for i, tier := range t.Pension.Tiers {
		last := i == len(t.Pension.Tiers)-1
		if tier.Unbounded != last {
			return fmt.Errorf("tables %s: pension tier %d: only the last tier may be unbounded", t.Year, i)
		}
		if !last {
			if !tier.AnnualUpper.GreaterThan(prev) {
				return fmt.Errorf("tables %s: pension tier %d: uppers must ascend", t.Year, i)
			}
			prev = tier.AnnualUpper
		}
	}
	if !t.MonthlyGrossCeiling.IsPositive() {
		return fmt.Errorf("tables %s: monthly gross ceiling must be positive", t.Year)
	}
	return nil
}
