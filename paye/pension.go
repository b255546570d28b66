/*
pension.go - Pension contribution calculation

PURPOSE:
  Two contribution models share one entry point:

  Flat:   an explicit employee percentage of salary.
  Tiered: NHS-style - the employee rate is resolved from annualized salary
          (monthly x 12) through the ordered tier table.

  An explicit rate or tier in the selection always overrides the
  salary-resolved tier. Employee and employer rates differ and both are
  reported.
*/
package paye

import (
	"github.com/shopspring/decimal"
)

// PensionSelection carries the caller's overrides. Both nil means "resolve
// the tier from salary".
type PensionSelection struct {
	// Rate is an explicit employee rate (e.g. 0.05 for 5%), overriding tiers.
	Rate *decimal.Decimal

	// Tier is an explicit 1-based tier index into the table.
	Tier *int
}

// PensionResult is the contribution outcome for one period.
type PensionResult struct {
	// Tier is the 1-based tier applied; 0 when a flat rate was used.
	Tier int

	EmployeeRate decimal.Decimal
	EmployerRate decimal.Decimal

	Employee decimal.Decimal
	Employer decimal.Decimal
}

// PensionCalculator computes contributions against one year's tier table.
type PensionCalculator struct {
	Table PensionTable
}

// Calculate resolves the employee rate and applies it to the period's gross.
// Salary is annualized with a fixed 12-month projection for tier lookup.
func (c PensionCalculator) Calculate(monthlyGross decimal.Decimal, sel PensionSelection) (PensionResult, error) {
	if monthlyGross.IsNegative() {
		return PensionResult{}, &InvalidNumericInputError{
			Field: "gross_pay", Value: monthlyGross.String(), Reason: "must not be negative",
		}
	}

	var (
		tier int
		rate decimal.Decimal
	)
	switch {
	case sel.Rate != nil:
		if sel.Rate.IsNegative() {
			return PensionResult{}, &InvalidNumericInputError{
				Field: "pension_rate", Value: sel.Rate.String(), Reason: "must not be negative",
			}
		}
		rate = *sel.Rate

	case sel.Tier != nil:
		if *sel.Tier < 1 || *sel.Tier > len(c.Table.Tiers) {
			return PensionResult{}, &InvalidNumericInputError{
				Field: "pension_tier", Value: *sel.Tier, Reason: "tier out of range",
			}
		}
		tier = *sel.Tier
		rate = c.Table.Tiers[tier-1].EmployeeRate

	default:
		annual := monthlyGross.Mul(twelve)
		tier = c.Table.TierFor(annual)
		if tier == 0 {
			// Empty tier table and no override: no scheme in force.
			return PensionResult{}, nil
		}
		rate = c.Table.Tiers[tier-1].EmployeeRate
	}

	return PensionResult{
		Tier:         tier,
		EmployeeRate: rate,
		EmployerRate: c.Table.EmployerRate,
		Employee:     RoundMoney(monthlyGross.Mul(rate)),
		Employer:     RoundMoney(monthlyGross.Mul(c.Table.EmployerRate)),
	}, nil
}
