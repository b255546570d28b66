/*
ni.go - National Insurance contribution calculation

PURPOSE:
  Banded employee (and employer) NI for one monthly period. Earnings are
  split across three bands against the monthly thresholds:

    below PT:    0%
    PT to UEL:   employee main rate
    above UEL:   employee additional rate

  The per-band earnings breakdown is part of the result because downstream
  reporting reconciles band sums against gross pay.

INTEGRITY CHECKS:
  Two internal assertions run on every calculation and log (never fail)
  on violation, since a discrepancy may reflect a legitimate edge case:
    1. The band amounts must sum back to gross pay within a penny.
    2. When gross reaches the LEL, the sub-PT band must hold at least the
       LEL amount.
*/
package paye

import (
	"log"

	"github.com/shopspring/decimal"
)

// NIBandBreakdown is the earnings split across the three employee bands.
type NIBandBreakdown struct {
	BelowPT  decimal.Decimal
	PTToUEL  decimal.Decimal
	AboveUEL decimal.Decimal
}

// Sum returns the total earnings across all bands.
func (b NIBandBreakdown) Sum() decimal.Decimal {
	return b.BelowPT.Add(b.PTToUEL).Add(b.AboveUEL)
}

// NIResult is the contribution outcome for one period.
type NIResult struct {
	Employee decimal.Decimal
	Employer decimal.Decimal
	Bands    NIBandBreakdown
}

// NICalculator computes NI against one year's table.
// Logf receives integrity warnings; nil means log.Printf.
type NICalculator struct {
	Table NITable
	Logf  func(format string, args ...any)
}

// Calculate splits monthly gross pay across the NI bands and applies the
// rate for each band through the closed rate-slot mapping.
func (c NICalculator) Calculate(grossPay decimal.Decimal) (NIResult, error) {
	if grossPay.IsNegative() {
		return NIResult{}, &InvalidNumericInputError{
			Field: "gross_pay", Value: grossPay.String(), Reason: "must not be negative",
		}
	}

	bands := NIBandBreakdown{
		BelowPT:  decimal.Min(grossPay, c.Table.PrimaryThreshold),
		PTToUEL:  max0(decimal.Min(grossPay, c.Table.UpperEarningsLimit).Sub(c.Table.PrimaryThreshold)),
		AboveUEL: max0(grossPay.Sub(c.Table.UpperEarningsLimit)),
	}

	c.checkIntegrity(grossPay, bands)

	employee := bands.PTToUEL.Mul(c.Table.Rates.RateFor(NIEmployeeMain)).
		Add(bands.AboveUEL.Mul(c.Table.Rates.RateFor(NIEmployeeAdditional)))

	employerEarnings := max0(grossPay.Sub(c.Table.SecondaryThreshold))
	employer := employerEarnings.Mul(c.Table.Rates.RateFor(NIEmployerMain))

	return NIResult{
		Employee: RoundMoney(employee),
		Employer: RoundMoney(employer),
		Bands:    bands,
	}, nil
}

// checkIntegrity runs the reconciliation assertions. Violations are logged
// as warnings and calculation proceeds with the computed values.
func (c NICalculator) checkIntegrity(grossPay decimal.Decimal, bands NIBandBreakdown) {
	logf := c.Logf
	if logf == nil {
		logf = log.Printf
	}

	penny := decimal.New(1, -2)
	if diff := bands.Sum().Sub(grossPay).Abs(); diff.GreaterThan(penny) {
		logf("WARN: NI bands do not reconcile with gross pay: bands sum %s, gross %s (diff %s)",
			bands.Sum(), grossPay, diff)
	}

	if grossPay.GreaterThanOrEqual(c.Table.LowerEarningsLimit) &&
		bands.BelowPT.LessThan(c.Table.LowerEarningsLimit) {
		logf("WARN: NI sub-PT band %s below LEL %s for gross %s",
			bands.BelowPT, c.Table.LowerEarningsLimit, grossPay)
	}
}
