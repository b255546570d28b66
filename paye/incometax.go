/*
incometax.go - Income tax calculation, cumulative and non-cumulative

PURPOSE:
  Computes PAYE income tax for one employee-period in either of the two
  statutory modes:

  Non-cumulative ("emergency" / week-1-month-1):
    Each period stands alone. Taxable pay = gross - monthly free pay,
    floored to a whole pound, banded against MONTHLY limits.

  Cumulative:
    The whole year to date is retaxed every period. Free pay accrues as
    monthlyFreePay x periodNumber, taxable pay YTD is banded against
    ANNUAL limits, and this period's tax is the difference between tax
    due YTD and tax already paid YTD. That difference is legitimately
    NEGATIVE when free pay has outgrown pay (a refund) and is preserved
    as negative - never clamped.

K CODES:
  Free pay is negative, so taxable pay EXCEEDS gross pay. The subtraction
  gross - freePay must not be floored at gross or clamped: the sign flip
  is the whole point of a K code.

SEE ALSO:
  - taxcode.go: descriptor feeding these calculations
  - bands.go: AnnualTaxOn / MonthlyTaxOn slice walks
*/
package paye

import (
	"github.com/shopspring/decimal"
)

// IncomeTaxCalculator computes income tax against one year's tables.
type IncomeTaxCalculator struct {
	Tables TaxYearTables
}

// PeriodTaxResult is the outcome of a non-cumulative calculation.
type PeriodTaxResult struct {
	// FreePay actually applied this period (negative for K codes).
	FreePay decimal.Decimal

	// TaxablePay after free pay, floored to a whole pound. Never negative.
	TaxablePay decimal.Decimal

	// Tax due this period, rounded to 2dp. Never negative in this mode.
	Tax decimal.Decimal
}

// CumulativeTaxResult is the outcome of a cumulative calculation.
type CumulativeTaxResult struct {
	FreePayYTD    decimal.Decimal
	TaxablePayYTD decimal.Decimal
	TaxDueYTD     decimal.Decimal

	// TaxThisPeriod = TaxDueYTD - tax paid YTD, 2dp. Negative means refund.
	TaxThisPeriod decimal.Decimal
}

// NonCumulative computes tax on a single period in isolation.
func (c IncomeTaxCalculator) NonCumulative(code TaxCodeDescriptor, grossPay decimal.Decimal) (PeriodTaxResult, error) {
	if err := c.validateGross("gross_pay", grossPay); err != nil {
		return PeriodTaxResult{}, err
	}

	if code.Kind == KindNoTax {
		return PeriodTaxResult{FreePay: grossPay, TaxablePay: decimal.Zero, Tax: decimal.Zero}, nil
	}

	taxable := FloorPounds(max0(grossPay.Sub(code.MonthlyFreePay)))

	if rate, flat := code.FlatRate(c.Tables); flat {
		return PeriodTaxResult{
			FreePay:    decimal.Zero,
			TaxablePay: taxable,
			Tax:        RoundMoney(taxable.Mul(rate)),
		}, nil
	}

	return PeriodTaxResult{
		FreePay:    code.MonthlyFreePay,
		TaxablePay: taxable,
		Tax:        RoundMoney(c.Tables.IncomeTax.MonthlyTaxOn(taxable)),
	}, nil
}

// Cumulative retaxes the year to date and returns the period delta.
// taxPaidYTD is the income tax recorded in the prior period's snapshot;
// a NEGATIVE value is valid (a carried refund), only non-finite inputs are
// rejected upstream at the float boundary.
func (c IncomeTaxCalculator) Cumulative(code TaxCodeDescriptor, grossPayYTD decimal.Decimal, period int, taxPaidYTD decimal.Decimal) (CumulativeTaxResult, error) {
	if err := ValidatePeriod(period); err != nil {
		return CumulativeTaxResult{}, err
	}
	if grossPayYTD.IsNegative() {
		return CumulativeTaxResult{}, &InvalidNumericInputError{
			Field: "gross_pay_ytd", Value: grossPayYTD.String(), Reason: "must not be negative",
		}
	}

	if code.Kind == KindNoTax {
		return CumulativeTaxResult{
			FreePayYTD:    grossPayYTD,
			TaxablePayYTD: decimal.Zero,
			TaxDueYTD:     decimal.Zero,
			TaxThisPeriod: RoundMoney(decimal.Zero.Sub(taxPaidYTD)),
		}, nil
	}

	// Free pay accrues with the period number. For K codes this is negative
	// and must stay negative: taxable pay YTD then exceeds gross pay YTD.
	freePayYTD := code.MonthlyFreePay.Mul(decimal.NewFromInt(int64(period)))
	taxableYTD := FloorPounds(max0(grossPayYTD.Sub(freePayYTD)))

	var dueYTD decimal.Decimal
	if rate, flat := code.FlatRate(c.Tables); flat {
		taxableYTD = FloorPounds(grossPayYTD)
		freePayYTD = decimal.Zero
		dueYTD = taxableYTD.Mul(rate)
	} else {
		dueYTD = c.Tables.IncomeTax.AnnualTaxOn(taxableYTD)
	}

	dueYTD = RoundMoney(dueYTD)
	return CumulativeTaxResult{
		FreePayYTD:    freePayYTD,
		TaxablePayYTD: taxableYTD,
		TaxDueYTD:     dueYTD,
		TaxThisPeriod: RoundMoney(dueYTD.Sub(taxPaidYTD)),
	}, nil
}

// ValidatePeriod checks a tax period number (monthly, 1-12).
func ValidatePeriod(period int) error {
	if period < 1 || period > 12 {
		return &InvalidNumericInputError{
			Field: "period", Value: period, Reason: "must be between 1 and 12",
		}
	}
	return nil
}

func (c IncomeTaxCalculator) validateGross(field string, gross decimal.Decimal) error {
	if gross.IsNegative() {
		return &InvalidNumericInputError{Field: field, Value: gross.String(), Reason: "must not be negative"}
	}
	if gross.GreaterThan(c.Tables.MonthlyGrossCeiling) {
		return &InvalidNumericInputError{
			Field: field, Value: gross.String(),
			Reason: "exceeds monthly gross sanity ceiling " + c.Tables.MonthlyGrossCeiling.String(),
		}
	}
	return nil
}
