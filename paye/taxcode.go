/*
Package paye implements the payroll tax and contribution calculation engine.

PURPOSE:
  This package contains the pure calculators for one employee-period of UK
  payroll: income tax (cumulative and non-cumulative), National Insurance,
  student loan repayments, and pension contributions, orchestrated by the
  period settlement engine in settlement.go.

KEY CONCEPTS IN THIS FILE (taxcode.go):
  - TaxCodeDescriptor: the parsed, classified form of a tax code string
  - CodeKind: closed enum of calculation methods a code can select
  - ParseTaxCode: total function from string to descriptor-or-error

DESIGN PRINCIPLES:
  1. Purity: calculators consume explicit inputs and return results; no
     package-level mutable state, no I/O.
  2. Precision: decimal.Decimal everywhere money appears; defined rounding
     points only (see money.go).
  3. No silent substitution: every malformed input is a classified error.
     Regional codes (Scottish "S", Welsh "C" prefixes) are recognized and
     rejected, never approximated with the default band table.

USAGE:
  desc, err := paye.ParseTaxCode("1257L")
  if err != nil { ... }
  desc.MonthlyFreePay // 1048.25

SEE ALSO:
  - bands.go: versioned band tables consumed by the calculators
  - incometax.go: cumulative and non-cumulative tax calculation
  - settlement.go: per-period orchestration
*/
package paye

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CODE KIND - Closed enum of calculation methods
// =============================================================================

type CodeKind string

const (
	// KindStandard: digits encode a positive tax-free allowance (e.g. 1257L).
	KindStandard CodeKind = "standard"

	// KindNegative: K-prefixed codes encode a NEGATIVE allowance; free pay is
	// subtracted as a negative number, increasing taxable pay.
	KindNegative CodeKind = "negative"

	// Flat-rate codes: no allowance, a single rate on all taxable pay.
	KindBasicRateFlat      CodeKind = "basic_rate_flat"      // BR, 20%
	KindHigherRateFlat     CodeKind = "higher_rate_flat"     // D0, 40%
	KindAdditionalRateFlat CodeKind = "additional_rate_flat" // D1, 45%

	// KindNoTax: NT, unlimited allowance, tax is always zero.
	KindNoTax CodeKind = "no_tax"

	// KindZeroAllowance: 0T, zero allowance but FULL banded calculation
	// applies from the first pound (unlike BR's single flat rate).
	KindZeroAllowance CodeKind = "zero_allowance"
)

// =============================================================================
// TAX CODE DESCRIPTOR
// =============================================================================

// TaxCodeDescriptor is the parsed form of a tax code string.
type TaxCodeDescriptor struct {
	// Code is the canonical (trimmed, uppercased) code string.
	Code string

	Kind CodeKind

	// AnnualAllowance in whole pounds. Negative for K codes. Meaningless when
	// Unlimited is set (NT).
	AnnualAllowance decimal.Decimal

	// Unlimited marks the NT code: no finite allowance exists.
	Unlimited bool

	// MonthlyFreePay is the per-period free pay derived from the allowance
	// using the statutory "+9, divide by 12, ceiling to the penny" rule.
	// Negative for K codes. Zero for flat-rate and zero-allowance codes.
	MonthlyFreePay decimal.Decimal
}

// FlatRate returns the single rate for flat-rate kinds, looked up in the
// given tables, and whether this descriptor is flat-rate at all.
func (d TaxCodeDescriptor) FlatRate(t TaxYearTables) (decimal.Decimal, bool) {
	switch d.Kind {
	case KindBasicRateFlat:
		return t.IncomeTax.RateAt(0), true
	case KindHigherRateFlat:
		return t.IncomeTax.RateAt(1), true
	case KindAdditionalRateFlat:
		return t.IncomeTax.RateAt(2), true
	default:
		return decimal.Zero, false
	}
}

// =============================================================================
// PARSER
// =============================================================================

var (
	standardCodeRe = regexp.MustCompile(`^(\d+)([LMNT])$`)
	negativeCodeRe = regexp.MustCompile(`^K(\d+)$`)
	alnumRe        = regexp.MustCompile(`^[A-Z0-9]+$`)

	// Regional prefixes: recognized so they can be rejected by name.
	regionPrefixes = map[byte]string{
		'S': "Scotland",
		'C': "Wales",
	}
)

// ParseTaxCode classifies a tax code string into a TaxCodeDescriptor.
// Parsing is pure and total: every input yields either a descriptor or a
// classified error. Nothing is silently defaulted.
func ParseTaxCode(code string) (TaxCodeDescriptor, error) {
	canonical := strings.ToUpper(strings.TrimSpace(code))
	if canonical == "" || !alnumRe.MatchString(canonical) {
		return TaxCodeDescriptor{}, &UnrecognizedTaxCodeError{Code: code}
	}

	// Exact flat/special codes first. 0T must be checked before the standard
	// pattern: "0T" also matches ^\d+[LMNT]$ but selects banded calculation
	// from zero, not a standard allowance code.
	switch canonical {
	case "BR":
		return flatDescriptor(canonical, KindBasicRateFlat), nil
	case "D0":
		return flatDescriptor(canonical, KindHigherRateFlat), nil
	case "D1":
		return flatDescriptor(canonical, KindAdditionalRateFlat), nil
	case "NT":
		return TaxCodeDescriptor{Code: canonical, Kind: KindNoTax, Unlimited: true}, nil
	case "0T":
		return TaxCodeDescriptor{
			Code:            canonical,
			Kind:            KindZeroAllowance,
			AnnualAllowance: decimal.Zero,
			MonthlyFreePay:  decimal.Zero,
		}, nil
	}

	if m := standardCodeRe.FindStringSubmatch(canonical); m != nil {
		digits, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return TaxCodeDescriptor{}, &UnrecognizedTaxCodeError{Code: code}
		}
		allowance := decimal.NewFromInt(digits * 10)
		return TaxCodeDescriptor{
			Code:            canonical,
			Kind:            KindStandard,
			AnnualAllowance: allowance,
			MonthlyFreePay:  monthlyFreePay(digits),
		}, nil
	}

	if m := negativeCodeRe.FindStringSubmatch(canonical); m != nil {
		digits, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return TaxCodeDescriptor{}, &UnrecognizedTaxCodeError{Code: code}
		}
		allowance := decimal.NewFromInt(digits * 10)
		return TaxCodeDescriptor{
			Code:            canonical,
			Kind:            KindNegative,
			AnnualAllowance: allowance.Neg(),
			MonthlyFreePay:  monthlyFreePay(digits).Neg(),
		}, nil
	}

	// Regional prefix detection: a leading S or C whose remainder is itself a
	// valid code shape. Rejected by name, never mapped onto the default table.
	if region, ok := regionPrefixes[canonical[0]]; ok && len(canonical) > 1 {
		if _, err := ParseTaxCode(canonical[1:]); err == nil {
			return TaxCodeDescriptor{}, &UnsupportedTaxRegionError{Region: region, Code: canonical}
		}
	}

	return TaxCodeDescriptor{}, &UnrecognizedTaxCodeError{Code: code}
}

func flatDescriptor(code string, kind CodeKind) TaxCodeDescriptor {
	return TaxCodeDescriptor{
		Code:            code,
		Kind:            kind,
		AnnualAllowance: decimal.Zero,
		MonthlyFreePay:  decimal.Zero,
	}
}

// monthlyFreePay applies the statutory derivation: add 9 to the annual
// allowance (digits x 10), divide by 12, round UP to the nearest penny.
// For 1257: (12570+9)/12 = 1048.25.
func monthlyFreePay(digits int64) decimal.Decimal {
	return CeilMoney(decimal.NewFromInt(digits*10 + 9).Div(twelve))
}
