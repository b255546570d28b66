package paye

import (
	"math"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Rounding conventions and storage conversion
// =============================================================================
//
// All calculation happens in decimal pounds. Three rounding points exist, and
// only three:
//
//   RoundMoney:  half-up to 2dp. Applied to every money figure handed back to
//                the caller (tax due, NI, repayments, contributions).
//   FloorPounds: truncate to a whole pound. Applied to taxable pay before
//                banding, per statutory convention.
//   CeilMoney:   ceiling to 2dp. Applied only to monthly free pay derivation
//                (the "+9, divide, round up" rule).
//
// Values crossing the storage boundary are integer pence (ToPence/FromPence).
// Nothing else in the engine rounds.

var (
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// RoundMoney rounds to 2 decimal places, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FloorPounds truncates to a whole pound. For negative values it still floors
// (toward negative infinity), matching the statutory treatment of taxable pay.
func FloorPounds(d decimal.Decimal) decimal.Decimal {
	return d.RoundFloor(0)
}

// CeilMoney rounds up to 2 decimal places.
func CeilMoney(d decimal.Decimal) decimal.Decimal {
	return d.RoundCeil(2)
}

// ToPence converts a pound amount to integer pence for storage.
// The amount is rounded to 2dp first so the conversion is exact.
func ToPence(d decimal.Decimal) int64 {
	return RoundMoney(d).Mul(hundred).IntPart()
}

// FromPence converts stored integer pence back to decimal pounds.
func FromPence(p int64) decimal.Decimal {
	return decimal.NewFromInt(p).Div(hundred)
}

// DecimalFromFloat converts a float64 input (e.g. a JSON number) into a
// decimal, rejecting NaN and infinities. This is the single place non-finite
// values can enter the engine, so it is the single place they are refused.
func DecimalFromFloat(field string, f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Decimal{}, &InvalidNumericInputError{
			Field:  field,
			Value:  f,
			Reason: "value must be finite",
		}
	}
	return decimal.NewFromFloat(f), nil
}

func max0(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
