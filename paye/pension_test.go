package paye_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/paye"
)

func newPensionCalculator() paye.PensionCalculator {
	return paye.PensionCalculator{Table: factory.Default2025_26().Pension}
}

func intPtr(n int) *int { return &n }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// =============================================================================
// TIER RESOLUTION TESTS
// =============================================================================

func TestPension_TierResolvedFromAnnualizedSalary(t *testing.T) {
	// GIVEN: Monthly gross 2000 -> annualized 24000, inside tier 2
	//        (13259 < 24000 <= 27288)
	// THEN: Employee rate 6.5%, contribution 130.00

	calc := newPensionCalculator()

	res, err := calc.Calculate(dec("2000"), paye.PensionSelection{})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Tier)
	assert.True(t, res.EmployeeRate.Equal(dec("0.065")))
	assert.True(t, res.Employee.Equal(dec("130.00")), "employee = %s", res.Employee)
}

func TestPension_TopTierIsUnbounded(t *testing.T) {
	calc := newPensionCalculator()

	res, err := calc.Calculate(dec("50000"), paye.PensionSelection{})
	require.NoError(t, err)

	assert.Equal(t, 6, res.Tier)
	assert.True(t, res.EmployeeRate.Equal(dec("0.125")))
}

func TestPension_EmployerRateIsFlat(t *testing.T) {
	// The employer pays the same 23.7% whichever tier the employee lands in.
	calc := newPensionCalculator()

	low, err := calc.Calculate(dec("1000"), paye.PensionSelection{})
	require.NoError(t, err)
	high, err := calc.Calculate(dec("5000"), paye.PensionSelection{})
	require.NoError(t, err)

	assert.True(t, low.EmployerRate.Equal(high.EmployerRate))
	assert.True(t, low.EmployerRate.Equal(dec("0.237")))
}

// =============================================================================
// OVERRIDE TESTS
// =============================================================================

func TestPension_ExplicitRateOverridesTiers(t *testing.T) {
	calc := newPensionCalculator()

	res, err := calc.Calculate(dec("2000"), paye.PensionSelection{Rate: decPtr("0.05")})
	require.NoError(t, err)

	assert.Equal(t, 0, res.Tier, "flat rate reports no tier")
	assert.True(t, res.Employee.Equal(dec("100.00")), "employee = %s", res.Employee)
}

func TestPension_ExplicitTierOverridesSalary(t *testing.T) {
	// A salary that would resolve to tier 2 can be pinned to tier 5.
	calc := newPensionCalculator()

	res, err := calc.Calculate(dec("2000"), paye.PensionSelection{Tier: intPtr(5)})
	require.NoError(t, err)

	assert.Equal(t, 5, res.Tier)
	assert.True(t, res.EmployeeRate.Equal(dec("0.107")))
}

func TestPension_TierOutOfRangeRejected(t *testing.T) {
	calc := newPensionCalculator()

	for _, tier := range []int{0, -1, 7} {
		_, err := calc.Calculate(dec("2000"), paye.PensionSelection{Tier: intPtr(tier)})
		assert.ErrorIs(t, err, paye.ErrInvalidNumericInput, "tier %d", tier)
	}
}

func TestPension_NegativeRateRejected(t *testing.T) {
	calc := newPensionCalculator()

	_, err := calc.Calculate(dec("2000"), paye.PensionSelection{Rate: decPtr("-0.05")})
	assert.ErrorIs(t, err, paye.ErrInvalidNumericInput)
}

func TestPension_EmptyTableNoOverride_ZeroResult(t *testing.T) {
	// No scheme configured and no override: zero contributions, no error.
	calc := paye.PensionCalculator{}

	res, err := calc.Calculate(dec("2000"), paye.PensionSelection{})
	require.NoError(t, err)
	assert.True(t, res.Employee.IsZero())
	assert.True(t, res.Employer.IsZero())
}
