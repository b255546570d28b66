package paye_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/paye"
)

func newLoanCalculator() paye.StudentLoanCalculator {
	return paye.StudentLoanCalculator{Plans: factory.Default2025_26().StudentLoans}
}

func TestStudentLoan_NoPlanMeansZero(t *testing.T) {
	calc := newLoanCalculator()

	repay, err := calc.Calculate("", dec("100000"))
	require.NoError(t, err)
	assert.True(t, repay.IsZero())
}

func TestStudentLoan_BelowThresholdMeansZero(t *testing.T) {
	// Plan 2 threshold is 28470; a salary below it repays nothing.
	calc := newLoanCalculator()

	repay, err := calc.Calculate(paye.StudentLoanPlan2, dec("28470"))
	require.NoError(t, err)
	assert.True(t, repay.IsZero(), "at-threshold salary repays nothing, got %s", repay)
}

func TestStudentLoan_Plan2AboveThreshold(t *testing.T) {
	// GIVEN: Plan 2, annual salary 40470 (12000 over the threshold)
	// THEN: 12000/12 x 9% = 90.00 per month

	calc := newLoanCalculator()

	repay, err := calc.Calculate(paye.StudentLoanPlan2, dec("40470"))
	require.NoError(t, err)
	assert.True(t, repay.Equal(dec("90.00")), "repayment = %s", repay)
}

func TestStudentLoan_PlansDifferOnlyByThreshold(t *testing.T) {
	// All three plans carry 9%; the same salary repays least on the plan
	// with the highest threshold.
	calc := newLoanCalculator()
	salary := dec("40000")

	p1, err := calc.Calculate(paye.StudentLoanPlan1, salary)
	require.NoError(t, err)
	p4, err := calc.Calculate(paye.StudentLoanPlan4, salary)
	require.NoError(t, err)

	assert.True(t, p1.GreaterThan(p4), "plan1 %s should exceed plan4 %s", p1, p4)
}

func TestStudentLoan_UnknownPlanRejected(t *testing.T) {
	calc := newLoanCalculator()

	_, err := calc.Calculate("plan9", dec("40000"))
	assert.ErrorIs(t, err, paye.ErrInvalidNumericInput)
}

func TestStudentLoan_NegativeSalaryRejected(t *testing.T) {
	calc := newLoanCalculator()

	_, err := calc.Calculate(paye.StudentLoanPlan1, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, paye.ErrInvalidNumericInput)
}
