/*
studentloan.go - Student loan repayment calculation

PURPOSE:
  Monthly student-loan deduction for a plan-keyed annual threshold:

    repayment = max(0, annualSalary - threshold) / 12 x rate, 2dp

  No plan selected means zero repayment - that is a normal state, not an
  error. An unknown plan string IS an error: the plan set is closed per
  table version.
*/
package paye

import (
	"github.com/shopspring/decimal"
)

// StudentLoanCalculator computes repayments against one year's plan tables.
type StudentLoanCalculator struct {
	Plans map[StudentLoanPlan]StudentLoanTable
}

// Calculate returns the monthly repayment for the plan. Plan "" yields zero.
func (c StudentLoanCalculator) Calculate(plan StudentLoanPlan, annualSalary decimal.Decimal) (decimal.Decimal, error) {
	if plan == "" {
		return decimal.Zero, nil
	}
	if annualSalary.IsNegative() {
		return decimal.Decimal{}, &InvalidNumericInputError{
			Field: "annual_salary", Value: annualSalary.String(), Reason: "must not be negative",
		}
	}

	table, ok := c.Plans[plan]
	if !ok {
		return decimal.Decimal{}, &InvalidNumericInputError{
			Field: "student_loan_plan", Value: string(plan), Reason: "unknown plan",
		}
	}

	liable := max0(annualSalary.Sub(table.AnnualThreshold))
	return RoundMoney(liable.Div(twelve).Mul(table.Rate)), nil
}
