/*
settlement.go - Period settlement engine

PURPOSE:
  Orchestrates one employee-period: takes the prior period's STORED YTD
  snapshot plus this period's inputs, runs the income tax, NI, student
  loan, and pension calculators, and produces a SettlementResult holding
  both this-period figures and the superseding snapshot.

STATE CONTRACT:
  Periods run 1 -> 12, strictly increasing. Period N requires the stored
  snapshot of period N-1 (period 1 takes nil, treated as all-zero). The
  engine itself is stateless and re-entrant: the same (input, snapshot)
  pair always produces the same result. Persistence is the caller's job -
  fetch, settle, save. See the SnapshotStore interface in store.go.

FAILURE SEMANTICS:
  Every input is validated before any calculator runs. A malformed input
  returns an error and NO partial result, ever.

NUMERIC CONVENTION:
  Snapshots store integer pence. Calculation happens in decimal pounds;
  conversion happens exactly once, at snapshot construction.
*/
package paye

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// SNAPSHOT - Immutable cumulative state after a settled period
// =============================================================================

// YTDSnapshot is the cumulative record after a settled period. It is never
// mutated: the next period's settlement produces a superseding snapshot.
// All money fields are integer pence.
type YTDSnapshot struct {
	EmployeeID string
	TaxYear    string // table version label, e.g. "2025-26"
	Period     int    // 1-12

	GrossPence     int64
	TaxablePence   int64 // floored to whole pounds before conversion
	IncomeTaxPence int64 // may be negative (carried refund)
	NIPence        int64
}

// GrossYTD returns the cumulative gross pay in pounds.
func (s YTDSnapshot) GrossYTD() decimal.Decimal { return FromPence(s.GrossPence) }

// TaxableYTD returns the cumulative taxable pay in pounds.
func (s YTDSnapshot) TaxableYTD() decimal.Decimal { return FromPence(s.TaxablePence) }

// IncomeTaxYTD returns the cumulative income tax in pounds.
func (s YTDSnapshot) IncomeTaxYTD() decimal.Decimal { return FromPence(s.IncomeTaxPence) }

// NIYTD returns the cumulative employee NI in pounds.
func (s YTDSnapshot) NIYTD() decimal.Decimal { return FromPence(s.NIPence) }

// =============================================================================
// INPUT / RESULT
// =============================================================================

// PeriodInput is everything the engine needs for one settlement.
type PeriodInput struct {
	EmployeeID string
	TaxYear    string
	Period     int // 1-12

	GrossPay decimal.Decimal
	TaxCode  string

	// NonCumulative selects week-1-month-1 treatment (each period taxed in
	// isolation). Default is cumulative.
	NonCumulative bool

	// StudentLoanPlan is empty when no plan applies.
	StudentLoanPlan StudentLoanPlan

	Pension PensionSelection

	// Prior is the stored snapshot of period Period-1; nil only for period 1.
	Prior *YTDSnapshot
}

// SettlementResult holds this-period figures and the new snapshot.
type SettlementResult struct {
	EmployeeID string
	TaxYear    string
	Period     int
	TaxCode    string

	// This-period figures, pounds, 2dp.
	FreePay         decimal.Decimal
	TaxablePay      decimal.Decimal
	IncomeTax       decimal.Decimal // negative = refund
	NIEmployee      decimal.Decimal
	NIEmployer      decimal.Decimal
	NIBands         NIBandBreakdown
	StudentLoan     decimal.Decimal
	PensionEmployee decimal.Decimal
	PensionEmployer decimal.Decimal
	PensionTier     int

	// Snapshot supersedes the prior one and feeds period+1.
	Snapshot YTDSnapshot
}

// =============================================================================
// ENGINE
// =============================================================================

// SettlementEngine settles periods against one year's tables.
// Logf receives integrity warnings (see ni.go); nil means log.Printf.
type SettlementEngine struct {
	Tables TaxYearTables
	Logf   func(format string, args ...any)
}

// Settle computes one employee-period. Pure and deterministic: identical
// inputs yield an identical result.
func (e SettlementEngine) Settle(in PeriodInput) (*SettlementResult, error) {
	if err := e.validate(in); err != nil {
		return nil, err
	}

	code, err := ParseTaxCode(in.TaxCode)
	if err != nil {
		return nil, err
	}

	prior := in.Prior
	if prior == nil {
		prior = &YTDSnapshot{EmployeeID: in.EmployeeID, TaxYear: in.TaxYear, Period: 0}
	}

	incomeTax := IncomeTaxCalculator{Tables: e.Tables}

	var (
		freePay    decimal.Decimal
		taxable    decimal.Decimal
		tax        decimal.Decimal
		taxableYTD decimal.Decimal
	)
	if in.NonCumulative {
		res, err := incomeTax.NonCumulative(code, in.GrossPay)
		if err != nil {
			return nil, err
		}
		freePay = res.FreePay
		taxable = res.TaxablePay
		tax = res.Tax
		taxableYTD = prior.TaxableYTD().Add(taxable)
	} else {
		grossYTD := prior.GrossYTD().Add(in.GrossPay)
		res, err := incomeTax.Cumulative(code, grossYTD, in.Period, prior.IncomeTaxYTD())
		if err != nil {
			return nil, err
		}
		freePay = res.FreePayYTD
		taxable = res.TaxablePayYTD.Sub(prior.TaxableYTD())
		tax = res.TaxThisPeriod
		taxableYTD = res.TaxablePayYTD
	}

	ni, err := NICalculator{Table: e.Tables.NI, Logf: e.Logf}.Calculate(in.GrossPay)
	if err != nil {
		return nil, err
	}

	loan, err := StudentLoanCalculator{Plans: e.Tables.StudentLoans}.
		Calculate(in.StudentLoanPlan, in.GrossPay.Mul(twelve))
	if err != nil {
		return nil, err
	}

	pension, err := PensionCalculator{Table: e.Tables.Pension}.Calculate(in.GrossPay, in.Pension)
	if err != nil {
		return nil, err
	}

	snapshot := YTDSnapshot{
		EmployeeID:     in.EmployeeID,
		TaxYear:        in.TaxYear,
		Period:         in.Period,
		GrossPence:     prior.GrossPence + ToPence(in.GrossPay),
		TaxablePence:   ToPence(taxableYTD),
		IncomeTaxPence: prior.IncomeTaxPence + ToPence(tax),
		NIPence:        prior.NIPence + ToPence(ni.Employee),
	}

	return &SettlementResult{
		EmployeeID:      in.EmployeeID,
		TaxYear:         in.TaxYear,
		Period:          in.Period,
		TaxCode:         code.Code,
		FreePay:         freePay,
		TaxablePay:      taxable,
		IncomeTax:       tax,
		NIEmployee:      ni.Employee,
		NIEmployer:      ni.Employer,
		NIBands:         ni.Bands,
		StudentLoan:     loan,
		PensionEmployee: pension.Employee,
		PensionEmployer: pension.Employer,
		PensionTier:     pension.Tier,
		Snapshot:        snapshot,
	}, nil
}

func (e SettlementEngine) validate(in PeriodInput) error {
	if err := ValidatePeriod(in.Period); err != nil {
		return err
	}
	if in.GrossPay.IsNegative() {
		return &InvalidNumericInputError{
			Field: "gross_pay", Value: in.GrossPay.String(), Reason: "must not be negative",
		}
	}
	if in.GrossPay.GreaterThan(e.Tables.MonthlyGrossCeiling) {
		return &InvalidNumericInputError{
			Field: "gross_pay", Value: in.GrossPay.String(),
			Reason: "exceeds monthly gross sanity ceiling " + e.Tables.MonthlyGrossCeiling.String(),
		}
	}

	switch {
	case in.Period == 1:
		if in.Prior != nil {
			return &SnapshotMismatchError{WantPeriod: 0, GotPeriod: in.Prior.Period,
				Detail: "period 1 must not carry a prior snapshot"}
		}
	case in.Prior == nil:
		return &SnapshotMismatchError{WantPeriod: in.Period - 1, GotPeriod: 0,
			Detail: "prior snapshot required for periods after 1"}
	case in.Prior.Period != in.Period-1:
		return &SnapshotMismatchError{WantPeriod: in.Period - 1, GotPeriod: in.Prior.Period,
			Detail: "snapshot is not the immediately preceding period"}
	case in.Prior.TaxYear != in.TaxYear || in.Prior.EmployeeID != in.EmployeeID:
		return &SnapshotMismatchError{WantPeriod: in.Period - 1, GotPeriod: in.Prior.Period,
			Detail: "snapshot belongs to a different employee or tax year"}
	}
	return nil
}
