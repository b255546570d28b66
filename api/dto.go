/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal engine model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Money crosses the API as JSON numbers in pounds. The handlers convert
  to decimal at the boundary (rejecting NaN/Inf per the engine's numeric
  validation) and format responses from decimals, so nothing inside the
  engine ever touches a float.

SEE ALSO:
  - handlers.go: uses these types
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/paye"
	"github.com/warp/payroll-engine/sickness"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	NINumber string `json:"ni_number,omitempty"`
	HireDate string `json:"hire_date"`
}

// CreateEmployeeRequest is the request to create an employee.
type CreateEmployeeRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	NINumber string `json:"ni_number"`
	HireDate string `json:"hire_date"`
}

// =============================================================================
// SETTLEMENT
// =============================================================================

// SettleRequest settles one pay period for an employee.
type SettleRequest struct {
	TaxYear         string  `json:"tax_year"`
	Period          int     `json:"period"`
	GrossPay        float64 `json:"gross_pay"`
	TaxCode         string  `json:"tax_code"`
	NonCumulative   bool    `json:"non_cumulative,omitempty"`
	StudentLoanPlan string  `json:"student_loan_plan,omitempty"`

	// PensionRate (fraction, e.g. 0.05) or PensionTier override the
	// salary-resolved tier; at most one should be set.
	PensionRate *float64 `json:"pension_rate,omitempty"`
	PensionTier *int     `json:"pension_tier,omitempty"`
}

// SettlementDTO is the settlement outcome returned to clients.
type SettlementDTO struct {
	EmployeeID string `json:"employee_id"`
	TaxYear    string `json:"tax_year"`
	Period     int    `json:"period"`
	TaxCode    string `json:"tax_code"`

	FreePay         string `json:"free_pay"`
	TaxablePay      string `json:"taxable_pay"`
	IncomeTax       string `json:"income_tax"`
	NIEmployee      string `json:"ni_employee"`
	NIEmployer      string `json:"ni_employer"`
	NIBandBelowPT   string `json:"ni_band_below_pt"`
	NIBandPTToUEL   string `json:"ni_band_pt_to_uel"`
	NIBandAboveUEL  string `json:"ni_band_above_uel"`
	StudentLoan     string `json:"student_loan"`
	PensionEmployee string `json:"pension_employee"`
	PensionEmployer string `json:"pension_employer"`
	PensionTier     int    `json:"pension_tier,omitempty"`

	YTD SnapshotDTO `json:"ytd"`
}

// SnapshotDTO is a YTD snapshot in API responses. Pence fields mirror the
// stored record; pound fields are for display.
type SnapshotDTO struct {
	Period         int    `json:"period"`
	GrossPence     int64  `json:"gross_pence"`
	TaxablePence   int64  `json:"taxable_pence"`
	IncomeTaxPence int64  `json:"income_tax_pence"`
	NIPence        int64  `json:"ni_pence"`
	Gross          string `json:"gross"`
	Taxable        string `json:"taxable"`
	IncomeTax      string `json:"income_tax"`
	NI             string `json:"ni"`
}

func toSettlementDTO(res *paye.SettlementResult) SettlementDTO {
	return SettlementDTO{
		EmployeeID:      res.EmployeeID,
		TaxYear:         res.TaxYear,
		Period:          res.Period,
		TaxCode:         res.TaxCode,
		FreePay:         money(res.FreePay),
		TaxablePay:      money(res.TaxablePay),
		IncomeTax:       money(res.IncomeTax),
		NIEmployee:      money(res.NIEmployee),
		NIEmployer:      money(res.NIEmployer),
		NIBandBelowPT:   money(res.NIBands.BelowPT),
		NIBandPTToUEL:   money(res.NIBands.PTToUEL),
		NIBandAboveUEL:  money(res.NIBands.AboveUEL),
		StudentLoan:     money(res.StudentLoan),
		PensionEmployee: money(res.PensionEmployee),
		PensionEmployer: money(res.PensionEmployer),
		PensionTier:     res.PensionTier,
		YTD:             toSnapshotDTO(res.Snapshot),
	}
}

func toSnapshotDTO(s paye.YTDSnapshot) SnapshotDTO {
	return SnapshotDTO{
		Period:         s.Period,
		GrossPence:     s.GrossPence,
		TaxablePence:   s.TaxablePence,
		IncomeTaxPence: s.IncomeTaxPence,
		NIPence:        s.NIPence,
		Gross:          money(s.GrossYTD()),
		Taxable:        money(s.TaxableYTD()),
		IncomeTax:      money(s.IncomeTaxYTD()),
		NI:             money(s.NIYTD()),
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// =============================================================================
// SICKNESS
// =============================================================================

// CreateSicknessRecordRequest creates or corrects a sickness record.
// TotalDays may be omitted; it is then derived from the work pattern.
type CreateSicknessRecordRequest struct {
	ID        string   `json:"id,omitempty"`
	Start     string   `json:"start"`
	End       *string  `json:"end,omitempty"`
	Ongoing   bool     `json:"ongoing,omitempty"`
	TotalDays *float64 `json:"total_days,omitempty"`
	Certified bool     `json:"certified,omitempty"`
}

// SicknessRecordDTO represents a sickness record in API responses.
type SicknessRecordDTO struct {
	ID        string  `json:"id"`
	Start     string  `json:"start"`
	End       *string `json:"end,omitempty"`
	Ongoing   bool    `json:"ongoing"`
	TotalDays string  `json:"total_days"`
	Certified bool    `json:"certified"`
}

func toSicknessRecordDTO(r sickness.SicknessRecord) SicknessRecordDTO {
	dto := SicknessRecordDTO{
		ID:        r.ID,
		Start:     r.Start.String(),
		Ongoing:   r.Ongoing,
		TotalDays: r.TotalDays.String(),
		Certified: r.Certified,
	}
	if r.End != nil {
		end := r.End.String()
		dto.End = &end
	}
	return dto
}

// BandAllocationDTO is usage split across the compensation bands.
type BandAllocationDTO struct {
	FullPay string `json:"full_pay"`
	HalfPay string `json:"half_pay"`
	SSP     string `json:"ssp"`
}

// EntitlementSummaryDTO is the point-in-time entitlement state.
type EntitlementSummaryDTO struct {
	EmployeeID  string `json:"employee_id"`
	AsOf        string `json:"as_of"`
	WindowStart string `json:"window_start"`

	ServiceMonths int    `json:"service_months"`
	RuleID        string `json:"rule_id"`
	RuleFellBack  bool   `json:"rule_fell_back,omitempty"`

	FullPayEntitled  string `json:"full_pay_entitled"`
	HalfPayEntitled  string `json:"half_pay_entitled"`
	FullPayRemaining string `json:"full_pay_remaining"`
	HalfPayRemaining string `json:"half_pay_remaining"`

	RollingUsed string            `json:"rolling_used"`
	Rolling     BandAllocationDTO `json:"rolling"`

	SSPEntitled        string `json:"ssp_entitled"`
	SSPRemaining       string `json:"ssp_remaining"`
	WorkingDaysPerWeek int    `json:"working_days_per_week"`

	CalendarYearUsed string            `json:"calendar_year_used"`
	CalendarYear     BandAllocationDTO `json:"calendar_year"`
}

func toEntitlementSummaryDTO(s *sickness.EntitlementSummary) EntitlementSummaryDTO {
	return EntitlementSummaryDTO{
		EmployeeID:         s.EmployeeID,
		AsOf:               s.AsOf.String(),
		WindowStart:        s.WindowStart.String(),
		ServiceMonths:      s.ServiceMonths,
		RuleID:             s.RuleID,
		RuleFellBack:       s.RuleFellBack,
		FullPayEntitled:    s.FullPayEntitled.String(),
		HalfPayEntitled:    s.HalfPayEntitled.String(),
		FullPayRemaining:   s.FullPayRemaining.String(),
		HalfPayRemaining:   s.HalfPayRemaining.String(),
		RollingUsed:        s.RollingUsed.String(),
		Rolling:            toBandAllocationDTO(s.Rolling),
		SSPEntitled:        s.SSPEntitled.String(),
		SSPRemaining:       s.SSPRemaining.String(),
		WorkingDaysPerWeek: s.WorkingDaysPerWeek,
		CalendarYearUsed:   s.CalendarYearUsed.String(),
		CalendarYear:       toBandAllocationDTO(s.CalendarYear),
	}
}

func toBandAllocationDTO(a sickness.BandAllocation) BandAllocationDTO {
	return BandAllocationDTO{
		FullPay: a.FullPay.String(),
		HalfPay: a.HalfPay.String(),
		SSP:     a.SSP.String(),
	}
}

// =============================================================================
// WORK PATTERN
// =============================================================================

// WorkDayDTO is one weekday of the pattern.
type WorkDayDTO struct {
	Weekday string  `json:"weekday"` // "Monday" ... "Sunday"
	Working bool    `json:"working"`
	Start   *string `json:"start,omitempty"`
	End     *string `json:"end,omitempty"`
}

// PutWorkPatternRequest replaces the weekly pattern.
type PutWorkPatternRequest struct {
	Days []WorkDayDTO `json:"days"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
