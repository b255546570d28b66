/*
handlers.go - HTTP handler implementations

PURPOSE:
  The orchestrating caller around the pure engines. Every settlement
  request follows the fetch -> calculate -> save contract: the handler
  fetches the prior snapshot from the store, invokes the settlement
  engine, and persists the result. The engines themselves never touch
  storage.

ERROR MAPPING:
  Engine validation errors (paye.IsClientError) map to 400 with the
  structured detail; not-found maps to 404; everything else is 500.

SEE ALSO:
  - server.go: route wiring
  - dto.go: request/response shapes
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/paye"
	"github.com/warp/payroll-engine/sickness"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is the combined persistence surface the handlers need.
type Store interface {
	paye.SnapshotStore
	sickness.RecordStore
	sickness.EmployeeStore
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  Store
	Tables map[string]paye.TaxYearTables

	// SchemeID selects the eligibility rule set for sickness summaries.
	SchemeID string

	// Resetter wipes all stored data. Nil disables /api/reset.
	Resetter interface {
		Reset(ctx context.Context) error
	}
}

// NewHandler creates a new handler with the given store and band tables.
func NewHandler(store Store, tables map[string]paye.TaxYearTables) *Handler {
	return &Handler{
		Store:    store,
		Tables:   tables,
		SchemeID: "default",
	}
}

// =============================================================================
// HEALTH + TABLES
// =============================================================================

// Health reports liveness.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Reset wipes all stored data. Dev only.
// POST /api/reset
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if h.Resetter == nil {
		writeError(w, http.StatusNotImplemented, "reset not supported by this store", nil)
		return
	}
	if err := h.Resetter.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "reset failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// GetTables returns the band tables for a tax year.
// GET /api/tables/{year}
func (h *Handler) GetTables(w http.ResponseWriter, r *http.Request) {
	year := chi.URLParam(r, "year")
	tables, ok := h.Tables[year]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown tax year", nil)
		return
	}
	writeJSON(w, http.StatusOK, tables)
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list employees", err)
		return
	}
	dtos := make([]EmployeeDTO, 0, len(employees))
	for _, emp := range employees {
		dtos = append(dtos, toEmployeeDTO(emp))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee creates an employee.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}
	hireDate, err := sickness.ParseDate(req.HireDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid hire_date", err)
		return
	}

	emp := sickness.Employee{ID: req.ID, Name: req.Name, NINumber: req.NINumber, HireDate: hireDate}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// GetEmployee returns one employee.
// GET /api/employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if sickness.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "employee not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

func toEmployeeDTO(emp sickness.Employee) EmployeeDTO {
	return EmployeeDTO{ID: emp.ID, Name: emp.Name, NINumber: emp.NINumber, HireDate: emp.HireDate.String()}
}

// =============================================================================
// SETTLEMENT HANDLERS
// =============================================================================

// SettlePeriod settles one pay period: fetch prior snapshot, calculate, save.
// POST /api/employees/{id}/settlements
func (h *Handler) SettlePeriod(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	employeeID := chi.URLParam(r, "id")

	var req SettleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	tables, ok := h.Tables[req.TaxYear]
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown tax year", fmt.Errorf("no band tables for %q", req.TaxYear))
		return
	}

	if _, err := h.Store.GetEmployee(ctx, employeeID); err != nil {
		if sickness.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "employee not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load employee", err)
		return
	}

	if err := paye.ValidatePeriod(req.Period); err != nil {
		writeError(w, http.StatusBadRequest, "invalid period", err)
		return
	}
	gross, err := paye.DecimalFromFloat("gross_pay", req.GrossPay)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid gross_pay", err)
		return
	}

	var pension paye.PensionSelection
	if req.PensionRate != nil {
		rate, err := paye.DecimalFromFloat("pension_rate", *req.PensionRate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid pension_rate", err)
			return
		}
		pension.Rate = &rate
	}
	pension.Tier = req.PensionTier

	// Fetch: the engine requires the stored snapshot of period-1.
	var prior *paye.YTDSnapshot
	if req.Period > 1 {
		prior, err = h.Store.GetPriorPeriod(ctx, employeeID, req.TaxYear, req.Period-1)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load prior snapshot", err)
			return
		}
		if prior == nil {
			writeError(w, http.StatusConflict, "prior period not settled",
				fmt.Errorf("period %d has no stored snapshot", req.Period-1))
			return
		}
	}

	engine := paye.SettlementEngine{Tables: tables}
	result, err := engine.Settle(paye.PeriodInput{
		EmployeeID:      employeeID,
		TaxYear:         req.TaxYear,
		Period:          req.Period,
		GrossPay:        gross,
		TaxCode:         req.TaxCode,
		NonCumulative:   req.NonCumulative,
		StudentLoanPlan: paye.StudentLoanPlan(req.StudentLoanPlan),
		Pension:         pension,
		Prior:           prior,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if paye.IsClientError(err) {
			status = http.StatusBadRequest
		}
		writeError(w, status, "settlement failed", err)
		return
	}

	if err := h.Store.SaveSettlement(ctx, result); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save settlement", err)
		return
	}
	writeJSON(w, http.StatusCreated, toSettlementDTO(result))
}

// ListSettlements returns all settled snapshots for a tax year.
// GET /api/employees/{id}/settlements?tax_year=2025-26
func (h *Handler) ListSettlements(w http.ResponseWriter, r *http.Request) {
	taxYear := r.URL.Query().Get("tax_year")
	if taxYear == "" {
		writeError(w, http.StatusBadRequest, "tax_year query parameter is required", nil)
		return
	}
	snaps, err := h.Store.ListSnapshots(r.Context(), chi.URLParam(r, "id"), taxYear)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list snapshots", err)
		return
	}
	dtos := make([]SnapshotDTO, 0, len(snaps))
	for _, s := range snaps {
		dtos = append(dtos, toSnapshotDTO(s))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// SICKNESS HANDLERS
// =============================================================================

// SicknessSummary computes the entitlement summary as of a reference date.
// GET /api/employees/{id}/sickness/summary?as_of=2025-08-01
func (h *Handler) SicknessSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	employeeID := chi.URLParam(r, "id")

	emp, err := h.Store.GetEmployee(ctx, employeeID)
	if err != nil {
		if sickness.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "employee not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load employee", err)
		return
	}

	var asOf sickness.Date
	if s := r.URL.Query().Get("as_of"); s != "" {
		if asOf, err = sickness.ParseDate(s); err != nil {
			writeError(w, http.StatusBadRequest, "invalid as_of date", err)
			return
		}
	}

	records, err := h.Store.ListRecords(ctx, employeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sickness records", err)
		return
	}
	pattern, err := h.Store.ListWorkPattern(ctx, employeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load work pattern", err)
		return
	}
	usage, err := h.Store.GetEntitlementUsage(ctx, employeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load entitlement usage", err)
		return
	}
	schemeID := h.SchemeID
	if usage != nil && usage.SchemeID != "" {
		schemeID = usage.SchemeID
	}
	rules, err := h.Store.ListRules(ctx, schemeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list eligibility rules", err)
		return
	}

	engine := sickness.EntitlementEngine{}
	summary, err := engine.Summary(sickness.EntitlementInput{
		Employee: *emp,
		Records:  records,
		Pattern:  pattern,
		Rules:    rules,
		Usage:    usage,
		AsOf:     asOf,
	})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "entitlement calculation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntitlementSummaryDTO(summary))
}

// ListSicknessRecords returns all sickness records for an employee.
// GET /api/employees/{id}/sickness/records
func (h *Handler) ListSicknessRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListRecords(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sickness records", err)
		return
	}
	dtos := make([]SicknessRecordDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, toSicknessRecordDTO(rec))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateSicknessRecord creates (or, with an existing ID, corrects) a record.
// POST /api/employees/{id}/sickness/records
func (h *Handler) CreateSicknessRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	employeeID := chi.URLParam(r, "id")

	var req CreateSicknessRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	start, err := sickness.ParseDate(req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start date", err)
		return
	}
	var end *sickness.Date
	if req.End != nil {
		e, err := sickness.ParseDate(*req.End)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid end date", err)
			return
		}
		if e.Before(start) {
			writeError(w, http.StatusBadRequest, "end before start", sickness.ErrInvalidDateRange)
			return
		}
		end = &e
	}

	record := sickness.SicknessRecord{
		ID:         req.ID,
		EmployeeID: employeeID,
		Start:      start,
		End:        end,
		Ongoing:    req.Ongoing,
		Certified:  req.Certified,
	}
	if record.ID == "" {
		// Only an explicit client-supplied ID may replace an existing record.
		record.ID = fmt.Sprintf("sick-%s-%d", employeeID, time.Now().UnixNano())
	}

	if req.TotalDays != nil {
		record.TotalDays = decimal.NewFromFloat(*req.TotalDays)
	} else {
		// Derive from the work pattern; an open-ended record counts its
		// start day only.
		pattern, err := h.Store.ListWorkPattern(ctx, employeeID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load work pattern", err)
			return
		}
		until := start
		if end != nil {
			until = *end
		}
		record.TotalDays = decimal.NewFromInt(int64(sickness.CountWorkingDays(start, until, pattern)))
	}

	if err := h.Store.SaveRecord(ctx, record); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save sickness record", err)
		return
	}
	writeJSON(w, http.StatusCreated, toSicknessRecordDTO(record))
}

// DeleteSicknessRecord removes a record.
// DELETE /api/employees/{id}/sickness/records/{recordID}
func (h *Handler) DeleteSicknessRecord(w http.ResponseWriter, r *http.Request) {
	err := h.Store.DeleteRecord(r.Context(), chi.URLParam(r, "recordID"))
	if err != nil {
		if sickness.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "sickness record not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete sickness record", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// WORK PATTERN HANDLERS
// =============================================================================

// GetWorkPattern returns the weekly work pattern.
// GET /api/employees/{id}/work-pattern
func (h *Handler) GetWorkPattern(w http.ResponseWriter, r *http.Request) {
	pattern, err := h.Store.ListWorkPattern(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load work pattern", err)
		return
	}
	dtos := make([]WorkDayDTO, 0, len(pattern))
	for _, wd := range pattern {
		dtos = append(dtos, WorkDayDTO{
			Weekday: wd.Weekday.String(),
			Working: wd.Working,
			Start:   wd.Start,
			End:     wd.End,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// PutWorkPattern replaces the weekly pattern. Duplicate weekdays are
// rejected outright; missing weekdays are completed as non-working (and the
// normalization reports them, so the stored pattern is always 7 entries).
// PUT /api/employees/{id}/work-pattern
func (h *Handler) PutWorkPattern(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	var req PutWorkPatternRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	pattern := make(sickness.WorkPattern, 0, len(req.Days))
	for _, d := range req.Days {
		weekday, err := parseWeekday(d.Weekday)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid weekday", err)
			return
		}
		pattern = append(pattern, sickness.WorkDay{
			Weekday: weekday,
			Working: d.Working,
			Start:   d.Start,
			End:     d.End,
		})
	}

	normalized, _, err := sickness.NormalizePattern(pattern)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid work pattern", err)
		return
	}

	if err := h.Store.SaveWorkPattern(r.Context(), employeeID, normalized); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save work pattern", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HELPERS
// =============================================================================

func parseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
