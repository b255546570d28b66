package sickness_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/sickness"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func days(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func closedRecord(id string, start, end sickness.Date, totalDays int64) sickness.SicknessRecord {
	return sickness.SicknessRecord{
		ID:         id,
		EmployeeID: "emp-1",
		Start:      start,
		End:        &end,
		TotalDays:  days(totalDays),
	}
}

// seventeenDayRules grants 17 full-pay and 17 half-pay days regardless of
// service, so pattern arithmetic stays out of the allowance.
func seventeenDayRules() []sickness.EligibilityRule {
	return []sickness.EligibilityRule{
		{ID: "flat-17", SchemeID: "default", ServiceFrom: 0, ServiceTo: nil,
			ServiceUnit:   sickness.UnitMonths,
			FullPayAmount: 17, FullPayUnit: sickness.UnitDays,
			HalfPayAmount: 17, HalfPayUnit: sickness.UnitDays},
	}
}

func summaryInput(records []sickness.SicknessRecord, asOf sickness.Date) sickness.EntitlementInput {
	return sickness.EntitlementInput{
		Employee: sickness.Employee{
			ID:       "emp-1",
			Name:     "Test Employee",
			HireDate: date(2020, time.January, 6),
		},
		Records: records,
		Pattern: monToFri(),
		Rules:   seventeenDayRules(),
		AsOf:    asOf,
	}
}

func mustSummary(t *testing.T, in sickness.EntitlementInput) *sickness.EntitlementSummary {
	t.Helper()
	engine := sickness.EntitlementEngine{Logf: t.Logf}
	summary, err := engine.Summary(in)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	return summary
}

// =============================================================================
// ROLLING WINDOW TESTS
// =============================================================================

func TestSummary_RollingWindowAllocation(t *testing.T) {
	// GIVEN: 17/17 day allowances; a 3-day absence in June 2025 and an
	//         11-day absence in late July 2025
	// WHEN: Summarized as of 2025-08-01 (both in window, 14 used)
	// THEN: full_pay_remaining = 3
	// WHEN: Summarized as of 2025-07-14 (only the June absence, 3 used)
	// THEN: full_pay_remaining = 14

	records := []sickness.SicknessRecord{
		closedRecord("sick-jun", date(2025, time.June, 2), date(2025, time.June, 4), 3),
		closedRecord("sick-jul", date(2025, time.July, 17), date(2025, time.July, 31), 11),
	}

	august := mustSummary(t, summaryInput(records, date(2025, time.August, 1)))
	if !august.RollingUsed.Equal(days(14)) {
		t.Errorf("Expected 14 days used as of Aug 1, got %s", august.RollingUsed)
	}
	if !august.FullPayRemaining.Equal(days(3)) {
		t.Errorf("Expected full_pay_remaining 3, got %s", august.FullPayRemaining)
	}

	july := mustSummary(t, summaryInput(records, date(2025, time.July, 14)))
	if !july.RollingUsed.Equal(days(3)) {
		t.Errorf("Expected 3 days used as of Jul 14, got %s", july.RollingUsed)
	}
	if !july.FullPayRemaining.Equal(days(14)) {
		t.Errorf("Expected full_pay_remaining 14, got %s", july.FullPayRemaining)
	}
}

func TestSummary_WindowIsOneYearMinusOneDay(t *testing.T) {
	asOf := date(2025, time.August, 1)
	summary := mustSummary(t, summaryInput(nil, asOf))

	want := date(2024, time.August, 2)
	if !summary.WindowStart.Equal(want) {
		t.Errorf("Expected window start %s, got %s", want, summary.WindowStart)
	}
}

func TestSummary_RecordsAgeOutOfWindow(t *testing.T) {
	// A record just inside the window counts; one day later it is gone.
	records := []sickness.SicknessRecord{
		closedRecord("old", date(2024, time.August, 1), date(2024, time.August, 2), 2),
	}

	inWindow := mustSummary(t, summaryInput(records, date(2025, time.August, 1)))
	if !inWindow.RollingUsed.Equal(days(2)) {
		t.Errorf("Expected record in window, used = %s", inWindow.RollingUsed)
	}

	agedOut := mustSummary(t, summaryInput(records, date(2025, time.August, 3)))
	if !agedOut.RollingUsed.IsZero() {
		t.Errorf("Expected record aged out, used = %s", agedOut.RollingUsed)
	}
}

func TestSummary_AdvancingDateNeverDecreasesRemaining(t *testing.T) {
	// With a fixed record set, walking the reference date forward can only
	// hold or grow full-pay remaining as records age out.

	records := []sickness.SicknessRecord{
		closedRecord("a", date(2024, time.September, 2), date(2024, time.September, 13), 10),
		closedRecord("b", date(2025, time.January, 6), date(2025, time.January, 10), 5),
		closedRecord("c", date(2025, time.April, 7), date(2025, time.April, 9), 3),
	}

	prev := decimal.NewFromInt(-1)
	for asOf := date(2025, time.August, 1); asOf.Before(date(2026, time.June, 1)); asOf = asOf.AddDays(14) {
		summary := mustSummary(t, summaryInput(records, asOf))
		if summary.FullPayRemaining.LessThan(prev) {
			t.Fatalf("Remaining decreased from %s to %s at %s", prev, summary.FullPayRemaining, asOf)
		}
		prev = summary.FullPayRemaining
	}
}

// =============================================================================
// BAND ALLOCATION TESTS
// =============================================================================

func TestSummary_UsageSpillsAcrossBands(t *testing.T) {
	// GIVEN: 17 full + 17 half allowed; 40 days used in the window
	// THEN: 17 full, 17 half, 6 SSP; SSP remaining shrinks from 140 (28
	//       weeks x 5 working days) to 134.

	records := []sickness.SicknessRecord{
		closedRecord("long", date(2025, time.March, 3), date(2025, time.April, 25), 40),
	}

	summary := mustSummary(t, summaryInput(records, date(2025, time.August, 1)))

	if !summary.Rolling.FullPay.Equal(days(17)) {
		t.Errorf("Expected 17 full-pay days, got %s", summary.Rolling.FullPay)
	}
	if !summary.Rolling.HalfPay.Equal(days(17)) {
		t.Errorf("Expected 17 half-pay days, got %s", summary.Rolling.HalfPay)
	}
	if !summary.Rolling.SSP.Equal(days(6)) {
		t.Errorf("Expected 6 SSP days, got %s", summary.Rolling.SSP)
	}
	if !summary.SSPEntitled.Equal(days(140)) {
		t.Errorf("Expected SSP entitlement 140, got %s", summary.SSPEntitled)
	}
	if !summary.SSPRemaining.Equal(days(134)) {
		t.Errorf("Expected SSP remaining 134, got %s", summary.SSPRemaining)
	}
	if !summary.FullPayRemaining.IsZero() || !summary.HalfPayRemaining.IsZero() {
		t.Errorf("Expected exhausted full/half bands, got %s / %s",
			summary.FullPayRemaining, summary.HalfPayRemaining)
	}
}

func TestSummary_OpeningBalancesExtendAllowances(t *testing.T) {
	in := summaryInput(nil, date(2025, time.August, 1))
	in.Usage = &sickness.EntitlementUsage{
		EmployeeID:         "emp-1",
		SchemeID:           "default",
		OpeningFullPayDays: days(5),
		OpeningHalfPayDays: days(2),
	}

	summary := mustSummary(t, in)
	if !summary.FullPayEntitled.Equal(days(22)) {
		t.Errorf("Expected 17+5 full-pay entitled, got %s", summary.FullPayEntitled)
	}
	if !summary.HalfPayEntitled.Equal(days(19)) {
		t.Errorf("Expected 17+2 half-pay entitled, got %s", summary.HalfPayEntitled)
	}
}

func TestSummary_CalendarYearIsASeparateFigure(t *testing.T) {
	// A record from last November sits in the rolling window but NOT in the
	// current calendar year.
	records := []sickness.SicknessRecord{
		closedRecord("nov", date(2024, time.November, 4), date(2024, time.November, 8), 5),
		closedRecord("feb", date(2025, time.February, 3), date(2025, time.February, 5), 3),
	}

	summary := mustSummary(t, summaryInput(records, date(2025, time.August, 1)))
	if !summary.RollingUsed.Equal(days(8)) {
		t.Errorf("Expected rolling usage 8, got %s", summary.RollingUsed)
	}
	if !summary.CalendarYearUsed.Equal(days(3)) {
		t.Errorf("Expected calendar-year usage 3, got %s", summary.CalendarYearUsed)
	}
}

// =============================================================================
// ONGOING RECORD / ENTITLEMENT UNIT TESTS
// =============================================================================

func TestSummary_OngoingRecordReachesAsOf(t *testing.T) {
	// An ongoing record with no end date overlaps any window containing a
	// date from its start onward.
	ongoing := sickness.SicknessRecord{
		ID:         "open",
		EmployeeID: "emp-1",
		Start:      date(2025, time.July, 28),
		Ongoing:    true,
		TotalDays:  days(4),
	}

	summary := mustSummary(t, summaryInput([]sickness.SicknessRecord{ongoing}, date(2025, time.August, 1)))
	if !summary.RollingUsed.Equal(days(4)) {
		t.Errorf("Expected ongoing record counted, used = %s", summary.RollingUsed)
	}
}

func TestSummary_WeekUnitEntitlementScalesWithPattern(t *testing.T) {
	// 4 weeks of full pay on a 3-day week is 12 days, not 20.
	in := summaryInput(nil, date(2025, time.August, 1))
	in.Pattern = weekdayPattern(time.Monday, time.Wednesday, time.Friday)
	in.Rules = []sickness.EligibilityRule{
		{ID: "weeks", ServiceFrom: 0, ServiceUnit: sickness.UnitMonths,
			FullPayAmount: 4, FullPayUnit: sickness.UnitWeeks,
			HalfPayAmount: 4, HalfPayUnit: sickness.UnitWeeks},
	}

	summary := mustSummary(t, in)
	if !summary.FullPayEntitled.Equal(days(12)) {
		t.Errorf("Expected 12 days from 4 weeks x 3/week, got %s", summary.FullPayEntitled)
	}
	if !summary.SSPEntitled.Equal(days(84)) {
		t.Errorf("Expected SSP 28x3 = 84, got %s", summary.SSPEntitled)
	}
}

func TestSummary_NoRulesRejected(t *testing.T) {
	in := summaryInput(nil, date(2025, time.August, 1))
	in.Rules = nil

	engine := sickness.EntitlementEngine{Logf: t.Logf}
	if _, err := engine.Summary(in); err == nil {
		t.Error("Expected error with no rules")
	}
}

func TestRebuildUsage_PreservesOpeningBalances(t *testing.T) {
	in := summaryInput(nil, date(2025, time.August, 1))
	in.Usage = &sickness.EntitlementUsage{
		EmployeeID:         "emp-1",
		SchemeID:           "default",
		OpeningFullPayDays: days(5),
		OpeningBalanceDate: datePtr(2025, time.January, 1),
	}

	engine := sickness.EntitlementEngine{Logf: t.Logf}
	usage, err := engine.RebuildUsage(in)
	if err != nil {
		t.Fatalf("RebuildUsage failed: %v", err)
	}

	if !usage.OpeningFullPayDays.Equal(days(5)) {
		t.Errorf("Opening balance lost: %s", usage.OpeningFullPayDays)
	}
	if usage.SchemeID != "default" {
		t.Errorf("Scheme lost: %q", usage.SchemeID)
	}
	if usage.RuleID != "flat-17" {
		t.Errorf("Expected resolved rule recorded, got %q", usage.RuleID)
	}
	if !usage.FullPayDays.Equal(days(22)) {
		t.Errorf("Expected entitled days 22 recorded, got %s", usage.FullPayDays)
	}
}
