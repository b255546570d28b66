package sickness_test

import (
	"errors"
	"testing"
	"time"

	"github.com/warp/payroll-engine/sickness"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) sickness.Date {
	return sickness.NewDate(year, month, day)
}

func datePtr(year int, month time.Month, day int) *sickness.Date {
	d := sickness.NewDate(year, month, day)
	return &d
}

func weekdayPattern(days ...time.Weekday) sickness.WorkPattern {
	working := make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		working[d] = true
	}
	pattern := make(sickness.WorkPattern, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		pattern = append(pattern, sickness.WorkDay{Weekday: d, Working: working[d]})
	}
	return pattern
}

func monToFri() sickness.WorkPattern {
	return weekdayPattern(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)
}

// =============================================================================
// COUNTING TESTS
// =============================================================================

func TestCountWorkingDays_FullWeekAgainstPatterns(t *testing.T) {
	// GIVEN: Monday 2025-09-22 through Friday 2025-09-26
	// THEN: 3 days against Mon/Wed/Fri, 5 against Mon-Fri

	start := date(2025, time.September, 22) // a Monday
	end := date(2025, time.September, 26)   // the Friday

	mwf := weekdayPattern(time.Monday, time.Wednesday, time.Friday)
	if got := sickness.CountWorkingDays(start, end, mwf); got != 3 {
		t.Errorf("Expected 3 working days on Mon/Wed/Fri, got %d", got)
	}
	if got := sickness.CountWorkingDays(start, end, monToFri()); got != 5 {
		t.Errorf("Expected 5 working days on Mon-Fri, got %d", got)
	}
}

func TestCountWorkingDays_SingleDayBoundary(t *testing.T) {
	// A one-day range counts 1 when that weekday works, else 0.
	pattern := monToFri()

	monday := date(2025, time.September, 22)
	if got := sickness.CountWorkingDays(monday, monday, pattern); got != 1 {
		t.Errorf("Expected 1 for a working Monday, got %d", got)
	}

	saturday := date(2025, time.September, 27)
	if got := sickness.CountWorkingDays(saturday, saturday, pattern); got != 0 {
		t.Errorf("Expected 0 for a weekend day, got %d", got)
	}
}

func TestCountWorkingDays_SpansWeekend(t *testing.T) {
	// Friday through the next Monday is 2 working days on a Mon-Fri pattern.
	start := date(2025, time.September, 26)
	end := date(2025, time.September, 29)

	if got := sickness.CountWorkingDays(start, end, monToFri()); got != 2 {
		t.Errorf("Expected 2 working days Fri-Mon, got %d", got)
	}
}

func TestCountWorkingDays_DegradedInputsCountZero(t *testing.T) {
	pattern := monToFri()
	monday := date(2025, time.September, 22)

	if got := sickness.CountWorkingDays(sickness.Date{}, monday, pattern); got != 0 {
		t.Errorf("Zero start should count 0, got %d", got)
	}
	if got := sickness.CountWorkingDays(monday, monday.AddDays(-1), pattern); got != 0 {
		t.Errorf("End before start should count 0, got %d", got)
	}
	if got := sickness.CountWorkingDays(monday, monday, nil); got != 0 {
		t.Errorf("Empty pattern should count 0, got %d", got)
	}
}

func TestCountWorkingDays_MissingWeekdayDoesNotCount(t *testing.T) {
	// A pattern with no entry for Wednesday: the day simply does not count.
	partial := sickness.WorkPattern{
		{Weekday: time.Monday, Working: true},
		{Weekday: time.Tuesday, Working: true},
	}

	start := date(2025, time.September, 22)
	end := date(2025, time.September, 26)
	if got := sickness.CountWorkingDays(start, end, partial); got != 2 {
		t.Errorf("Expected 2 against partial pattern, got %d", got)
	}
}

// =============================================================================
// PATTERN NORMALIZATION TESTS
// =============================================================================

func TestWorkingDaysPerWeek(t *testing.T) {
	if got := sickness.WorkingDaysPerWeek(monToFri()); got != 5 {
		t.Errorf("Expected 5, got %d", got)
	}
	if got := sickness.WorkingDaysPerWeek(weekdayPattern(time.Monday, time.Wednesday, time.Friday)); got != 3 {
		t.Errorf("Expected 3, got %d", got)
	}
	if got := sickness.WorkingDaysPerWeek(nil); got != 0 {
		t.Errorf("Expected 0, got %d", got)
	}
}

func TestNormalizePattern_CompletesMissingWeekdays(t *testing.T) {
	partial := sickness.WorkPattern{
		{Weekday: time.Monday, Working: true},
		{Weekday: time.Friday, Working: true},
	}

	normalized, defaulted, err := sickness.NormalizePattern(partial)
	if err != nil {
		t.Fatalf("NormalizePattern failed: %v", err)
	}
	if len(normalized) != 7 {
		t.Errorf("Expected 7 entries, got %d", len(normalized))
	}
	if len(defaulted) != 5 {
		t.Errorf("Expected 5 defaulted weekdays, got %v", defaulted)
	}
	if sickness.WorkingDaysPerWeek(normalized) != 2 {
		t.Errorf("Defaulted days must be non-working")
	}
}

func TestNormalizePattern_DuplicateWeekdayRejected(t *testing.T) {
	dup := sickness.WorkPattern{
		{Weekday: time.Monday, Working: true},
		{Weekday: time.Monday, Working: false},
	}

	_, _, err := sickness.NormalizePattern(dup)
	if !errors.Is(err, sickness.ErrInvalidPattern) {
		t.Errorf("Expected ErrInvalidPattern, got %v", err)
	}

	var dupErr *sickness.DuplicateWeekdayError
	if !errors.As(err, &dupErr) {
		t.Fatalf("Expected DuplicateWeekdayError")
	}
	if dupErr.Weekday != time.Monday {
		t.Errorf("Expected Monday flagged, got %v", dupErr.Weekday)
	}
}
