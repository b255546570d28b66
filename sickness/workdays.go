/*
workdays.go - Working-day counting against the weekly pattern

PURPOSE:
  Counts working days between two dates (inclusive of both endpoints)
  against the 7-day weekly pattern. This is the unit of account for all
  entitlement day-counting: a Mon-Wed-Fri employee "uses" 3 days for a
  full calendar week of absence.

DEGRADED INPUT:
  CountWorkingDays never fails. Zero dates, end before start, or an empty
  pattern all count zero; a weekday missing from the pattern simply does
  not count. Callers that want strictness run NormalizePattern first: it
  rejects duplicate weekdays and reports which weekdays it had to
  default-complete as non-working, so the defaulting is logged rather than
  silent.
*/
package sickness

import "time"

// CountWorkingDays counts the working days in [start, end] inclusive.
// A day counts when its weekday appears in the pattern with Working set.
func CountWorkingDays(start, end Date, pattern WorkPattern) int {
	if start.IsZero() || end.IsZero() || end.Before(start) || len(pattern) == 0 {
		return 0
	}

	working := make(map[time.Weekday]bool, len(pattern))
	for _, wd := range pattern {
		working[wd.Weekday] = wd.Working
	}

	count := 0
	for d := start; d.BeforeOrEqual(end); d = d.AddDays(1) {
		if working[d.Weekday()] {
			count++
		}
	}
	return count
}

// WorkingDaysPerWeek counts the weekdays marked working in the pattern.
func WorkingDaysPerWeek(pattern WorkPattern) int {
	seen := make(map[time.Weekday]bool, 7)
	count := 0
	for _, wd := range pattern {
		if wd.Working && !seen[wd.Weekday] {
			count++
		}
		seen[wd.Weekday] = true
	}
	return count
}

// NormalizePattern validates a pattern and completes it to exactly 7
// entries. Duplicate weekdays are an error. Missing weekdays are added as
// non-working and returned in defaulted, so the caller can log that the
// pattern was incomplete instead of silently treating absence as rest.
func NormalizePattern(pattern WorkPattern) (normalized WorkPattern, defaulted []time.Weekday, err error) {
	byDay := make(map[time.Weekday]WorkDay, 7)
	for _, wd := range pattern {
		if _, dup := byDay[wd.Weekday]; dup {
			return nil, nil, &DuplicateWeekdayError{Weekday: wd.Weekday}
		}
		byDay[wd.Weekday] = wd
	}

	normalized = make(WorkPattern, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		wd, ok := byDay[d]
		if !ok {
			wd = WorkDay{Weekday: d, Working: false}
			defaulted = append(defaulted, d)
		}
		normalized = append(normalized, wd)
	}
	return normalized, defaulted, nil
}
