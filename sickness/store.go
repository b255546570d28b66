/*
store.go - Persistence interfaces for the sickness engine's collaborators

PURPOSE:
  The entitlement engine is pure; these interfaces define what the
  orchestrating caller fetches before invoking it and persists after.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite
  - store/memory: in-memory for tests
*/
package sickness

import "context"

// RecordStore persists sickness records, work patterns, entitlement usage,
// and eligibility rules.
type RecordStore interface {
	// ListRecords returns all sickness records for an employee, ordered by
	// start date ascending.
	ListRecords(ctx context.Context, employeeID string) ([]SicknessRecord, error)

	// SaveRecord inserts or replaces a record (explicit correction).
	SaveRecord(ctx context.Context, record SicknessRecord) error

	// DeleteRecord removes a record. Returns ErrRecordNotFound if absent.
	DeleteRecord(ctx context.Context, recordID string) error

	// GetEntitlementUsage returns the stored entitlement state, or nil if
	// the employee has none yet.
	GetEntitlementUsage(ctx context.Context, employeeID string) (*EntitlementUsage, error)

	// SaveEntitlementUsage replaces the stored entitlement state.
	SaveEntitlementUsage(ctx context.Context, usage EntitlementUsage) error

	// ListWorkPattern returns the employee's weekly pattern (up to 7 entries).
	ListWorkPattern(ctx context.Context, employeeID string) (WorkPattern, error)

	// SaveWorkPattern replaces the employee's weekly pattern.
	SaveWorkPattern(ctx context.Context, employeeID string, pattern WorkPattern) error

	// ListRules returns the eligibility rules for a scheme.
	ListRules(ctx context.Context, schemeID string) ([]EligibilityRule, error)

	// SaveRule inserts or replaces an eligibility rule.
	SaveRule(ctx context.Context, rule EligibilityRule) error
}

// EmployeeStore persists employee identity records.
type EmployeeStore interface {
	SaveEmployee(ctx context.Context, emp Employee) error
	GetEmployee(ctx context.Context, id string) (*Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
}
