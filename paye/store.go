/*
store.go - Persistence interface for settlement snapshots

PURPOSE:
  Defines the contract between the settlement engine and whatever stores
  its snapshots. The engine NEVER touches this itself: the orchestrating
  caller fetches the prior snapshot, invokes Settle, and saves the result.
  Keeping the pure calculation separable from storage is what makes the
  engine testable without a database.

IMMUTABILITY:
  Snapshots are written once per (employee, tax year, period) and never
  updated. A re-settlement of the same period replaces the row wholesale;
  there is no partial update.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite
  - store/memory: in-memory for tests
*/
package paye

import "context"

// SnapshotStore persists YTD snapshots and settlement results.
type SnapshotStore interface {
	// GetPriorPeriod returns the snapshot for the given period, or nil if
	// none exists (which is the normal state before period 1 settles).
	GetPriorPeriod(ctx context.Context, employeeID, taxYear string, period int) (*YTDSnapshot, error)

	// SaveSettlement persists a settlement result and its snapshot.
	SaveSettlement(ctx context.Context, result *SettlementResult) error

	// ListSnapshots returns all snapshots for an employee's tax year,
	// ordered by period ascending.
	ListSnapshots(ctx context.Context, employeeID, taxYear string) ([]YTDSnapshot, error)
}
