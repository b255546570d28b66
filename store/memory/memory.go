// Package memory provides in-memory store implementations (for testing/dev).
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/payroll-engine/paye"
	"github.com/warp/payroll-engine/sickness"
)

// =============================================================================
// MEMORY STORE - In-memory implementation of all store interfaces
// =============================================================================

type Store struct {
	mu        sync.RWMutex
	snapshots map[snapshotKey]paye.YTDSnapshot
	records   map[string][]sickness.SicknessRecord // employeeID -> records
	usage     map[string]sickness.EntitlementUsage
	patterns  map[string]sickness.WorkPattern
	rules     map[string][]sickness.EligibilityRule // schemeID -> rules
	employees map[string]sickness.Employee
}

type snapshotKey struct {
	EmployeeID string
	TaxYear    string
	Period     int
}

func New() *Store {
	return &Store{
		snapshots: make(map[snapshotKey]paye.YTDSnapshot),
		records:   make(map[string][]sickness.SicknessRecord),
		usage:     make(map[string]sickness.EntitlementUsage),
		patterns:  make(map[string]sickness.WorkPattern),
		rules:     make(map[string][]sickness.EligibilityRule),
		employees: make(map[string]sickness.Employee),
	}
}

// =============================================================================
// paye.SnapshotStore
// =============================================================================

func (s *Store) GetPriorPeriod(_ context.Context, employeeID, taxYear string, period int) (*paye.YTDSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[snapshotKey{employeeID, taxYear, period}]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (s *Store) SaveSettlement(_ context.Context, result *paye.SettlementResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := result.Snapshot
	s.snapshots[snapshotKey{snap.EmployeeID, snap.TaxYear, snap.Period}] = snap
	return nil
}

func (s *Store) ListSnapshots(_ context.Context, employeeID, taxYear string) ([]paye.YTDSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []paye.YTDSnapshot
	for k, snap := range s.snapshots {
		if k.EmployeeID == employeeID && k.TaxYear == taxYear {
			out = append(out, snap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out, nil
}

// =============================================================================
// sickness.RecordStore
// =============================================================================

func (s *Store) ListRecords(_ context.Context, employeeID string) ([]sickness.SicknessRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]sickness.SicknessRecord, len(s.records[employeeID]))
	copy(records, s.records[employeeID])
	sort.Slice(records, func(i, j int) bool { return records[i].Start.Before(records[j].Start) })
	return records, nil
}

func (s *Store) SaveRecord(_ context.Context, record sickness.SicknessRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.records[record.EmployeeID]
	for i, existing := range records {
		if existing.ID == record.ID {
			records[i] = record
			return nil
		}
	}
	s.records[record.EmployeeID] = append(records, record)
	return nil
}

func (s *Store) DeleteRecord(_ context.Context, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for empID, records := range s.records {
		for i, r := range records {
			if r.ID == recordID {
				s.records[empID] = append(records[:i], records[i+1:]...)
				return nil
			}
		}
	}
	return sickness.ErrRecordNotFound
}

func (s *Store) GetEntitlementUsage(_ context.Context, employeeID string) (*sickness.EntitlementUsage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.usage[employeeID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *Store) SaveEntitlementUsage(_ context.Context, usage sickness.EntitlementUsage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usage[usage.EmployeeID] = usage
	return nil
}

func (s *Store) ListWorkPattern(_ context.Context, employeeID string) (sickness.WorkPattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pattern := make(sickness.WorkPattern, len(s.patterns[employeeID]))
	copy(pattern, s.patterns[employeeID])
	return pattern, nil
}

func (s *Store) SaveWorkPattern(_ context.Context, employeeID string, pattern sickness.WorkPattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patterns[employeeID] = pattern
	return nil
}

func (s *Store) ListRules(_ context.Context, schemeID string) ([]sickness.EligibilityRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rules := make([]sickness.EligibilityRule, len(s.rules[schemeID]))
	copy(rules, s.rules[schemeID])
	return rules, nil
}

func (s *Store) SaveRule(_ context.Context, rule sickness.EligibilityRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rules := s.rules[rule.SchemeID]
	for i, existing := range rules {
		if existing.ID == rule.ID {
			rules[i] = rule
			return nil
		}
	}
	s.rules[rule.SchemeID] = append(rules, rule)
	return nil
}

// =============================================================================
// sickness.EmployeeStore
// =============================================================================

func (s *Store) SaveEmployee(_ context.Context, emp sickness.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[emp.ID] = emp
	return nil
}

func (s *Store) GetEmployee(_ context.Context, id string) (*sickness.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	emp, ok := s.employees[id]
	if !ok {
		return nil, sickness.ErrEmployeeNotFound
	}
	return &emp, nil
}

func (s *Store) ListEmployees(_ context.Context) ([]sickness.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]sickness.Employee, 0, len(s.employees))
	for _, emp := range s.employees {
		out = append(out, emp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
