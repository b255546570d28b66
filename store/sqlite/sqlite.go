/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements all persistence interfaces using SQLite. In production, the
  same patterns apply to PostgreSQL - only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  paye.SnapshotStore:     YTD snapshots per (employee, tax year, period)
  sickness.RecordStore:   sickness records, work patterns, usage, rules
  sickness.EmployeeStore: employee identity records

SNAPSHOT SEMANTICS:
  Snapshots are written once per period and superseded, never patched:
  SaveSettlement replaces the row for its (employee, tax_year, period) key
  wholesale. The settlement engine guarantees period N was computed from
  the stored period N-1; re-settling later periods after a replacement is
  the caller's responsibility.

NUMERIC STORAGE:
  Money is INTEGER pence. Sickness day counts are TEXT decimals (half days
  are legitimate values and floats would drift).

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block, single writer at a time.

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil { log.Fatal(err) }
  defer store.Close()

SEE ALSO:
  - paye/store.go, sickness/store.go: interface definitions
  - store/memory: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/paye"
	"github.com/warp/payroll-engine/sickness"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Employees
	CREATE TABLE IF NOT EXISTS employees (
		id        TEXT PRIMARY KEY,
		name      TEXT NOT NULL,
		ni_number TEXT,
		hire_date TEXT NOT NULL
	);

	-- YTD snapshots, one row per settled period. Money in integer pence.
	CREATE TABLE IF NOT EXISTS ytd_snapshots (
		employee_id      TEXT NOT NULL,
		tax_year         TEXT NOT NULL,
		period           INTEGER NOT NULL,
		tax_code         TEXT NOT NULL,
		gross_pence      INTEGER NOT NULL,
		taxable_pence    INTEGER NOT NULL,
		income_tax_pence INTEGER NOT NULL,
		ni_pence         INTEGER NOT NULL,
		created_at       TEXT NOT NULL,
		PRIMARY KEY (employee_id, tax_year, period)
	);

	-- Sickness records. Day counts as TEXT decimals.
	CREATE TABLE IF NOT EXISTS sickness_records (
		id          TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		start_date  TEXT NOT NULL,
		end_date    TEXT,
		ongoing     INTEGER NOT NULL DEFAULT 0,
		total_days  TEXT NOT NULL,
		certified   INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_sickness_employee_start
		ON sickness_records(employee_id, start_date);

	-- Entitlement usage, replaced wholesale on recalculation.
	CREATE TABLE IF NOT EXISTS entitlement_usage (
		employee_id       TEXT PRIMARY KEY,
		scheme_id         TEXT NOT NULL,
		full_pay_days     TEXT NOT NULL,
		half_pay_days     TEXT NOT NULL,
		opening_full_days TEXT NOT NULL,
		opening_half_days TEXT NOT NULL,
		opening_date      TEXT,
		rule_id           TEXT NOT NULL,
		service_months    INTEGER NOT NULL
	);

	-- Weekly work pattern, one row per weekday.
	CREATE TABLE IF NOT EXISTS work_pattern_days (
		employee_id TEXT NOT NULL,
		weekday     INTEGER NOT NULL,
		working     INTEGER NOT NULL,
		start_time  TEXT,
		end_time    TEXT,
		PRIMARY KEY (employee_id, weekday)
	);

	-- Eligibility rules per scheme.
	CREATE TABLE IF NOT EXISTS eligibility_rules (
		id           TEXT PRIMARY KEY,
		scheme_id    TEXT NOT NULL,
		service_from INTEGER NOT NULL,
		service_to   INTEGER,
		service_unit TEXT NOT NULL,
		full_amount  INTEGER NOT NULL,
		full_unit    TEXT NOT NULL,
		half_amount  INTEGER NOT NULL,
		half_unit    TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_rules_scheme ON eligibility_rules(scheme_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Reset drops all rows. Dev/test only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, table := range []string{
		"employees", "ytd_snapshots", "sickness_records",
		"entitlement_usage", "work_pattern_days", "eligibility_rules",
	} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// paye.SnapshotStore
// =============================================================================

// GetPriorPeriod returns the stored snapshot for a period, or nil if absent.
func (s *Store) GetPriorPeriod(ctx context.Context, employeeID, taxYear string, period int) (*paye.YTDSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT employee_id, tax_year, period, gross_pence, taxable_pence, income_tax_pence, ni_pence
		FROM ytd_snapshots WHERE employee_id = ? AND tax_year = ? AND period = ?`,
		employeeID, taxYear, period)

	var snap paye.YTDSnapshot
	err := row.Scan(&snap.EmployeeID, &snap.TaxYear, &snap.Period,
		&snap.GrossPence, &snap.TaxablePence, &snap.IncomeTaxPence, &snap.NIPence)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return &snap, nil
}

// SaveSettlement persists the settlement's snapshot, replacing any previous
// row for the same period.
func (s *Store) SaveSettlement(ctx context.Context, result *paye.SettlementResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := result.Snapshot
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO ytd_snapshots
			(employee_id, tax_year, period, tax_code, gross_pence, taxable_pence, income_tax_pence, ni_pence, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.EmployeeID, snap.TaxYear, snap.Period, result.TaxCode,
		snap.GrossPence, snap.TaxablePence, snap.IncomeTaxPence, snap.NIPence,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save settlement: %w", err)
	}
	return nil
}

// ListSnapshots returns all snapshots for an employee's tax year, ordered by
// period ascending.
func (s *Store) ListSnapshots(ctx context.Context, employeeID, taxYear string) ([]paye.YTDSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, tax_year, period, gross_pence, taxable_pence, income_tax_pence, ni_pence
		FROM ytd_snapshots WHERE employee_id = ? AND tax_year = ?
		ORDER BY period ASC`, employeeID, taxYear)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []paye.YTDSnapshot
	for rows.Next() {
		var snap paye.YTDSnapshot
		if err := rows.Scan(&snap.EmployeeID, &snap.TaxYear, &snap.Period,
			&snap.GrossPence, &snap.TaxablePence, &snap.IncomeTaxPence, &snap.NIPence); err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// =============================================================================
// sickness.RecordStore
// =============================================================================

func (s *Store) ListRecords(ctx context.Context, employeeID string) ([]sickness.SicknessRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, start_date, end_date, ongoing, total_days, certified
		FROM sickness_records WHERE employee_id = ?
		ORDER BY start_date ASC`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sickness records: %w", err)
	}
	defer rows.Close()

	var records []sickness.SicknessRecord
	for rows.Next() {
		var (
			r         sickness.SicknessRecord
			startStr  string
			endStr    sql.NullString
			totalDays string
		)
		if err := rows.Scan(&r.ID, &r.EmployeeID, &startStr, &endStr, &r.Ongoing, &totalDays, &r.Certified); err != nil {
			return nil, err
		}
		if r.Start, err = sickness.ParseDate(startStr); err != nil {
			return nil, fmt.Errorf("record %s: bad start date: %w", r.ID, err)
		}
		if endStr.Valid {
			end, err := sickness.ParseDate(endStr.String)
			if err != nil {
				return nil, fmt.Errorf("record %s: bad end date: %w", r.ID, err)
			}
			r.End = &end
		}
		if r.TotalDays, err = decimal.NewFromString(totalDays); err != nil {
			return nil, fmt.Errorf("record %s: bad total days: %w", r.ID, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) SaveRecord(ctx context.Context, record sickness.SicknessRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var end any
	if record.End != nil {
		end = record.End.String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO sickness_records
			(id, employee_id, start_date, end_date, ongoing, total_days, certified)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.EmployeeID, record.Start.String(), end,
		record.Ongoing, record.TotalDays.String(), record.Certified)
	if err != nil {
		return fmt.Errorf("failed to save sickness record: %w", err)
	}
	return nil
}

func (s *Store) DeleteRecord(ctx context.Context, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM sickness_records WHERE id = ?`, recordID)
	if err != nil {
		return fmt.Errorf("failed to delete sickness record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sickness.ErrRecordNotFound
	}
	return nil
}

func (s *Store) GetEntitlementUsage(ctx context.Context, employeeID string) (*sickness.EntitlementUsage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT employee_id, scheme_id, full_pay_days, half_pay_days,
		       opening_full_days, opening_half_days, opening_date, rule_id, service_months
		FROM entitlement_usage WHERE employee_id = ?`, employeeID)

	var (
		u                              sickness.EntitlementUsage
		full, half, openFull, openHalf string
		openDate                       sql.NullString
	)
	err := row.Scan(&u.EmployeeID, &u.SchemeID, &full, &half, &openFull, &openHalf,
		&openDate, &u.RuleID, &u.ServiceMonths)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load entitlement usage: %w", err)
	}

	if u.FullPayDays, err = decimal.NewFromString(full); err != nil {
		return nil, err
	}
	if u.HalfPayDays, err = decimal.NewFromString(half); err != nil {
		return nil, err
	}
	if u.OpeningFullPayDays, err = decimal.NewFromString(openFull); err != nil {
		return nil, err
	}
	if u.OpeningHalfPayDays, err = decimal.NewFromString(openHalf); err != nil {
		return nil, err
	}
	if openDate.Valid {
		d, err := sickness.ParseDate(openDate.String)
		if err != nil {
			return nil, err
		}
		u.OpeningBalanceDate = &d
	}
	return &u, nil
}

func (s *Store) SaveEntitlementUsage(ctx context.Context, usage sickness.EntitlementUsage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var openDate any
	if usage.OpeningBalanceDate != nil {
		openDate = usage.OpeningBalanceDate.String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO entitlement_usage
			(employee_id, scheme_id, full_pay_days, half_pay_days,
			 opening_full_days, opening_half_days, opening_date, rule_id, service_months)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		usage.EmployeeID, usage.SchemeID,
		usage.FullPayDays.String(), usage.HalfPayDays.String(),
		usage.OpeningFullPayDays.String(), usage.OpeningHalfPayDays.String(),
		openDate, usage.RuleID, usage.ServiceMonths)
	if err != nil {
		return fmt.Errorf("failed to save entitlement usage: %w", err)
	}
	return nil
}

func (s *Store) ListWorkPattern(ctx context.Context, employeeID string) (sickness.WorkPattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT weekday, working, start_time, end_time
		FROM work_pattern_days WHERE employee_id = ?
		ORDER BY weekday ASC`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list work pattern: %w", err)
	}
	defer rows.Close()

	var pattern sickness.WorkPattern
	for rows.Next() {
		var (
			wd         sickness.WorkDay
			weekday    int
			start, end sql.NullString
		)
		if err := rows.Scan(&weekday, &wd.Working, &start, &end); err != nil {
			return nil, err
		}
		wd.Weekday = time.Weekday(weekday)
		if start.Valid {
			v := start.String
			wd.Start = &v
		}
		if end.Valid {
			v := end.String
			wd.End = &v
		}
		pattern = append(pattern, wd)
	}
	return pattern, rows.Err()
}

func (s *Store) SaveWorkPattern(ctx context.Context, employeeID string, pattern sickness.WorkPattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM work_pattern_days WHERE employee_id = ?`, employeeID); err != nil {
		return err
	}
	for _, wd := range pattern {
		var start, end any
		if wd.Start != nil {
			start = *wd.Start
		}
		if wd.End != nil {
			end = *wd.End
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO work_pattern_days (employee_id, weekday, working, start_time, end_time)
			VALUES (?, ?, ?, ?, ?)`,
			employeeID, int(wd.Weekday), wd.Working, start, end); err != nil {
			return fmt.Errorf("failed to save work pattern: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Store) ListRules(ctx context.Context, schemeID string) ([]sickness.EligibilityRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scheme_id, service_from, service_to, service_unit,
		       full_amount, full_unit, half_amount, half_unit
		FROM eligibility_rules WHERE scheme_id = ?
		ORDER BY service_from ASC`, schemeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligibility rules: %w", err)
	}
	defer rows.Close()

	var rules []sickness.EligibilityRule
	for rows.Next() {
		var (
			r         sickness.EligibilityRule
			serviceTo sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.SchemeID, &r.ServiceFrom, &serviceTo, &r.ServiceUnit,
			&r.FullPayAmount, &r.FullPayUnit, &r.HalfPayAmount, &r.HalfPayUnit); err != nil {
			return nil, err
		}
		if serviceTo.Valid {
			to := int(serviceTo.Int64)
			r.ServiceTo = &to
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

func (s *Store) SaveRule(ctx context.Context, rule sickness.EligibilityRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var serviceTo any
	if rule.ServiceTo != nil {
		serviceTo = *rule.ServiceTo
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO eligibility_rules
			(id, scheme_id, service_from, service_to, service_unit,
			 full_amount, full_unit, half_amount, half_unit)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID, rule.SchemeID, rule.ServiceFrom, serviceTo, rule.ServiceUnit,
		rule.FullPayAmount, rule.FullPayUnit, rule.HalfPayAmount, rule.HalfPayUnit)
	if err != nil {
		return fmt.Errorf("failed to save eligibility rule: %w", err)
	}
	return nil
}

// =============================================================================
// sickness.EmployeeStore
// =============================================================================

func (s *Store) SaveEmployee(ctx context.Context, emp sickness.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO employees (id, name, ni_number, hire_date)
		VALUES (?, ?, ?, ?)`,
		emp.ID, emp.Name, emp.NINumber, emp.HireDate.String())
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

func (s *Store) GetEmployee(ctx context.Context, id string) (*sickness.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, ni_number, hire_date FROM employees WHERE id = ?`, id)

	var (
		emp      sickness.Employee
		hireDate string
	)
	err := row.Scan(&emp.ID, &emp.Name, &emp.NINumber, &hireDate)
	if err == sql.ErrNoRows {
		return nil, sickness.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load employee: %w", err)
	}
	if emp.HireDate, err = sickness.ParseDate(hireDate); err != nil {
		return nil, fmt.Errorf("employee %s: bad hire date: %w", id, err)
	}
	return &emp, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]sickness.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, ni_number, hire_date FROM employees ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []sickness.Employee
	for rows.Next() {
		var (
			emp      sickness.Employee
			hireDate string
		)
		if err := rows.Scan(&emp.ID, &emp.Name, &emp.NINumber, &hireDate); err != nil {
			return nil, err
		}
		if emp.HireDate, err = sickness.ParseDate(hireDate); err != nil {
			return nil, fmt.Errorf("employee %s: bad hire date: %w", emp.ID, err)
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}
