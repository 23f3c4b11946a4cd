/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements vacation.Store and vacation.TxStore using SQLite. In production,
  the same patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  employees:    Roster records, with the per-year used-day counters stored as
                a JSON object column (year -> days)
  vacations:    Vacation requests, one row per record
  restrictions: Unordered employee pairs that should not overlap
  holidays:     Company calendar entries

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's single-writer model.
  WithTx uses a real database transaction; the dual write of a vacation row
  and its employee's counters commits or rolls back as a unit.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/vacations.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := vacation.NewService(store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - vacation/storage.go: Interface definitions
  - vacation/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/vacation-ledger/vacation"
)

// Store implements vacation.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ vacation.TxStore = (*Store)(nil)

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
	-- Roster
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		department TEXT,
		total_days INTEGER NOT NULL,
		used_days TEXT NOT NULL DEFAULT '{}',
		hire_date TEXT NOT NULL,
		termination_date TEXT
	);

	-- Vacation requests
	CREATE TABLE IF NOT EXISTS vacations (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		days INTEGER NOT NULL,
		reason TEXT,
		status TEXT NOT NULL,
		conflict_override INTEGER NOT NULL DEFAULT 0,
		override_partner TEXT
	);

	-- Unordered employee pairs that should not overlap
	CREATE TABLE IF NOT EXISTS restrictions (
		id TEXT PRIMARY KEY,
		employee1_id TEXT NOT NULL,
		employee2_id TEXT NOT NULL,
		reason TEXT,
		priority TEXT NOT NULL
	);

	-- Company calendar
	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		type TEXT,
		recurring INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_vacations_employee ON vacations(employee_id, start_date);
	CREATE INDEX IF NOT EXISTS idx_vacations_year ON vacations(year);
	CREATE INDEX IF NOT EXISTS idx_restrictions_pair ON restrictions(employee1_id, employee2_id);
	CREATE INDEX IF NOT EXISTS idx_holidays_date ON holidays(date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// querier abstracts *sql.DB and *sql.Tx so every read/write helper works both
// inside and outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullDate(d *vacation.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

// =============================================================================
// EMPLOYEES
// =============================================================================

const employeeColumns = `id, name, department, total_days, used_days, hire_date, termination_date`

func scanEmployee(row interface{ Scan(...any) error }) (*vacation.Employee, error) {
	var (
		e           vacation.Employee
		department  sql.NullString
		usedJSON    string
		hireDate    string
		termination sql.NullString
	)
	if err := row.Scan(&e.ID, &e.Name, &department, &e.TotalDays, &usedJSON, &hireDate, &termination); err != nil {
		return nil, err
	}
	e.Department = department.String

	used := make(map[int]int)
	if err := json.Unmarshal([]byte(usedJSON), &used); err != nil {
		return nil, fmt.Errorf("failed to decode used_days: %w", err)
	}
	e.UsedDays = used

	hd, err := vacation.ParseDate(hireDate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse hire_date: %w", err)
	}
	e.HireDate = hd

	if termination.Valid {
		td, err := vacation.ParseDate(termination.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse termination_date: %w", err)
		}
		e.TerminationDate = &td
	}
	return &e, nil
}

func getEmployees(ctx context.Context, q querier) ([]vacation.Employee, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var out []vacation.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func getEmployee(ctx context.Context, q querier, id vacation.EmployeeID) (*vacation.Employee, error) {
	row := q.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)
	e, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

func putEmployee(ctx context.Context, q querier, e vacation.Employee) error {
	usedJSON, err := json.Marshal(e.UsedDays)
	if err != nil {
		return fmt.Errorf("failed to encode used_days: %w", err)
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO employees (`+employeeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			department = excluded.department,
			total_days = excluded.total_days,
			used_days = excluded.used_days,
			hire_date = excluded.hire_date,
			termination_date = excluded.termination_date`,
		e.ID, e.Name, nullString(e.Department), e.TotalDays, string(usedJSON),
		e.HireDate.String(), nullDate(e.TerminationDate))
	if err != nil {
		return fmt.Errorf("failed to upsert employee: %w", err)
	}
	return nil
}

func deleteEmployee(ctx context.Context, q querier, id vacation.EmployeeID) error {
	_, err := q.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	return nil
}

func (s *Store) Employees(ctx context.Context) ([]vacation.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getEmployees(ctx, s.db)
}

func (s *Store) Employee(ctx context.Context, id vacation.EmployeeID) (*vacation.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getEmployee(ctx, s.db, id)
}

func (s *Store) PutEmployee(ctx context.Context, e vacation.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return putEmployee(ctx, s.db, e)
}

func (s *Store) DeleteEmployee(ctx context.Context, id vacation.EmployeeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteEmployee(ctx, s.db, id)
}

// =============================================================================
// VACATIONS
// =============================================================================

const vacationColumns = `id, employee_id, year, start_date, end_date, days, reason, status, conflict_override, override_partner`

func scanVacation(row interface{ Scan(...any) error }) (*vacation.Vacation, error) {
	var (
		v        vacation.Vacation
		start    string
		end      string
		reason   sql.NullString
		override int
		partner  sql.NullString
	)
	if err := row.Scan(&v.ID, &v.EmployeeID, &v.Year, &start, &end, &v.Days, &reason, &v.Status, &override, &partner); err != nil {
		return nil, err
	}
	sd, err := vacation.ParseDate(start)
	if err != nil {
		return nil, fmt.Errorf("failed to parse start_date: %w", err)
	}
	ed, err := vacation.ParseDate(end)
	if err != nil {
		return nil, fmt.Errorf("failed to parse end_date: %w", err)
	}
	v.Start = sd
	v.End = ed
	v.Reason = reason.String
	v.ConflictOverride = override != 0
	v.OverridePartner = vacation.EmployeeID(partner.String)
	return &v, nil
}

func queryVacations(ctx context.Context, q querier, where string, args ...any) ([]vacation.Vacation, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+vacationColumns+` FROM vacations `+where+` ORDER BY start_date, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query vacations: %w", err)
	}
	defer rows.Close()

	var out []vacation.Vacation
	for rows.Next() {
		v, err := scanVacation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func getVacation(ctx context.Context, q querier, id vacation.VacationID) (*vacation.Vacation, error) {
	row := q.QueryRowContext(ctx, `SELECT `+vacationColumns+` FROM vacations WHERE id = ?`, id)
	v, err := scanVacation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return v, err
}

func putVacation(ctx context.Context, q querier, v vacation.Vacation) error {
	override := 0
	if v.ConflictOverride {
		override = 1
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO vacations (`+vacationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_id = excluded.employee_id,
			year = excluded.year,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			days = excluded.days,
			reason = excluded.reason,
			status = excluded.status,
			conflict_override = excluded.conflict_override,
			override_partner = excluded.override_partner`,
		v.ID, v.EmployeeID, v.Year, v.Start.String(), v.End.String(), v.Days,
		nullString(v.Reason), v.Status, override, nullString(string(v.OverridePartner)))
	if err != nil {
		return fmt.Errorf("failed to upsert vacation: %w", err)
	}
	return nil
}

func deleteVacation(ctx context.Context, q querier, id vacation.VacationID) error {
	_, err := q.ExecContext(ctx, `DELETE FROM vacations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete vacation: %w", err)
	}
	return nil
}

func (s *Store) Vacations(ctx context.Context) ([]vacation.Vacation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryVacations(ctx, s.db, ``)
}

func (s *Store) Vacation(ctx context.Context, id vacation.VacationID) (*vacation.Vacation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getVacation(ctx, s.db, id)
}

func (s *Store) VacationsByEmployee(ctx context.Context, id vacation.EmployeeID) ([]vacation.Vacation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryVacations(ctx, s.db, `WHERE employee_id = ?`, id)
}

func (s *Store) VacationsByYear(ctx context.Context, year int) ([]vacation.Vacation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryVacations(ctx, s.db, `WHERE year = ?`, year)
}

func (s *Store) PutVacation(ctx context.Context, v vacation.Vacation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return putVacation(ctx, s.db, v)
}

func (s *Store) DeleteVacation(ctx context.Context, id vacation.VacationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteVacation(ctx, s.db, id)
}

// =============================================================================
// RESTRICTIONS
// =============================================================================

const restrictionColumns = `id, employee1_id, employee2_id, reason, priority`

func scanRestriction(row interface{ Scan(...any) error }) (*vacation.Restriction, error) {
	var (
		r      vacation.Restriction
		reason sql.NullString
	)
	if err := row.Scan(&r.ID, &r.Employee1, &r.Employee2, &reason, &r.Priority); err != nil {
		return nil, err
	}
	r.Reason = reason.String
	return &r, nil
}

func queryRestrictions(ctx context.Context, q querier, where string, args ...any) ([]vacation.Restriction, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+restrictionColumns+` FROM restrictions `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query restrictions: %w", err)
	}
	defer rows.Close()

	var out []vacation.Restriction
	for rows.Next() {
		r, err := scanRestriction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func putRestriction(ctx context.Context, q querier, r vacation.Restriction) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO restrictions (`+restrictionColumns+`)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee1_id = excluded.employee1_id,
			employee2_id = excluded.employee2_id,
			reason = excluded.reason,
			priority = excluded.priority`,
		r.ID, r.Employee1, r.Employee2, nullString(r.Reason), r.Priority)
	if err != nil {
		return fmt.Errorf("failed to upsert restriction: %w", err)
	}
	return nil
}

func deleteRestriction(ctx context.Context, q querier, id vacation.RestrictionID) error {
	_, err := q.ExecContext(ctx, `DELETE FROM restrictions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete restriction: %w", err)
	}
	return nil
}

func (s *Store) Restrictions(ctx context.Context) ([]vacation.Restriction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryRestrictions(ctx, s.db, ``)
}

func (s *Store) RestrictionsByEmployee(ctx context.Context, id vacation.EmployeeID) ([]vacation.Restriction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryRestrictions(ctx, s.db, `WHERE employee1_id = ? OR employee2_id = ?`, id, id)
}

func (s *Store) PutRestriction(ctx context.Context, r vacation.Restriction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return putRestriction(ctx, s.db, r)
}

func (s *Store) DeleteRestriction(ctx context.Context, id vacation.RestrictionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteRestriction(ctx, s.db, id)
}

// =============================================================================
// HOLIDAYS
// =============================================================================

const holidayColumns = `id, date, name, type, recurring`

func scanHoliday(row interface{ Scan(...any) error }) (*vacation.Holiday, error) {
	var (
		h         vacation.Holiday
		date      string
		kind      sql.NullString
		recurring int
	)
	if err := row.Scan(&h.ID, &date, &h.Name, &kind, &recurring); err != nil {
		return nil, err
	}
	d, err := vacation.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("failed to parse holiday date: %w", err)
	}
	h.Date = d
	h.Type = kind.String
	h.Recurring = recurring != 0
	return &h, nil
}

func getHolidays(ctx context.Context, q querier) ([]vacation.Holiday, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+holidayColumns+` FROM holidays ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var out []vacation.Holiday
	for rows.Next() {
		h, err := scanHoliday(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	return out, rows.Err()
}

func putHoliday(ctx context.Context, q querier, h vacation.Holiday) error {
	recurring := 0
	if h.Recurring {
		recurring = 1
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO holidays (`+holidayColumns+`)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			name = excluded.name,
			type = excluded.type,
			recurring = excluded.recurring`,
		h.ID, h.Date.String(), h.Name, nullString(h.Type), recurring)
	if err != nil {
		return fmt.Errorf("failed to upsert holiday: %w", err)
	}
	return nil
}

func deleteHoliday(ctx context.Context, q querier, id vacation.HolidayID) error {
	_, err := q.ExecContext(ctx, `DELETE FROM holidays WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	return nil
}

func (s *Store) Holidays(ctx context.Context) ([]vacation.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getHolidays(ctx, s.db)
}

func (s *Store) PutHoliday(ctx context.Context, h vacation.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return putHoliday(ctx, s.db, h)
}

func (s *Store) DeleteHoliday(ctx context.Context, id vacation.HolidayID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteHoliday(ctx, s.db, id)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx runs fn inside a database transaction. fn sees a Store bound to the
// transaction; any error rolls everything back.
func (s *Store) WithTx(ctx context.Context, fn func(vacation.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&txStore{tx: tx}); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// txStore is the transaction-scoped Store handed to WithTx callbacks.
type txStore struct {
	tx *sql.Tx
}

var _ vacation.Store = (*txStore)(nil)

func (t *txStore) Employees(ctx context.Context) ([]vacation.Employee, error) {
	return getEmployees(ctx, t.tx)
}

func (t *txStore) Employee(ctx context.Context, id vacation.EmployeeID) (*vacation.Employee, error) {
	return getEmployee(ctx, t.tx, id)
}

func (t *txStore) PutEmployee(ctx context.Context, e vacation.Employee) error {
	return putEmployee(ctx, t.tx, e)
}

func (t *txStore) DeleteEmployee(ctx context.Context, id vacation.EmployeeID) error {
	return deleteEmployee(ctx, t.tx, id)
}

func (t *txStore) Vacations(ctx context.Context) ([]vacation.Vacation, error) {
	return queryVacations(ctx, t.tx, ``)
}

func (t *txStore) Vacation(ctx context.Context, id vacation.VacationID) (*vacation.Vacation, error) {
	return getVacation(ctx, t.tx, id)
}

func (t *txStore) VacationsByEmployee(ctx context.Context, id vacation.EmployeeID) ([]vacation.Vacation, error) {
	return queryVacations(ctx, t.tx, `WHERE employee_id = ?`, id)
}

func (t *txStore) VacationsByYear(ctx context.Context, year int) ([]vacation.Vacation, error) {
	return queryVacations(ctx, t.tx, `WHERE year = ?`, year)
}

func (t *txStore) PutVacation(ctx context.Context, v vacation.Vacation) error {
	return putVacation(ctx, t.tx, v)
}

func (t *txStore) DeleteVacation(ctx context.Context, id vacation.VacationID) error {
	return deleteVacation(ctx, t.tx, id)
}

func (t *txStore) Restrictions(ctx context.Context) ([]vacation.Restriction, error) {
	return queryRestrictions(ctx, t.tx, ``)
}

func (t *txStore) RestrictionsByEmployee(ctx context.Context, id vacation.EmployeeID) ([]vacation.Restriction, error) {
	return queryRestrictions(ctx, t.tx, `WHERE employee1_id = ? OR employee2_id = ?`, id, id)
}

func (t *txStore) PutRestriction(ctx context.Context, r vacation.Restriction) error {
	return putRestriction(ctx, t.tx, r)
}

func (t *txStore) DeleteRestriction(ctx context.Context, id vacation.RestrictionID) error {
	return deleteRestriction(ctx, t.tx, id)
}

func (t *txStore) Holidays(ctx context.Context) ([]vacation.Holiday, error) {
	return getHolidays(ctx, t.tx)
}

func (t *txStore) PutHoliday(ctx context.Context, h vacation.Holiday) error {
	return putHoliday(ctx, t.tx, h)
}

func (t *txStore) DeleteHoliday(ctx context.Context, id vacation.HolidayID) error {
	return deleteHoliday(ctx, t.tx, id)
}
