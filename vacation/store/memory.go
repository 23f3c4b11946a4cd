// Package store provides an in-memory vacation.TxStore for tests and dev.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/vacation-ledger/vacation"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu           sync.RWMutex
	employees    map[vacation.EmployeeID]vacation.Employee
	vacations    map[vacation.VacationID]vacation.Vacation
	restrictions map[vacation.RestrictionID]vacation.Restriction
	holidays     map[vacation.HolidayID]vacation.Holiday
}

func NewMemory() *Memory {
	return &Memory{
		employees:    make(map[vacation.EmployeeID]vacation.Employee),
		vacations:    make(map[vacation.VacationID]vacation.Vacation),
		restrictions: make(map[vacation.RestrictionID]vacation.Restriction),
		holidays:     make(map[vacation.HolidayID]vacation.Holiday),
	}
}

var _ vacation.TxStore = (*Memory)(nil)

// copyEmployee deep-copies the used-day map so callers can mutate freely.
func copyEmployee(e vacation.Employee) vacation.Employee {
	used := make(map[int]int, len(e.UsedDays))
	for y, d := range e.UsedDays {
		used[y] = d
	}
	e.UsedDays = used
	if e.TerminationDate != nil {
		t := *e.TerminationDate
		e.TerminationDate = &t
	}
	return e
}

// -----------------------------------------------------------------------------
// Employees
// -----------------------------------------------------------------------------

func (m *Memory) Employees(_ context.Context) ([]vacation.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.employeesLocked(), nil
}

func (m *Memory) employeesLocked() []vacation.Employee {
	out := make([]vacation.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		out = append(out, copyEmployee(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (m *Memory) Employee(_ context.Context, id vacation.EmployeeID) (*vacation.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.employeeLocked(id)
}

func (m *Memory) employeeLocked(id vacation.EmployeeID) (*vacation.Employee, error) {
	e, ok := m.employees[id]
	if !ok {
		return nil, nil
	}
	c := copyEmployee(e)
	return &c, nil
}

func (m *Memory) PutEmployee(_ context.Context, e vacation.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = copyEmployee(e)
	return nil
}

func (m *Memory) DeleteEmployee(_ context.Context, id vacation.EmployeeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.employees, id)
	return nil
}

// -----------------------------------------------------------------------------
// Vacations
// -----------------------------------------------------------------------------

func sortVacations(out []vacation.Vacation) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
}

func (m *Memory) Vacations(_ context.Context) ([]vacation.Vacation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vacationsLocked(func(vacation.Vacation) bool { return true }), nil
}

func (m *Memory) vacationsLocked(keep func(vacation.Vacation) bool) []vacation.Vacation {
	var out []vacation.Vacation
	for _, v := range m.vacations {
		if keep(v) {
			out = append(out, v)
		}
	}
	sortVacations(out)
	return out
}

func (m *Memory) Vacation(_ context.Context, id vacation.VacationID) (*vacation.Vacation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vacationLocked(id)
}

func (m *Memory) vacationLocked(id vacation.VacationID) (*vacation.Vacation, error) {
	v, ok := m.vacations[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (m *Memory) VacationsByEmployee(_ context.Context, id vacation.EmployeeID) ([]vacation.Vacation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vacationsLocked(func(v vacation.Vacation) bool { return v.EmployeeID == id }), nil
}

func (m *Memory) VacationsByYear(_ context.Context, year int) ([]vacation.Vacation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vacationsLocked(func(v vacation.Vacation) bool { return v.Year == year }), nil
}

func (m *Memory) PutVacation(_ context.Context, v vacation.Vacation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vacations[v.ID] = v
	return nil
}

func (m *Memory) DeleteVacation(_ context.Context, id vacation.VacationID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vacations, id)
	return nil
}

// -----------------------------------------------------------------------------
// Restrictions
// -----------------------------------------------------------------------------

func (m *Memory) Restrictions(_ context.Context) ([]vacation.Restriction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.restrictionsLocked(func(vacation.Restriction) bool { return true }), nil
}

func (m *Memory) restrictionsLocked(keep func(vacation.Restriction) bool) []vacation.Restriction {
	var out []vacation.Restriction
	for _, r := range m.restrictions {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *Memory) RestrictionsByEmployee(_ context.Context, id vacation.EmployeeID) ([]vacation.Restriction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.restrictionsLocked(func(r vacation.Restriction) bool { return r.Involves(id) }), nil
}

func (m *Memory) PutRestriction(_ context.Context, r vacation.Restriction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restrictions[r.ID] = r
	return nil
}

func (m *Memory) DeleteRestriction(_ context.Context, id vacation.RestrictionID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.restrictions, id)
	return nil
}

// -----------------------------------------------------------------------------
// Holidays
// -----------------------------------------------------------------------------

func (m *Memory) Holidays(_ context.Context) ([]vacation.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.holidaysLocked(), nil
}

func (m *Memory) holidaysLocked() []vacation.Holiday {
	out := make([]vacation.Holiday, 0, len(m.holidays))
	for _, h := range m.holidays {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func (m *Memory) PutHoliday(_ context.Context, h vacation.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holidays[h.ID] = h
	return nil
}

func (m *Memory) DeleteHoliday(_ context.Context, id vacation.HolidayID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.holidays, id)
	return nil
}

// =============================================================================
// TRANSACTIONS - Snapshot + rollback
// =============================================================================

// WithTx executes fn within a transaction. For the memory store this is
// simulated with a full snapshot that is restored when fn fails.
func (m *Memory) WithTx(_ context.Context, fn func(vacation.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	if err := fn(&txView{parent: m}); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	employees    map[vacation.EmployeeID]vacation.Employee
	vacations    map[vacation.VacationID]vacation.Vacation
	restrictions map[vacation.RestrictionID]vacation.Restriction
	holidays     map[vacation.HolidayID]vacation.Holiday
}

func (m *Memory) snapshot() memorySnapshot {
	s := memorySnapshot{
		employees:    make(map[vacation.EmployeeID]vacation.Employee, len(m.employees)),
		vacations:    make(map[vacation.VacationID]vacation.Vacation, len(m.vacations)),
		restrictions: make(map[vacation.RestrictionID]vacation.Restriction, len(m.restrictions)),
		holidays:     make(map[vacation.HolidayID]vacation.Holiday, len(m.holidays)),
	}
	for k, v := range m.employees {
		s.employees[k] = copyEmployee(v)
	}
	for k, v := range m.vacations {
		s.vacations[k] = v
	}
	for k, v := range m.restrictions {
		s.restrictions[k] = v
	}
	for k, v := range m.holidays {
		s.holidays[k] = v
	}
	return s
}

func (m *Memory) restore(s memorySnapshot) {
	m.employees = s.employees
	m.vacations = s.vacations
	m.restrictions = s.restrictions
	m.holidays = s.holidays
}

// txView operates on the already-locked parent.
type txView struct {
	parent *Memory
}

var _ vacation.Store = (*txView)(nil)

func (t *txView) Employees(context.Context) ([]vacation.Employee, error) {
	return t.parent.employeesLocked(), nil
}

func (t *txView) Employee(_ context.Context, id vacation.EmployeeID) (*vacation.Employee, error) {
	return t.parent.employeeLocked(id)
}

func (t *txView) PutEmployee(_ context.Context, e vacation.Employee) error {
	t.parent.employees[e.ID] = copyEmployee(e)
	return nil
}

func (t *txView) DeleteEmployee(_ context.Context, id vacation.EmployeeID) error {
	delete(t.parent.employees, id)
	return nil
}

func (t *txView) Vacations(context.Context) ([]vacation.Vacation, error) {
	return t.parent.vacationsLocked(func(vacation.Vacation) bool { return true }), nil
}

func (t *txView) Vacation(_ context.Context, id vacation.VacationID) (*vacation.Vacation, error) {
	return t.parent.vacationLocked(id)
}

func (t *txView) VacationsByEmployee(_ context.Context, id vacation.EmployeeID) ([]vacation.Vacation, error) {
	return t.parent.vacationsLocked(func(v vacation.Vacation) bool { return v.EmployeeID == id }), nil
}

func (t *txView) VacationsByYear(_ context.Context, year int) ([]vacation.Vacation, error) {
	return t.parent.vacationsLocked(func(v vacation.Vacation) bool { return v.Year == year }), nil
}

func (t *txView) PutVacation(_ context.Context, v vacation.Vacation) error {
	t.parent.vacations[v.ID] = v
	return nil
}

func (t *txView) DeleteVacation(_ context.Context, id vacation.VacationID) error {
	delete(t.parent.vacations, id)
	return nil
}

func (t *txView) Restrictions(context.Context) ([]vacation.Restriction, error) {
	return t.parent.restrictionsLocked(func(vacation.Restriction) bool { return true }), nil
}

func (t *txView) RestrictionsByEmployee(_ context.Context, id vacation.EmployeeID) ([]vacation.Restriction, error) {
	return t.parent.restrictionsLocked(func(r vacation.Restriction) bool { return r.Involves(id) }), nil
}

func (t *txView) PutRestriction(_ context.Context, r vacation.Restriction) error {
	t.parent.restrictions[r.ID] = r
	return nil
}

func (t *txView) DeleteRestriction(_ context.Context, id vacation.RestrictionID) error {
	delete(t.parent.restrictions, id)
	return nil
}

func (t *txView) Holidays(context.Context) ([]vacation.Holiday, error) {
	return t.parent.holidaysLocked(), nil
}

func (t *txView) PutHoliday(_ context.Context, h vacation.Holiday) error {
	t.parent.holidays[h.ID] = h
	return nil
}

func (t *txView) DeleteHoliday(_ context.Context, id vacation.HolidayID) error {
	delete(t.parent.holidays, id)
	return nil
}
