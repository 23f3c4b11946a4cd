/*
service.go - Orchestration around the validator

PURPOSE:
  The Service is the only component allowed to mutate the store. It owns:
  - the validate-then-apply sequence for vacation create/update/delete
  - the atomicity of "put vacation + put updated employee" (via Store.WithTx)
  - per-employee serialization so two concurrent requests cannot interleave
    their read-modify-write of the same ledger counter
  - roster and restriction CRUD with their uniqueness rules
  - cascade deletion (employee -> vacations + restrictions)

CONCURRENCY:
  Each mutating operation takes a mutex keyed by employee id before reading
  any state it will write back. There are no suspension points inside the
  critical section other than store calls.
*/
package vacation

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// Service orchestrates the engine against a transactional store.
type Service struct {
	store TxStore
	locks employeeLocks

	// rosterMu serializes roster-wide uniqueness checks (employee names,
	// restriction pairs) with the write they guard. Always acquired after a
	// per-employee lock, never before.
	rosterMu sync.Mutex

	// now is injectable for tests.
	now func() Date
}

func NewService(store TxStore) *Service {
	return &Service{
		store: store,
		locks: employeeLocks{m: make(map[EmployeeID]*sync.Mutex)},
		now:   Today,
	}
}

// WithClock replaces the service's notion of today. Reports and activity
// checks use it; tests pin it to a fixed date.
func (s *Service) WithClock(now func() Date) *Service {
	s.now = now
	return s
}

// employeeLocks hands out one mutex per employee id.
type employeeLocks struct {
	mu sync.Mutex
	m  map[EmployeeID]*sync.Mutex
}

func (l *employeeLocks) For(id EmployeeID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if m, ok := l.m[id]; ok {
		return m
	}
	m := &sync.Mutex{}
	l.m[id] = m
	return m
}

func persistErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// CreateEmployee validates and stores a new roster record. The entitlement
// defaults to DefaultEntitlement and the used-day counters start empty.
func (s *Service) CreateEmployee(ctx context.Context, e Employee) (*Employee, error) {
	if e.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "required"}
	}
	if e.HireDate.IsZero() {
		return nil, &ValidationError{Field: "hireDate", Reason: "required"}
	}
	if e.TotalDays == 0 {
		e.TotalDays = DefaultEntitlement
	}
	if e.TotalDays < 0 {
		return nil, &ValidationError{Field: "totalVacationDays", Reason: "must be positive"}
	}
	if e.ID == "" {
		e.ID = EmployeeID(uuid.NewString())
	}
	e.UsedDays = make(map[int]int)

	s.rosterMu.Lock()
	defer s.rosterMu.Unlock()

	if err := s.checkNameUnique(ctx, e.Name, ""); err != nil {
		return nil, err
	}
	if err := s.store.PutEmployee(ctx, e); err != nil {
		return nil, persistErr("create employee", err)
	}
	return &e, nil
}

// UpdateEmployee edits roster fields. The used-day counters are owned by the
// engine and always carried over from the stored record.
func (s *Service) UpdateEmployee(ctx context.Context, e Employee) (*Employee, error) {
	lock := s.locks.For(e.ID)
	lock.Lock()
	defer lock.Unlock()

	stored, err := s.store.Employee(ctx, e.ID)
	if err != nil {
		return nil, persistErr("load employee", err)
	}
	if stored == nil {
		return nil, ErrEmployeeNotFound
	}
	if e.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "required"}
	}
	if e.TotalDays <= 0 {
		return nil, &ValidationError{Field: "totalVacationDays", Reason: "must be positive"}
	}
	e.UsedDays = stored.UsedDays

	s.rosterMu.Lock()
	defer s.rosterMu.Unlock()

	if err := s.checkNameUnique(ctx, e.Name, e.ID); err != nil {
		return nil, err
	}
	if err := s.store.PutEmployee(ctx, e); err != nil {
		return nil, persistErr("update employee", err)
	}
	return &e, nil
}

// DeleteEmployee removes an employee and cascades to its vacations and to
// every restriction referencing it, in one transaction.
func (s *Service) DeleteEmployee(ctx context.Context, id EmployeeID) error {
	lock := s.locks.For(id)
	lock.Lock()
	defer lock.Unlock()

	stored, err := s.store.Employee(ctx, id)
	if err != nil {
		return persistErr("load employee", err)
	}
	if stored == nil {
		return ErrEmployeeNotFound
	}

	err = s.store.WithTx(ctx, func(tx Store) error {
		vacations, err := tx.VacationsByEmployee(ctx, id)
		if err != nil {
			return err
		}
		for _, v := range vacations {
			if err := tx.DeleteVacation(ctx, v.ID); err != nil {
				return err
			}
		}
		restrictions, err := tx.RestrictionsByEmployee(ctx, id)
		if err != nil {
			return err
		}
		for _, r := range restrictions {
			if err := tx.DeleteRestriction(ctx, r.ID); err != nil {
				return err
			}
		}
		return tx.DeleteEmployee(ctx, id)
	})
	return persistErr("delete employee", err)
}

func (s *Service) checkNameUnique(ctx context.Context, name string, self EmployeeID) error {
	employees, err := s.store.Employees(ctx)
	if err != nil {
		return persistErr("list employees", err)
	}
	for i := range employees {
		if employees[i].ID != self && SameName(employees[i].Name, name) {
			return ErrDuplicateName
		}
	}
	return nil
}

func (s *Service) Employees(ctx context.Context) ([]Employee, error) {
	employees, err := s.store.Employees(ctx)
	return employees, persistErr("list employees", err)
}

func (s *Service) Employee(ctx context.Context, id EmployeeID) (*Employee, error) {
	e, err := s.store.Employee(ctx, id)
	if err != nil {
		return nil, persistErr("load employee", err)
	}
	if e == nil {
		return nil, ErrEmployeeNotFound
	}
	return e, nil
}

// BalanceSummary is the per-year balance view for one employee.
type BalanceSummary struct {
	EmployeeID EmployeeID
	Year       int
	Total      int
	Used       int
	Balance    int
}

func (s *Service) EmployeeBalance(ctx context.Context, id EmployeeID, year int) (*BalanceSummary, error) {
	e, err := s.Employee(ctx, id)
	if err != nil {
		return nil, err
	}
	return &BalanceSummary{
		EmployeeID: id,
		Year:       year,
		Total:      e.TotalDays,
		Used:       e.UsedIn(year),
		Balance:    Balance(e, year),
	}, nil
}

// =============================================================================
// VACATIONS
// =============================================================================

// SubmitVacation validates a create (Request.ID empty) or in-place update
// (Request.ID set) and, when accepted, persists the record and the ledger
// delta atomically. A NeedsConfirmation decision performs no mutation; the
// caller may resubmit with Override set.
func (s *Service) SubmitVacation(ctx context.Context, req Request) (Decision, *Vacation, error) {
	lock := s.locks.For(req.EmployeeID)
	lock.Lock()
	defer lock.Unlock()

	in, err := s.buildInput(ctx, req)
	if err != nil {
		return Decision{}, nil, err
	}

	dec := Validate(*in)
	if dec.Verdict != VerdictAccepted {
		return dec, nil, nil
	}

	record := Vacation{
		ID:         req.ID,
		EmployeeID: req.EmployeeID,
		Year:       req.Year,
		Start:      req.Start,
		End:        req.End,
		Days:       dec.Days,
		Reason:     req.Reason,
		Status:     StatusPending,
	}
	if record.ID == "" {
		record.ID = VacationID(uuid.NewString())
	}
	if in.Replacing != nil {
		record.Status = in.Replacing.Status
	}
	if dec.Conflict != nil {
		record.ConflictOverride = true
		record.OverridePartner = dec.Conflict.PartnerID
	}

	emp := in.Employee
	err = s.store.WithTx(ctx, func(tx Store) error {
		if err := tx.PutVacation(ctx, record); err != nil {
			return err
		}
		s.applyDeltas(emp, in.Replacing, &record)
		return tx.PutEmployee(ctx, *emp)
	})
	if err != nil {
		return Decision{}, nil, persistErr("submit vacation", err)
	}
	return dec, &record, nil
}

// applyDeltas reverses the replaced record's contribution and charges the new
// one. Kept separate from the validator's single-delta view so that edits
// moving a request across years stay consistent in both counters.
func (s *Service) applyDeltas(e *Employee, replacing, record *Vacation) {
	if replacing != nil && replacing.Charged() {
		Apply(e, replacing.Year, -replacing.Days)
	}
	if record.Charged() {
		Apply(e, record.Year, record.Days)
	}
}

func (s *Service) buildInput(ctx context.Context, req Request) (*Input, error) {
	employees, err := s.store.Employees(ctx)
	if err != nil {
		return nil, persistErr("list employees", err)
	}
	names := make(map[EmployeeID]string, len(employees))
	var emp *Employee
	for i := range employees {
		names[employees[i].ID] = employees[i].Name
		if employees[i].ID == req.EmployeeID {
			emp = &employees[i]
		}
	}

	var replacing *Vacation
	if req.ID != "" {
		replacing, err = s.store.Vacation(ctx, req.ID)
		if err != nil {
			return nil, persistErr("load vacation", err)
		}
		if replacing == nil {
			return nil, ErrVacationNotFound
		}
	}

	restrictions, err := s.store.RestrictionsByEmployee(ctx, req.EmployeeID)
	if err != nil {
		return nil, persistErr("list restrictions", err)
	}
	vacations, err := s.store.Vacations(ctx)
	if err != nil {
		return nil, persistErr("list vacations", err)
	}
	holidays, err := s.store.Holidays(ctx)
	if err != nil {
		return nil, persistErr("list holidays", err)
	}

	years := []int{req.Year}
	if !req.Start.IsZero() && req.Start.Year() != req.Year {
		years = append(years, req.Start.Year())
	}
	if !req.End.IsZero() && req.End.Year() != req.Year {
		years = append(years, req.End.Year())
	}

	return &Input{
		Request:      req,
		Employee:     emp,
		Replacing:    replacing,
		Restrictions: restrictions,
		Vacations:    vacations,
		NonWorking:   NonWorkingDates(holidays, years...),
		Names:        names,
	}, nil
}

// DeleteVacation removes a request and reverses its ledger contribution in
// the same transaction.
func (s *Service) DeleteVacation(ctx context.Context, id VacationID) error {
	stored, err := s.store.Vacation(ctx, id)
	if err != nil {
		return persistErr("load vacation", err)
	}
	if stored == nil {
		return ErrVacationNotFound
	}

	lock := s.locks.For(stored.EmployeeID)
	lock.Lock()
	defer lock.Unlock()

	err = s.store.WithTx(ctx, func(tx Store) error {
		// Re-read under the lock: a concurrent delete may have won the race
		// between the lookup above and here, and reversing the delta twice
		// would drive the counter negative.
		current, err := tx.Vacation(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrVacationNotFound
		}
		if err := tx.DeleteVacation(ctx, id); err != nil {
			return err
		}
		if !current.Charged() {
			return nil
		}
		emp, err := tx.Employee(ctx, current.EmployeeID)
		if err != nil {
			return err
		}
		if emp == nil {
			return ErrEmployeeNotFound
		}
		Apply(emp, current.Year, -current.Days)
		return tx.PutEmployee(ctx, *emp)
	})
	if errors.Is(err, ErrVacationNotFound) {
		return ErrVacationNotFound
	}
	return persistErr("delete vacation", err)
}

// ApproveVacation confirms a pending request. The days were already held at
// creation time, so approval is a status transition only.
func (s *Service) ApproveVacation(ctx context.Context, id VacationID) (*Vacation, error) {
	return s.transition(ctx, id, StatusApproved)
}

// RejectVacation rejects a pending request and releases its held days.
func (s *Service) RejectVacation(ctx context.Context, id VacationID) (*Vacation, error) {
	return s.transition(ctx, id, StatusRejected)
}

func (s *Service) transition(ctx context.Context, id VacationID, to VacationStatus) (*Vacation, error) {
	stored, err := s.store.Vacation(ctx, id)
	if err != nil {
		return nil, persistErr("load vacation", err)
	}
	if stored == nil {
		return nil, ErrVacationNotFound
	}

	lock := s.locks.For(stored.EmployeeID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock; the record may have transitioned meanwhile.
	stored, err = s.store.Vacation(ctx, id)
	if err != nil {
		return nil, persistErr("load vacation", err)
	}
	if stored == nil {
		return nil, ErrVacationNotFound
	}
	if stored.Status.Terminal() {
		return nil, ErrTerminalStatus
	}

	record := *stored
	record.Status = to

	err = s.store.WithTx(ctx, func(tx Store) error {
		if err := tx.PutVacation(ctx, record); err != nil {
			return err
		}
		if to != StatusRejected {
			return nil
		}
		emp, err := tx.Employee(ctx, record.EmployeeID)
		if err != nil {
			return err
		}
		if emp == nil {
			return ErrEmployeeNotFound
		}
		Apply(emp, record.Year, -record.Days)
		return tx.PutEmployee(ctx, *emp)
	})
	if err != nil {
		return nil, persistErr("transition vacation", err)
	}
	return &record, nil
}

func (s *Service) Vacations(ctx context.Context) ([]Vacation, error) {
	vs, err := s.store.Vacations(ctx)
	return vs, persistErr("list vacations", err)
}

func (s *Service) Vacation(ctx context.Context, id VacationID) (*Vacation, error) {
	v, err := s.store.Vacation(ctx, id)
	if err != nil {
		return nil, persistErr("load vacation", err)
	}
	if v == nil {
		return nil, ErrVacationNotFound
	}
	return v, nil
}

// =============================================================================
// RESTRICTIONS
// =============================================================================

// SaveRestriction creates (ID empty) or edits a restriction. The pair must
// name two distinct, existing employees and be unique regardless of order.
func (s *Service) SaveRestriction(ctx context.Context, r Restriction) (*Restriction, error) {
	if r.Employee1 == "" || r.Employee2 == "" {
		return nil, &ValidationError{Field: "employees", Reason: "both employees are required"}
	}
	if r.Employee1 == r.Employee2 {
		return nil, ErrSelfRestriction
	}
	for _, id := range []EmployeeID{r.Employee1, r.Employee2} {
		e, err := s.store.Employee(ctx, id)
		if err != nil {
			return nil, persistErr("load employee", err)
		}
		if e == nil {
			return nil, ErrEmployeeNotFound
		}
	}

	s.rosterMu.Lock()
	defer s.rosterMu.Unlock()

	existing, err := s.store.Restrictions(ctx)
	if err != nil {
		return nil, persistErr("list restrictions", err)
	}
	for i := range existing {
		if existing[i].ID != r.ID && existing[i].SamePair(r.Employee1, r.Employee2) {
			return nil, ErrDuplicateRestriction
		}
	}

	if r.ID == "" {
		r.ID = RestrictionID(uuid.NewString())
	} else {
		stored := false
		for i := range existing {
			if existing[i].ID == r.ID {
				stored = true
				break
			}
		}
		if !stored {
			return nil, ErrRestrictionNotFound
		}
	}
	if r.Priority == "" {
		r.Priority = PriorityMedium
	}

	if err := s.store.PutRestriction(ctx, r); err != nil {
		return nil, persistErr("save restriction", err)
	}
	return &r, nil
}

func (s *Service) DeleteRestriction(ctx context.Context, id RestrictionID) error {
	existing, err := s.store.Restrictions(ctx)
	if err != nil {
		return persistErr("list restrictions", err)
	}
	found := false
	for i := range existing {
		if existing[i].ID == id {
			found = true
			break
		}
	}
	if !found {
		return ErrRestrictionNotFound
	}
	return persistErr("delete restriction", s.store.DeleteRestriction(ctx, id))
}

func (s *Service) Restrictions(ctx context.Context) ([]Restriction, error) {
	rs, err := s.store.Restrictions(ctx)
	return rs, persistErr("list restrictions", err)
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (s *Service) SaveHoliday(ctx context.Context, h Holiday) (*Holiday, error) {
	if h.Date.IsZero() {
		return nil, &ValidationError{Field: "date", Reason: "required"}
	}
	if h.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "required"}
	}
	if h.ID == "" {
		h.ID = HolidayID(uuid.NewString())
	}
	if err := s.store.PutHoliday(ctx, h); err != nil {
		return nil, persistErr("save holiday", err)
	}
	return &h, nil
}

func (s *Service) DeleteHoliday(ctx context.Context, id HolidayID) error {
	holidays, err := s.store.Holidays(ctx)
	if err != nil {
		return persistErr("list holidays", err)
	}
	for i := range holidays {
		if holidays[i].ID == id {
			return persistErr("delete holiday", s.store.DeleteHoliday(ctx, id))
		}
	}
	return ErrHolidayNotFound
}

func (s *Service) Holidays(ctx context.Context) ([]Holiday, error) {
	hs, err := s.store.Holidays(ctx)
	return hs, persistErr("list holidays", err)
}
