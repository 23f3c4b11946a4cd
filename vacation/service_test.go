package vacation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/vacation-ledger/vacation"
	"github.com/warp/vacation-ledger/vacation/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestService(t *testing.T) *vacation.Service {
	t.Helper()
	return vacation.NewService(store.NewMemory()).
		WithClock(func() vacation.Date { return vacation.NewDate(2026, time.March, 2) })
}

func createEmployee(t *testing.T, svc *vacation.Service, name string) *vacation.Employee {
	t.Helper()
	e, err := svc.CreateEmployee(context.Background(), vacation.Employee{
		Name:     name,
		HireDate: vacation.NewDate(2024, time.January, 8),
	})
	require.NoError(t, err)
	return e
}

func submitWeek(t *testing.T, svc *vacation.Service, emp vacation.EmployeeID) *vacation.Vacation {
	t.Helper()
	dec, record, err := svc.SubmitVacation(context.Background(), vacation.Request{
		EmployeeID: emp,
		Year:       2026,
		Start:      vacation.NewDate(2026, time.March, 9),
		End:        vacation.NewDate(2026, time.March, 13),
	})
	require.NoError(t, err)
	require.Equal(t, vacation.VerdictAccepted, dec.Verdict)
	return record
}

// =============================================================================
// EMPLOYEE LIFECYCLE
// =============================================================================

func TestService_CreateEmployee_Defaults(t *testing.T) {
	svc := newTestService(t)

	e := createEmployee(t, svc, "Ana García")

	assert.NotEmpty(t, e.ID, "id is generated")
	assert.Equal(t, vacation.DefaultEntitlement, e.TotalDays)
	assert.Empty(t, e.UsedDays)
}

func TestService_CreateEmployee_DuplicateNameRejected(t *testing.T) {
	// Names are unique case-insensitively.
	svc := newTestService(t)
	createEmployee(t, svc, "Ana García")

	_, err := svc.CreateEmployee(context.Background(), vacation.Employee{
		Name:     "ana garcía",
		HireDate: vacation.NewDate(2025, time.June, 2),
	})
	assert.ErrorIs(t, err, vacation.ErrDuplicateName)
}

func TestService_UpdateEmployee_PreservesCounters(t *testing.T) {
	// GIVEN: An employee with charged days
	// WHEN: Editing roster fields with an empty counter map
	// THEN: The stored counters survive; the engine owns them

	svc := newTestService(t)
	e := createEmployee(t, svc, "Ana García")
	submitWeek(t, svc, e.ID)

	updated, err := svc.UpdateEmployee(context.Background(), vacation.Employee{
		ID:        e.ID,
		Name:      "Ana García-López",
		TotalDays: 25,
		HireDate:  e.HireDate,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.UsedIn(2026))
	assert.Equal(t, 25, updated.TotalDays)
}

func TestService_DeleteEmployee_Cascades(t *testing.T) {
	// GIVEN: An employee with a vacation and a restriction
	// WHEN: Deleting the employee
	// THEN: Both dependents disappear in the same transaction

	svc := newTestService(t)
	ctx := context.Background()
	ana := createEmployee(t, svc, "Ana")
	luis := createEmployee(t, svc, "Luis")
	record := submitWeek(t, svc, ana.ID)
	_, err := svc.SaveRestriction(ctx, vacation.Restriction{Employee1: ana.ID, Employee2: luis.ID})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEmployee(ctx, ana.ID))

	_, err = svc.Employee(ctx, ana.ID)
	assert.ErrorIs(t, err, vacation.ErrEmployeeNotFound)
	_, err = svc.Vacation(ctx, record.ID)
	assert.ErrorIs(t, err, vacation.ErrVacationNotFound)
	restrictions, err := svc.Restrictions(ctx)
	require.NoError(t, err)
	assert.Empty(t, restrictions)
}

// =============================================================================
// VACATION LIFECYCLE AND THE LEDGER INVARIANT
// =============================================================================

func assertInvariant(t *testing.T, svc *vacation.Service, emp vacation.EmployeeID) {
	t.Helper()
	ctx := context.Background()
	e, err := svc.Employee(ctx, emp)
	require.NoError(t, err)
	vacations, err := svc.Vacations(ctx)
	require.NoError(t, err)
	for year, used := range e.UsedDays {
		assert.Equal(t, vacation.UsedFromVacations(vacations, emp, year), used,
			"counter for %d must equal the sum of live records", year)
	}
}

func TestService_SubmitVacation_ChargesLedger(t *testing.T) {
	svc := newTestService(t)
	e := createEmployee(t, svc, "Ana")

	record := submitWeek(t, svc, e.ID)

	assert.Equal(t, vacation.StatusPending, record.Status, "new requests hold their days as pending")
	assert.Equal(t, 5, record.Days)

	balance, err := svc.EmployeeBalance(context.Background(), e.ID, 2026)
	require.NoError(t, err)
	assert.Equal(t, 5, balance.Used)
	assert.Equal(t, 17, balance.Balance)
	assertInvariant(t, svc, e.ID)
}

func TestService_SubmitVacation_EditAdjustsDelta(t *testing.T) {
	// GIVEN: A 5-day record
	// WHEN: Editing it down to 3 days
	// THEN: The counter moves by the difference only

	svc := newTestService(t)
	e := createEmployee(t, svc, "Ana")
	record := submitWeek(t, svc, e.ID)

	dec, edited, err := svc.SubmitVacation(context.Background(), vacation.Request{
		ID:         record.ID,
		EmployeeID: e.ID,
		Year:       2026,
		Start:      vacation.NewDate(2026, time.March, 9),
		End:        vacation.NewDate(2026, time.March, 11),
	})
	require.NoError(t, err)
	require.Equal(t, vacation.VerdictAccepted, dec.Verdict)
	assert.Equal(t, record.ID, edited.ID)

	balance, err := svc.EmployeeBalance(context.Background(), e.ID, 2026)
	require.NoError(t, err)
	assert.Equal(t, 3, balance.Used)
	assertInvariant(t, svc, e.ID)
}

func TestService_SubmitVacation_EditAcrossYears(t *testing.T) {
	// Moving a record into another year must release the old year's counter
	// and charge the new one.
	svc := newTestService(t)
	e := createEmployee(t, svc, "Ana")
	record := submitWeek(t, svc, e.ID)

	dec, _, err := svc.SubmitVacation(context.Background(), vacation.Request{
		ID:         record.ID,
		EmployeeID: e.ID,
		Year:       2027,
		Start:      vacation.NewDate(2027, time.March, 8),
		End:        vacation.NewDate(2027, time.March, 12),
	})
	require.NoError(t, err)
	require.Equal(t, vacation.VerdictAccepted, dec.Verdict)

	ctx := context.Background()
	b2026, err := svc.EmployeeBalance(ctx, e.ID, 2026)
	require.NoError(t, err)
	b2027, err := svc.EmployeeBalance(ctx, e.ID, 2027)
	require.NoError(t, err)
	assert.Equal(t, 0, b2026.Used)
	assert.Equal(t, 5, b2027.Used)
	assertInvariant(t, svc, e.ID)
}

func TestService_SubmitVacation_EditIntoFullYearRejected(t *testing.T) {
	// GIVEN: All 22 days of 2027 already held, plus a 5-day 2026 record
	// WHEN: Editing the 2026 record into 2027
	// THEN: Rejected; the 2026 days are no credit against 2027 and neither
	//       counter moves

	svc := newTestService(t)
	ctx := context.Background()
	e := createEmployee(t, svc, "Ana")

	dec, _, err := svc.SubmitVacation(ctx, vacation.Request{
		EmployeeID: e.ID, Year: 2027,
		Start: vacation.NewDate(2027, time.March, 1),
		End:   vacation.NewDate(2027, time.March, 30), // 22 working days
	})
	require.NoError(t, err)
	require.Equal(t, vacation.VerdictAccepted, dec.Verdict)
	require.Equal(t, 22, dec.Days)

	record := submitWeek(t, svc, e.ID)

	dec, _, err = svc.SubmitVacation(ctx, vacation.Request{
		ID:         record.ID,
		EmployeeID: e.ID, Year: 2027,
		Start: vacation.NewDate(2027, time.June, 7),
		End:   vacation.NewDate(2027, time.June, 11),
	})
	require.NoError(t, err)
	assert.Equal(t, vacation.VerdictRejected, dec.Verdict)
	assert.ErrorIs(t, dec.Err, vacation.ErrInsufficientBalance)

	b2026, err := svc.EmployeeBalance(ctx, e.ID, 2026)
	require.NoError(t, err)
	b2027, err := svc.EmployeeBalance(ctx, e.ID, 2027)
	require.NoError(t, err)
	assert.Equal(t, 5, b2026.Used)
	assert.Equal(t, 22, b2027.Used)
	assertInvariant(t, svc, e.ID)
}

func TestService_SubmitVacation_OverdraftLeavesNoTrace(t *testing.T) {
	// GIVEN: 19 of 22 days used
	// WHEN: Requesting 5 more
	// THEN: Rejected decision, nothing stored, counter untouched

	svc := newTestService(t)
	ctx := context.Background()
	e := createEmployee(t, svc, "Ana")
	submitWeek(t, svc, e.ID) // 5
	// 14 more days: Mar 16 - Apr 2 (three weeks minus a day)
	dec, _, err := svc.SubmitVacation(ctx, vacation.Request{
		EmployeeID: e.ID, Year: 2026,
		Start: vacation.NewDate(2026, time.March, 16),
		End:   vacation.NewDate(2026, time.April, 2),
	})
	require.NoError(t, err)
	require.Equal(t, vacation.VerdictAccepted, dec.Verdict)
	require.Equal(t, 14, dec.Days)

	dec, record, err := svc.SubmitVacation(ctx, vacation.Request{
		EmployeeID: e.ID, Year: 2026,
		Start: vacation.NewDate(2026, time.April, 6),
		End:   vacation.NewDate(2026, time.April, 10),
	})
	require.NoError(t, err)
	assert.Equal(t, vacation.VerdictRejected, dec.Verdict)
	assert.Nil(t, record)
	assert.ErrorIs(t, dec.Err, vacation.ErrInsufficientBalance)

	balance, err := svc.EmployeeBalance(ctx, e.ID, 2026)
	require.NoError(t, err)
	assert.Equal(t, 19, balance.Used)
	assertInvariant(t, svc, e.ID)
}

func TestService_SubmitVacation_ConflictThenOverride(t *testing.T) {
	// GIVEN: Restricted partners, one already off
	// WHEN: Submitting the overlapping window, then resubmitting with override
	// THEN: First call mutates nothing; the override is recorded on the record

	svc := newTestService(t)
	ctx := context.Background()
	ana := createEmployee(t, svc, "Ana")
	luis := createEmployee(t, svc, "Luis")
	_, err := svc.SaveRestriction(ctx, vacation.Restriction{Employee1: ana.ID, Employee2: luis.ID})
	require.NoError(t, err)
	submitWeek(t, svc, luis.ID)

	req := vacation.Request{
		EmployeeID: ana.ID, Year: 2026,
		Start: vacation.NewDate(2026, time.March, 11),
		End:   vacation.NewDate(2026, time.March, 17),
	}
	dec, record, err := svc.SubmitVacation(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, vacation.VerdictNeedsConfirmation, dec.Verdict)
	assert.Nil(t, record)
	assert.Equal(t, "Luis", dec.PartnerName)

	balance, err := svc.EmployeeBalance(ctx, ana.ID, 2026)
	require.NoError(t, err)
	assert.Equal(t, 0, balance.Used, "needs_confirmation must not charge")

	req.Override = true
	dec, record, err = svc.SubmitVacation(ctx, req)
	require.NoError(t, err)
	require.Equal(t, vacation.VerdictAccepted, dec.Verdict)
	assert.True(t, record.ConflictOverride)
	assert.Equal(t, luis.ID, record.OverridePartner)
	assertInvariant(t, svc, ana.ID)
}

func TestService_DeleteVacation_ReleasesDays(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	e := createEmployee(t, svc, "Ana")
	record := submitWeek(t, svc, e.ID)

	require.NoError(t, svc.DeleteVacation(ctx, record.ID))

	balance, err := svc.EmployeeBalance(ctx, e.ID, 2026)
	require.NoError(t, err)
	assert.Equal(t, 0, balance.Used)

	// Deleting again reports not found, the counter does not go negative.
	err = svc.DeleteVacation(ctx, record.ID)
	assert.ErrorIs(t, err, vacation.ErrVacationNotFound)
	balance, err = svc.EmployeeBalance(ctx, e.ID, 2026)
	require.NoError(t, err)
	assert.Equal(t, 0, balance.Used)
	assertInvariant(t, svc, e.ID)
}

// staleReadStore keeps answering top-level vacation lookups with the last
// value seen, mimicking a caller whose lookup raced a delete that committed
// in between.
type staleReadStore struct {
	vacation.TxStore
	cached map[vacation.VacationID]vacation.Vacation
}

func (s *staleReadStore) Vacation(ctx context.Context, id vacation.VacationID) (*vacation.Vacation, error) {
	v, err := s.TxStore.Vacation(ctx, id)
	if err != nil {
		return nil, err
	}
	if v != nil {
		s.cached[id] = *v
		return v, nil
	}
	if c, ok := s.cached[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func TestService_DeleteVacation_StaleLookupCannotReleaseTwice(t *testing.T) {
	// GIVEN: A deleter whose initial lookup still sees a record that another
	//        delete already removed
	// WHEN: It proceeds to delete
	// THEN: The transaction re-reads, reports not found, and the days are
	//       released exactly once

	stale := &staleReadStore{
		TxStore: store.NewMemory(),
		cached:  make(map[vacation.VacationID]vacation.Vacation),
	}
	svc := vacation.NewService(stale).
		WithClock(func() vacation.Date { return vacation.NewDate(2026, time.March, 2) })
	ctx := context.Background()
	e := createEmployee(t, svc, "Ana")
	record := submitWeek(t, svc, e.ID)

	require.NoError(t, svc.DeleteVacation(ctx, record.ID))

	err := svc.DeleteVacation(ctx, record.ID)
	assert.ErrorIs(t, err, vacation.ErrVacationNotFound)

	balance, err := svc.EmployeeBalance(ctx, e.ID, 2026)
	require.NoError(t, err)
	assert.Equal(t, 0, balance.Used, "the counter must not go negative")
	assertInvariant(t, svc, e.ID)
}

func TestService_ConcurrentDeletesReleaseOnce(t *testing.T) {
	// Two racing deletes of the same record: exactly one wins, the other
	// reports not found, and the counter ends at zero.
	svc := newTestService(t)
	ctx := context.Background()
	e := createEmployee(t, svc, "Ana")
	record := submitWeek(t, svc, e.ID)

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			errs <- svc.DeleteVacation(ctx, record.ID)
		}()
	}

	notFound := 0
	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			assert.ErrorIs(t, err, vacation.ErrVacationNotFound)
			notFound++
		}
	}
	assert.Equal(t, 1, notFound)

	balance, err := svc.EmployeeBalance(ctx, e.ID, 2026)
	require.NoError(t, err)
	assert.Equal(t, 0, balance.Used)
	assertInvariant(t, svc, e.ID)
}

// =============================================================================
// STATUS WORKFLOW
// =============================================================================

func TestService_ApproveVacation_NoSecondCharge(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	e := createEmployee(t, svc, "Ana")
	record := submitWeek(t, svc, e.ID)

	approved, err := svc.ApproveVacation(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, vacation.StatusApproved, approved.Status)

	balance, err := svc.EmployeeBalance(ctx, e.ID, 2026)
	require.NoError(t, err)
	assert.Equal(t, 5, balance.Used, "approval confirms the hold, it does not charge again")
	assertInvariant(t, svc, e.ID)
}

func TestService_RejectVacation_ReleasesDays(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	e := createEmployee(t, svc, "Ana")
	record := submitWeek(t, svc, e.ID)

	rejected, err := svc.RejectVacation(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, vacation.StatusRejected, rejected.Status)

	balance, err := svc.EmployeeBalance(ctx, e.ID, 2026)
	require.NoError(t, err)
	assert.Equal(t, 0, balance.Used)
	assertInvariant(t, svc, e.ID)
}

func TestService_TerminalStatusIsFinal(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	e := createEmployee(t, svc, "Ana")
	record := submitWeek(t, svc, e.ID)

	_, err := svc.RejectVacation(ctx, record.ID)
	require.NoError(t, err)

	_, err = svc.ApproveVacation(ctx, record.ID)
	assert.ErrorIs(t, err, vacation.ErrTerminalStatus)
	_, err = svc.RejectVacation(ctx, record.ID)
	assert.ErrorIs(t, err, vacation.ErrTerminalStatus,
		"a second reject must not release the days twice")

	balance, err := svc.EmployeeBalance(ctx, e.ID, 2026)
	require.NoError(t, err)
	assert.Equal(t, 0, balance.Used)
}

// =============================================================================
// RESTRICTION RULES
// =============================================================================

func TestService_SaveRestriction_Rules(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	ana := createEmployee(t, svc, "Ana")
	luis := createEmployee(t, svc, "Luis")

	_, err := svc.SaveRestriction(ctx, vacation.Restriction{Employee1: ana.ID, Employee2: ana.ID})
	assert.ErrorIs(t, err, vacation.ErrSelfRestriction)

	_, err = svc.SaveRestriction(ctx, vacation.Restriction{Employee1: ana.ID, Employee2: "ghost"})
	assert.ErrorIs(t, err, vacation.ErrEmployeeNotFound)

	saved, err := svc.SaveRestriction(ctx, vacation.Restriction{Employee1: ana.ID, Employee2: luis.ID})
	require.NoError(t, err)
	assert.Equal(t, vacation.PriorityMedium, saved.Priority, "priority defaults to medium")

	// Same pair in reverse order is a duplicate.
	_, err = svc.SaveRestriction(ctx, vacation.Restriction{Employee1: luis.ID, Employee2: ana.ID})
	assert.ErrorIs(t, err, vacation.ErrDuplicateRestriction)

	// Editing the existing restriction is not a duplicate of itself.
	saved.Priority = vacation.PriorityCritical
	updated, err := svc.SaveRestriction(ctx, *saved)
	require.NoError(t, err)
	assert.Equal(t, vacation.PriorityCritical, updated.Priority)
}

// =============================================================================
// ATOMICITY
// =============================================================================

// flakyStore wraps a TxStore and fails employee writes inside transactions
// after a set number of successes.
type flakyStore struct {
	vacation.TxStore
	allowed int
}

type flakyTx struct {
	vacation.Store
	parent *flakyStore
}

func (f *flakyStore) WithTx(ctx context.Context, fn func(vacation.Store) error) error {
	return f.TxStore.WithTx(ctx, func(tx vacation.Store) error {
		return fn(&flakyTx{Store: tx, parent: f})
	})
}

func (f *flakyTx) PutEmployee(ctx context.Context, e vacation.Employee) error {
	if f.parent.allowed <= 0 {
		return errors.New("disk full")
	}
	f.parent.allowed--
	return f.Store.PutEmployee(ctx, e)
}

func TestService_SubmitVacation_RollsBackOnStoreFailure(t *testing.T) {
	// GIVEN: A store whose employee write fails mid-transaction
	// WHEN: Submitting a vacation
	// THEN: The vacation row written first is rolled back too

	flaky := &flakyStore{TxStore: store.NewMemory()}
	svc := vacation.NewService(flaky)
	e, err := svc.CreateEmployee(context.Background(), vacation.Employee{
		Name: "Ana", HireDate: vacation.NewDate(2024, time.January, 8),
	})
	require.NoError(t, err)

	_, _, err = svc.SubmitVacation(context.Background(), vacation.Request{
		EmployeeID: e.ID, Year: 2026,
		Start: vacation.NewDate(2026, time.March, 9),
		End:   vacation.NewDate(2026, time.March, 13),
	})
	require.Error(t, err)
	var pe *vacation.PersistenceError
	assert.ErrorAs(t, err, &pe)

	vacations, err := svc.Vacations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, vacations, "the vacation write must not survive the failed dual write")

	stored, err := svc.Employee(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.UsedIn(2026))
}

func TestService_ConcurrentSubmissionsCannotOverbook(t *testing.T) {
	// GIVEN: 22 days of entitlement and two racing 12-day requests
	// WHEN: Both run concurrently
	// THEN: Exactly one is accepted; the counter never exceeds the entitlement

	svc := newTestService(t)
	ctx := context.Background()
	e := createEmployee(t, svc, "Ana")

	requests := []vacation.Request{
		{EmployeeID: e.ID, Year: 2026,
			Start: vacation.NewDate(2026, time.March, 2),
			End:   vacation.NewDate(2026, time.March, 17)}, // 12 working days
		{EmployeeID: e.ID, Year: 2026,
			Start: vacation.NewDate(2026, time.June, 1),
			End:   vacation.NewDate(2026, time.June, 16)}, // 12 working days
	}

	verdicts := make(chan vacation.Verdict, len(requests))
	for _, req := range requests {
		go func(r vacation.Request) {
			dec, _, err := svc.SubmitVacation(ctx, r)
			assert.NoError(t, err)
			verdicts <- dec.Verdict
		}(req)
	}

	accepted := 0
	for range requests {
		if <-verdicts == vacation.VerdictAccepted {
			accepted++
		}
	}
	assert.Equal(t, 1, accepted)

	balance, err := svc.EmployeeBalance(ctx, e.ID, 2026)
	require.NoError(t, err)
	assert.Equal(t, 12, balance.Used)
	assertInvariant(t, svc, e.ID)
}

func TestService_ConcurrentCreatesCannotDuplicateName(t *testing.T) {
	// Two racing creates with the same name: exactly one lands on the roster.
	svc := newTestService(t)
	ctx := context.Background()

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := svc.CreateEmployee(ctx, vacation.Employee{
				Name:     "Ana García",
				HireDate: vacation.NewDate(2024, time.January, 8),
			})
			errs <- err
		}()
	}

	duplicates := 0
	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			assert.ErrorIs(t, err, vacation.ErrDuplicateName)
			duplicates++
		}
	}
	assert.Equal(t, 1, duplicates)

	employees, err := svc.Employees(ctx)
	require.NoError(t, err)
	assert.Len(t, employees, 1)
}

func TestService_ConcurrentRestrictionSavesCannotDuplicatePair(t *testing.T) {
	// The same pair saved from both directions at once: one restriction wins.
	svc := newTestService(t)
	ctx := context.Background()
	ana := createEmployee(t, svc, "Ana")
	luis := createEmployee(t, svc, "Luis")

	pairs := []vacation.Restriction{
		{Employee1: ana.ID, Employee2: luis.ID},
		{Employee1: luis.ID, Employee2: ana.ID},
	}
	errs := make(chan error, len(pairs))
	for _, r := range pairs {
		go func(r vacation.Restriction) {
			_, err := svc.SaveRestriction(ctx, r)
			errs <- err
		}(r)
	}

	duplicates := 0
	for range pairs {
		if err := <-errs; err != nil {
			assert.ErrorIs(t, err, vacation.ErrDuplicateRestriction)
			duplicates++
		}
	}
	assert.Equal(t, 1, duplicates)

	restrictions, err := svc.Restrictions(ctx)
	require.NoError(t, err)
	assert.Len(t, restrictions, 1)
}

// =============================================================================
// REPORTS
// =============================================================================

func TestService_UpcomingVacations_WindowAndStatus(t *testing.T) {
	// Clock is pinned to 2026-03-02; the window is [Mar 2, Mar 9].
	svc := newTestService(t)
	ctx := context.Background()
	ana := createEmployee(t, svc, "Ana")
	luis := createEmployee(t, svc, "Luis")

	// Starts inside the window.
	dec, inside, err := svc.SubmitVacation(ctx, vacation.Request{
		EmployeeID: ana.ID, Year: 2026,
		Start: vacation.NewDate(2026, time.March, 4),
		End:   vacation.NewDate(2026, time.March, 6),
	})
	require.NoError(t, err)
	require.Equal(t, vacation.VerdictAccepted, dec.Verdict)

	// Starts after the window.
	_, _, err = svc.SubmitVacation(ctx, vacation.Request{
		EmployeeID: luis.ID, Year: 2026,
		Start: vacation.NewDate(2026, time.March, 16),
		End:   vacation.NewDate(2026, time.March, 18),
	})
	require.NoError(t, err)

	rows, err := svc.UpcomingVacations(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, inside.ID, rows[0].Vacation.ID)
	assert.Equal(t, "Ana", rows[0].EmployeeName)

	// Rejected records drop out of the report.
	_, err = svc.RejectVacation(ctx, inside.ID)
	require.NoError(t, err)
	rows, err = svc.UpcomingVacations(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestService_UnderusedEmployees(t *testing.T) {
	// GIVEN: One employee at 5/22 used (under 25%, 17 left), one at 9/22
	// WHEN: Running the underuse report for 2026
	// THEN: Only the first qualifies

	svc := newTestService(t)
	ctx := context.Background()
	ana := createEmployee(t, svc, "Ana")
	luis := createEmployee(t, svc, "Luis")

	submitWeek(t, svc, ana.ID) // 5 days
	_, _, err := svc.SubmitVacation(ctx, vacation.Request{
		EmployeeID: luis.ID, Year: 2026,
		Start: vacation.NewDate(2026, time.March, 9),
		End:   vacation.NewDate(2026, time.March, 19), // 9 working days
	})
	require.NoError(t, err)

	rows, err := svc.UnderusedEmployees(ctx, 2026)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, ana.ID, rows[0].Employee.ID)
	assert.Equal(t, 17, rows[0].Remaining)
	assert.Equal(t, "0.2273", rows[0].Usage.StringFixed(4))
}
