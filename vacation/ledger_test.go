package vacation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/warp/vacation-ledger/vacation"
)

// =============================================================================
// LEDGER COUNTER TESTS
// =============================================================================

func TestBalance_MissingYearCountsAsZero(t *testing.T) {
	e := &vacation.Employee{ID: "emp-1", TotalDays: 22, UsedDays: map[int]int{2025: 10}}

	assert.Equal(t, 12, vacation.Balance(e, 2025))
	assert.Equal(t, 22, vacation.Balance(e, 2026), "untouched year has the full entitlement")
}

func TestApply_InitializesAndAccumulates(t *testing.T) {
	// GIVEN: An employee whose counter map was never allocated
	// WHEN: Applying deltas for the same year
	// THEN: The counter accumulates; a reversal restores the old value

	e := &vacation.Employee{ID: "emp-1", TotalDays: 22}

	vacation.Apply(e, 2026, 5)
	vacation.Apply(e, 2026, 3)
	assert.Equal(t, 8, e.UsedIn(2026))

	vacation.Apply(e, 2026, -3)
	assert.Equal(t, 5, e.UsedIn(2026))
}

func TestUsedFromVacations_SkipsRejectedAndOtherYears(t *testing.T) {
	vacations := []vacation.Vacation{
		{ID: "v1", EmployeeID: "emp-1", Year: 2026, Days: 5, Status: vacation.StatusPending},
		{ID: "v2", EmployeeID: "emp-1", Year: 2026, Days: 3, Status: vacation.StatusApproved},
		{ID: "v3", EmployeeID: "emp-1", Year: 2026, Days: 4, Status: vacation.StatusRejected},
		{ID: "v4", EmployeeID: "emp-1", Year: 2025, Days: 2, Status: vacation.StatusApproved},
		{ID: "v5", EmployeeID: "emp-2", Year: 2026, Days: 9, Status: vacation.StatusApproved},
	}

	assert.Equal(t, 8, vacation.UsedFromVacations(vacations, "emp-1", 2026),
		"pending and approved charge, rejected and foreign records do not")
	assert.Equal(t, 2, vacation.UsedFromVacations(vacations, "emp-1", 2025))
}

func TestRecomputeUsed_RebuildsWholeMap(t *testing.T) {
	// GIVEN: An employee with stale counters
	// WHEN: Recomputing from the stored records
	// THEN: The map matches the records exactly, stale years are dropped

	e := &vacation.Employee{ID: "emp-1", TotalDays: 22, UsedDays: map[int]int{2024: 99}}
	vacations := []vacation.Vacation{
		{ID: "v1", EmployeeID: "emp-1", Year: 2026, Days: 5, Status: vacation.StatusPending,
			Start: vacation.NewDate(2026, time.March, 2), End: vacation.NewDate(2026, time.March, 6)},
		{ID: "v2", EmployeeID: "emp-1", Year: 2025, Days: 3, Status: vacation.StatusApproved,
			Start: vacation.NewDate(2025, time.July, 7), End: vacation.NewDate(2025, time.July, 9)},
		{ID: "v3", EmployeeID: "emp-1", Year: 2026, Days: 4, Status: vacation.StatusRejected,
			Start: vacation.NewDate(2026, time.May, 4), End: vacation.NewDate(2026, time.May, 7)},
	}

	vacation.RecomputeUsed(e, vacations)
	assert.Equal(t, map[int]int{2026: 5, 2025: 3}, e.UsedDays)
}
