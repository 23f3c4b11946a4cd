/*
ledger.go - Per-employee, per-year used-day accounting

PURPOSE:
  The ledger is the used-day counter kept on each employee record, one entry
  per calendar year, measured against a single per-employee entitlement.

CRITICAL INVARIANT:
  After any sequence of successful validate-then-apply operations,
  used[year] equals the sum of chargeable days of the employee's non-deleted,
  non-rejected vacation records for that year.

  The ledger itself does not enforce non-negativity of the balance: overdraft
  prevention happens in the validator BEFORE Apply is invoked, and Apply must
  only ever be called as the paired mutation accompanying a vacation
  create/update/delete inside the same store transaction.

SEE ALSO:
  - validator.go: computes the exact delta for every operation
  - service.go:   commits record + counter atomically
*/
package vacation

// Balance returns entitlement minus used days for the given year.
func Balance(e *Employee, year int) int {
	return e.TotalDays - e.UsedIn(year)
}

// Apply adds delta (positive or negative) to the employee's used-day counter
// for the given year. Never call this outside the validate-then-apply
// sequence; the validator computes the exact delta.
func Apply(e *Employee, year, delta int) {
	if e.UsedDays == nil {
		e.UsedDays = make(map[int]int)
	}
	e.UsedDays[year] += delta
}

// UsedFromVacations recomputes the counter an employee's live requests imply
// for one year. This is the right-hand side of the ledger invariant.
func UsedFromVacations(vacations []Vacation, employeeID EmployeeID, year int) int {
	total := 0
	for i := range vacations {
		v := &vacations[i]
		if v.EmployeeID == employeeID && v.Year == year && v.Charged() {
			total += v.Days
		}
	}
	return total
}

// RecomputeUsed rebuilds the employee's entire used-day map from the vacation
// records. Used by snapshot import so imported state always satisfies the
// invariant.
func RecomputeUsed(e *Employee, vacations []Vacation) {
	used := make(map[int]int)
	for i := range vacations {
		v := &vacations[i]
		if v.EmployeeID == e.ID && v.Charged() {
			used[v.Year] += v.Days
		}
	}
	e.UsedDays = used
}
