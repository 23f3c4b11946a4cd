/*
Package vacation implements the vacation ledger and scheduling-conflict engine.

PURPOSE:
  This package contains the domain types and algorithms for managing annual
  leave: counting chargeable workdays, keeping per-employee/per-year used-day
  counters consistent with the stored requests, detecting overlap conflicts
  between mutually restricted employees, and validating create/update/delete
  operations before any mutation happens.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee: roster record carrying the entitlement and used-day counters
  - Vacation: a leave request over an inclusive date interval
  - Restriction: an unordered employee pair that must not overlap absences
  - Holiday: a non-working date consumed by the workday calendar

DESIGN PRINCIPLES:
  1. The used-day counter is derived state: it must always equal the sum of
     chargeable days of the employee's live requests for that year.
  2. Only the validator/service pair may request a ledger mutation.
  3. Strong typing for identifiers prevents mixing employee and vacation ids.

SEE ALSO:
  - calendar.go:  chargeable-day counting
  - ledger.go:    balance queries and counter deltas
  - conflict.go:  restricted-pair overlap detection
  - validator.go: the decision pipeline tying the above together
*/
package vacation

import "strings"

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type VacationID string
type RestrictionID string
type HolidayID string

// =============================================================================
// EMPLOYEE
// =============================================================================

// DefaultEntitlement is the annual vacation-day allowance used when an
// employee is created without an explicit one.
const DefaultEntitlement = 22

// Employee is a roster record. UsedDays maps a calendar year to the number of
// chargeable days consumed in that year; missing years count as zero.
type Employee struct {
	ID              EmployeeID
	Name            string
	Department      string
	TotalDays       int
	UsedDays        map[int]int
	HireDate        Date
	TerminationDate *Date
}

// UsedIn returns the used-day counter for a year (zero when absent).
func (e *Employee) UsedIn(year int) int {
	return e.UsedDays[year]
}

// IsActive reports whether the employee is employed as of the given date.
// An employee with no termination date is always active.
func (e *Employee) IsActive(asOf Date) bool {
	if e.TerminationDate == nil {
		return true
	}
	return e.TerminationDate.After(asOf)
}

// SameName compares employee names case-insensitively.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// =============================================================================
// VACATION - A leave request over an inclusive interval
// =============================================================================

type VacationStatus string

const (
	StatusPending  VacationStatus = "pending"
	StatusApproved VacationStatus = "approved"
	StatusRejected VacationStatus = "rejected"
)

// Terminal reports whether no further status transitions are allowed.
func (s VacationStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Vacation is a stored leave request. Days is the chargeable-day count
// computed at validation time; it is the amount this record contributes to
// the employee's used-day counter while the status is not rejected.
type Vacation struct {
	ID         VacationID
	EmployeeID EmployeeID
	Year       int
	Start      Date
	End        Date
	Days       int
	Reason     string
	Status     VacationStatus

	// ConflictOverride marks an acceptance that was forced past a restriction
	// conflict, together with the partner it conflicted with.
	ConflictOverride bool
	OverridePartner  EmployeeID
}

// Charged reports whether this record currently contributes to the ledger.
// Pending requests hold their days; rejected ones have released them.
func (v *Vacation) Charged() bool {
	return v.Status != StatusRejected
}

// Overlaps reports whether [start, end] shares at least one calendar day with
// this vacation. Boundaries are inclusive: touching on a single day counts.
func (v *Vacation) Overlaps(start, end Date) bool {
	return start.BeforeOrEqual(v.End) && end.AfterOrEqual(v.Start)
}

// =============================================================================
// RESTRICTION - Unordered employee pair that must not overlap absences
// =============================================================================

type RestrictionPriority string

const (
	PriorityLow      RestrictionPriority = "low"
	PriorityMedium   RestrictionPriority = "medium"
	PriorityHigh     RestrictionPriority = "high"
	PriorityCritical RestrictionPriority = "critical"
)

// Restriction forbids two employees from holding overlapping leave intervals.
// The pair is unordered: (a, b) and (b, a) are the same restriction.
type Restriction struct {
	ID        RestrictionID
	Employee1 EmployeeID
	Employee2 EmployeeID
	Reason    string
	Priority  RestrictionPriority
}

// Involves reports whether the restriction names the given employee.
func (r *Restriction) Involves(id EmployeeID) bool {
	return r.Employee1 == id || r.Employee2 == id
}

// OtherOf returns the partner of the given employee in this restriction.
func (r *Restriction) OtherOf(id EmployeeID) EmployeeID {
	if r.Employee1 == id {
		return r.Employee2
	}
	return r.Employee1
}

// SamePair reports whether two restrictions name the same unordered pair.
func (r *Restriction) SamePair(e1, e2 EmployeeID) bool {
	return (r.Employee1 == e1 && r.Employee2 == e2) ||
		(r.Employee1 == e2 && r.Employee2 == e1)
}

// =============================================================================
// HOLIDAY - Non-working date consumed by the workday calendar
// =============================================================================

type Holiday struct {
	ID        HolidayID
	Date      Date
	Name      string
	Type      string
	Recurring bool // same month/day every year
}
