/*
validator.go - The request decision pipeline

PURPOSE:
  Orchestrates calendar, ledger and conflict detection to accept, reject, or
  flag-for-confirmation a vacation create/update, and computes the ledger
  delta the caller must apply atomically with the record write.

SEQUENCE (each step short-circuits on failure):
  1. Required fields present (employee, start, end)
  2. Start strictly before end
  3. days     = chargeable days of [start, end]
  4. previous = days the replaced record charged against the same year
     (0 on create or when the edit moves the request to another year)
  5. available = entitlement - used[year] + previous
  6. days > available          -> Rejected (insufficient balance)
  7. restricted-partner overlap -> NeedsConfirmation (unless override)
  8. Accepted with ledgerDelta = days - previous

A conflict is a soft signal: resubmitting with Override set forces acceptance
and the override is recorded on the stored record for audit.
*/
package vacation

// Request is the typed input to the validator. String form-input must be
// converted to Dates and ints before it gets here.
type Request struct {
	ID         VacationID // non-empty when editing an existing record
	EmployeeID EmployeeID
	Year       int
	Start      Date
	End        Date
	Reason     string

	// Override forces acceptance past a restriction conflict.
	Override bool
}

// Input carries everything the validator needs. It is assembled by the
// service from a consistent read of the store; the validator itself never
// touches persistence.
type Input struct {
	Request      Request
	Employee     *Employee
	Replacing    *Vacation // the stored record when Request.ID is an edit
	Restrictions []Restriction
	Vacations    []Vacation // all stored vacations, any employee
	NonWorking   DateSet
	Names        map[EmployeeID]string // for conflict messages
}

type Verdict string

const (
	VerdictAccepted          Verdict = "accepted"
	VerdictRejected          Verdict = "rejected"
	VerdictNeedsConfirmation Verdict = "needs_confirmation"
)

// Decision is the validator outcome. Days and LedgerDelta are meaningful for
// Accepted and NeedsConfirmation; Err carries the rejection cause; Conflict
// identifies the partner for NeedsConfirmation.
type Decision struct {
	Verdict     Verdict
	Days        int
	LedgerDelta int
	Err         error
	Conflict    *Conflict
	PartnerName string
}

func rejected(err error) Decision {
	return Decision{Verdict: VerdictRejected, Err: err}
}

// Validate runs the decision pipeline. It performs no mutation: on
// acceptance the caller must persist the record and apply LedgerDelta to the
// employee's counter in a single store transaction.
func Validate(in Input) Decision {
	req := in.Request

	// 1. Required fields
	if req.EmployeeID == "" {
		return rejected(&ValidationError{Field: "employeeId", Reason: "required"})
	}
	if req.Start.IsZero() {
		return rejected(&ValidationError{Field: "startDate", Reason: "required"})
	}
	if req.End.IsZero() {
		return rejected(&ValidationError{Field: "endDate", Reason: "required"})
	}
	if in.Employee == nil {
		return rejected(ErrEmployeeNotFound)
	}

	// 2. Date ordering
	if !req.Start.Before(req.End) {
		return rejected(&ValidationError{Field: "endDate", Reason: "must be after startDate"})
	}

	// 3. Chargeable days
	days, err := CountChargeableDays(req.Start, req.End, in.NonWorking)
	if err != nil {
		return rejected(err)
	}

	// 4. Days being released by the record under edit. The credit only
	// applies when the replaced record charged the same year: an edit that
	// moves a request across years releases days in the old year, not the
	// one being checked here.
	previous := 0
	if in.Replacing != nil && in.Replacing.Charged() && in.Replacing.Year == req.Year {
		previous = in.Replacing.Days
	}

	// 5-6. Overdraft check
	available := in.Employee.TotalDays - in.Employee.UsedIn(req.Year) + previous
	if days > available {
		return rejected(&InsufficientBalanceError{
			EmployeeID: req.EmployeeID,
			Year:       req.Year,
			Requested:  days,
			Available:  available,
		})
	}

	// 7. Restricted-partner overlap
	conflict := FindConflict(req.EmployeeID, req.Start, req.End, in.Restrictions, in.Vacations, req.ID)
	if conflict != nil && !req.Override {
		return Decision{
			Verdict:     VerdictNeedsConfirmation,
			Days:        days,
			LedgerDelta: days - previous,
			Conflict:    conflict,
			PartnerName: in.Names[conflict.PartnerID],
		}
	}

	// 8. Accepted
	d := Decision{
		Verdict:     VerdictAccepted,
		Days:        days,
		LedgerDelta: days - previous,
	}
	if conflict != nil {
		// Override confirmed: keep the conflict for the audit trail.
		d.Conflict = conflict
		d.PartnerName = in.Names[conflict.PartnerID]
	}
	return d
}
