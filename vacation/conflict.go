package vacation

// =============================================================================
// CONFLICT DETECTOR - Restricted-pair overlap detection
// =============================================================================

// Conflict identifies the restricted partner whose existing vacation overlaps
// a candidate interval.
type Conflict struct {
	PartnerID   EmployeeID
	Restriction Restriction
	Vacation    Vacation // the overlapping vacation held by the partner
}

// FindConflict collects every restriction naming employeeID and scans each
// partner's vacations for an interval overlapping [start, end]. Overlap uses
// closed boundaries: two requests touching on the same day conflict.
//
// excludeID skips the record being replaced when validating an in-place edit
// (pass the zero value for a create).
//
// The first restricted partner with an overlap wins; conflicts are not
// aggregated. Returns nil when no restriction produces an overlap.
func FindConflict(
	employeeID EmployeeID,
	start, end Date,
	restrictions []Restriction,
	vacations []Vacation,
	excludeID VacationID,
) *Conflict {
	for i := range restrictions {
		r := &restrictions[i]
		if !r.Involves(employeeID) {
			continue
		}
		partner := r.OtherOf(employeeID)

		for j := range vacations {
			v := &vacations[j]
			if v.EmployeeID != partner {
				continue
			}
			if excludeID != "" && v.ID == excludeID {
				continue
			}
			if !v.Charged() {
				continue
			}
			if v.Overlaps(start, end) {
				return &Conflict{PartnerID: partner, Restriction: *r, Vacation: *v}
			}
		}
	}
	return nil
}
