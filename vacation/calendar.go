package vacation

// =============================================================================
// WORKDAY CALENDAR - Converts a date range into chargeable days
// =============================================================================

// CountChargeableDays walks the inclusive day sequence from start to end and
// counts the days that are neither a Saturday/Sunday nor present in
// nonWorking. A single weekday range yields 1; an all-weekend range yields 0.
// Pure function of its inputs. Returns ErrInvalidRange when start > end.
func CountChargeableDays(start, end Date, nonWorking DateSet) (int, error) {
	if start.After(end) {
		return 0, ErrInvalidRange
	}

	count := 0
	for d := start; d.BeforeOrEqual(end); d = d.AddDays(1) {
		if d.IsWeekend() {
			continue
		}
		if nonWorking.Contains(d) {
			continue
		}
		count++
	}
	return count, nil
}

// NonWorkingDates expands a holiday list into the date set consumed by
// CountChargeableDays. Recurring holidays are projected onto every year in
// years; one-off holidays are included as stored.
func NonWorkingDates(holidays []Holiday, years ...int) DateSet {
	set := NewDateSet()
	for _, h := range holidays {
		if !h.Recurring {
			set.Add(h.Date)
			continue
		}
		for _, y := range years {
			set.Add(NewDate(y, h.Date.Month(), h.Date.Day()))
		}
	}
	return set
}
