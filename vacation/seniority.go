package vacation

import "fmt"

// =============================================================================
// SENIORITY - Human-readable tenure labels
// =============================================================================

// TenureLabel formats an employee's tenure from hire date to termination date
// or today. Pure wrapper over TenureLabelAt.
func TenureLabel(hire Date, termination *Date) string {
	end := Today()
	if termination != nil {
		end = *termination
	}
	return TenureLabelAt(hire, end)
}

// TenureLabelAt computes whole months between hire and end, counting the
// current partial month only once the day-of-month has been reached, and
// formats the result as "N años y M meses", "M meses", or "Menos de 1 mes".
func TenureLabelAt(hire, end Date) string {
	months := (end.Year()-hire.Year())*12 + int(end.Month()) - int(hire.Month())
	if end.Day() < hire.Day() {
		months--
	}
	if months < 0 {
		months = 0
	}

	years := months / 12
	months = months % 12

	switch {
	case years > 0 && months > 0:
		return fmt.Sprintf("%d %s y %d %s", years, plural(years, "año", "años"), months, plural(months, "mes", "meses"))
	case years > 0:
		return fmt.Sprintf("%d %s", years, plural(years, "año", "años"))
	case months > 0:
		return fmt.Sprintf("%d %s", months, plural(months, "mes", "meses"))
	default:
		return "Menos de 1 mes"
	}
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return singular
	}
	return pluralForm
}
