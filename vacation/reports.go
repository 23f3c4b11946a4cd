/*
reports.go - Derived read-only views

PURPOSE:
  Report queries computed from the stored collections: vacations starting
  soon, and employees leaving most of their entitlement unused. Reports never
  mutate state; they read through the Service so persistence failures surface
  the same way as everywhere else.
*/
package vacation

import (
	"context"

	"github.com/shopspring/decimal"
)

// Employees whose usage ratio stays below this fraction of the entitlement,
// with more than underuseMinRemaining days left, show up in the underuse
// report.
var underuseThreshold = decimal.NewFromFloat(0.25)

const underuseMinRemaining = 15

// lookaheadDays is the window of the upcoming-vacations report.
const lookaheadDays = 7

// UpcomingVacation pairs a vacation with its employee's display name.
type UpcomingVacation struct {
	Vacation     Vacation
	EmployeeName string
}

// UpcomingVacations returns the charged vacations starting within the next
// seven days (today inclusive), soonest first.
func (s *Service) UpcomingVacations(ctx context.Context) ([]UpcomingVacation, error) {
	vacations, err := s.Vacations(ctx)
	if err != nil {
		return nil, err
	}
	employees, err := s.Employees(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[EmployeeID]string, len(employees))
	for i := range employees {
		names[employees[i].ID] = employees[i].Name
	}

	from := s.now()
	until := from.AddDays(lookaheadDays)

	var out []UpcomingVacation
	for _, v := range vacations {
		if !v.Charged() {
			continue
		}
		if v.Start.BeforeOrEqual(until) && v.Start.AfterOrEqual(from) {
			out = append(out, UpcomingVacation{Vacation: v, EmployeeName: names[v.EmployeeID]})
		}
	}
	return out, nil
}

// UnderusedEmployee is one row of the underuse report.
type UnderusedEmployee struct {
	Employee  Employee
	Year      int
	Used      int
	Remaining int
	Usage     decimal.Decimal // used / total, exact
}

// UnderusedEmployees returns the active employees who have used less than a
// quarter of their entitlement for the given year and still have more than
// fifteen days remaining.
func (s *Service) UnderusedEmployees(ctx context.Context, year int) ([]UnderusedEmployee, error) {
	employees, err := s.Employees(ctx)
	if err != nil {
		return nil, err
	}

	var out []UnderusedEmployee
	for _, e := range employees {
		if !e.IsActive(s.now()) || e.TotalDays <= 0 {
			continue
		}
		used := e.UsedIn(year)
		remaining := e.TotalDays - used
		usage := decimal.NewFromInt(int64(used)).Div(decimal.NewFromInt(int64(e.TotalDays)))
		if usage.LessThan(underuseThreshold) && remaining > underuseMinRemaining {
			out = append(out, UnderusedEmployee{
				Employee:  e,
				Year:      year,
				Used:      used,
				Remaining: remaining,
				Usage:     usage,
			})
		}
	}
	return out, nil
}
