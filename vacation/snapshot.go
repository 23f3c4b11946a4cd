/*
snapshot.go - Sectioned CSV export/import

PURPOSE:
  Serializes the whole engine state to a single CSV document and loads it
  back. The document is split into titled sections (EMPLOYEES, VACATIONS,
  RESTRICTIONS, HOLIDAYS, STATISTICS), each with its own header row.
  Vacations and restrictions reference employees by display name, which is
  unique case-insensitively across the roster.

ROUND-TRIP:
  Import resolves names back to ids and recomputes every per-year used-day
  counter from the imported vacation rows, so an export/import cycle into an
  empty store reproduces the ledger exactly. The STATISTICS section is
  derived data and is skipped on import.
*/
package vacation

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	sectionEmployees    = "EMPLOYEES"
	sectionVacations    = "VACATIONS"
	sectionRestrictions = "RESTRICTIONS"
	sectionHolidays     = "HOLIDAYS"
	sectionStatistics   = "STATISTICS"
)

var (
	employeeHeader    = []string{"ID", "Name", "Department", "TotalDays", "HireDate", "TerminationDate"}
	vacationHeader    = []string{"ID", "Employee", "Department", "Year", "StartDate", "EndDate", "WorkingDays", "Reason", "Status"}
	restrictionHeader = []string{"ID", "Employee1", "Employee2", "Reason", "Priority"}
	holidayHeader     = []string{"ID", "Date", "Name", "Type", "Recurring"}
	statisticsHeader  = []string{"Metric", "Value"}
)

// =============================================================================
// EXPORT
// =============================================================================

// ExportCSV writes the full state as a sectioned CSV document.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	employees, err := s.Employees(ctx)
	if err != nil {
		return err
	}
	vacations, err := s.Vacations(ctx)
	if err != nil {
		return err
	}
	restrictions, err := s.Restrictions(ctx)
	if err != nil {
		return err
	}
	holidays, err := s.Holidays(ctx)
	if err != nil {
		return err
	}

	byID := make(map[EmployeeID]Employee, len(employees))
	for _, e := range employees {
		byID[e.ID] = e
	}

	cw := csv.NewWriter(w)

	writeSection := func(title string, header []string, rows [][]string) {
		cw.Write([]string{title})
		cw.Write(header)
		for _, row := range rows {
			cw.Write(row)
		}
		cw.Write([]string{})
	}

	var employeeRows [][]string
	for _, e := range employees {
		termination := ""
		if e.TerminationDate != nil {
			termination = e.TerminationDate.String()
		}
		employeeRows = append(employeeRows, []string{
			string(e.ID), e.Name, e.Department,
			strconv.Itoa(e.TotalDays), e.HireDate.String(), termination,
		})
	}
	writeSection(sectionEmployees, employeeHeader, employeeRows)

	var vacationRows [][]string
	for _, v := range vacations {
		emp := byID[v.EmployeeID]
		vacationRows = append(vacationRows, []string{
			string(v.ID), emp.Name, emp.Department,
			strconv.Itoa(v.Year), v.Start.String(), v.End.String(),
			strconv.Itoa(v.Days), v.Reason, string(v.Status),
		})
	}
	writeSection(sectionVacations, vacationHeader, vacationRows)

	var restrictionRows [][]string
	for _, r := range restrictions {
		restrictionRows = append(restrictionRows, []string{
			string(r.ID), byID[r.Employee1].Name, byID[r.Employee2].Name,
			r.Reason, string(r.Priority),
		})
	}
	writeSection(sectionRestrictions, restrictionHeader, restrictionRows)

	var holidayRows [][]string
	for _, h := range holidays {
		holidayRows = append(holidayRows, []string{
			string(h.ID), h.Date.String(), h.Name, h.Type, strconv.FormatBool(h.Recurring),
		})
	}
	writeSection(sectionHolidays, holidayHeader, holidayRows)

	writeSection(sectionStatistics, statisticsHeader,
		statisticsRows(employees, vacations, restrictions, holidays, s.now()))

	cw.Flush()
	return cw.Error()
}

func statisticsRows(employees []Employee, vacations []Vacation, restrictions []Restriction, holidays []Holiday, asOf Date) [][]string {
	active := 0
	entitlement := 0
	for i := range employees {
		if employees[i].IsActive(asOf) {
			active++
		}
		entitlement += employees[i].TotalDays
	}
	chargedDays := 0
	for _, v := range vacations {
		if v.Charged() {
			chargedDays += v.Days
		}
	}
	return [][]string{
		{"Employees", strconv.Itoa(len(employees))},
		{"ActiveEmployees", strconv.Itoa(active)},
		{"TotalEntitlementDays", strconv.Itoa(entitlement)},
		{"Vacations", strconv.Itoa(len(vacations))},
		{"ChargedDays", strconv.Itoa(chargedDays)},
		{"Restrictions", strconv.Itoa(len(restrictions))},
		{"Holidays", strconv.Itoa(len(holidays))},
	}
}

// =============================================================================
// IMPORT
// =============================================================================

type snapshotError struct {
	section string
	line    int
	err     error
}

func (e *snapshotError) Error() string {
	return fmt.Sprintf("snapshot %s line %d: %v", e.section, e.line, e.err)
}

func (e *snapshotError) Unwrap() error { return e.err }

// ImportCSV loads a sectioned CSV document produced by ExportCSV. All rows
// are upserted in one transaction and every employee's used-day counters are
// recomputed from the imported vacations, so the counters always match the
// records regardless of what the snapshot contained.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var (
		employees    []Employee
		vacations    []Vacation
		restrictions []Restriction
		holidays     []Holiday
	)

	section := ""
	line := 0
	expectHeader := false
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return &snapshotError{section: section, line: line, err: err}
		}
		line++

		if len(record) == 0 || (len(record) == 1 && record[0] == "") {
			continue
		}
		if len(record) == 1 && isSectionTitle(record[0]) {
			section = record[0]
			expectHeader = true
			continue
		}
		if expectHeader {
			expectHeader = false
			continue
		}

		switch section {
		case sectionEmployees:
			e, err := parseEmployeeRow(record)
			if err != nil {
				return &snapshotError{section: section, line: line, err: err}
			}
			employees = append(employees, *e)
		case sectionVacations:
			v, err := parseVacationRow(record, employees)
			if err != nil {
				return &snapshotError{section: section, line: line, err: err}
			}
			vacations = append(vacations, *v)
		case sectionRestrictions:
			rr, err := parseRestrictionRow(record, employees)
			if err != nil {
				return &snapshotError{section: section, line: line, err: err}
			}
			restrictions = append(restrictions, *rr)
		case sectionHolidays:
			h, err := parseHolidayRow(record)
			if err != nil {
				return &snapshotError{section: section, line: line, err: err}
			}
			holidays = append(holidays, *h)
		case sectionStatistics:
			// Derived data, never imported.
		default:
			return &snapshotError{section: section, line: line, err: fmt.Errorf("row outside any section")}
		}
	}

	for i := range employees {
		RecomputeUsed(&employees[i], vacations)
	}

	err := s.store.WithTx(ctx, func(tx Store) error {
		for _, e := range employees {
			if err := tx.PutEmployee(ctx, e); err != nil {
				return err
			}
		}
		for _, v := range vacations {
			if err := tx.PutVacation(ctx, v); err != nil {
				return err
			}
		}
		for _, rr := range restrictions {
			if err := tx.PutRestriction(ctx, rr); err != nil {
				return err
			}
		}
		for _, h := range holidays {
			if err := tx.PutHoliday(ctx, h); err != nil {
				return err
			}
		}
		return nil
	})
	return persistErr("import snapshot", err)
}

func isSectionTitle(s string) bool {
	switch s {
	case sectionEmployees, sectionVacations, sectionRestrictions, sectionHolidays, sectionStatistics:
		return true
	}
	return false
}

func fieldAt(record []string, i int) string {
	if i < len(record) {
		return strings.TrimSpace(record[i])
	}
	return ""
}

func parseEmployeeRow(record []string) (*Employee, error) {
	if len(record) < 5 {
		return nil, fmt.Errorf("expected %d fields, got %d", len(employeeHeader), len(record))
	}
	total, err := strconv.Atoi(fieldAt(record, 3))
	if err != nil {
		return nil, fmt.Errorf("invalid TotalDays: %w", err)
	}
	hire, err := ParseDate(fieldAt(record, 4))
	if err != nil {
		return nil, fmt.Errorf("invalid HireDate: %w", err)
	}
	e := Employee{
		ID:         EmployeeID(fieldAt(record, 0)),
		Name:       fieldAt(record, 1),
		Department: fieldAt(record, 2),
		TotalDays:  total,
		UsedDays:   make(map[int]int),
		HireDate:   hire,
	}
	if e.ID == "" || e.Name == "" {
		return nil, fmt.Errorf("ID and Name are required")
	}
	if raw := fieldAt(record, 5); raw != "" {
		term, err := ParseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid TerminationDate: %w", err)
		}
		e.TerminationDate = &term
	}
	return &e, nil
}

func resolveName(employees []Employee, name string) (EmployeeID, error) {
	for i := range employees {
		if SameName(employees[i].Name, name) {
			return employees[i].ID, nil
		}
	}
	return "", fmt.Errorf("unknown employee %q", name)
}

func parseVacationRow(record []string, employees []Employee) (*Vacation, error) {
	if len(record) < len(vacationHeader) {
		return nil, fmt.Errorf("expected %d fields, got %d", len(vacationHeader), len(record))
	}
	employeeID, err := resolveName(employees, fieldAt(record, 1))
	if err != nil {
		return nil, err
	}
	year, err := strconv.Atoi(fieldAt(record, 3))
	if err != nil {
		return nil, fmt.Errorf("invalid Year: %w", err)
	}
	start, err := ParseDate(fieldAt(record, 4))
	if err != nil {
		return nil, fmt.Errorf("invalid StartDate: %w", err)
	}
	end, err := ParseDate(fieldAt(record, 5))
	if err != nil {
		return nil, fmt.Errorf("invalid EndDate: %w", err)
	}
	days, err := strconv.Atoi(fieldAt(record, 6))
	if err != nil {
		return nil, fmt.Errorf("invalid WorkingDays: %w", err)
	}
	status := VacationStatus(fieldAt(record, 8))
	switch status {
	case StatusPending, StatusApproved, StatusRejected:
	case "":
		status = StatusPending
	default:
		return nil, fmt.Errorf("invalid Status %q", status)
	}
	return &Vacation{
		ID:         VacationID(fieldAt(record, 0)),
		EmployeeID: employeeID,
		Year:       year,
		Start:      start,
		End:        end,
		Days:       days,
		Reason:     fieldAt(record, 7),
		Status:     status,
	}, nil
}

func parseRestrictionRow(record []string, employees []Employee) (*Restriction, error) {
	if len(record) < len(restrictionHeader) {
		return nil, fmt.Errorf("expected %d fields, got %d", len(restrictionHeader), len(record))
	}
	e1, err := resolveName(employees, fieldAt(record, 1))
	if err != nil {
		return nil, err
	}
	e2, err := resolveName(employees, fieldAt(record, 2))
	if err != nil {
		return nil, err
	}
	priority := RestrictionPriority(fieldAt(record, 4))
	if priority == "" {
		priority = PriorityMedium
	}
	return &Restriction{
		ID:        RestrictionID(fieldAt(record, 0)),
		Employee1: e1,
		Employee2: e2,
		Reason:    fieldAt(record, 3),
		Priority:  priority,
	}, nil
}

func parseHolidayRow(record []string) (*Holiday, error) {
	if len(record) < len(holidayHeader) {
		return nil, fmt.Errorf("expected %d fields, got %d", len(holidayHeader), len(record))
	}
	date, err := ParseDate(fieldAt(record, 1))
	if err != nil {
		return nil, fmt.Errorf("invalid Date: %w", err)
	}
	recurring := false
	if raw := fieldAt(record, 4); raw != "" {
		recurring, err = strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid Recurring: %w", err)
		}
	}
	return &Holiday{
		ID:        HolidayID(fieldAt(record, 0)),
		Date:      date,
		Name:      fieldAt(record, 2),
		Type:      fieldAt(record, 3),
		Recurring: recurring,
	}, nil
}
