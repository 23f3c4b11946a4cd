/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

PARSING:
  Request bodies carry dates as "YYYY-MM-DD" strings and numbers as JSON
  numbers. Each *Request has a parse method that converts into the typed
  domain form and reports the first invalid field; handlers never pass raw
  strings into the engine.

SEE ALSO:
  - handlers.go: Uses these types
  - vacation/validator.go: The typed request the parse methods produce
*/
package api

import (
	"github.com/warp/vacation-ledger/vacation"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Department      string      `json:"department,omitempty"`
	TotalDays       int         `json:"total_vacation_days"`
	UsedDays        map[int]int `json:"used_days"`
	HireDate        string      `json:"hire_date"`
	TerminationDate *string     `json:"termination_date,omitempty"`
	Active          bool        `json:"active"`
	Tenure          string      `json:"tenure"`
}

// SaveEmployeeRequest is the request to create or update an employee.
type SaveEmployeeRequest struct {
	Name            string  `json:"name"`
	Department      string  `json:"department"`
	TotalDays       int     `json:"total_vacation_days"`
	HireDate        string  `json:"hire_date"`
	TerminationDate *string `json:"termination_date,omitempty"`
}

func (r SaveEmployeeRequest) parse(id vacation.EmployeeID) (vacation.Employee, error) {
	e := vacation.Employee{
		ID:         id,
		Name:       r.Name,
		Department: r.Department,
		TotalDays:  r.TotalDays,
	}
	if r.HireDate != "" {
		hire, err := vacation.ParseDate(r.HireDate)
		if err != nil {
			return e, &vacation.ValidationError{Field: "hire_date", Reason: "must be YYYY-MM-DD"}
		}
		e.HireDate = hire
	}
	if r.TerminationDate != nil && *r.TerminationDate != "" {
		term, err := vacation.ParseDate(*r.TerminationDate)
		if err != nil {
			return e, &vacation.ValidationError{Field: "termination_date", Reason: "must be YYYY-MM-DD"}
		}
		e.TerminationDate = &term
	}
	return e, nil
}

// VacationDTO represents a vacation request in API responses.
type VacationDTO struct {
	ID               string `json:"id"`
	EmployeeID       string `json:"employee_id"`
	EmployeeName     string `json:"employee_name,omitempty"`
	Year             int    `json:"year"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	WorkingDays      int    `json:"working_days"`
	Reason           string `json:"reason,omitempty"`
	Status           string `json:"status"`
	ConflictOverride bool   `json:"conflict_override,omitempty"`
	OverridePartner  string `json:"override_partner,omitempty"`
}

// SubmitVacationRequest is the request to create or edit a vacation.
type SubmitVacationRequest struct {
	EmployeeID string `json:"employee_id"`
	Year       int    `json:"year"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Reason     string `json:"reason"`
	Override   bool   `json:"override"`
}

func (r SubmitVacationRequest) parse(id vacation.VacationID) (vacation.Request, error) {
	req := vacation.Request{
		ID:         id,
		EmployeeID: vacation.EmployeeID(r.EmployeeID),
		Year:       r.Year,
		Reason:     r.Reason,
		Override:   r.Override,
	}
	if r.StartDate != "" {
		start, err := vacation.ParseDate(r.StartDate)
		if err != nil {
			return req, &vacation.ValidationError{Field: "start_date", Reason: "must be YYYY-MM-DD"}
		}
		req.Start = start
	}
	if r.EndDate != "" {
		end, err := vacation.ParseDate(r.EndDate)
		if err != nil {
			return req, &vacation.ValidationError{Field: "end_date", Reason: "must be YYYY-MM-DD"}
		}
		req.End = end
	}
	if req.Year == 0 && !req.Start.IsZero() {
		req.Year = req.Start.Year()
	}
	return req, nil
}

// DecisionDTO is the validator outcome returned with a submit response.
type DecisionDTO struct {
	Verdict      string       `json:"verdict"`
	WorkingDays  int          `json:"working_days,omitempty"`
	Error        string       `json:"error,omitempty"`
	Conflict     *ConflictDTO `json:"conflict,omitempty"`
	RecordedWith *VacationDTO `json:"vacation,omitempty"`
}

// ConflictDTO identifies the restricted partner whose vacation overlaps.
type ConflictDTO struct {
	PartnerID   string `json:"partner_id"`
	PartnerName string `json:"partner_name,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Priority    string `json:"priority"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

// BalanceDTO represents one employee's balance for a year.
type BalanceDTO struct {
	EmployeeID string `json:"employee_id"`
	Year       int    `json:"year"`
	Total      int    `json:"total"`
	Used       int    `json:"used"`
	Balance    int    `json:"balance"`
}

// RestrictionDTO represents a scheduling restriction.
type RestrictionDTO struct {
	ID        string `json:"id"`
	Employee1 string `json:"employee1_id"`
	Employee2 string `json:"employee2_id"`
	Reason    string `json:"reason,omitempty"`
	Priority  string `json:"priority"`
}

// SaveRestrictionRequest is the request to create or edit a restriction.
type SaveRestrictionRequest struct {
	Employee1 string `json:"employee1_id"`
	Employee2 string `json:"employee2_id"`
	Reason    string `json:"reason"`
	Priority  string `json:"priority"`
}

func (r SaveRestrictionRequest) parse(id vacation.RestrictionID) vacation.Restriction {
	return vacation.Restriction{
		ID:        id,
		Employee1: vacation.EmployeeID(r.Employee1),
		Employee2: vacation.EmployeeID(r.Employee2),
		Reason:    r.Reason,
		Priority:  vacation.RestrictionPriority(r.Priority),
	}
}

// HolidayDTO represents a company holiday.
type HolidayDTO struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Name      string `json:"name"`
	Type      string `json:"type,omitempty"`
	Recurring bool   `json:"recurring"`
}

// SaveHolidayRequest is the request to create a holiday.
type SaveHolidayRequest struct {
	Date      string `json:"date"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Recurring bool   `json:"recurring"`
}

func (r SaveHolidayRequest) parse(id vacation.HolidayID) (vacation.Holiday, error) {
	h := vacation.Holiday{
		ID:        id,
		Name:      r.Name,
		Type:      r.Type,
		Recurring: r.Recurring,
	}
	if r.Date != "" {
		date, err := vacation.ParseDate(r.Date)
		if err != nil {
			return h, &vacation.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
		}
		h.Date = date
	}
	return h, nil
}

// UpcomingVacationDTO is one row of the upcoming-vacations report.
type UpcomingVacationDTO struct {
	Vacation     VacationDTO `json:"vacation"`
	EmployeeName string      `json:"employee_name"`
}

// UnderusedEmployeeDTO is one row of the underuse report.
type UnderusedEmployeeDTO struct {
	Employee  EmployeeDTO `json:"employee"`
	Year      int         `json:"year"`
	Used      int         `json:"used"`
	Remaining int         `json:"remaining"`
	Usage     string      `json:"usage"` // decimal fraction, e.g. "0.1818"
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEmployeeDTO(e vacation.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:         string(e.ID),
		Name:       e.Name,
		Department: e.Department,
		TotalDays:  e.TotalDays,
		UsedDays:   e.UsedDays,
		HireDate:   e.HireDate.String(),
		Active:     e.IsActive(vacation.Today()),
		Tenure:     vacation.TenureLabel(e.HireDate, e.TerminationDate),
	}
	if dto.UsedDays == nil {
		dto.UsedDays = map[int]int{}
	}
	if e.TerminationDate != nil {
		s := e.TerminationDate.String()
		dto.TerminationDate = &s
	}
	return dto
}

func toVacationDTO(v vacation.Vacation, name string) VacationDTO {
	return VacationDTO{
		ID:               string(v.ID),
		EmployeeID:       string(v.EmployeeID),
		EmployeeName:     name,
		Year:             v.Year,
		StartDate:        v.Start.String(),
		EndDate:          v.End.String(),
		WorkingDays:      v.Days,
		Reason:           v.Reason,
		Status:           string(v.Status),
		ConflictOverride: v.ConflictOverride,
		OverridePartner:  string(v.OverridePartner),
	}
}

func toConflictDTO(c *vacation.Conflict, partnerName string) *ConflictDTO {
	if c == nil {
		return nil
	}
	return &ConflictDTO{
		PartnerID:   string(c.PartnerID),
		PartnerName: partnerName,
		Reason:      c.Restriction.Reason,
		Priority:    string(c.Restriction.Priority),
		StartDate:   c.Vacation.Start.String(),
		EndDate:     c.Vacation.End.String(),
	}
}

func toRestrictionDTO(r vacation.Restriction) RestrictionDTO {
	return RestrictionDTO{
		ID:        string(r.ID),
		Employee1: string(r.Employee1),
		Employee2: string(r.Employee2),
		Reason:    r.Reason,
		Priority:  string(r.Priority),
	}
}

func toHolidayDTO(h vacation.Holiday) HolidayDTO {
	return HolidayDTO{
		ID:        string(h.ID),
		Date:      h.Date.String(),
		Name:      h.Name,
		Type:      h.Type,
		Recurring: h.Recurring,
	}
}
