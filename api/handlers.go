/*
handlers.go - HTTP handler implementations

PURPOSE:
  Implements all API endpoints. Handlers parse request bodies into typed
  domain values, call the vacation Service, and map domain errors onto HTTP
  status codes. All business rules live in the vacation package; handlers
  stay thin.

ENDPOINTS:
  Employees:
    GET    /api/employees                List all employees
    POST   /api/employees                Create employee
    GET    /api/employees/{id}           Get employee details
    PUT    /api/employees/{id}           Edit employee
    DELETE /api/employees/{id}           Delete employee (cascades)
    GET    /api/employees/{id}/balance   Balance for a year
    GET    /api/employees/{id}/vacations Employee's vacations

  Vacations:
    GET    /api/vacations                List all vacations
    POST   /api/vacations                Submit a request
    GET    /api/vacations/{id}           Get one request
    PUT    /api/vacations/{id}           Edit a request
    DELETE /api/vacations/{id}           Delete and release days
    POST   /api/vacations/{id}/approve   Approve a pending request
    POST   /api/vacations/{id}/reject    Reject and release days

  Restrictions, holidays, reports, snapshot: see server.go.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Insufficient balance, terminal status, duplicates, conflicts
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - vacation/service.go: The operations behind these endpoints
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/warp/vacation-ledger/vacation"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	Service *vacation.Service
}

// NewHandler creates a handler backed by the given service.
func NewHandler(svc *vacation.Service) *Handler {
	return &Handler{Service: svc}
}

// =============================================================================
// EMPLOYEE ENDPOINTS
// =============================================================================

// ListEmployees returns all employees.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Service.Employees(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee creates a new employee.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req SaveEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	emp, err := req.parse("")
	if err != nil {
		writeDomainError(w, err)
		return
	}
	created, err := h.Service.CreateEmployee(r.Context(), emp)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(*created))
}

// GetEmployee returns one employee.
// GET /api/employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := vacation.EmployeeID(chi.URLParam(r, "id"))
	emp, err := h.Service.Employee(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// UpdateEmployee edits an employee's roster fields.
// PUT /api/employees/{id}
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id := vacation.EmployeeID(chi.URLParam(r, "id"))
	var req SaveEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	emp, err := req.parse(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	updated, err := h.Service.UpdateEmployee(r.Context(), emp)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*updated))
}

// DeleteEmployee removes an employee and cascades to vacations and
// restrictions.
// DELETE /api/employees/{id}
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id := vacation.EmployeeID(chi.URLParam(r, "id"))
	if err := h.Service.DeleteEmployee(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetBalance returns one employee's balance for a year.
// GET /api/employees/{id}/balance?year=2026
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := vacation.EmployeeID(chi.URLParam(r, "id"))
	year, err := yearParam(r, "year")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	summary, err := h.Service.EmployeeBalance(r.Context(), id, year)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceDTO{
		EmployeeID: string(summary.EmployeeID),
		Year:       summary.Year,
		Total:      summary.Total,
		Used:       summary.Used,
		Balance:    summary.Balance,
	})
}

// ListEmployeeVacations returns one employee's vacations.
// GET /api/employees/{id}/vacations
func (h *Handler) ListEmployeeVacations(w http.ResponseWriter, r *http.Request) {
	id := vacation.EmployeeID(chi.URLParam(r, "id"))
	emp, err := h.Service.Employee(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	all, err := h.Service.Vacations(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := []VacationDTO{}
	for _, v := range all {
		if v.EmployeeID == id {
			dtos = append(dtos, toVacationDTO(v, emp.Name))
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// VACATION ENDPOINTS
// =============================================================================

// ListVacations returns all vacations.
// GET /api/vacations
func (h *Handler) ListVacations(w http.ResponseWriter, r *http.Request) {
	vacations, err := h.Service.Vacations(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	names, err := h.employeeNames(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]VacationDTO, len(vacations))
	for i, v := range vacations {
		dtos[i] = toVacationDTO(v, names[v.EmployeeID])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SubmitVacation validates and stores a new vacation request.
// POST /api/vacations
func (h *Handler) SubmitVacation(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, "")
}

// UpdateVacation edits an existing vacation through the same validation
// pipeline as creation.
// PUT /api/vacations/{id}
func (h *Handler) UpdateVacation(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, vacation.VacationID(chi.URLParam(r, "id")))
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, id vacation.VacationID) {
	var body SubmitVacationRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req, err := body.parse(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	decision, record, err := h.Service.SubmitVacation(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dto := DecisionDTO{
		Verdict:     string(decision.Verdict),
		WorkingDays: decision.Days,
		Conflict:    toConflictDTO(decision.Conflict, decision.PartnerName),
	}
	if decision.Err != nil {
		dto.Error = decision.Err.Error()
	}

	switch decision.Verdict {
	case vacation.VerdictAccepted:
		v := toVacationDTO(*record, "")
		dto.RecordedWith = &v
		status := http.StatusCreated
		if id != "" {
			status = http.StatusOK
		}
		writeJSON(w, status, dto)
	case vacation.VerdictNeedsConfirmation:
		writeJSON(w, http.StatusConflict, dto)
	default:
		writeJSON(w, statusForDecision(decision), dto)
	}
}

func statusForDecision(d vacation.Decision) int {
	if errors.Is(d.Err, vacation.ErrInsufficientBalance) {
		return http.StatusConflict
	}
	if vacation.IsNotFound(d.Err) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

// GetVacation returns one vacation.
// GET /api/vacations/{id}
func (h *Handler) GetVacation(w http.ResponseWriter, r *http.Request) {
	id := vacation.VacationID(chi.URLParam(r, "id"))
	v, err := h.Service.Vacation(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	names, err := h.employeeNames(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVacationDTO(*v, names[v.EmployeeID]))
}

// DeleteVacation removes a vacation and releases its days.
// DELETE /api/vacations/{id}
func (h *Handler) DeleteVacation(w http.ResponseWriter, r *http.Request) {
	id := vacation.VacationID(chi.URLParam(r, "id"))
	if err := h.Service.DeleteVacation(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApproveVacation confirms a pending request.
// POST /api/vacations/{id}/approve
func (h *Handler) ApproveVacation(w http.ResponseWriter, r *http.Request) {
	id := vacation.VacationID(chi.URLParam(r, "id"))
	v, err := h.Service.ApproveVacation(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVacationDTO(*v, ""))
}

// RejectVacation rejects a pending request and releases its days.
// POST /api/vacations/{id}/reject
func (h *Handler) RejectVacation(w http.ResponseWriter, r *http.Request) {
	id := vacation.VacationID(chi.URLParam(r, "id"))
	v, err := h.Service.RejectVacation(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVacationDTO(*v, ""))
}

// =============================================================================
// RESTRICTION ENDPOINTS
// =============================================================================

// ListRestrictions returns all restrictions.
// GET /api/restrictions
func (h *Handler) ListRestrictions(w http.ResponseWriter, r *http.Request) {
	restrictions, err := h.Service.Restrictions(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]RestrictionDTO, len(restrictions))
	for i, rr := range restrictions {
		dtos[i] = toRestrictionDTO(rr)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateRestriction creates a restriction between two employees.
// POST /api/restrictions
func (h *Handler) CreateRestriction(w http.ResponseWriter, r *http.Request) {
	h.saveRestriction(w, r, "")
}

// UpdateRestriction edits a restriction.
// PUT /api/restrictions/{id}
func (h *Handler) UpdateRestriction(w http.ResponseWriter, r *http.Request) {
	h.saveRestriction(w, r, vacation.RestrictionID(chi.URLParam(r, "id")))
}

func (h *Handler) saveRestriction(w http.ResponseWriter, r *http.Request, id vacation.RestrictionID) {
	var req SaveRestrictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	saved, err := h.Service.SaveRestriction(r.Context(), req.parse(id))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	status := http.StatusCreated
	if id != "" {
		status = http.StatusOK
	}
	writeJSON(w, status, toRestrictionDTO(*saved))
}

// DeleteRestriction removes a restriction.
// DELETE /api/restrictions/{id}
func (h *Handler) DeleteRestriction(w http.ResponseWriter, r *http.Request) {
	id := vacation.RestrictionID(chi.URLParam(r, "id"))
	if err := h.Service.DeleteRestriction(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HOLIDAY ENDPOINTS
// =============================================================================

// ListHolidays returns all holidays.
// GET /api/holidays
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.Service.Holidays(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]HolidayDTO, len(holidays))
	for i, hd := range holidays {
		dtos[i] = toHolidayDTO(hd)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateHoliday adds a holiday to the company calendar.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req SaveHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	holiday, err := req.parse("")
	if err != nil {
		writeDomainError(w, err)
		return
	}
	saved, err := h.Service.SaveHoliday(r.Context(), holiday)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayDTO(*saved))
}

// DeleteHoliday removes a holiday.
// DELETE /api/holidays/{id}
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	id := vacation.HolidayID(chi.URLParam(r, "id"))
	if err := h.Service.DeleteHoliday(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// REPORT ENDPOINTS
// =============================================================================

// UpcomingVacations returns charged vacations starting within the next week.
// GET /api/reports/upcoming
func (h *Handler) UpcomingVacations(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.UpcomingVacations(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]UpcomingVacationDTO, len(rows))
	for i, row := range rows {
		dtos[i] = UpcomingVacationDTO{
			Vacation:     toVacationDTO(row.Vacation, row.EmployeeName),
			EmployeeName: row.EmployeeName,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// UnderusedEmployees returns active employees leaving most of their
// entitlement unused.
// GET /api/reports/underused?year=2026
func (h *Handler) UnderusedEmployees(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r, "year")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	rows, err := h.Service.UnderusedEmployees(r.Context(), year)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]UnderusedEmployeeDTO, len(rows))
	for i, row := range rows {
		dtos[i] = UnderusedEmployeeDTO{
			Employee:  toEmployeeDTO(row.Employee),
			Year:      row.Year,
			Used:      row.Used,
			Remaining: row.Remaining,
			Usage:     row.Usage.StringFixed(4),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// SNAPSHOT ENDPOINTS
// =============================================================================

// ExportSnapshot streams the full state as a sectioned CSV document.
// GET /api/snapshot
func (h *Handler) ExportSnapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="vacations.csv"`)
	// Headers are already committed once the writer starts; a mid-stream
	// failure can only terminate the response.
	_ = h.Service.ExportCSV(r.Context(), w)
}

// ImportSnapshot loads a sectioned CSV document.
// POST /api/snapshot
func (h *Handler) ImportSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.ImportCSV(r.Context(), r.Body); err != nil {
		var pe *vacation.PersistenceError
		if errors.As(err, &pe) {
			writeError(w, http.StatusInternalServerError, "Failed to store snapshot", err)
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid snapshot", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) employeeNames(r *http.Request) (map[vacation.EmployeeID]string, error) {
	employees, err := h.Service.Employees(r.Context())
	if err != nil {
		return nil, err
	}
	names := make(map[vacation.EmployeeID]string, len(employees))
	for _, e := range employees {
		names[e.ID] = e.Name
	}
	return names, nil
}

func yearParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return vacation.Today().Year(), nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps a vacation package error onto an HTTP status.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, vacation.ErrInsufficientBalance),
		errors.Is(err, vacation.ErrTerminalStatus),
		errors.Is(err, vacation.ErrDuplicateName),
		errors.Is(err, vacation.ErrDuplicateRestriction):
		writeError(w, http.StatusConflict, err.Error(), nil)
	case vacation.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case vacation.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
