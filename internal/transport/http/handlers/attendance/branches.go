package attendancehandler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"wagebook/internal/domain/attendance"
	"wagebook/internal/transport/http/api"
	"wagebook/internal/transport/http/middleware"
	"wagebook/internal/transport/http/shared"
)

type branchRequest struct {
	Name      string                     `json:"name"`
	Employees []attendance.EmployeeInput `json:"employees"`
}

func (h *Handler) handleListBranches(w http.ResponseWriter, r *http.Request) {
	branches, err := h.Service.ListBranches(r.Context(), scopeOf(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, branches, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateBranch(w http.ResponseWriter, r *http.Request) {
	var payload branchRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		invalidPayload(w, r)
		return
	}
	validator := shared.NewValidator()
	validator.Required("name", payload.Name, "is required")
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	branch, err := h.Service.CreateBranch(r.Context(), payload.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Created(w, branch, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateBranchWithEmployees(w http.ResponseWriter, r *http.Request) {
	var payload branchRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		invalidPayload(w, r)
		return
	}
	validator := shared.NewValidator()
	validator.Required("name", payload.Name, "is required")
	for i, emp := range payload.Employees {
		field := "employees[" + strconv.Itoa(i) + "]"
		validator.Required(field+".name", emp.Name, "is required")
		validateWages(validator, field+".", emp.Wages)
	}
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	branch, employees, err := h.Service.CreateBranchWithEmployees(r.Context(), payload.Name, payload.Employees)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Created(w, map[string]any{"branch": branch, "employees": employees}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteBranch(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(r, "branchID")
	if !ok {
		invalidID(w, r, "branch")
		return
	}
	if err := h.Service.DeleteBranch(r.Context(), scopeOf(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, map[string]int64{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBranchEmployees(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(r, "branchID")
	if !ok {
		invalidID(w, r, "branch")
		return
	}
	branch, employees, err := h.Service.BranchEmployees(r.Context(), scopeOf(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, map[string]any{"branch": branch, "employees": employees}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(r, "branchID")
	if !ok {
		invalidID(w, r, "branch")
		return
	}
	var payload attendance.EmployeeInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		invalidPayload(w, r)
		return
	}
	validator := shared.NewValidator()
	validator.Required("name", payload.Name, "is required")
	validateWages(validator, "", payload.Wages)
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	emp, err := h.Service.CreateEmployee(r.Context(), scopeOf(r), id, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Created(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateWages(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(r, "employeeID")
	if !ok {
		invalidID(w, r, "employee")
		return
	}
	var payload attendance.Wages
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		invalidPayload(w, r)
		return
	}
	validator := shared.NewValidator()
	validateWages(validator, "", payload)
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	emp, err := h.Service.UpdateWages(r.Context(), scopeOf(r), id, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(r, "employeeID")
	if !ok {
		invalidID(w, r, "employee")
		return
	}
	if err := h.Service.DeleteEmployee(r.Context(), scopeOf(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, map[string]int64{"id": id}, middleware.GetRequestID(r.Context()))
}

func validateWages(v *shared.Validator, prefix string, wages attendance.Wages) {
	v.NonNegative(prefix+"dailyWage", wages.DailyWage)
	v.NonNegative(prefix+"hourlyWage", wages.HourlyWage)
	v.NonNegative(prefix+"insuranceDeduction", wages.InsuranceDeduction)
}
