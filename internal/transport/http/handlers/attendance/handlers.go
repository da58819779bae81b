package attendancehandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"wagebook/internal/domain/attendance"
	"wagebook/internal/domain/audit"
	"wagebook/internal/domain/auth"
	"wagebook/internal/domain/payroll"
	"wagebook/internal/transport/http/api"
	"wagebook/internal/transport/http/middleware"
)

type Service interface {
	ListBranches(ctx context.Context, scope auth.Scope) ([]attendance.Branch, error)
	CreateBranch(ctx context.Context, name string) (attendance.Branch, error)
	CreateBranchWithEmployees(ctx context.Context, name string, employees []attendance.EmployeeInput) (attendance.Branch, []payroll.Employee, error)
	DeleteBranch(ctx context.Context, scope auth.Scope, branchID int64) error
	BranchEmployees(ctx context.Context, scope auth.Scope, branchID int64) (attendance.Branch, []payroll.Employee, error)
	CreateEmployee(ctx context.Context, scope auth.Scope, branchID int64, in attendance.EmployeeInput) (payroll.Employee, error)
	UpdateWages(ctx context.Context, scope auth.Scope, employeeID int64, wages attendance.Wages) (payroll.Employee, error)
	DeleteEmployee(ctx context.Context, scope auth.Scope, employeeID int64) error

	ManualEntry(ctx context.Context, scope auth.Scope, in attendance.ManualEntry) (payroll.Employee, payroll.AttendanceRecord, error)
	DaySheet(ctx context.Context, scope auth.Scope, branchID int64, date time.Time) ([]attendance.DaySheetLine, error)
	SaveDaySheet(ctx context.Context, scope auth.Scope, branchID int64, date time.Time, rows []attendance.DaySheetRow) (int, error)
	EmployeeAttendance(ctx context.Context, scope auth.Scope, employeeID int64, limit, offset int) ([]payroll.AttendanceRecord, error)
	RecordAttendance(ctx context.Context, scope auth.Scope, employeeID int64, entry attendance.Entry) (payroll.AttendanceRecord, error)

	Advances(ctx context.Context, scope auth.Scope, employeeID int64) ([]payroll.Advance, error)
	AddAdvance(ctx context.Context, scope auth.Scope, employeeID int64, in attendance.AdvanceInput) (payroll.Advance, error)
	Withdrawals(ctx context.Context, scope auth.Scope, employeeID int64) ([]attendance.Withdrawal, error)
	AddWithdrawal(ctx context.Context, scope auth.Scope, employeeID int64, in attendance.WithdrawalInput) (attendance.Withdrawal, error)
}

type Handler struct {
	Service     Service
	Perms       middleware.PermissionStore
	Idempotency middleware.IdempotencyBackend
	Audit       middleware.AuditRecorder
	Now         func() time.Time

	// BranchRoutes are mounted under /branches/{branchID} next to the
	// attendance routes.
	BranchRoutes []func(r chi.Router)
}

func NewHandler(service Service, perms middleware.PermissionStore, idem middleware.IdempotencyBackend) *Handler {
	return &Handler{Service: service, Perms: perms, Idempotency: idem, Now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	require := func(perm string) func(http.Handler) http.Handler {
		return middleware.RequirePermission(perm, h.Perms)
	}
	audited := func(action, entity, param string) func(http.Handler) http.Handler {
		return middleware.Audited(h.Audit, action, entity, param)
	}

	r.Route("/branches", func(r chi.Router) {
		r.With(require(auth.PermViewBranches)).Get("/", h.handleListBranches)
		r.With(require(auth.PermManageEmployees)).Post("/", h.handleCreateBranch)
		r.With(require(auth.PermManageEmployees)).Post("/with-employees", h.handleCreateBranchWithEmployees)
		r.Route("/{branchID}", func(r chi.Router) {
			r.With(require(auth.PermDeleteBranch), audited(audit.ActionBranchDelete, "branch", "branchID")).Delete("/", h.handleDeleteBranch)
			r.With(require(auth.PermViewBranches)).Get("/employees", h.handleBranchEmployees)
			r.With(require(auth.PermManageEmployees)).Post("/employees", h.handleCreateEmployee)
			r.With(require(auth.PermManageAttendance)).Get("/attendance", h.handleDaySheet)
			r.With(require(auth.PermManageAttendance)).Post("/attendance", h.handleSaveDaySheet)
			for _, mount := range h.BranchRoutes {
				mount(r)
			}
		})
	})

	r.With(require(auth.PermManualEntry), h.idempotent, audited(audit.ActionManualEntry, "attendance", "")).Post("/attendance/manual", h.handleManualEntry)

	r.Route("/employees/{employeeID}", func(r chi.Router) {
		r.With(require(auth.PermManageEmployees), audited(audit.ActionEmployeeDelete, "employee", "employeeID")).Delete("/", h.handleDeleteEmployee)
		r.With(require(auth.PermManageEmployees), audited(audit.ActionWagesUpdate, "employee", "employeeID")).Put("/wages", h.handleUpdateWages)
		r.With(require(auth.PermManageAttendance)).Get("/attendance", h.handleEmployeeAttendance)
		r.With(require(auth.PermManageAttendance)).Post("/attendance", h.handleRecordAttendance)
		r.With(require(auth.PermManageAdvances)).Get("/advances", h.handleListAdvances)
		r.With(require(auth.PermManageAdvances), h.idempotent, audited(audit.ActionAdvanceCreate, "employee", "employeeID")).Post("/advances", h.handleAddAdvance)
		r.With(require(auth.PermManageAdvances)).Get("/withdrawals", h.handleListWithdrawals)
		r.With(require(auth.PermManageAdvances), h.idempotent, audited(audit.ActionWithdrawalCreate, "employee", "employeeID")).Post("/withdrawals", h.handleAddWithdrawal)
	})
}

func (h *Handler) idempotent(next http.Handler) http.Handler {
	if h.Idempotency == nil {
		return next
	}
	return middleware.Idempotent(h.Idempotency)(next)
}

func (h *Handler) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

func scopeOf(r *http.Request) auth.Scope {
	scope, _ := middleware.GetScope(r.Context())
	return scope
}

func invalidPayload(w http.ResponseWriter, r *http.Request) {
	api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
}

func invalidID(w http.ResponseWriter, r *http.Request, what string) {
	api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid "+what+" id", middleware.GetRequestID(r.Context()))
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, attendance.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "branch not assigned to user", requestID)
	case errors.Is(err, attendance.ErrBranchNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "branch not found", requestID)
	case errors.Is(err, attendance.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
	case errors.Is(err, attendance.ErrInvalidInput),
		errors.Is(err, attendance.ErrInvalidTime),
		errors.Is(err, payroll.ErrMalformedWageParameters):
		api.Fail(w, http.StatusBadRequest, "invalid_input", err.Error(), requestID)
	default:
		slog.Error("attendance request failed", "path", r.URL.Path, "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "request failed", requestID)
	}
}
