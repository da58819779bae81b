package reportshandler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"wagebook/internal/domain/attendance"
	"wagebook/internal/domain/auth"
	"wagebook/internal/domain/payroll"
	"wagebook/internal/domain/reports"
	"wagebook/internal/transport/http/api"
	"wagebook/internal/transport/http/middleware"
	"wagebook/internal/transport/http/shared"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
	maxPerPage      = 8
)

type Service interface {
	DailyReport(ctx context.Context, scope auth.Scope, branchID *int64, period payroll.Period) ([]reports.DaySummary, error)
	PayrollSheet(ctx context.Context, scope auth.Scope, branchID *int64, period payroll.Period) (reports.PayrollSheet, error)
	EmployeeReceipt(ctx context.Context, scope auth.Scope, employeeID int64, period payroll.Period) (reports.Receipt, error)
	BranchReceipts(ctx context.Context, scope auth.Scope, branchID int64, period payroll.Period) (reports.ReceiptBatch, error)
}

type Recorder interface {
	RecordReport(kind string, skipped int)
}

type Handler struct {
	Service         Service
	Perms           middleware.PermissionStore
	Metrics         Recorder
	ReceiptsPerPage int
	Now             func() time.Time
}

func NewHandler(service Service, perms middleware.PermissionStore, metrics Recorder, receiptsPerPage int) *Handler {
	if receiptsPerPage < 1 {
		receiptsPerPage = reports.DefaultReceiptsPerPage
	}
	return &Handler{Service: service, Perms: perms, Metrics: metrics, ReceiptsPerPage: receiptsPerPage, Now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermViewDailyReport, h.Perms)).Get("/daily", h.handleDaily)
		r.With(middleware.RequirePermission(auth.PermViewPayroll, h.Perms)).Get("/payroll", h.handlePayroll)
	})
	r.With(middleware.RequirePermission(auth.PermPrintReceipts, h.Perms)).Get("/receipts/{employeeID}/{month}/{year}", h.handleEmployeeReceipt)
}

// RegisterBranchRoutes mounts the routes that live under /branches/{branchID}.
func (h *Handler) RegisterBranchRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermPrintReceipts, h.Perms)).Get("/receipts/{month}/{year}", h.handleBranchReceipts)
}

func (h *Handler) now() time.Time {
	if h.Now == nil {
		return time.Now().UTC()
	}
	return h.Now().UTC()
}

func (h *Handler) record(kind string, skipped int) {
	if h.Metrics != nil {
		h.Metrics.RecordReport(kind, skipped)
	}
}

func (h *Handler) handleDaily(w http.ResponseWriter, r *http.Request) {
	period, err := shared.ParsePeriod(r, h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	branchID, ok := shared.QueryID(r, "branch_id")
	if !ok {
		invalidID(w, r, "branch")
		return
	}
	scope, _ := middleware.GetScope(r.Context())
	days, err := h.Service.DailyReport(r.Context(), scope, branchID, period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.record("daily", 0)
	api.Success(w, map[string]any{"period": period, "days": days}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePayroll(w http.ResponseWriter, r *http.Request) {
	period, err := shared.ParsePeriod(r, h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	branchID, ok := shared.QueryID(r, "branch_id")
	if !ok {
		invalidID(w, r, "branch")
		return
	}
	export := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("export")))
	validator := shared.NewValidator()
	validator.Enum("export", export, []string{"csv", "xlsx", "json"}, "must be csv, xlsx or json")
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	scope, _ := middleware.GetScope(r.Context())
	sheet, err := h.Service.PayrollSheet(r.Context(), scope, branchID, period)
	if err != nil {
		writeError(w, r, err)
		return
	}

	switch export {
	case "csv":
		var buf bytes.Buffer
		if err := reports.WritePayrollCSV(&buf, sheet); err != nil {
			writeError(w, r, err)
			return
		}
		h.record("payroll.csv", len(sheet.Skipped))
		api.Attachment(w, contentTypeCSV, reports.PayrollFilename(sheet, "csv"), buf.Bytes())
	case "xlsx":
		var buf bytes.Buffer
		if err := reports.WritePayrollXLSX(&buf, sheet); err != nil {
			writeError(w, r, err)
			return
		}
		h.record("payroll.xlsx", len(sheet.Skipped))
		api.Attachment(w, contentTypeXLSX, reports.PayrollFilename(sheet, "xlsx"), buf.Bytes())
	default:
		h.record("payroll", len(sheet.Skipped))
		api.Success(w, sheet, middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleEmployeeReceipt(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := shared.PathID(r, "employeeID")
	if !ok {
		invalidID(w, r, "employee")
		return
	}
	period, err := shared.PathPeriod(r, "month", "year")
	if err != nil {
		writeError(w, r, err)
		return
	}
	scope, _ := middleware.GetScope(r.Context())
	receipt, err := h.Service.EmployeeReceipt(r.Context(), scope, employeeID, period)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if wantsPDF(r) {
		var buf bytes.Buffer
		if err := reports.WriteReceiptsPDF(&buf, []reports.Receipt{receipt}, reports.ReceiptLayout(1)); err != nil {
			writeError(w, r, err)
			return
		}
		h.record("receipt.pdf", 0)
		api.Attachment(w, contentTypePDF, "receipt_"+receipt.Number+".pdf", buf.Bytes())
		return
	}
	h.record("receipt", 0)
	api.Success(w, receipt, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBranchReceipts(w http.ResponseWriter, r *http.Request) {
	branchID, ok := shared.PathID(r, "branchID")
	if !ok {
		invalidID(w, r, "branch")
		return
	}
	period, err := shared.PathPeriod(r, "month", "year")
	if err != nil {
		writeError(w, r, err)
		return
	}
	perPage, ok := h.perPage(r)
	if !ok {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "per_page", Reason: fmt.Sprintf("must be between 1 and %d", maxPerPage)}})
		return
	}

	scope, _ := middleware.GetScope(r.Context())
	batch, err := h.Service.BranchReceipts(r.Context(), scope, branchID, period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	layout := reports.ReceiptLayout(perPage)

	if wantsPDF(r) {
		var buf bytes.Buffer
		if err := reports.WriteReceiptsPDF(&buf, batch.Receipts, layout); err != nil {
			writeError(w, r, err)
			return
		}
		h.record("receipts.pdf", len(batch.Skipped))
		filename := fmt.Sprintf("receipts_%d_%d_%d.pdf", branchID, period.Month, period.Year)
		api.Attachment(w, contentTypePDF, filename, buf.Bytes())
		return
	}
	h.record("receipts", len(batch.Skipped))
	api.Success(w, map[string]any{"layout": layout, "receipts": batch.Receipts, "skipped": batch.Skipped}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) perPage(r *http.Request) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("per_page"))
	if raw == "" {
		return h.ReceiptsPerPage, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxPerPage {
		return 0, false
	}
	return n, true
}

func wantsPDF(r *http.Request) bool {
	return strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("format")), "pdf")
}

func invalidID(w http.ResponseWriter, r *http.Request, what string) {
	api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid "+what+" id", middleware.GetRequestID(r.Context()))
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, payroll.ErrInvalidPeriod):
		api.Fail(w, http.StatusBadRequest, "invalid_period", err.Error(), requestID)
	case errors.Is(err, reports.ErrBranchForbidden), errors.Is(err, reports.ErrEmployeeForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), requestID)
	case errors.Is(err, attendance.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
	case errors.Is(err, attendance.ErrBranchNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "branch not found", requestID)
	case errors.Is(err, payroll.ErrMalformedWageParameters):
		api.Fail(w, http.StatusUnprocessableEntity, "malformed_wages", err.Error(), requestID)
	default:
		slog.Error("report request failed", "path", r.URL.Path, "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "report generation failed", requestID)
	}
}
