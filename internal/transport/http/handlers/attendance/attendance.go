package attendancehandler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"wagebook/internal/domain/attendance"
	"wagebook/internal/transport/http/api"
	"wagebook/internal/transport/http/middleware"
	"wagebook/internal/transport/http/shared"
)

const (
	defaultHistoryLimit = 31
	maxHistoryLimit     = 366
)

type entryRequest struct {
	Date        string  `json:"date"`
	Arrival     string  `json:"arrival"`
	Departure   string  `json:"departure"`
	Hours       float64 `json:"hours"`
	IsAbsent    bool    `json:"isAbsent"`
	LateMinutes int     `json:"lateMinutes"`
}

type manualEntryRequest struct {
	BranchID     int64  `json:"branchId"`
	EmployeeName string `json:"employeeName"`
	attendance.Wages
	entryRequest
}

type daySheetRequest struct {
	Date string                   `json:"date"`
	Rows []attendance.DaySheetRow `json:"rows"`
}

type withdrawalRequest struct {
	Amount float64 `json:"amount"`
	Date   string  `json:"date"`
}

func (e entryRequest) validate(v *shared.Validator) attendance.Entry {
	date, _ := v.Date("date", e.Date)
	v.Clock("arrival", e.Arrival)
	v.Clock("departure", e.Departure)
	v.NonNegative("hours", e.Hours)
	v.NonNegative("lateMinutes", float64(e.LateMinutes))
	return attendance.Entry{
		Date:        date,
		Arrival:     e.Arrival,
		Departure:   e.Departure,
		Hours:       e.Hours,
		IsAbsent:    e.IsAbsent,
		LateMinutes: e.LateMinutes,
	}
}

// sheetDate reads the day sheet date from the query string, defaulting to today.
func (h *Handler) sheetDate(raw string) (time.Time, bool) {
	if strings.TrimSpace(raw) == "" {
		now := h.now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), true
	}
	date, err := shared.ParseDate(raw)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

func (h *Handler) handleDaySheet(w http.ResponseWriter, r *http.Request) {
	branchID, ok := shared.PathID(r, "branchID")
	if !ok {
		invalidID(w, r, "branch")
		return
	}
	date, ok := h.sheetDate(r.URL.Query().Get("date"))
	if !ok {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "date", Reason: "must be a valid date in YYYY-MM-DD format"}})
		return
	}
	lines, err := h.Service.DaySheet(r.Context(), scopeOf(r), branchID, date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, map[string]any{"date": date.Format("2006-01-02"), "rows": lines}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSaveDaySheet(w http.ResponseWriter, r *http.Request) {
	branchID, ok := shared.PathID(r, "branchID")
	if !ok {
		invalidID(w, r, "branch")
		return
	}
	var payload daySheetRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		invalidPayload(w, r)
		return
	}
	raw := payload.Date
	if raw == "" {
		raw = r.URL.Query().Get("date")
	}
	date, ok := h.sheetDate(raw)
	validator := shared.NewValidator()
	if !ok {
		validator.Add("date", "must be a valid date in YYYY-MM-DD format")
	}
	for _, row := range payload.Rows {
		validator.Clock("arrival", row.Arrival)
		validator.Clock("departure", row.Departure)
		validator.NonNegative("hours", row.Hours)
	}
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	saved, err := h.Service.SaveDaySheet(r.Context(), scopeOf(r), branchID, date, payload.Rows)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, map[string]any{"date": date.Format("2006-01-02"), "saved": saved}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleManualEntry(w http.ResponseWriter, r *http.Request) {
	var payload manualEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		invalidPayload(w, r)
		return
	}
	validator := shared.NewValidator()
	validator.Required("employeeName", payload.EmployeeName, "is required")
	if payload.BranchID <= 0 {
		validator.Add("branchId", "is required")
	}
	validateWages(validator, "", payload.Wages)
	entry := payload.entryRequest.validate(validator)
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	emp, rec, err := h.Service.ManualEntry(r.Context(), scopeOf(r), attendance.ManualEntry{
		BranchID:     payload.BranchID,
		EmployeeName: payload.EmployeeName,
		Wages:        payload.Wages,
		Entry:        entry,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Created(w, map[string]any{"employee": emp, "record": rec}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleEmployeeAttendance(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(r, "employeeID")
	if !ok {
		invalidID(w, r, "employee")
		return
	}
	page := shared.ParsePagination(r, defaultHistoryLimit, maxHistoryLimit)
	records, err := h.Service.EmployeeAttendance(r.Context(), scopeOf(r), id, page.Limit, page.Offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, map[string]any{"records": records, "limit": page.Limit, "offset": page.Offset}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRecordAttendance(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(r, "employeeID")
	if !ok {
		invalidID(w, r, "employee")
		return
	}
	var payload entryRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		invalidPayload(w, r)
		return
	}
	validator := shared.NewValidator()
	entry := payload.validate(validator)
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	rec, err := h.Service.RecordAttendance(r.Context(), scopeOf(r), id, entry)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Created(w, rec, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListAdvances(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(r, "employeeID")
	if !ok {
		invalidID(w, r, "employee")
		return
	}
	advances, err := h.Service.Advances(r.Context(), scopeOf(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, advances, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAddAdvance(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(r, "employeeID")
	if !ok {
		invalidID(w, r, "employee")
		return
	}
	var payload attendance.AdvanceInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		invalidPayload(w, r)
		return
	}
	validator := shared.NewValidator()
	validator.NonNegative("amount", payload.Amount)
	validator.NonNegative("months", float64(payload.Months))
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	advance, err := h.Service.AddAdvance(r.Context(), scopeOf(r), id, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Created(w, advance, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListWithdrawals(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(r, "employeeID")
	if !ok {
		invalidID(w, r, "employee")
		return
	}
	withdrawals, err := h.Service.Withdrawals(r.Context(), scopeOf(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, withdrawals, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAddWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(r, "employeeID")
	if !ok {
		invalidID(w, r, "employee")
		return
	}
	var payload withdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		invalidPayload(w, r)
		return
	}
	validator := shared.NewValidator()
	validator.NonNegative("amount", payload.Amount)
	date, _ := validator.Date("date", payload.Date)
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	withdrawal, err := h.Service.AddWithdrawal(r.Context(), scopeOf(r), id, attendance.WithdrawalInput{Amount: payload.Amount, Date: date})
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Created(w, withdrawal, middleware.GetRequestID(r.Context()))
}
