package payroll

import "time"

// Employee carries the wage parameters the engine needs. It is read-only for the
// duration of a calculation.
type Employee struct {
	ID                 int64   `json:"id"`
	BranchID           int64   `json:"branchId"`
	Name               string  `json:"name"`
	DailyWage          float64 `json:"dailyWage"`
	HourlyWage         float64 `json:"hourlyWage"`
	InsuranceDeduction float64 `json:"insuranceDeduction"`
}

// AttendanceRecord is one employee's entry for one calendar day.
type AttendanceRecord struct {
	ID          int64     `json:"id"`
	EmployeeID  int64     `json:"employeeId"`
	Date        time.Time `json:"date"`
	IsAbsent    bool      `json:"isAbsent"`
	HoursWorked float64   `json:"hoursWorked"`
	LateMinutes int       `json:"lateMinutes"`
	Arrival     string    `json:"arrival,omitempty"`
	Departure   string    `json:"departure,omitempty"`
}

// Advance is a cash advance repaid in equal monthly installments.
type Advance struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employeeId"`
	Amount     float64   `json:"amount"`
	Months     int       `json:"months"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Period struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

type PayBreakdown struct {
	DaysPresent             int     `json:"daysPresent"`
	AbsenceDays             int     `json:"absenceDays"`
	TotalHours              float64 `json:"totalHours"`
	OvertimeHours           float64 `json:"overtimeHours"`
	ShortHours              float64 `json:"shortHours"`
	LateMinutes             int     `json:"lateMinutes"`
	BasePay                 float64 `json:"basePay"`
	OvertimePay             float64 `json:"overtimePay"`
	AbsenceDeduction        float64 `json:"absenceDeduction"`
	LateDeduction           float64 `json:"lateDeduction"`
	ShortHoursDeduction     float64 `json:"shortHoursDeduction"`
	MonthlyAdvanceRepayment float64 `json:"monthlyAdvanceRepayment"`
	InsuranceDeduction      float64 `json:"insuranceDeduction"`
	Gross                   float64 `json:"gross"`
	TotalDeductions         float64 `json:"totalDeductions"`
	Net                     float64 `json:"net"`
}

// WithdrawalSplit divides accrued net pay into two installments. Late may be
// negative and is never clamped.
type WithdrawalSplit struct {
	Early       float64   `json:"withdrawalEarly"`
	Late        float64   `json:"withdrawalLate"`
	EarlyCutoff time.Time `json:"earlyCutoff"`
	LateCutoff  time.Time `json:"lateCutoff"`
}
