package attendance

import (
	"time"

	"wagebook/internal/domain/payroll"
)

type Branch struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Withdrawal struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employeeId"`
	Amount     float64   `json:"amount"`
	Date       time.Time `json:"date"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Wages are the pay parameters of an employee as entered by a clerk.
type Wages struct {
	DailyWage          float64 `json:"dailyWage"`
	HourlyWage         float64 `json:"hourlyWage"`
	InsuranceDeduction float64 `json:"insuranceDeduction"`
}

type EmployeeInput struct {
	Name string `json:"name"`
	Wages
}

// Entry is one day of attendance as entered. Hours is only used when the
// arrival and departure times do not yield a duration.
type Entry struct {
	Date        time.Time `json:"date"`
	Arrival     string    `json:"arrival"`
	Departure   string    `json:"departure"`
	Hours       float64   `json:"hours"`
	IsAbsent    bool      `json:"isAbsent"`
	LateMinutes int       `json:"lateMinutes"`
}

type ManualEntry struct {
	BranchID     int64  `json:"branchId"`
	EmployeeName string `json:"employeeName"`
	Wages
	Entry
}

type DaySheetRow struct {
	EmployeeID  int64   `json:"employeeId"`
	Arrival     string  `json:"arrival"`
	Departure   string  `json:"departure"`
	Hours       float64 `json:"hours"`
	IsAbsent    bool    `json:"isAbsent"`
	LateMinutes int     `json:"lateMinutes"`
}

// DaySheetLine is one employee's row on a branch day sheet; Record is nil
// when nothing was entered for that day.
type DaySheetLine struct {
	Employee payroll.Employee          `json:"employee"`
	Record   *payroll.AttendanceRecord `json:"record"`
}

// SheetWrite is a pending attendance write. When UpdateOnly is set the record
// is only stored if one already exists for that employee and date.
type SheetWrite struct {
	Record     payroll.AttendanceRecord
	UpdateOnly bool
}

type AdvanceInput struct {
	Amount float64 `json:"amount"`
	Months int     `json:"months"`
}

type WithdrawalInput struct {
	Amount float64   `json:"amount"`
	Date   time.Time `json:"date"`
}

func (w Wages) employee(id, branchID int64, name string) payroll.Employee {
	return payroll.Employee{
		ID:                 id,
		BranchID:           branchID,
		Name:               name,
		DailyWage:          w.DailyWage,
		HourlyWage:         w.HourlyWage,
		InsuranceDeduction: w.InsuranceDeduction,
	}
}
