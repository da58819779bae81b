package reports

import (
	"time"

	"wagebook/internal/domain/payroll"
)

func day(year, month, d int) time.Time {
	return time.Date(year, time.Month(month), d, 0, 0, 0, 0, time.UTC)
}

// ali reproduces the worked example: net -25 for March 2025.
var ali = payroll.Employee{ID: 1, BranchID: 10, Name: "Ali", DailyWage: 100, HourlyWage: 10, InsuranceDeduction: 50}

var aliAttendance = []payroll.AttendanceRecord{
	{EmployeeID: 1, Date: day(2025, 3, 4), HoursWorked: 11, LateMinutes: 30},
}

var aliAdvances = []payroll.Advance{{EmployeeID: 1, Amount: 300, Months: 3}}

var march2025 = payroll.Period{Month: 3, Year: 2025}

func aliSheet() (PayrollSheet, error) {
	return BuildPayrollSheet(
		[]payroll.Employee{ali},
		map[int64][]payroll.AttendanceRecord{ali.ID: aliAttendance},
		map[int64][]payroll.Advance{ali.ID: aliAdvances},
		march2025,
	)
}
