package reports

import (
	"time"

	"wagebook/internal/domain/payroll"
)

// DayNames is indexed Monday first.
var DayNames = [7]string{"الاثنين", "الثلاثاء", "الأربعاء", "الخميس", "الجمعة", "السبت", "الأحد"}

// MissingTime is shown when an arrival or departure time was not recorded.
const MissingTime = "-"

const maxDaysInMonth = 31

type DayEntry struct {
	EmployeeID  int64   `json:"employeeId"`
	Name        string  `json:"name"`
	Hours       float64 `json:"hours"`
	Arrival     string  `json:"arrival"`
	Departure   string  `json:"departure"`
	LateMinutes int     `json:"lateMinutes"`
	IsAbsent    bool    `json:"isAbsent"`
}

type DaySummary struct {
	Date           time.Time  `json:"date"`
	DayName        string     `json:"dayName"`
	Present        int        `json:"present"`
	Absent         int        `json:"absent"`
	TotalHours     float64    `json:"totalHours"`
	TotalOvertime  float64    `json:"totalOvertime"`
	TotalEmployees int        `json:"totalEmployees"`
	Employees      []DayEntry `json:"employees"`
}

func DayName(t time.Time) string {
	return DayNames[(int(t.Weekday())+6)%7]
}

// DailySummary reports attendance for every day of the period. Only employees
// with a record on a given day appear in that day's entries; when an employee
// has several records for one day the first one wins.
func DailySummary(employees []payroll.Employee, attendance map[int64][]payroll.AttendanceRecord, period payroll.Period) ([]DaySummary, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	byDay := make(map[int64]map[int]payroll.AttendanceRecord, len(employees))
	for _, emp := range employees {
		days := make(map[int]payroll.AttendanceRecord)
		for _, rec := range attendance[emp.ID] {
			if rec.EmployeeID != emp.ID || !period.Contains(rec.Date) {
				continue
			}
			d := rec.Date.Day()
			if _, seen := days[d]; !seen {
				days[d] = rec
			}
		}
		byDay[emp.ID] = days
	}

	lastDay := min(period.LastDay(), maxDaysInMonth)
	out := make([]DaySummary, 0, lastDay)
	for d := 1; d <= lastDay; d++ {
		date := period.Date(d)
		summary := DaySummary{
			Date:           date,
			DayName:        DayName(date),
			TotalEmployees: len(employees),
			Employees:      []DayEntry{},
		}
		for _, emp := range employees {
			rec, ok := byDay[emp.ID][d]
			if !ok {
				continue
			}
			if rec.IsAbsent {
				summary.Absent++
			} else {
				summary.Present++
				summary.TotalHours += rec.HoursWorked
				if rec.HoursWorked > payroll.StandardDayHours {
					summary.TotalOvertime += rec.HoursWorked - payroll.StandardDayHours
				}
			}
			summary.Employees = append(summary.Employees, DayEntry{
				EmployeeID:  emp.ID,
				Name:        emp.Name,
				Hours:       rec.HoursWorked,
				Arrival:     orMissing(rec.Arrival),
				Departure:   orMissing(rec.Departure),
				LateMinutes: rec.LateMinutes,
				IsAbsent:    rec.IsAbsent,
			})
		}
		out = append(out, summary)
	}
	return out, nil
}

func orMissing(value string) string {
	if value == "" {
		return MissingTime
	}
	return value
}
