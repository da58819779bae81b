package reports

import (
	"errors"
	"testing"

	"wagebook/internal/domain/payroll"
)

func TestDailySummaryFebruary(t *testing.T) {
	employees := []payroll.Employee{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}
	attendance := map[int64][]payroll.AttendanceRecord{
		1: {
			{EmployeeID: 1, Date: day(2024, 2, 1), HoursWorked: 10, Arrival: "08:00"},
			{EmployeeID: 1, Date: day(2024, 2, 1), HoursWorked: 4},
			{EmployeeID: 1, Date: day(2024, 3, 1), HoursWorked: 9},
		},
		2: {
			{EmployeeID: 2, Date: day(2024, 2, 1), IsAbsent: true, LateMinutes: 15},
		},
	}

	days, err := DailySummary(employees, attendance, payroll.Period{Month: 2, Year: 2024})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 29 {
		t.Fatalf("expected 29 days in February 2024, got %d", len(days))
	}

	first := days[0]
	if first.DayName != "الخميس" {
		t.Fatalf("expected Thursday, got %s", first.DayName)
	}
	if first.Present != 1 || first.Absent != 1 || first.TotalEmployees != 2 {
		t.Fatalf("unexpected counts: %+v", first)
	}
	if first.TotalHours != 10 || first.TotalOvertime != 1 {
		t.Fatalf("expected 10h / 1h overtime, got %v / %v", first.TotalHours, first.TotalOvertime)
	}
	if len(first.Employees) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(first.Employees))
	}
	if first.Employees[0].Hours != 10 || first.Employees[0].Arrival != "08:00" || first.Employees[0].Departure != MissingTime {
		t.Fatalf("unexpected first entry: %+v", first.Employees[0])
	}
	if !first.Employees[1].IsAbsent || first.Employees[1].LateMinutes != 15 {
		t.Fatalf("unexpected absent entry: %+v", first.Employees[1])
	}

	second := days[1]
	if second.Employees == nil || len(second.Employees) != 0 || second.Present != 0 {
		t.Fatalf("expected empty day, got %+v", second)
	}
}

func TestDailySummaryIncludesDayThirtyOne(t *testing.T) {
	employees := []payroll.Employee{{ID: 1, Name: "A"}}
	attendance := map[int64][]payroll.AttendanceRecord{
		1: {{EmployeeID: 1, Date: day(2025, 1, 31), HoursWorked: 9}},
	}
	days, err := DailySummary(employees, attendance, payroll.Period{Month: 1, Year: 2025})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 31 {
		t.Fatalf("expected 31 days, got %d", len(days))
	}
	last := days[30]
	if last.Date.Day() != 31 || last.Present != 1 || last.TotalOvertime != 0 {
		t.Fatalf("unexpected last day: %+v", last)
	}
}

func TestDailySummaryInvalidPeriod(t *testing.T) {
	if _, err := DailySummary(nil, nil, payroll.Period{Month: 13, Year: 2025}); !errors.Is(err, payroll.ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestDayNameMondayFirst(t *testing.T) {
	if got := DayName(day(2025, 3, 3)); got != DayNames[0] {
		t.Fatalf("expected Monday, got %s", got)
	}
	if got := DayName(day(2025, 3, 9)); got != DayNames[6] {
		t.Fatalf("expected Sunday, got %s", got)
	}
}
