package payroll

import (
	"errors"
	"testing"
)

func TestSplitAllAttendanceAfterDayTen(t *testing.T) {
	emp := Employee{ID: 1, DailyWage: 100, HourlyWage: 10, InsuranceDeduction: 50}
	advances := []Advance{{EmployeeID: 1, Amount: 200, Months: 2}}
	var attendance []AttendanceRecord
	for d := 15; d <= 28; d++ {
		attendance = append(attendance, AttendanceRecord{EmployeeID: 1, Date: day(2025, 9, d), HoursWorked: 9})
	}
	period := Period{Month: 9, Year: 2025}

	split, err := SplitThroughMonthEnd(emp, period, attendance, advances)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if split.Early != -150 {
		t.Fatalf("expected only flat deductions before day 10, got %v", split.Early)
	}
	full, err := Compute(emp, period, attendance, advances)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if split.Late != full.Net-split.Early {
		t.Fatalf("expected late %v, got %v", full.Net-split.Early, split.Late)
	}
	if split.Early+split.Late != full.Net {
		t.Fatalf("installments must add up to the month's net: %v + %v != %v", split.Early, split.Late, full.Net)
	}
}

func TestSplitStopsAtDayTwenty(t *testing.T) {
	emp := Employee{ID: 1, DailyWage: 100, HourlyWage: 10}
	attendance := []AttendanceRecord{
		{EmployeeID: 1, Date: day(2025, 1, 5), HoursWorked: 9},
		{EmployeeID: 1, Date: day(2025, 1, 20), HoursWorked: 9},
		{EmployeeID: 1, Date: day(2025, 1, 25), HoursWorked: 9},
	}

	split, err := Split(emp, Period{Month: 1, Year: 2025}, attendance, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if split.Early != 100 || split.Late != 100 {
		t.Fatalf("expected 100 / 100, got %v / %v", split.Early, split.Late)
	}
	if split.EarlyCutoff.Day() != 10 || split.LateCutoff.Day() != 20 {
		t.Fatalf("unexpected cutoffs %v / %v", split.EarlyCutoff, split.LateCutoff)
	}
}

func TestSplitLateInstallmentCanBeNegative(t *testing.T) {
	emp := Employee{ID: 1, DailyWage: 100, HourlyWage: 10}
	attendance := []AttendanceRecord{
		{EmployeeID: 1, Date: day(2025, 3, 2), HoursWorked: 9},
		{EmployeeID: 1, Date: day(2025, 3, 12), IsAbsent: true},
		{EmployeeID: 1, Date: day(2025, 3, 13), IsAbsent: true},
	}

	split, err := Split(emp, Period{Month: 3, Year: 2025}, attendance, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if split.Early != 100 || split.Late != -200 {
		t.Fatalf("expected 100 / -200, got %v / %v", split.Early, split.Late)
	}
}

func TestSplitInvalidPeriod(t *testing.T) {
	if _, err := Split(Employee{ID: 1}, Period{Month: 14, Year: 2025}, nil, nil); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestSplitRejectsNegativeWage(t *testing.T) {
	if _, err := Split(Employee{ID: 1, HourlyWage: -3}, Period{Month: 2, Year: 2025}, nil, nil); !errors.Is(err, ErrMalformedWageParameters) {
		t.Fatalf("expected ErrMalformedWageParameters, got %v", err)
	}
}
