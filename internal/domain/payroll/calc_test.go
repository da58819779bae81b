package payroll

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"
)

func day(year, month, d int) time.Time {
	return time.Date(year, time.Month(month), d, 0, 0, 0, 0, time.UTC)
}

func TestComputeWorkedExample(t *testing.T) {
	emp := Employee{ID: 1, DailyWage: 100, HourlyWage: 10, InsuranceDeduction: 50}
	attendance := []AttendanceRecord{
		{EmployeeID: 1, Date: day(2025, 3, 4), HoursWorked: 11, LateMinutes: 30},
	}
	advances := []Advance{{EmployeeID: 1, Amount: 300, Months: 3}}

	got, err := Compute(emp, Period{Month: 3, Year: 2025}, attendance, advances)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.DaysPresent != 1 || got.BasePay != 100 {
		t.Fatalf("expected 1 day / base 100, got %d / %v", got.DaysPresent, got.BasePay)
	}
	if got.OvertimeHours != 2 || got.OvertimePay != 30 {
		t.Fatalf("expected overtime 2h / 30, got %v / %v", got.OvertimeHours, got.OvertimePay)
	}
	if got.ShortHoursDeduction != 0 {
		t.Fatalf("expected no short hours deduction, got %v", got.ShortHoursDeduction)
	}
	if got.LateDeduction != 5 {
		t.Fatalf("expected late deduction 5, got %v", got.LateDeduction)
	}
	if got.MonthlyAdvanceRepayment != 100 {
		t.Fatalf("expected advance repayment 100, got %v", got.MonthlyAdvanceRepayment)
	}
	if got.AbsenceDeduction != 0 {
		t.Fatalf("expected no absence deduction, got %v", got.AbsenceDeduction)
	}
	if got.TotalDeductions != 155 {
		t.Fatalf("expected total deductions 155, got %v", got.TotalDeductions)
	}
	if got.Gross != 130 {
		t.Fatalf("expected gross 130, got %v", got.Gross)
	}
	if got.Net != -25 {
		t.Fatalf("expected net -25, got %v", got.Net)
	}
}

func TestComputeAbsencesOnly(t *testing.T) {
	emp := Employee{ID: 7, DailyWage: 80, HourlyWage: 8, InsuranceDeduction: 25}
	attendance := []AttendanceRecord{
		{EmployeeID: 7, Date: day(2025, 6, 2), IsAbsent: true},
		{EmployeeID: 7, Date: day(2025, 6, 3), IsAbsent: true},
	}

	got, err := Compute(emp, Period{Month: 6, Year: 2025}, attendance, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AbsenceDays != 2 || got.AbsenceDeduction != 160 {
		t.Fatalf("expected 2 absences / 160, got %d / %v", got.AbsenceDays, got.AbsenceDeduction)
	}
	if got.BasePay != 0 || got.DaysPresent != 0 {
		t.Fatalf("expected no base pay, got %v", got.BasePay)
	}
	if got.Net != -160-25 {
		t.Fatalf("expected net -185, got %v", got.Net)
	}
}

func TestComputeNoAttendanceOnlyInsurance(t *testing.T) {
	emp := Employee{ID: 3, DailyWage: 120, HourlyWage: 15, InsuranceDeduction: 40}

	got, err := Compute(emp, Period{Month: 1, Year: 2024}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := PayBreakdown{InsuranceDeduction: 40, TotalDeductions: 40, Net: -40}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestComputeStandardDayBoundary(t *testing.T) {
	emp := Employee{ID: 1, DailyWage: 90, HourlyWage: 10}
	attendance := []AttendanceRecord{{EmployeeID: 1, Date: day(2025, 2, 3), HoursWorked: StandardDayHours}}

	got, err := Compute(emp, Period{Month: 2, Year: 2025}, attendance, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.OvertimeHours != 0 || got.OvertimePay != 0 {
		t.Fatalf("expected no overtime for a standard day, got %v", got.OvertimeHours)
	}
	if got.ShortHours != 0 || got.ShortHoursDeduction != 0 {
		t.Fatalf("expected no short hours for a standard day, got %v", got.ShortHours)
	}
	if got.Net != 90 {
		t.Fatalf("expected net 90, got %v", got.Net)
	}
}

func TestComputeShortHoursAndLateOnAbsentDay(t *testing.T) {
	emp := Employee{ID: 1, DailyWage: 100, HourlyWage: 10}
	attendance := []AttendanceRecord{
		{EmployeeID: 1, Date: day(2025, 4, 1), HoursWorked: 6},
		{EmployeeID: 1, Date: day(2025, 4, 2), IsAbsent: true, HoursWorked: 12, LateMinutes: 60},
	}

	got, err := Compute(emp, Period{Month: 4, Year: 2025}, attendance, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ShortHours != 3 || got.ShortHoursDeduction != 30 {
		t.Fatalf("expected 3 short hours / 30, got %v / %v", got.ShortHours, got.ShortHoursDeduction)
	}
	if got.TotalHours != 6 {
		t.Fatalf("absent day hours must not count, got %v", got.TotalHours)
	}
	if got.LateMinutes != 60 || got.LateDeduction != 10 {
		t.Fatalf("expected late minutes of the absent day to count, got %d / %v", got.LateMinutes, got.LateDeduction)
	}
}

func TestComputeFiltersEmployeeAndMonth(t *testing.T) {
	emp := Employee{ID: 1, DailyWage: 50, HourlyWage: 5}
	attendance := []AttendanceRecord{
		{EmployeeID: 1, Date: day(2025, 5, 10), HoursWorked: 9},
		{EmployeeID: 2, Date: day(2025, 5, 10), HoursWorked: 9},
		{EmployeeID: 1, Date: day(2025, 4, 30), HoursWorked: 9},
		{EmployeeID: 1, Date: day(2024, 5, 10), HoursWorked: 9},
	}

	got, err := Compute(emp, Period{Month: 5, Year: 2025}, attendance, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.DaysPresent != 1 {
		t.Fatalf("expected 1 matching record, got %d", got.DaysPresent)
	}
}

func TestComputeThroughCutoffKeepsFlatDeductions(t *testing.T) {
	emp := Employee{ID: 1, DailyWage: 100, HourlyWage: 10, InsuranceDeduction: 30}
	attendance := []AttendanceRecord{
		{EmployeeID: 1, Date: day(2025, 7, 10), HoursWorked: 9},
		// time of day must not push the record past the cutoff date
		{EmployeeID: 1, Date: time.Date(2025, 7, 10, 18, 30, 0, 0, time.UTC), HoursWorked: 9},
		{EmployeeID: 1, Date: day(2025, 7, 11), HoursWorked: 9},
	}
	advances := []Advance{{EmployeeID: 1, Amount: 120, Months: 4}}

	got, err := ComputeThrough(emp, Period{Month: 7, Year: 2025}, attendance, advances, day(2025, 7, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.DaysPresent != 2 {
		t.Fatalf("expected 2 days through cutoff, got %d", got.DaysPresent)
	}
	if got.MonthlyAdvanceRepayment != 30 || got.InsuranceDeduction != 30 {
		t.Fatalf("flat deductions must not be prorated, got %v / %v", got.MonthlyAdvanceRepayment, got.InsuranceDeduction)
	}
}

func TestMonthlyAdvanceRepaymentSkipsNonPositiveMonths(t *testing.T) {
	advances := []Advance{
		{Amount: 600, Months: 6},
		{Amount: 500, Months: 0},
		{Amount: 400, Months: -2},
	}
	if got := MonthlyAdvanceRepayment(advances); got != 100 {
		t.Fatalf("expected 100, got %v", got)
	}
}

func TestComputeInvalidPeriod(t *testing.T) {
	emp := Employee{ID: 1}
	for _, period := range []Period{{Month: 0, Year: 2025}, {Month: 13, Year: 2025}, {Month: 5, Year: 0}, {Month: 5, Year: 10000}} {
		if _, err := Compute(emp, period, nil, nil); !errors.Is(err, ErrInvalidPeriod) {
			t.Fatalf("expected ErrInvalidPeriod for %+v, got %v", period, err)
		}
	}
}

func TestComputeRejectsNegativeWages(t *testing.T) {
	period := Period{Month: 5, Year: 2025}
	for _, emp := range []Employee{{ID: 1, DailyWage: -1}, {ID: 2, HourlyWage: -0.5}, {ID: 3, InsuranceDeduction: -10}} {
		if _, err := Compute(emp, period, nil, nil); !errors.Is(err, ErrMalformedWageParameters) {
			t.Fatalf("expected ErrMalformedWageParameters for %+v, got %v", emp, err)
		}
	}
}

func TestComputeZeroWageIsValid(t *testing.T) {
	emp := Employee{ID: 1}
	attendance := []AttendanceRecord{{EmployeeID: 1, Date: day(2025, 5, 1), HoursWorked: 12}}
	got, err := Compute(emp, Period{Month: 5, Year: 2025}, attendance, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Net != 0 || got.OvertimeHours != 3 {
		t.Fatalf("unexpected breakdown: %+v", got)
	}
}

func TestCalculatorPolicyOverride(t *testing.T) {
	policy := DefaultPolicy()
	policy.StandardDayHours = 8
	policy.OvertimeMultiplier = 2
	calc := NewCalculator(policy)

	emp := Employee{ID: 1, DailyWage: 80, HourlyWage: 10}
	attendance := []AttendanceRecord{{EmployeeID: 1, Date: day(2025, 5, 1), HoursWorked: 9}}
	got, err := calc.Compute(emp, Period{Month: 5, Year: 2025}, attendance, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.OvertimeHours != 1 || got.OvertimePay != 20 {
		t.Fatalf("expected 1h overtime paid 20, got %v / %v", got.OvertimeHours, got.OvertimePay)
	}
}

func TestComputeInvariantsAndIdempotence(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	emp := Employee{ID: 9, DailyWage: 73.5, HourlyWage: 8.25, InsuranceDeduction: 12.75}
	period := Period{Month: 8, Year: 2025}

	for i := 0; i < 50; i++ {
		var attendance []AttendanceRecord
		for d := 1; d <= period.LastDay(); d++ {
			if rng.IntN(4) == 0 {
				continue
			}
			attendance = append(attendance, AttendanceRecord{
				EmployeeID:  emp.ID,
				Date:        day(period.Year, period.Month, d),
				IsAbsent:    rng.IntN(6) == 0,
				HoursWorked: float64(rng.IntN(28)) / 2,
				LateMinutes: rng.IntN(45),
			})
		}
		advances := []Advance{{Amount: float64(rng.IntN(1000)), Months: rng.IntN(5)}}

		first, err := Compute(emp, period, attendance, advances)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first.Gross != first.BasePay+first.OvertimePay {
			t.Fatalf("gross invariant broken: %+v", first)
		}
		if first.Net != first.Gross-first.TotalDeductions {
			t.Fatalf("net invariant broken: %+v", first)
		}
		if first.DaysPresent+first.AbsenceDays != len(attendance) {
			t.Fatalf("every record must be either present or absent: %+v", first)
		}
		second, err := Compute(emp, period, attendance, advances)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first != second {
			t.Fatalf("compute is not idempotent: %+v vs %+v", first, second)
		}
	}
}

func TestLastDayOfMonth(t *testing.T) {
	cases := map[[2]int]int{
		{2024, 2}:  29,
		{2025, 2}:  28,
		{2025, 4}:  30,
		{2025, 12}: 31,
	}
	for in, want := range cases {
		if got := LastDayOfMonth(in[0], in[1]); got != want {
			t.Fatalf("LastDayOfMonth(%d, %d) = %d, want %d", in[0], in[1], got, want)
		}
	}
}
