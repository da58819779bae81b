package payroll

import (
	"fmt"
	"time"
)

// Policy holds the fixed pay rules. DefaultPolicy mirrors the package constants;
// a Calculator built from a different Policy overrides them.
type Policy struct {
	StandardDayHours   float64
	OvertimeMultiplier float64
	MinutesPerHour     float64
	EarlyWithdrawalDay int
	LateWithdrawalDay  int
}

func DefaultPolicy() Policy {
	return Policy{
		StandardDayHours:   StandardDayHours,
		OvertimeMultiplier: OvertimeMultiplier,
		MinutesPerHour:     MinutesPerHour,
		EarlyWithdrawalDay: EarlyWithdrawalDay,
		LateWithdrawalDay:  LateWithdrawalDay,
	}
}

// Calculator turns attendance, advances and wage parameters into a PayBreakdown.
// It keeps no state between calls.
type Calculator struct {
	Policy Policy
}

func NewCalculator(policy Policy) *Calculator {
	return &Calculator{Policy: policy}
}

var defaultCalculator = NewCalculator(DefaultPolicy())

// Compute returns the full-month breakdown using the default policy.
func Compute(emp Employee, period Period, attendance []AttendanceRecord, advances []Advance) (PayBreakdown, error) {
	return defaultCalculator.Compute(emp, period, attendance, advances)
}

// ComputeThrough returns the breakdown of attendance dated on or before cutoff.
// Advances and insurance are charged at the full monthly rate regardless.
func ComputeThrough(emp Employee, period Period, attendance []AttendanceRecord, advances []Advance, cutoff time.Time) (PayBreakdown, error) {
	return defaultCalculator.ComputeThrough(emp, period, attendance, advances, cutoff)
}

func (c *Calculator) Compute(emp Employee, period Period, attendance []AttendanceRecord, advances []Advance) (PayBreakdown, error) {
	return c.compute(emp, period, attendance, advances, nil)
}

func (c *Calculator) ComputeThrough(emp Employee, period Period, attendance []AttendanceRecord, advances []Advance, cutoff time.Time) (PayBreakdown, error) {
	return c.compute(emp, period, attendance, advances, &cutoff)
}

func (c *Calculator) compute(emp Employee, period Period, attendance []AttendanceRecord, advances []Advance, cutoff *time.Time) (PayBreakdown, error) {
	if err := period.Validate(); err != nil {
		return PayBreakdown{}, err
	}
	if err := emp.Validate(); err != nil {
		return PayBreakdown{}, err
	}

	standard := c.Policy.StandardDayHours
	var out PayBreakdown
	for _, rec := range attendance {
		if rec.EmployeeID != emp.ID || !period.Contains(rec.Date) {
			continue
		}
		if cutoff != nil && civilDate(rec.Date).After(civilDate(*cutoff)) {
			continue
		}
		if rec.IsAbsent {
			out.AbsenceDays++
		} else {
			out.DaysPresent++
			out.TotalHours += rec.HoursWorked
			if rec.HoursWorked > standard {
				out.OvertimeHours += rec.HoursWorked - standard
			} else if rec.HoursWorked < standard {
				out.ShortHours += standard - rec.HoursWorked
			}
		}
		// lateness counts even on absent days
		out.LateMinutes += rec.LateMinutes
	}

	out.BasePay = float64(out.DaysPresent) * emp.DailyWage
	out.OvertimePay = out.OvertimeHours * emp.HourlyWage * c.Policy.OvertimeMultiplier
	out.ShortHoursDeduction = out.ShortHours * emp.HourlyWage
	out.LateDeduction = (float64(out.LateMinutes) / c.Policy.MinutesPerHour) * emp.HourlyWage
	out.AbsenceDeduction = float64(out.AbsenceDays) * emp.DailyWage
	out.MonthlyAdvanceRepayment = MonthlyAdvanceRepayment(advances)
	out.InsuranceDeduction = emp.InsuranceDeduction

	out.Gross = out.BasePay + out.OvertimePay
	out.TotalDeductions = out.AbsenceDeduction + out.LateDeduction + out.ShortHoursDeduction + out.MonthlyAdvanceRepayment + out.InsuranceDeduction
	out.Net = out.Gross - out.TotalDeductions
	return out, nil
}

// MonthlyAdvanceRepayment sums amount/months over every advance. Advances with a
// non-positive period contribute nothing. There is no expiry: an advance is
// charged every month until it is removed.
func MonthlyAdvanceRepayment(advances []Advance) float64 {
	var total float64
	for _, adv := range advances {
		if adv.Months <= 0 {
			continue
		}
		total += adv.Amount / float64(adv.Months)
	}
	return total
}

func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("%w: month %d", ErrInvalidPeriod, p.Month)
	}
	if p.Year < MinYear || p.Year > MaxYear {
		return fmt.Errorf("%w: year %d", ErrInvalidPeriod, p.Year)
	}
	return nil
}

// LastDay returns the number of days in the period's month.
func (p Period) LastDay() int {
	return LastDayOfMonth(p.Year, p.Month)
}

// Date returns the given day of the period at midnight UTC.
func (p Period) Date(day int) time.Time {
	return time.Date(p.Year, time.Month(p.Month), day, 0, 0, 0, 0, time.UTC)
}

func (p Period) Contains(t time.Time) bool {
	year, month, _ := t.Date()
	return year == p.Year && int(month) == p.Month
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

func (e Employee) Validate() error {
	if e.DailyWage < 0 {
		return fmt.Errorf("%w: negative daily wage for employee %d", ErrMalformedWageParameters, e.ID)
	}
	if e.HourlyWage < 0 {
		return fmt.Errorf("%w: negative hourly wage for employee %d", ErrMalformedWageParameters, e.ID)
	}
	if e.InsuranceDeduction < 0 {
		return fmt.Errorf("%w: negative insurance deduction for employee %d", ErrMalformedWageParameters, e.ID)
	}
	return nil
}

func LastDayOfMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func civilDate(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
