package reports

import (
	"wagebook/internal/domain/payroll"
)

type PayrollRow struct {
	Employee  payroll.Employee        `json:"employee"`
	Breakdown payroll.PayBreakdown    `json:"breakdown"`
	Split     payroll.WithdrawalSplit `json:"split"`
}

type Totals struct {
	Net             float64 `json:"net"`
	Gross           float64 `json:"gross"`
	WithdrawalEarly float64 `json:"withdrawalEarly"`
	WithdrawalLate  float64 `json:"withdrawalLate"`
}

// SkippedEmployee records an employee left out of an aggregate because their
// pay could not be computed.
type SkippedEmployee struct {
	EmployeeID int64  `json:"employeeId"`
	Name       string `json:"name"`
	Reason     string `json:"reason"`
	Err        error  `json:"-"`
}

type PayrollSheet struct {
	Period  payroll.Period    `json:"period"`
	Rows    []PayrollRow      `json:"rows"`
	Totals  Totals            `json:"totals"`
	Skipped []SkippedEmployee `json:"skipped,omitempty"`
}

// Aggregator builds report projections on top of a payroll Calculator.
type Aggregator struct {
	Calc *payroll.Calculator
}

func NewAggregator(calc *payroll.Calculator) *Aggregator {
	if calc == nil {
		calc = payroll.NewCalculator(payroll.DefaultPolicy())
	}
	return &Aggregator{Calc: calc}
}

var defaultAggregator = NewAggregator(nil)

func BuildPayrollSheet(employees []payroll.Employee, attendance map[int64][]payroll.AttendanceRecord, advances map[int64][]payroll.Advance, period payroll.Period) (PayrollSheet, error) {
	return defaultAggregator.BuildPayrollSheet(employees, attendance, advances, period)
}

// BuildPayrollSheet computes the full-month breakdown and the day-10/day-20
// split for every employee, in list order. Employees whose computation fails
// are reported in Skipped and left out of the totals.
func (a *Aggregator) BuildPayrollSheet(employees []payroll.Employee, attendance map[int64][]payroll.AttendanceRecord, advances map[int64][]payroll.Advance, period payroll.Period) (PayrollSheet, error) {
	if err := period.Validate(); err != nil {
		return PayrollSheet{}, err
	}

	sheet := PayrollSheet{Period: period, Rows: make([]PayrollRow, 0, len(employees))}
	for _, emp := range employees {
		breakdown, err := a.Calc.Compute(emp, period, attendance[emp.ID], advances[emp.ID])
		if err != nil {
			sheet.Skipped = append(sheet.Skipped, skipped(emp, err))
			continue
		}
		split, err := a.Calc.Split(emp, period, attendance[emp.ID], advances[emp.ID])
		if err != nil {
			sheet.Skipped = append(sheet.Skipped, skipped(emp, err))
			continue
		}

		sheet.Rows = append(sheet.Rows, PayrollRow{Employee: emp, Breakdown: breakdown, Split: split})
		sheet.Totals.Net += breakdown.Net
		sheet.Totals.Gross += breakdown.Gross
		sheet.Totals.WithdrawalEarly += split.Early
		sheet.Totals.WithdrawalLate += split.Late
	}
	return sheet, nil
}

func skipped(emp payroll.Employee, err error) SkippedEmployee {
	return SkippedEmployee{EmployeeID: emp.ID, Name: emp.Name, Reason: err.Error(), Err: err}
}
