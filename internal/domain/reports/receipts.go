package reports

import (
	"fmt"

	"wagebook/internal/domain/payroll"
)

// NoBranchName labels receipts of employees whose branch is unknown.
const NoBranchName = "بدون فرع"

const DefaultReceiptsPerPage = 4

type Receipt struct {
	Number           string                  `json:"number"`
	EmployeeID       int64                   `json:"employeeId"`
	EmployeeName     string                  `json:"employeeName"`
	BranchName       string                  `json:"branchName"`
	Period           payroll.Period          `json:"period"`
	Breakdown        payroll.PayBreakdown    `json:"breakdown"`
	Split            payroll.WithdrawalSplit `json:"split"`
	AbsenceDeduction float64                 `json:"absenceDeduction"`
}

type ReceiptBatch struct {
	Receipts []Receipt         `json:"receipts"`
	Skipped  []SkippedEmployee `json:"skipped,omitempty"`
}

// Layout describes how many receipts share a printed page.
type Layout struct {
	PerPage   int    `json:"perPage"`
	CardWidth string `json:"cardWidth"`
}

var cardWidths = map[int]string{1: "100%", 2: "48%", 4: "23%", 6: "15%", 8: "11%"}

func ReceiptLayout(perPage int) Layout {
	if perPage < 1 {
		perPage = 1
	}
	width, ok := cardWidths[perPage]
	if !ok {
		width = fmt.Sprintf("%d%%", 100/perPage-2)
	}
	return Layout{PerPage: perPage, CardWidth: width}
}

// ReceiptNumber concatenates employee id, month and year.
func ReceiptNumber(employeeID int64, period payroll.Period) string {
	return fmt.Sprintf("%d%d%d", employeeID, period.Month, period.Year)
}

func BuildReceipt(emp payroll.Employee, branchName string, attendance []payroll.AttendanceRecord, advances []payroll.Advance, period payroll.Period) (Receipt, error) {
	return defaultAggregator.BuildReceipt(emp, branchName, attendance, advances, period)
}

func BuildReceipts(employees []payroll.Employee, branchNames map[int64]string, attendance map[int64][]payroll.AttendanceRecord, advances map[int64][]payroll.Advance, period payroll.Period) (ReceiptBatch, error) {
	return defaultAggregator.BuildReceipts(employees, branchNames, attendance, advances, period)
}

// BuildReceipt pairs the full-month breakdown with a split whose second
// installment runs to month end. The absence deduction is recomputed from
// absence days rather than derived from the deduction total.
func (a *Aggregator) BuildReceipt(emp payroll.Employee, branchName string, attendance []payroll.AttendanceRecord, advances []payroll.Advance, period payroll.Period) (Receipt, error) {
	breakdown, err := a.Calc.Compute(emp, period, attendance, advances)
	if err != nil {
		return Receipt{}, err
	}
	split, err := a.Calc.SplitThroughMonthEnd(emp, period, attendance, advances)
	if err != nil {
		return Receipt{}, err
	}
	if branchName == "" {
		branchName = NoBranchName
	}
	return Receipt{
		Number:           ReceiptNumber(emp.ID, period),
		EmployeeID:       emp.ID,
		EmployeeName:     emp.Name,
		BranchName:       branchName,
		Period:           period,
		Breakdown:        breakdown,
		Split:            split,
		AbsenceDeduction: float64(breakdown.AbsenceDays) * emp.DailyWage,
	}, nil
}

func (a *Aggregator) BuildReceipts(employees []payroll.Employee, branchNames map[int64]string, attendance map[int64][]payroll.AttendanceRecord, advances map[int64][]payroll.Advance, period payroll.Period) (ReceiptBatch, error) {
	if err := period.Validate(); err != nil {
		return ReceiptBatch{}, err
	}
	batch := ReceiptBatch{Receipts: make([]Receipt, 0, len(employees))}
	for _, emp := range employees {
		receipt, err := a.BuildReceipt(emp, branchNames[emp.BranchID], attendance[emp.ID], advances[emp.ID], period)
		if err != nil {
			batch.Skipped = append(batch.Skipped, skipped(emp, err))
			continue
		}
		batch.Receipts = append(batch.Receipts, receipt)
	}
	return batch, nil
}
