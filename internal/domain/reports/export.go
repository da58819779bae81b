package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// PayrollColumns is the header row shared by the CSV and XLSX exports.
var PayrollColumns = []string{"name", "base_pay", "overtime_pay", "total_deductions", "net", "withdrawal_early", "withdrawal_late"}

const payrollSheetName = "Payroll"

func payrollValues(row PayrollRow) []float64 {
	return []float64{
		row.Breakdown.BasePay,
		row.Breakdown.OvertimePay,
		row.Breakdown.TotalDeductions,
		row.Breakdown.Net,
		row.Split.Early,
		row.Split.Late,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PayrollFilename is the attachment name used for exports of the period.
func PayrollFilename(sheet PayrollSheet, ext string) string {
	return fmt.Sprintf("payroll_%d_%d.%s", sheet.Period.Month, sheet.Period.Year, ext)
}

// WritePayrollCSV writes one row per employee after a header row. Amounts are
// written unrounded.
func WritePayrollCSV(w io.Writer, sheet PayrollSheet) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(PayrollColumns); err != nil {
		return err
	}
	for _, row := range sheet.Rows {
		record := make([]string, 0, len(PayrollColumns))
		record = append(record, row.Employee.Name)
		for _, v := range payrollValues(row) {
			record = append(record, formatFloat(v))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WritePayrollXLSX writes the same columns as WritePayrollCSV into a workbook,
// followed by a totals row.
func WritePayrollXLSX(w io.Writer, sheet PayrollSheet) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), payrollSheetName); err != nil {
		return err
	}
	_ = f.SetDocProps(&excelize.DocProperties{
		Title:   "Payroll " + sheet.Period.String(),
		Creator: "wagebook",
	})

	for i, header := range PayrollColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(payrollSheetName, cell, header); err != nil {
			return err
		}
	}

	rowIdx := 2
	for _, row := range sheet.Rows {
		values := append([]any{row.Employee.Name}, floatsToAny(payrollValues(row))...)
		if err := setRow(f, rowIdx, values); err != nil {
			return err
		}
		rowIdx++
	}

	totals := []any{"total", "", "", "", sheet.Totals.Net, sheet.Totals.WithdrawalEarly, sheet.Totals.WithdrawalLate}
	if err := setRow(f, rowIdx, totals); err != nil {
		return err
	}

	return f.Write(w)
}

func setRow(f *excelize.File, rowIdx int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowIdx)
	if err != nil {
		return err
	}
	return f.SetSheetRow(payrollSheetName, cell, &values)
}

func floatsToAny(values []float64) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
