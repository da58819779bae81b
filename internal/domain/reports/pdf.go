package reports

import (
	_ "embed"
	"fmt"
	"io"
	"unicode"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidthMM  = 210.0
	pageHeightMM = 297.0
	pageMarginMM = 10.0

	fontFamily = "DejaVu"
)

// DejaVu Sans Condensed carries Arabic glyphs; the core PDF fonts only cover
// cp1252.
var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	fontRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	fontBold []byte
)

// WriteReceiptsPDF renders receipts onto A4 pages, layout.PerPage receipts per
// page stacked top to bottom.
func WriteReceiptsPDF(w io.Writer, receipts []Receipt, layout Layout) error {
	return renderReceipts(receipts, layout).Output(w)
}

func renderReceipts(receipts []Receipt, layout Layout) *gofpdf.Fpdf {
	if layout.PerPage < 1 {
		layout = ReceiptLayout(DefaultReceiptsPerPage)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddUTF8FontFromBytes(fontFamily, "", fontRegular)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", fontBold)
	pdf.SetMargins(pageMarginMM, pageMarginMM, pageMarginMM)
	pdf.SetAutoPageBreak(false, pageMarginMM)

	slotHeight := (pageHeightMM - 2*pageMarginMM) / float64(layout.PerPage)
	if len(receipts) == 0 {
		pdf.AddPage()
		pdf.SetFont(fontFamily, "", 12)
		pdf.Cell(0, 8, "No receipts for this period")
	}
	for i, receipt := range receipts {
		slot := i % layout.PerPage
		if slot == 0 {
			pdf.AddPage()
		}
		top := pageMarginMM + float64(slot)*slotHeight
		drawReceipt(pdf, receipt, top, slotHeight)
	}
	return pdf
}

// isRightToLeft reports whether s contains Arabic script, which gofpdf only
// lays out correctly in RTL mode.
func isRightToLeft(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Arabic, r) {
			return true
		}
	}
	return false
}

func drawReceipt(pdf *gofpdf.Fpdf, r Receipt, top, height float64) {
	width := pageWidthMM - 2*pageMarginMM
	pdf.Rect(pageMarginMM, top+1, width, height-2, "D")

	// compact cards only have room for the totals
	lineHeight := 5.0
	compact := height < 90

	pdf.SetXY(pageMarginMM+3, top+3)
	pdf.SetFont(fontFamily, "B", 11)
	pdf.CellFormat(width-6, lineHeight+1, fmt.Sprintf("Salary receipt #%s  -  %02d/%d", r.Number, r.Period.Month, r.Period.Year), "", 1, "L", false, 0, "")

	pdf.SetFont(fontFamily, "", 9)
	lines := [][2]string{
		{"Employee", r.EmployeeName},
		{"Branch", r.BranchName},
	}
	if !compact {
		lines = append(lines,
			[2]string{"Days present / absent", fmt.Sprintf("%d / %d", r.Breakdown.DaysPresent, r.Breakdown.AbsenceDays)},
			[2]string{"Hours / overtime hours", fmt.Sprintf("%.2f / %.2f", r.Breakdown.TotalHours, r.Breakdown.OvertimeHours)},
			[2]string{"Base pay", money(r.Breakdown.BasePay)},
			[2]string{"Overtime pay", money(r.Breakdown.OvertimePay)},
			[2]string{"Gross", money(r.Breakdown.Gross)},
			[2]string{"Absence deduction", money(r.AbsenceDeduction)},
			[2]string{"Late deduction", money(r.Breakdown.LateDeduction)},
			[2]string{"Short hours deduction", money(r.Breakdown.ShortHoursDeduction)},
			[2]string{"Advance repayment", money(r.Breakdown.MonthlyAdvanceRepayment)},
			[2]string{"Insurance", money(r.Breakdown.InsuranceDeduction)},
		)
	} else {
		lines = append(lines, [2]string{"Base / overtime", money(r.Breakdown.BasePay) + " / " + money(r.Breakdown.OvertimePay)})
	}
	lines = append(lines,
		[2]string{"Total deductions", money(r.Breakdown.TotalDeductions)},
		[2]string{"Net", money(r.Breakdown.Net)},
		[2]string{"Withdrawal day 10", money(r.Split.Early)},
		[2]string{"Withdrawal remainder", money(r.Split.Late)},
	)

	for _, line := range lines {
		if pdf.GetY()+lineHeight > top+height-2 {
			break
		}
		pdf.SetX(pageMarginMM + 3)
		pdf.CellFormat(60, lineHeight, line[0], "", 0, "L", false, 0, "")
		if isRightToLeft(line[1]) {
			pdf.RTL()
		}
		pdf.CellFormat(width-66, lineHeight, line[1], "", 1, "R", false, 0, "")
		pdf.LTR()
	}
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
