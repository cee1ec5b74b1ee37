// Package report renders the projection summary as a downloadable PDF.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/jasonmangold/nest-egg-explorer-tool/internal/projection"
	"github.com/jasonmangold/nest-egg-explorer-tool/pkg/format"
)

const contentWidth = 190.0

// Inputs carries everything the report lays out.
type Inputs struct {
	CurrentSavings        float64
	MonthlySpending       float64
	SafeMonthlyWithdrawal float64
	Depletion             projection.DepletionResult
	Points                []projection.Point
	GeneratedAt           time.Time
}

type reportDoc struct {
	pdf *fpdf.Fpdf
}

// Generate renders the report and returns the PDF bytes.
func Generate(in Inputs) ([]byte, error) {
	r := &reportDoc{pdf: fpdf.New("P", "mm", "A4", "")}

	r.coverSection(in)
	r.summarySection(in)
	r.tableSection(in.Points)

	var buf bytes.Buffer
	if err := r.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render projection report: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *reportDoc) coverSection(in Inputs) {
	r.pdf.AddPage()

	r.pdf.SetFont("Arial", "B", 24)
	r.pdf.Ln(10)
	r.pdf.CellFormat(contentWidth, 15, "Retirement Spending Summary", "", 1, "C", false, 0, "")

	generated := in.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	r.pdf.SetFont("Arial", "I", 11)
	r.pdf.CellFormat(contentWidth, 8, fmt.Sprintf("Generated: %s", generated.Format("2 January 2006")), "", 1, "C", false, 0, "")
	r.pdf.Ln(8)
}

func (r *reportDoc) summarySection(in Inputs) {
	r.pdf.SetFont("Arial", "B", 12)
	r.pdf.SetFillColor(230, 230, 230)
	r.pdf.CellFormat(contentWidth, 8, "Your Plan", "1", 1, "C", true, 0, "")

	r.pdf.SetFont("Arial", "", 11)
	rows := []string{
		fmt.Sprintf("Current savings: %s", format.Currency(in.CurrentSavings)),
		fmt.Sprintf("Monthly spending: %s", format.Currency(in.MonthlySpending)),
		fmt.Sprintf("Safe monthly withdrawal: %s", format.WholeCurrency(in.SafeMonthlyWithdrawal)),
		depletionText(in.Depletion),
	}
	for i, row := range rows {
		border := "LR"
		if i == len(rows)-1 {
			border = "LRB"
		}
		r.pdf.CellFormat(contentWidth, 7, row, border, 1, "L", false, 0, "")
	}
	r.pdf.Ln(8)
}

func depletionText(d projection.DepletionResult) string {
	if d.MoneyLasts {
		return "Outlook: your money lasts the full 30-year horizon"
	}
	return fmt.Sprintf("Outlook: funds are projected to run out after %d years %d months", d.Years, d.Months)
}

func (r *reportDoc) tableSection(points []projection.Point) {
	r.pdf.SetFont("Arial", "B", 12)
	r.pdf.SetFillColor(230, 230, 230)
	r.pdf.CellFormat(contentWidth, 8, "Projected Balance by Year", "1", 1, "C", true, 0, "")

	colYear := 30.0
	colBalance := 80.0
	colSpending := contentWidth - colYear - colBalance

	r.pdf.SetFont("Arial", "B", 10)
	r.pdf.CellFormat(colYear, 7, "Year", "1", 0, "C", true, 0, "")
	r.pdf.CellFormat(colBalance, 7, "Balance", "1", 0, "C", true, 0, "")
	r.pdf.CellFormat(colSpending, 7, "Annual Spending", "1", 1, "C", true, 0, "")

	r.pdf.SetFont("Arial", "", 10)
	for _, point := range points {
		r.pdf.CellFormat(colYear, 6, fmt.Sprintf("%d", point.Year), "1", 0, "C", false, 0, "")
		r.pdf.CellFormat(colBalance, 6, format.Currency(point.Balance), "1", 0, "R", false, 0, "")
		r.pdf.CellFormat(colSpending, 6, format.Currency(point.AnnualSpending), "1", 1, "R", false, 0, "")
	}
}
