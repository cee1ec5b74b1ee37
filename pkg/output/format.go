// Package output provides utilities for formatting and displaying
// projection results.
package output

import (
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jasonmangold/nest-egg-explorer-tool/internal/projection"
)

// Summary is the projection overview printed above the yearly table.
type Summary struct {
	CurrentSavings        float64
	MonthlySpending       float64
	SafeMonthlyWithdrawal float64
	Depletion             projection.DepletionResult
}

// PrettyFormat writes a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, summary Summary, points []projection.Point) {
	p := message.NewPrinter(language.English)

	_, _ = p.Fprintf(w, "--- Nest egg projection ---\n")
	_, _ = p.Fprintf(w, "Current savings:         $%.2f\n", summary.CurrentSavings)
	_, _ = p.Fprintf(w, "Monthly spending:        $%.2f\n", summary.MonthlySpending)
	_, _ = p.Fprintf(w, "Safe monthly withdrawal: $%.2f\n", summary.SafeMonthlyWithdrawal)
	if summary.Depletion.MoneyLasts {
		_, _ = fmt.Fprintf(w, "Money lasts the full horizon\n")
	} else {
		_, _ = fmt.Fprintf(w, "Money runs out after %d years %d months\n",
			summary.Depletion.Years, summary.Depletion.Months)
	}

	_, _ = fmt.Fprintf(w, "\nYear | Balance          | Annual Spending\n")
	_, _ = fmt.Fprintf(w, "____ | ________________ | _______________\n")
	for _, point := range points {
		_, _ = p.Fprintf(w, "%4d | $%14.2f | $%.2f\n", point.Year, point.Balance, point.AnnualSpending)
	}
}

// CsvFormat writes in comma-separated value format.
func CsvFormat(w io.Writer, points []projection.Point) {
	_, _ = fmt.Fprintf(w, "\"year\",\"balance\",\"annual spending\"\n")
	for _, point := range points {
		_, _ = fmt.Fprintf(w, "\"%d\",\"%.2f\",\"%.2f\"\n", point.Year, point.Balance, point.AnnualSpending)
	}
}
