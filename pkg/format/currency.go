// Package format renders currency values for human-facing output.
package format

import (
	"fmt"
	"math"
	"strings"
)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	formatted := groupThousands(fmt.Sprintf("%.2f", math.Abs(amount)))
	if amount < 0 {
		return "-$" + formatted
	}
	return "$" + formatted
}

// WholeCurrency returns a currency string rounded to whole dollars (e.g., "$1,235").
// Balances in tables and reports are shown without cents.
func WholeCurrency(amount float64) string {
	formatted := groupThousands(fmt.Sprintf("%.0f", math.Abs(math.Round(amount))))
	if amount < 0 {
		return "-$" + formatted
	}
	return "$" + formatted
}

func groupThousands(formatted string) string {
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	if len(parts) == 2 {
		return intPart + "." + parts[1]
	}
	return intPart
}
