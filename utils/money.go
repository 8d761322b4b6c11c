package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount formats a money amount as a string like "12,500.50 AFN".
// Whole amounts drop the fraction: "12,500 AFN".
func FormatAmount(amount decimal.Decimal, currency string) string {
	amount = amount.Round(2)
	neg := amount.IsNegative()
	if neg {
		amount = amount.Neg()
	}

	whole := amount.Truncate(0)
	s := whole.String()
	frac := amount.Sub(whole)

	var b strings.Builder
	b.Grow(len(s) + len(s)/3 + len(currency) + 5)
	if neg {
		b.WriteByte('-')
	}

	// Insert separators from the left.
	rem := len(s) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(s[:rem])
	for i := rem; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}

	if !frac.IsZero() {
		b.WriteString(strings.TrimPrefix(frac.StringFixed(2), "0"))
	}
	if currency != "" {
		b.WriteByte(' ')
		b.WriteString(currency)
	}
	return b.String()
}
