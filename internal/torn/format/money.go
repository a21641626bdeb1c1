// Package format renders game amounts for chat messages.
package format

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Money groups thousands and keeps two decimals for fractional amounts: 1,234 or 1,234.50.
func Money(d decimal.Decimal) string {
	if d.IsInteger() {
		return printer.Sprintf("%d", d.IntPart())
	}
	return printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

// Signed renders a delta with an explicit sign: +1.25, -3,000.00.
// Deltas always keep two decimals.
func Signed(d decimal.Decimal) string {
	sign := "+"
	if d.IsNegative() {
		sign = "-"
	}
	return sign + printer.Sprintf("%.2f", d.Abs().Round(2).InexactFloat64())
}

// Truncate shortens s to at most limit runes, ending with an ellipsis when cut.
func Truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= 1 {
		return string(r[:limit])
	}
	return string(r[:limit-1]) + "…"
}
