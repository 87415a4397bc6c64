package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// maxAmount caps parsed prices well inside int64 cents.
var maxAmount = decimal.New(1, 10)

// ParseCents converts a decimal amount such as "12.50" to cents, rounding half away from zero.
func ParseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, Invalid("Price must be a valid positive number.")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, Invalid("Price must be a valid positive number.")
	}
	if d.IsNegative() || d.GreaterThan(maxAmount) {
		return 0, Invalid("Price must be a valid positive number.")
	}
	return d.Shift(2).Round(0).IntPart(), nil
}

// FormatCents renders cents as a fixed two-decimal amount.
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
