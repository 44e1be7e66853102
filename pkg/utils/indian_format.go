// Package utils provides common utility functions for IndiQuant.
package utils

import (
	"fmt"
	"math"
)

// FormatINR formats a number in Indian Rupee format (₹12,34,567.89).
// Uses the Indian numbering system: last 3 digits, then groups of 2.
func FormatINR(amount float64) string {
	negative := amount < 0
	paise := int64(math.Round(math.Abs(amount) * 100))

	formatted := fmt.Sprintf("%s.%02d", formatIndianNumber(paise/100), paise%100)
	if negative && paise > 0 {
		return "-₹" + formatted
	}
	return "₹" + formatted
}

// FormatRupees formats a whole-rupee amount with Indian grouping (₹1,23,457).
func FormatRupees(amount float64) string {
	negative := amount < 0
	rupees := int64(math.Round(math.Abs(amount)))
	if negative && rupees > 0 {
		return "-₹" + formatIndianNumber(rupees)
	}
	return "₹" + formatIndianNumber(rupees)
}

// FormatPct formats a percentage value with sign and suffix.
// e.g., 2.45 → "+2.45%", -1.23 → "-1.23%"
func FormatPct(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// formatIndianNumber formats an integer with Indian grouping (last 3, then 2s).
func formatIndianNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	result := s[len(s)-3:]
	remaining := s[:len(s)-3]
	for len(remaining) > 2 {
		result = remaining[len(remaining)-2:] + "," + result
		remaining = remaining[:len(remaining)-2]
	}
	return remaining + "," + result
}
