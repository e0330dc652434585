package exporter

import (
	"strconv"

	"qoedash/pkg/contracts/domain"
)

// formatFloat formats a float64 value with exactly 2 decimal places
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatValue formats an operator cell for CSV output. Numbers keep their
// source precision; text is written verbatim.
func formatValue(v domain.Value) string {
	switch {
	case v.Null:
		return ""
	case v.Numeric:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	default:
		return v.Raw
	}
}
