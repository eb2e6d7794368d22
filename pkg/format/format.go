// Package format renders numeric values with their unit. Output is
// locale-independent: comma thousands separators and a dot decimal point.
package format

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"INR": "₹",
}

// Value formats v according to unit: "%" renders a percentage, an ISO 4217
// code renders a currency amount, anything else renders a grouped number
// followed by the unit.
func Value(v float64, unit string) string {
	trimmed := strings.TrimSpace(unit)
	switch {
	case trimmed == "%":
		return Percentage(v)
	case IsCurrencyCode(trimmed):
		return Currency(v, trimmed)
	case trimmed == "":
		return Number(v, 2)
	default:
		return Number(v, 2) + " " + trimmed
	}
}

// IsCurrencyCode reports whether unit is a recognised ISO 4217 code.
func IsCurrencyCode(unit string) bool {
	if len(unit) != 3 {
		return false
	}
	_, err := currency.ParseISO(strings.ToUpper(unit))
	return err == nil
}

// Currency returns a currency string with symbol and thousands separators
// (e.g., "-€1,234.56"). Codes without a known symbol are used as a prefix
// ("CHF 1,234.56").
func Currency(amount float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	formatted := Number(abs(amount), 2)
	prefix, ok := currencySymbols[code]
	if !ok {
		prefix = code + " "
		if code == "" {
			prefix = ""
		}
	}
	if amount < 0 {
		return "-" + prefix + formatted
	}
	return prefix + formatted
}

// Percentage renders a percentage value with one decimal, e.g. 12.5 -> "12.5%".
func Percentage(v float64) string {
	if s, ok := nonFinite(v); ok {
		return s + "%"
	}
	return decimal.NewFromFloat(v).StringFixed(1) + "%"
}

// Number returns v rounded to the given decimals with thousands separators.
// Infinities render as "∞" and "-∞", NaN as "n/a".
func Number(v float64, decimals int32) string {
	if s, ok := nonFinite(v); ok {
		return s
	}
	sign := ""
	if v < 0 {
		sign = "-"
	}
	formatted := decimal.NewFromFloat(abs(v)).StringFixed(decimals)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := group(parts[0])
	if len(parts) == 2 {
		return sign + intPart + "." + parts[1]
	}
	return sign + intPart
}

func nonFinite(v float64) (string, bool) {
	switch {
	case math.IsNaN(v):
		return "n/a", true
	case math.IsInf(v, 1):
		return "∞", true
	case math.IsInf(v, -1):
		return "-∞", true
	}
	return "", false
}

func group(intPart string) string {
	if len(intPart) <= 3 {
		return intPart
	}
	var builder strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			builder.WriteByte(',')
		}
		builder.WriteRune(digit)
	}
	return builder.String()
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
