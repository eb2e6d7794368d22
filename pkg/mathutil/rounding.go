// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/business-case/pkg/constants"
)

// Round rounds a value to the given number of decimal places.
func Round(val float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(val*scale) / scale
}

// RoundHalfUp rounds to the nearest integer with halves going towards
// positive infinity, so RoundHalfUp(-2.5) is -2. Projection line items use
// this rule.
func RoundHalfUp(val float64) float64 {
	return math.Floor(val + 0.5)
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// CalculatePercentage calculates what percentage value is of total
func CalculatePercentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return (value / total) * constants.PercentageMultiplier
}

// PercentToDecimal converts 8 (percent) into 0.08.
func PercentToDecimal(percent float64) float64 {
	return percent / constants.PercentageMultiplier
}

// DiscountFactor returns (1 + rate)^-periods.
func DiscountFactor(rate float64, periods int) float64 {
	return math.Pow(1+rate, -float64(periods))
}
