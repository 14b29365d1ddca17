// Package types - Pricing pipeline data model
package types

import (
	"math"

	"github.com/shopspring/decimal"
)

// Cents rounds a monetary amount to 2 decimal places.
// Every factor rounds at the point of computation; unrounded fractions
// must never accumulate across factors.
func Cents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// CentsFloat converts a float amount to a money value rounded to cents.
func CentsFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(2)
}

// RoundMultiplier rounds a tolerance or risk multiplier to 4 decimal places.
func RoundMultiplier(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// RoundMinutes rounds a time-in-minutes value to 2 decimal places.
func RoundMinutes(v float64) float64 {
	return math.Round(v*1e2) / 1e2
}
