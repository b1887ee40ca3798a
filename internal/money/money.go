// Package money provides fixed-precision arithmetic for currency amounts and
// percentage rates. Amounts accumulate at full decimal precision; rounding to
// two places happens only when a value is rendered for display or export.
package money

import (
	"math"

	"github.com/shopspring/decimal"
)

// DisplayPlaces is the number of decimal places used when rendering amounts.
const DisplayPlaces = 2

// Zero is the zero amount.
var Zero = decimal.Zero

// FromFloat converts a raw float into a decimal amount. NaN, infinities, and
// negative values degrade to zero: the editing UI sends transient invalid
// states mid-keystroke and the engine must keep producing totals.
func FromFloat(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

// PercentOf returns rate percent of base, e.g. PercentOf(200, 10) = 20.
func PercentOf(base, rate decimal.Decimal) decimal.Decimal {
	return base.Mul(rate).Div(decimal.NewFromInt(100))
}

// ClampNonNegative floors the amount at zero.
func ClampNonNegative(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Round rounds half away from zero to the given number of places.
func Round(v decimal.Decimal, places int32) decimal.Decimal {
	return v.Round(places)
}

// Display renders an amount with two decimal places for UI and export payloads.
func Display(v decimal.Decimal) string {
	return v.StringFixed(DisplayPlaces)
}
