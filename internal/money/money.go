// Package money provides fixed-point-safe helpers for currency amounts.
//
// All amounts are non-negative float64 values in the table's currency.
// Rounding happens only at display and charge boundaries; intermediate
// computations stay unrounded to avoid compounding error.
package money

import "math"

// RoundCurrency rounds x to two decimal places using half-up rounding.
// Every amount sent to the payment gateway or shown to a user passes
// through this first.
func RoundCurrency(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}

// ApplyPercentage returns base * pct / 100, unrounded.
func ApplyPercentage(base, pct float64) float64 {
	return base * pct / 100
}

// Sub returns a - b clamped at zero. Remaining balances are never
// surfaced as negative, even when payments momentarily overshoot the
// total due to concurrent devices settling the same table.
func Sub(a, b float64) float64 {
	d := a - b
	if d < 0 {
		return 0
	}
	return d
}

// Equal reports whether two amounts match within rounding tolerance (±0.01).
func Equal(a, b float64) bool {
	return math.Abs(a-b) <= 0.01
}
