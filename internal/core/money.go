// Package core defines the tracker's domain model and the pure
// calculations derived from it. Nothing here performs I/O.
package core

import "strconv"

// Money is an amount in whole currency units. Penalties are flat integer
// amounts, so no fractional arithmetic exists anywhere in the system.
type Money struct {
	Units int64
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{Units: m.Units + other.Units}
}

// Mul returns the amount multiplied by a non-negative count.
func (m Money) Mul(n int) Money {
	return Money{Units: m.Units * int64(n)}
}

// String renders the bare integer amount, as used in CSV exports.
func (m Money) String() string {
	return strconv.FormatInt(m.Units, 10)
}

// Format renders the amount with a currency symbol for display, e.g. "₱50".
func (m Money) Format(symbol string) string {
	if m.Units < 0 {
		return "-" + symbol + strconv.FormatInt(-m.Units, 10)
	}
	return symbol + strconv.FormatInt(m.Units, 10)
}
