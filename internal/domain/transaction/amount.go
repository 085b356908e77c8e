package transaction

import "github.com/shopspring/decimal"

// MaxAmount is the largest value the NUMERIC(20,2) amount and balance
// columns can hold.
var MaxAmount = decimal.New(1, 18).Sub(decimal.New(1, -2))

// Exponent limits for user-supplied amounts. decimal accepts any int32
// exponent, and rescaling one like 1e20000000 costs seconds of CPU.
const (
	maxAmountExponent = 18
	minAmountExponent = -20
)

// WithinAmountLimits reports whether d can be stored as an amount or a
// balance. It inspects the exponent before comparing, so that oversized
// inputs are rejected without being rescaled.
func WithinAmountLimits(d decimal.Decimal) bool {
	exp := d.Exponent()
	if exp > maxAmountExponent || exp < minAmountExponent {
		return false
	}
	return !d.Abs().GreaterThan(MaxAmount)
}
