// Package quantize rounds prices and quantities to the increments an
// instrument actually accepts. Prices snap to the nearest tick; quantities
// only ever round down, so a computed size never exceeds the margin budget
// that produced it.
package quantize

import "github.com/shopspring/decimal"

// Price returns the multiple of tick nearest to price, rounding half up.
// A non-positive tick is a programming error.
func Price(price, tick decimal.Decimal) decimal.Decimal {
	if tick.Sign() <= 0 {
		panic("quantize: tick size must be positive")
	}
	return price.Div(tick).Round(0).Mul(tick)
}

// Quantity floors qty to the instrument's step size, or to a whole number of
// units when integer is set. The result is never rounded up. A result below
// min is invalid and comes back as zero; callers must treat zero as
// "quantity too small", not substitute the minimum, since bumping to the
// minimum would exceed the intended margin. A non-positive step is a
// programming error.
func Quantity(qty, step, min decimal.Decimal, integer bool) decimal.Decimal {
	if step.Sign() <= 0 {
		panic("quantize: step size must be positive")
	}

	var q decimal.Decimal
	if integer {
		q = qty.Floor()
	} else {
		q = qty.Div(step).Floor().Mul(step)
	}

	if q.Sign() <= 0 || q.LessThan(min) {
		return decimal.Zero
	}
	return q
}
