package model

import "github.com/shopspring/decimal"

// Instrument holds the per-symbol contract metadata needed to build valid
// orders: the smallest price and quantity increments the exchange accepts,
// the minimum order quantity, and the leverage ceiling.
type Instrument struct {
	Symbol            string
	TickSize          decimal.Decimal
	StepSize          decimal.Decimal
	MinSize           decimal.Decimal
	MaxLeverage       int
	QuantityIsInteger bool
}

// FallbackInstrument returns the degraded-mode metadata used when a symbol is
// missing from the instrument cache after a refresh. The increments are
// conservative enough for the major USDT pairs, so one delisted or renamed
// symbol never blocks the rest of the run.
func FallbackInstrument(symbol string) Instrument {
	return Instrument{
		Symbol:   symbol,
		TickSize: decimal.RequireFromString("0.0001"),
		StepSize: decimal.RequireFromString("0.1"),
		MinSize:  decimal.RequireFromString("0.1"),
	}
}
