package model

import "github.com/shopspring/decimal"

// BracketSpec carries the four prices of a take-profit/stop-loss pair
// attached to an open position. Both legs are stop-triggered, limit-executed;
// the limit price sits a small offset away from the stop so the limit stays
// reachable once the stop fires. Values are already quantized to the
// instrument tick size when the spec is built.
type BracketSpec struct {
	TakeProfitStop  decimal.Decimal
	TakeProfitLimit decimal.Decimal
	StopLossStop    decimal.Decimal
	StopLossLimit   decimal.Decimal
}
