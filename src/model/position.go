package model

import "github.com/shopspring/decimal"

// Position is a read-only snapshot of an exchange position. The engine never
// writes positions directly; it only reads them to decide whether a symbol is
// already taken and to pick up the average entry price after a fill.
type Position struct {
	ID            string
	Symbol        string
	Side          Side
	AvgEntryPrice decimal.Decimal
	Size          decimal.Decimal
	LockedMargin  decimal.Decimal
	TakeProfit    decimal.Decimal
	StopLoss      decimal.Decimal
}

// Active reports whether the position should be treated as open.
//
// This is an OR of several numeric signals rather than a single authoritative
// flag: a nonzero size, locked margin, entry price, or attached trigger all
// count. A position with zero size but a stale margin lock is therefore
// classified as active. If the exchange ever exposes an explicit is-open
// field, prefer it here and keep this heuristic as the fallback.
func (p *Position) Active() bool {
	return p.Size.Sign() != 0 ||
		p.LockedMargin.Sign() != 0 ||
		p.AvgEntryPrice.Sign() != 0 ||
		p.TakeProfit.Sign() != 0 ||
		p.StopLoss.Sign() != 0
}
