package model

// Side is the direction of an order as the exchange expects it.
type Side string

const (
	SideBuy  Side = "Buy"
	SideSell Side = "Sell"
)

// Opposite returns the side that closes a position opened with s.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// TradeDecision is the outcome of a side-decision strategy for one symbol.
type TradeDecision string

const (
	DecisionBuy     TradeDecision = "buy"
	DecisionSell    TradeDecision = "sell"
	DecisionNoTrade TradeDecision = "no_trade"
)

// OrderSide maps a tradeable decision to the order side. DecisionNoTrade has
// no order side; callers must branch on it before calling this.
func (d TradeDecision) OrderSide() Side {
	if d == DecisionSell {
		return SideSell
	}
	return SideBuy
}
