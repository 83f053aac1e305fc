// Package orders builds and submits entry and bracket orders. Submission
// failures come back as values; nothing here retries a rejected order.
package orders

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"tradeexecutor/src/model"
	"tradeexecutor/src/quantize"
)

// Sink is the exchange order surface the submitter writes to.
type Sink interface {
	PlaceMarketOrder(ctx context.Context, symbol string, side model.Side, qty string, reduceOnly bool) (*model.OrderResult, error)
	PlaceBracketOrder(ctx context.Context, positionID string, spec model.BracketSpec) (*model.OrderResult, error)
	SetLeverage(ctx context.Context, symbol string, leverage int) error
}

// RejectionError is an order the exchange refused with a code. It is
// surfaced to the orchestrator, which aborts the symbol; it is never retried
// here.
type RejectionError struct {
	Code int
	Msg  string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("exchange rejection: code=%d msg=%s", e.Code, e.Msg)
}

// Submitter submits entry and bracket orders through a Sink.
type Submitter struct {
	sink Sink
}

func NewSubmitter(sink Sink) *Submitter {
	return &Submitter{sink: sink}
}

// SubmitMarketOrder submits a market entry order and returns the exchange
// order ID. A response without an order ID, or with an error code, is a
// *RejectionError.
func (s *Submitter) SubmitMarketOrder(ctx context.Context, symbol string, side model.Side, qty decimal.Decimal) (string, error) {
	res, err := s.sink.PlaceMarketOrder(ctx, symbol, side, qty.String(), false)
	if err != nil {
		return "", fmt.Errorf("submit market order: %w", err)
	}
	if !res.Accepted() {
		return "", &RejectionError{Code: res.Code, Msg: res.Msg}
	}

	logger.WithFields(logger.Fields{
		"symbol":  symbol,
		"side":    side,
		"qty":     qty,
		"orderID": res.OrderID,
	}).Info("Market order accepted")
	return res.OrderID, nil
}

// SubmitCloseOrder flattens an open position with a reduce-only market
// order on the opposite side. Reduce-only keeps a stale size from flipping
// the position instead of closing it.
func (s *Submitter) SubmitCloseOrder(ctx context.Context, symbol string, positionSide model.Side, qty decimal.Decimal) (string, error) {
	res, err := s.sink.PlaceMarketOrder(ctx, symbol, positionSide.Opposite(), qty.String(), true)
	if err != nil {
		return "", fmt.Errorf("submit close order: %w", err)
	}
	if !res.Accepted() {
		return "", &RejectionError{Code: res.Code, Msg: res.Msg}
	}

	logger.WithFields(logger.Fields{
		"symbol":  symbol,
		"side":    positionSide.Opposite(),
		"qty":     qty,
		"orderID": res.OrderID,
	}).Info("Close order accepted")
	return res.OrderID, nil
}

// SubmitBracketOrder attaches the TP/SL pair to an open position. A failure
// does not unwind the position; re-attempting or closing manually is the
// caller's responsibility.
func (s *Submitter) SubmitBracketOrder(ctx context.Context, positionID string, spec model.BracketSpec) error {
	res, err := s.sink.PlaceBracketOrder(ctx, positionID, spec)
	if err != nil {
		return fmt.Errorf("submit bracket order: %w", err)
	}
	if res.Code != 0 {
		return &RejectionError{Code: res.Code, Msg: res.Msg}
	}

	logger.WithFields(logger.Fields{
		"positionID": positionID,
		"tpStop":     spec.TakeProfitStop,
		"tpLimit":    spec.TakeProfitLimit,
		"slStop":     spec.StopLossStop,
		"slLimit":    spec.StopLossLimit,
	}).Info("Bracket order accepted")
	return nil
}

// SetLeverage sets the symbol's leverage. Idempotent on the exchange side.
func (s *Submitter) SetLeverage(ctx context.Context, symbol string, leverage int) error {
	return s.sink.SetLeverage(ctx, symbol, leverage)
}

// ComputeBracket derives the TP/SL prices for a filled entry.
//
// A long takes profit above the entry and stops below; a short mirrors that.
// Each leg is stop-triggered and limit-executed: the limit sits
// limitOffsetTicks away from the stop, on the side the market is moving
// through when the stop fires, so the limit stays reachable. All four prices
// are quantized to the instrument tick.
func ComputeBracket(entry decimal.Decimal, side model.Side, tpPct, slPct decimal.Decimal, limitOffsetTicks int, inst model.Instrument) model.BracketSpec {
	one := decimal.NewFromInt(1)
	offset := inst.TickSize.Mul(decimal.NewFromInt(int64(limitOffsetTicks)))

	var tpStop, slStop decimal.Decimal
	if side == model.SideBuy {
		tpStop = entry.Mul(one.Add(tpPct))
		slStop = entry.Mul(one.Sub(slPct))
	} else {
		tpStop = entry.Mul(one.Sub(tpPct))
		slStop = entry.Mul(one.Add(slPct))
	}

	tpStop = quantize.Price(tpStop, inst.TickSize)
	slStop = quantize.Price(slStop, inst.TickSize)

	// Closing a long sells: the limit goes under the stop. Closing a short
	// buys: the limit goes over the stop.
	var tpLimit, slLimit decimal.Decimal
	if side == model.SideBuy {
		tpLimit = tpStop.Sub(offset)
		slLimit = slStop.Sub(offset)
	} else {
		tpLimit = tpStop.Add(offset)
		slLimit = slStop.Add(offset)
	}

	return model.BracketSpec{
		TakeProfitStop:  tpStop,
		TakeProfitLimit: tpLimit,
		StopLossStop:    slStop,
		StopLossLimit:   slLimit,
	}
}
