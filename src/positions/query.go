// Package positions reads the account's open positions and waits for entry
// fills. Positions are never written here; the exchange owns them.
package positions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"tradeexecutor/src/model"
)

// ErrFillTimeout reports that a submitted entry never produced a nonzero
// average price within the bounded poll. Callers abort the symbol and move
// on; the timeout is never fatal to the run.
var ErrFillTimeout = errors.New("positions: fill confirmation timed out")

// Source fetches the position snapshot for one margin currency.
type Source interface {
	ListPositions(ctx context.Context, currency string) ([]model.Position, error)
}

// Query scans position snapshots grouped by margin currency.
type Query struct {
	src        Source
	currencies []string
}

func NewQuery(src Source, marginCurrencies []string) *Query {
	if len(marginCurrencies) == 0 {
		marginCurrencies = []string{"USDT"}
	}
	return &Query{src: src, currencies: marginCurrencies}
}

// Find returns the position for symbol, or nil when the account holds none.
func (q *Query) Find(ctx context.Context, symbol string) (*model.Position, error) {
	for _, currency := range q.currencies {
		snapshot, err := q.src.ListPositions(ctx, currency)
		if err != nil {
			return nil, fmt.Errorf("positions snapshot for %s: %w", currency, err)
		}
		for i := range snapshot {
			if snapshot[i].Symbol == symbol {
				return &snapshot[i], nil
			}
		}
	}
	return nil, nil
}

// ActiveSymbols returns the set of symbols that currently hold an active
// position, per the OR-of-signals heuristic on Position.Active.
func (q *Query) ActiveSymbols(ctx context.Context) (map[string]struct{}, error) {
	active := make(map[string]struct{})
	for _, currency := range q.currencies {
		snapshot, err := q.src.ListPositions(ctx, currency)
		if err != nil {
			return nil, fmt.Errorf("positions snapshot for %s: %w", currency, err)
		}
		for i := range snapshot {
			if snapshot[i].Active() {
				active[snapshot[i].Symbol] = struct{}{}
			}
		}
	}
	return active, nil
}

// ActivePositions returns every active position across the configured
// margin currencies.
func (q *Query) ActivePositions(ctx context.Context) ([]model.Position, error) {
	var active []model.Position
	for _, currency := range q.currencies {
		snapshot, err := q.src.ListPositions(ctx, currency)
		if err != nil {
			return nil, fmt.Errorf("positions snapshot for %s: %w", currency, err)
		}
		for i := range snapshot {
			if snapshot[i].Active() {
				active = append(active, snapshot[i])
			}
		}
	}
	return active, nil
}

// AwaitFill polls for the symbol's position until it reports a nonzero
// average entry price, up to maxAttempts polls with a fixed delay between
// them. Snapshot errors consume an attempt; the poll is the only retry the
// engine performs itself. All attempts exhausted returns ErrFillTimeout.
func (q *Query) AwaitFill(ctx context.Context, symbol string, maxAttempts int, delay time.Duration) (decimal.Decimal, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		pos, err := q.Find(ctx, symbol)
		if err != nil {
			logger.WithError(err).
				WithField("symbol", symbol).
				WithField("attempt", attempt).
				Warn("Fill poll attempt failed")
		} else if pos != nil && pos.AvgEntryPrice.Sign() > 0 {
			logger.WithFields(logger.Fields{
				"symbol":   symbol,
				"attempt":  attempt,
				"avgPrice": pos.AvgEntryPrice,
			}).Info("Entry fill confirmed")
			return pos.AvgEntryPrice, nil
		}

		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return decimal.Zero, ctx.Err()
		case <-time.After(delay):
		}
	}
	return decimal.Zero, ErrFillTimeout
}
