// Package executors drives the per-symbol trade lifecycle: check for an
// existing position, decide a side, size and submit the market entry, wait
// for the fill, then attach the protective bracket. Symbols are processed
// strictly sequentially so at most one entry is pending at a time.
package executors

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"tradeexecutor/src/instruments"
	"tradeexecutor/src/model"
	"tradeexecutor/src/orders"
	"tradeexecutor/src/positions"
	"tradeexecutor/src/quantize"
	"tradeexecutor/src/risk"
)

// Decider is the pluggable side-decision strategy.
type Decider interface {
	Decide(ctx context.Context, symbol string) (model.TradeDecision, error)
}

// PriceSource supplies the reference price used for sizing.
type PriceSource interface {
	GetLastTradePrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// State is the terminal state of one symbol's lifecycle.
type State string

const (
	StateSkipped State = "skipped"
	StateDone    State = "done"
	StateAborted State = "aborted"
)

// Outcome is the per-symbol summary: what was decided, what was sent, and
// where the lifecycle ended.
type Outcome struct {
	Symbol     string              `json:"symbol"`
	State      State               `json:"state"`
	Reason     string              `json:"reason,omitempty"`
	Decision   model.TradeDecision `json:"decision,omitempty"`
	RefPrice   decimal.Decimal     `json:"ref_price"`
	Quantity   decimal.Decimal     `json:"quantity"`
	EntryPrice decimal.Decimal     `json:"entry_price"`
	Bracket    model.BracketSpec   `json:"bracket"`
	FinishedAt time.Time           `json:"finished_at"`
}

// Orchestrator runs the lifecycle over the configured symbol universe.
type Orchestrator struct {
	cfg       Config
	cache     *instruments.Cache
	positions *positions.Query
	orders    *orders.Submitter
	prices    PriceSource
	decider   Decider

	sleep func(ctx context.Context, d time.Duration)
	now   func() time.Time
}

func NewOrchestrator(
	cfg Config,
	cache *instruments.Cache,
	query *positions.Query,
	submitter *orders.Submitter,
	prices PriceSource,
	decider Decider,
) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		cache:     cache,
		positions: query,
		orders:    submitter,
		prices:    prices,
		decider:   decider,
		sleep:     sleepCtx,
		now:       time.Now,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// Run processes every configured symbol once, in list order, with a pacing
// delay between symbols. A symbol's failure aborts that symbol only; the
// batch always continues.
func (o *Orchestrator) Run(ctx context.Context) []Outcome {
	outcomes := make([]Outcome, 0, len(o.cfg.Symbols))

	for i, symbol := range o.cfg.Symbols {
		if ctx.Err() != nil {
			break
		}
		if i > 0 {
			o.sleep(ctx, o.cfg.SymbolPacing)
		}

		outcome := o.runSymbol(ctx, symbol)
		outcome.FinishedAt = time.Now().UTC()
		outcomes = append(outcomes, outcome)

		log := logger.WithFields(logger.Fields{
			"symbol":   outcome.Symbol,
			"state":    outcome.State,
			"decision": outcome.Decision,
		})
		switch outcome.State {
		case StateDone:
			log.WithFields(logger.Fields{
				"refPrice": outcome.RefPrice,
				"qty":      outcome.Quantity,
				"entry":    outcome.EntryPrice,
				"tp":       outcome.Bracket.TakeProfitStop,
				"sl":       outcome.Bracket.StopLossStop,
			}).Info("Symbol lifecycle finished")
		default:
			log.WithField("reason", outcome.Reason).Info("Symbol lifecycle finished")
		}
	}
	return outcomes
}

func (o *Orchestrator) runSymbol(ctx context.Context, symbol string) Outcome {
	out := Outcome{Symbol: symbol}

	// Idle: skip symbols that already hold a position. This check is what
	// makes a restart safe after a kill mid-run.
	active, err := o.positions.ActiveSymbols(ctx)
	if err != nil {
		return abort(out, "active positions unavailable: "+err.Error())
	}
	if _, taken := active[symbol]; taken {
		out.State = StateSkipped
		out.Reason = "position already open"
		return out
	}

	budget := o.cfg.marginBudget()
	if o.cfg.SessionSizing {
		scaled, session := risk.CalculateSizeByNYSession(budget, o.now(), risk.DefaultSessionSizeConfig())
		if session == risk.SessionNoTrade {
			out.State = StateSkipped
			out.Reason = "risk-off session"
			return out
		}
		logger.WithFields(logger.Fields{
			"symbol":  symbol,
			"session": session,
			"budget":  scaled,
		}).Info("Session-scaled margin budget")
		budget = scaled
	}

	decision, err := o.decider.Decide(ctx, symbol)
	if err != nil {
		return abort(out, "side decision failed: "+err.Error())
	}
	out.Decision = decision
	if decision == model.DecisionNoTrade {
		out.State = StateSkipped
		out.Reason = "no trade signal"
		return out
	}
	side := decision.OrderSide()

	// Entering: size from the margin budget at the current reference price.
	price, err := o.prices.GetLastTradePrice(ctx, symbol)
	if err != nil {
		return abort(out, "reference price unavailable: "+err.Error())
	}
	if price.Sign() <= 0 {
		return abort(out, "reference price is not positive")
	}
	out.RefPrice = price

	inst := o.cache.Get(ctx, symbol)
	leverage := o.cfg.Leverage
	if inst.MaxLeverage > 0 && leverage > inst.MaxLeverage {
		leverage = inst.MaxLeverage
	}

	raw := budget.Mul(decimal.NewFromInt(int64(leverage))).Div(price)
	qty := quantize.Quantity(raw, inst.StepSize, inst.MinSize, inst.QuantityIsInteger)
	if qty.Sign() <= 0 {
		return abort(out, "computed quantity below instrument minimum")
	}
	out.Quantity = qty

	if err := o.orders.SetLeverage(ctx, symbol, leverage); err != nil {
		if !o.cfg.ProceedOnLeverageError {
			return abort(out, "set leverage failed: "+err.Error())
		}
		logger.WithError(err).
			WithField("symbol", symbol).
			Warn("Set leverage failed, proceeding with exchange default")
	}

	if _, err := o.orders.SubmitMarketOrder(ctx, symbol, side, qty); err != nil {
		return abort(out, "entry submission failed: "+err.Error())
	}

	// AwaitingFill: bounded poll; the bracket is never attached before the
	// exchange confirms a fill.
	entry, err := o.positions.AwaitFill(ctx, symbol, o.cfg.FillPollAttempts, o.cfg.FillPollDelay)
	if err != nil {
		return abort(out, "fill not confirmed: "+err.Error())
	}
	out.EntryPrice = entry

	// Bracketing.
	spec := orders.ComputeBracket(entry, side, o.cfg.takeProfitPct(), o.cfg.stopLossPct(), o.cfg.LimitOffsetTicks, inst)
	out.Bracket = spec

	pos, err := o.positions.Find(ctx, symbol)
	if err != nil || pos == nil || pos.ID == "" {
		return abort(out, "position id unavailable for bracket")
	}

	if err := o.orders.SubmitBracketOrder(ctx, pos.ID, spec); err != nil {
		// A filled but unprotected position beats an entry-duplicating
		// retry loop: log, mark done, leave re-protection to the operator.
		logger.WithError(err).
			WithField("symbol", symbol).
			WithField("positionID", pos.ID).
			Error("Bracket submission failed, position left unprotected")
		out.State = StateDone
		out.Reason = "bracket submission failed, position unprotected"
		return out
	}

	out.State = StateDone
	return out
}

func abort(out Outcome, reason string) Outcome {
	out.State = StateAborted
	out.Reason = reason
	return out
}
