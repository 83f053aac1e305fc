package executors

import (
	"context"
	"fmt"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"

	"tradeexecutor/src/connectors"
	"tradeexecutor/src/instruments"
	"tradeexecutor/src/orders"
	"tradeexecutor/src/positions"
)

// Runner wires the exchange client, instrument cache, position query and
// order submitter together and runs the orchestrator once or on a ticker.
// It also keeps the last run's outcomes for the status endpoint.
type Runner struct {
	cfg       Config
	orch      *Orchestrator
	positions *positions.Query
	orders    *orders.Submitter

	mu   sync.RWMutex
	last []Outcome
}

// NewRunner validates the configuration and builds the execution stack
// against the configured venue. A validation failure is fatal to the run; no
// symbol is processed.
func NewRunner(cfg Config, decider Decider) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}

	var signer connectors.Signer
	switch cfg.SigningScheme {
	case "timestamp":
		signer = connectors.NewTimestampSigner(cfg.APIKey, cfg.APISecret, cfg.APIPassphrase)
	default:
		signer = connectors.NewExpirySigner(cfg.APIKey, cfg.APISecret)
	}

	client := connectors.NewClient(cfg.BaseURL, signer)
	cache := instruments.NewCache(client, cfg.InstrumentTTL)
	query := positions.NewQuery(client, cfg.MarginCurrencies)
	submitter := orders.NewSubmitter(client)

	return &Runner{
		cfg:       cfg,
		orch:      NewOrchestrator(cfg, cache, query, submitter, client, decider),
		positions: query,
		orders:    submitter,
	}, nil
}

// CloseAll flattens every active position with reduce-only market orders.
// An empty symbol filter means all of them. Failures are logged per symbol
// and the last one is returned; one stuck symbol never blocks the rest.
func (r *Runner) CloseAll(ctx context.Context, symbols []string) error {
	filter := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		filter[s] = struct{}{}
	}

	active, err := r.positions.ActivePositions(ctx)
	if err != nil {
		return fmt.Errorf("close all: %w", err)
	}

	var lastErr error
	for _, pos := range active {
		if len(filter) > 0 {
			if _, ok := filter[pos.Symbol]; !ok {
				continue
			}
		}
		if pos.Size.Sign() <= 0 {
			logger.WithField("symbol", pos.Symbol).Warn("Active position with no size, nothing to close")
			continue
		}

		if _, err := r.orders.SubmitCloseOrder(ctx, pos.Symbol, pos.Side, pos.Size); err != nil {
			logger.WithError(err).WithField("symbol", pos.Symbol).Error("Close order failed")
			lastErr = err
		}
	}
	return lastErr
}

// RunOnce processes the whole symbol universe one time.
func (r *Runner) RunOnce(ctx context.Context) []Outcome {
	logger.WithField("symbols", r.cfg.Symbols).Info("Starting execution run")

	outcomes := r.orch.Run(ctx)

	r.mu.Lock()
	r.last = outcomes
	r.mu.Unlock()

	return outcomes
}

// StartLoop runs immediately and then once per LoopPeriod until the context
// is canceled.
func (r *Runner) StartLoop(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.LoopPeriod)
	defer ticker.Stop()

	r.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("loop stopped")
			return nil
		case <-ticker.C:
			logger.Info("loop tick")
			r.RunOnce(ctx)
		}
	}
}

// LastOutcomes returns the most recent run's per-symbol outcomes.
func (r *Runner) LastOutcomes() []Outcome {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Outcome, len(r.last))
	copy(out, r.last)
	return out
}
