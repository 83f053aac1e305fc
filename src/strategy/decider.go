package strategy

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"tradeexecutor/src/model"
)

// TrendRSIConfig tunes the trend filter and the RSI entry trigger.
type TrendRSIConfig struct {
	// RSIPeriod is the Wilder smoothing period.
	RSIPeriod int
	// TrendWindow is the SMA window used as the trend gate.
	TrendWindow int
	Overbought  float64
	Oversold    float64
}

func DefaultTrendRSIConfig() TrendRSIConfig {
	return TrendRSIConfig{
		RSIPeriod:   14,
		TrendWindow: 50,
		Overbought:  70,
		Oversold:    30,
	}
}

// TrendRSI buys oversold dips in an uptrend and sells overbought rallies in
// a downtrend. Anything else, including a short or failed candle fetch, is a
// no-trade: the engine would rather sit out than enter on bad data.
type TrendRSI struct {
	source KlineSource
	cfg    TrendRSIConfig
}

func NewTrendRSI(source KlineSource, cfg TrendRSIConfig) (*TrendRSI, error) {
	if source == nil {
		return nil, fmt.Errorf("kline source is required")
	}
	if cfg.RSIPeriod <= 0 || cfg.TrendWindow <= 0 {
		return nil, fmt.Errorf("rsi period and trend window must be positive")
	}
	if cfg.Oversold >= cfg.Overbought {
		return nil, fmt.Errorf("oversold threshold %v must be below overbought %v", cfg.Oversold, cfg.Overbought)
	}
	return &TrendRSI{source: source, cfg: cfg}, nil
}

func (t *TrendRSI) required() int {
	n := t.cfg.TrendWindow
	if t.cfg.RSIPeriod+1 > n {
		n = t.cfg.RSIPeriod + 1
	}
	return n
}

func (t *TrendRSI) Decide(ctx context.Context, symbol string) (model.TradeDecision, error) {
	need := t.required()

	closes, err := t.source.RecentCloses(ctx, symbol, need)
	if err != nil {
		logger.WithError(err).WithField("symbol", symbol).Warn("Candle fetch failed, sitting out")
		return model.DecisionNoTrade, nil
	}
	if len(closes) < need {
		logger.WithFields(logger.Fields{
			"symbol": symbol,
			"got":    len(closes),
			"need":   need,
		}).Warn("Not enough candles, sitting out")
		return model.DecisionNoTrade, nil
	}

	trend, err := sma(closes, t.cfg.TrendWindow)
	if err != nil {
		return model.DecisionNoTrade, nil
	}
	momentum, err := rsi(closes, t.cfg.RSIPeriod)
	if err != nil {
		return model.DecisionNoTrade, nil
	}

	last := closes[len(closes)-1]
	decision := model.DecisionNoTrade
	switch {
	case last > trend && momentum <= t.cfg.Oversold:
		decision = model.DecisionBuy
	case last < trend && momentum >= t.cfg.Overbought:
		decision = model.DecisionSell
	}

	logger.WithFields(logger.Fields{
		"symbol":   symbol,
		"last":     last,
		"sma":      trend,
		"rsi":      momentum,
		"decision": decision,
	}).Info("Side decision")
	return decision, nil
}
