// Package strategy decides the side for a symbol before an entry is sized.
// The engine only consumes the decision; everything about how it is reached
// stays behind the KlineSource and decider types here.
package strategy

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/nntaoli-project/goex"
	"github.com/nntaoli-project/goex/binance"
)

// KlineSource supplies recent closing prices for a symbol, oldest first.
type KlineSource interface {
	RecentCloses(ctx context.Context, symbol string, limit int) ([]float64, error)
}

// BinanceKlineSource reads hourly spot candles from the public Binance API.
// Spot candles are a good enough trend proxy for the perpetual contracts the
// engine trades.
type BinanceKlineSource struct {
	exchange goex.API
	period   goex.KlinePeriod
}

func NewBinanceKlineSource() *BinanceKlineSource {
	apiConfig := &goex.APIConfig{
		HttpClient: http.DefaultClient,
		Endpoint:   binance.GLOBAL_API_BASE_URL,
	}
	return &BinanceKlineSource{
		exchange: binance.NewWithConfig(apiConfig),
		period:   goex.KLINE_PERIOD_1H,
	}
}

func (s *BinanceKlineSource) RecentCloses(ctx context.Context, symbol string, limit int) ([]float64, error) {
	base, quote, err := splitSymbol(symbol)
	if err != nil {
		return nil, err
	}

	pair := goex.NewCurrencyPair(goex.Currency{Symbol: base}, goex.Currency{Symbol: quote})
	klines, err := s.exchange.GetKlineRecords(pair, s.period, limit)
	if err != nil {
		return nil, fmt.Errorf("get klines for %s: %w", symbol, err)
	}

	closes := make([]float64, 0, len(klines))
	for _, k := range klines {
		closes = append(closes, k.Close)
	}
	return closes, nil
}

// quoteSuffixes is ordered longest first so "USDT" wins over "USD".
var quoteSuffixes = []string{"USDT", "USDC", "BUSD", "USD", "BTC", "ETH"}

func splitSymbol(symbol string) (base, quote string, err error) {
	upper := strings.ToUpper(symbol)
	for _, q := range quoteSuffixes {
		if strings.HasSuffix(upper, q) && len(upper) > len(q) {
			return upper[:len(upper)-len(q)], q, nil
		}
	}
	return "", "", fmt.Errorf("cannot split symbol %q into base and quote", symbol)
}
