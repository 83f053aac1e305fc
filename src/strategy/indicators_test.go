package strategy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSMA(t *testing.T) {
	v, err := sma([]float64{1, 2, 3, 4, 5}, 3)
	require.NoError(t, err)
	require.InDelta(t, 4.0, v, 1e-9)

	_, err = sma([]float64{1, 2}, 3)
	require.Error(t, err)

	_, err = sma([]float64{1, 2, 3}, 0)
	require.Error(t, err)
}

func TestRSIOnlyGainsIsMax(t *testing.T) {
	v, err := rsi([]float64{1, 2, 3, 4, 5, 6}, 3)
	require.NoError(t, err)
	require.InDelta(t, 100.0, v, 1e-9)
}

func TestRSIOnlyLossesIsMin(t *testing.T) {
	v, err := rsi([]float64{6, 5, 4, 3, 2, 1}, 3)
	require.NoError(t, err)
	require.InDelta(t, 0.0, v, 1e-9)
}

func TestRSIFlatSeriesIsNeutral(t *testing.T) {
	v, err := rsi([]float64{5, 5, 5, 5, 5}, 3)
	require.NoError(t, err)
	require.InDelta(t, 50.0, v, 1e-9)
}

func TestRSIMixedSeries(t *testing.T) {
	// Four -2 moves and one +3 move over a 5-change period:
	// avgGain 0.6, avgLoss 1.6, RS 0.375, RSI 27.27.
	v, err := rsi([]float64{100, 98, 96, 94, 92, 95}, 5)
	require.NoError(t, err)
	require.InDelta(t, 27.2727, v, 1e-3)
}

func TestRSIInsufficientData(t *testing.T) {
	_, err := rsi([]float64{1, 2, 3}, 3)
	require.Error(t, err)
}

func TestSplitSymbol(t *testing.T) {
	base, quote, err := splitSymbol("BTCUSDT")
	require.NoError(t, err)
	require.Equal(t, "BTC", base)
	require.Equal(t, "USDT", quote)

	base, quote, err = splitSymbol("ethusd")
	require.NoError(t, err)
	require.Equal(t, "ETH", base)
	require.Equal(t, "USD", quote)

	_, _, err = splitSymbol("USDT")
	require.Error(t, err)

	_, _, err = splitSymbol("XYZ")
	require.Error(t, err)
}
