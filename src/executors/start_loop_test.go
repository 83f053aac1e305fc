package executors

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"tradeexecutor/src/model"
)

type noTradeDecider struct {
	calls int
}

func (d *noTradeDecider) Decide(ctx context.Context, symbol string) (model.TradeDecision, error) {
	d.calls++
	return model.DecisionNoTrade, nil
}

func runnerConfig(baseURL string) Config {
	cfg := GetConfig()
	cfg.APIKey = "key"
	cfg.APISecret = "secret"
	cfg.BaseURL = baseURL
	cfg.Symbols = []string{"BTCUSDT", "ETHUSDT"}
	cfg.SymbolPacing = 0
	return cfg
}

func TestNewRunnerRejectsInvalidConfig(t *testing.T) {
	cfg := GetConfig()
	cfg.APIKey = ""
	cfg.APISecret = ""

	_, err := NewRunner(cfg, &noTradeDecider{})
	require.Error(t, err)
}

func TestNewRunnerRejectsTimestampSchemeWithoutPassphrase(t *testing.T) {
	cfg := runnerConfig("https://example.invalid")
	cfg.SigningScheme = "timestamp"
	cfg.APIPassphrase = ""

	_, err := NewRunner(cfg, &noTradeDecider{})
	require.Error(t, err)
}

func TestRunnerRunOnceRecordsOutcomes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/accounts/positions" {
			t.Errorf("unexpected request path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":0,"msg":"","data":{"positions":[]}}`))
	}))
	defer srv.Close()

	decider := &noTradeDecider{}
	runner, err := NewRunner(runnerConfig(srv.URL), decider)
	require.NoError(t, err)

	outcomes := runner.RunOnce(context.Background())
	require.Len(t, outcomes, 2)
	for _, out := range outcomes {
		require.Equal(t, StateSkipped, out.State)
		require.Equal(t, model.DecisionNoTrade, out.Decision)
	}
	require.Equal(t, 2, decider.calls)

	last := runner.LastOutcomes()
	require.Len(t, last, 2)
	require.Equal(t, outcomes[0].Symbol, last[0].Symbol)
}
