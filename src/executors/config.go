package executors

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	APIKey        string `envconfig:"API_KEY"`
	APISecret     string `envconfig:"API_SECRET"`
	APIPassphrase string `envconfig:"API_PASSPHRASE"`
	// SigningScheme selects the venue signing convention: "expiry" or
	// "timestamp". The two are not interchangeable.
	SigningScheme string `envconfig:"SIGNING_SCHEME" default:"expiry"`
	BaseURL       string `envconfig:"BASE_URL" default:"https://testnet-api.phemex.com"`

	Symbols          []string `envconfig:"SYMBOLS" default:"BTCUSDT,ETHUSDT,SOLUSDT"`
	MarginCurrencies []string `envconfig:"MARGIN_CURRENCIES" default:"USDT"`

	// MarginBudget is the notional capital per trade, independent of leverage.
	MarginBudget     float64 `envconfig:"MARGIN_BUDGET" default:"200"`
	Leverage         int     `envconfig:"LEVERAGE" default:"5"`
	TakeProfitPct    float64 `envconfig:"TAKE_PROFIT_PCT" default:"0.05"`
	StopLossPct      float64 `envconfig:"STOP_LOSS_PCT" default:"0.03"`
	LimitOffsetTicks int     `envconfig:"LIMIT_OFFSET_TICKS" default:"5"`

	FillPollAttempts int           `envconfig:"FILL_POLL_ATTEMPTS" default:"10"`
	FillPollDelay    time.Duration `envconfig:"FILL_POLL_DELAY" default:"2s"`
	SymbolPacing     time.Duration `envconfig:"SYMBOL_PACING" default:"3s"`
	InstrumentTTL    time.Duration `envconfig:"INSTRUMENT_TTL" default:"1h"`

	// SessionSizing scales the margin budget by the New York trading
	// session and skips entries in the weekend risk-off window.
	SessionSizing bool `envconfig:"SESSION_SIZING" default:"false"`

	// ProceedOnLeverageError keeps going with the exchange's default
	// leverage when setting leverage fails. Off by default: the symbol is
	// aborted instead.
	ProceedOnLeverageError bool `envconfig:"PROCEED_ON_LEVERAGE_ERROR" default:"false"`

	LoopPeriod time.Duration `envconfig:"LOOP_PERIOD" default:"30s"`
	ServerPort string        `envconfig:"SERVER_PORT" default:"8080"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

// Validate is the fatal pre-run check: missing credentials abort the whole
// run before any symbol is touched.
func (c Config) Validate() error {
	if c.APIKey == "" || c.APISecret == "" {
		return errors.New("API_KEY and API_SECRET must be set")
	}
	if c.SigningScheme != "expiry" && c.SigningScheme != "timestamp" {
		return fmt.Errorf("unknown signing scheme %q", c.SigningScheme)
	}
	if c.SigningScheme == "timestamp" && c.APIPassphrase == "" {
		return errors.New("API_PASSPHRASE must be set for the timestamp signing scheme")
	}
	if len(c.Symbols) == 0 {
		return errors.New("SYMBOLS must not be empty")
	}
	if c.MarginBudget <= 0 || c.Leverage <= 0 {
		return errors.New("MARGIN_BUDGET and LEVERAGE must be positive")
	}
	return nil
}

func (c Config) marginBudget() decimal.Decimal  { return decimal.NewFromFloat(c.MarginBudget) }
func (c Config) takeProfitPct() decimal.Decimal { return decimal.NewFromFloat(c.TakeProfitPct) }
func (c Config) stopLossPct() decimal.Decimal   { return decimal.NewFromFloat(c.StopLossPct) }
