package executor

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"tradeexecutor/src/executors"
	"tradeexecutor/src/server"
	"tradeexecutor/src/strategy"
)

// Executor is the CLI entry for the order lifecycle engine. Flags select
// between a single pass, the periodic loop, and the close-everything escape
// hatch.
type Executor struct {
	// Loop keeps running on a ticker instead of a single pass.
	Loop bool
	// Close flattens open positions instead of opening new ones.
	Close bool
	// Symbols filters Close to specific symbols; empty means all.
	Symbols []string
	// Random swaps the trend/RSI decider for a coin flip. Testnet only.
	Random bool
}

func (t *Executor) Start() error {
	config := executors.GetConfig()
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	decider, err := t.buildDecider()
	if err != nil {
		logrus.WithError(err).Error("Failed to build decider")
		return err
	}

	runner, err := executors.NewRunner(config, decider)
	if err != nil {
		logrus.WithError(err).Error("Failed to build runner")
		return err
	}

	if t.Close {
		logrus.WithField("symbols", t.Symbols).Warn("Closing open positions")
		return runner.CloseAll(ctx, t.Symbols)
	}

	if t.Loop {
		go server.Start(ctx, config.ServerPort, func() any { return runner.LastOutcomes() })
		return runner.StartLoop(ctx)
	}

	runner.RunOnce(ctx)
	return nil
}

func (t *Executor) buildDecider() (executors.Decider, error) {
	if t.Random {
		logrus.Warn("Random decider enabled, intended for testnet lifecycle exercise only")
		seed := GetConfig().RandomSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		return strategy.NewRandomDecider(seed), nil
	}
	return strategy.NewTrendRSI(strategy.NewBinanceKlineSource(), strategy.DefaultTrendRSIConfig())
}
