package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	logger "github.com/sirupsen/logrus"

	"tradeexecutor/src/executors"
	"tradeexecutor/src/server"
	"tradeexecutor/src/strategy"
)

var APP_NAME = os.Getenv("APP_NAME")

func SetupLogger() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))

	level, err := logger.ParseLevel(levelStr)
	if err != nil {
		level = logger.DebugLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	SetupLogger()
	defer handlePanic()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	config := executors.GetConfig()

	decider, err := strategy.NewTrendRSI(strategy.NewBinanceKlineSource(), strategy.DefaultTrendRSIConfig())
	if err != nil {
		logger.WithError(err).Fatal("Failed to build decider")
	}

	runner, err := executors.NewRunner(config, decider)
	if err != nil {
		logger.WithError(err).Fatal("Failed to build runner")
	}

	go server.Start(ctx, config.ServerPort, func() any { return runner.LastOutcomes() })

	if err := runner.StartLoop(ctx); err != nil {
		logger.WithError(err).Fatal("Executor loop failed")
	}
}

func handlePanic() {
	if r := recover(); r != nil {
		logger.WithError(fmt.Errorf("%+v", r)).Error(fmt.Sprintf("Application %s panic", APP_NAME))
	}
	//nolint
	time.Sleep(time.Second * 5)
}
