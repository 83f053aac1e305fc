package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"tradeexecutor/cmd/executor"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "Trade Executor CMD"
	app.Usage = "The trade executor command line interface"

	app.Commands = []cli.Command{
		executorCMD,
		closeCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	executorCMD = cli.Command{
		Name:      "executor",
		Usage:     "run Executor",
		Action:    executorAction,
		ArgsUsage: "",
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:  "loop",
				Usage: "keep running on a ticker instead of a single pass",
			},
			cli.BoolFlag{
				Name:  "random",
				Usage: "use the coin-flip decider (testnet only)",
			},
		},
		Description: `Run the order lifecycle over the configured symbols`,
	}
	closeCMD = cli.Command{
		Name:      "close",
		Usage:     "close open positions",
		Action:    closeAction,
		ArgsUsage: "",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "symbols",
				Usage: "comma-separated symbol filter, empty closes everything",
			},
		},
		Description: `Flatten open positions with reduce-only market orders`,
	}
)

func executorAction(c *cli.Context) error {
	logrus.Info("Starting executor CMD")
	logrus.WithField("cmd", "executor")

	exec := &executor.Executor{
		Loop:   c.Bool("loop"),
		Random: c.Bool("random"),
	}
	if err := exec.Start(); err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	return nil
}

func closeAction(c *cli.Context) error {
	logrus.Info("Starting close CMD")
	logrus.WithField("cmd", "close")

	var symbols []string
	if raw := c.String("symbols"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				symbols = append(symbols, s)
			}
		}
	}

	exec := &executor.Executor{
		Close:   true,
		Symbols: symbols,
	}
	if err := exec.Start(); err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	return nil
}
