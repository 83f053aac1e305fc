package executor

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// RandomSeed seeds the random decider; zero means seed from the clock.
	RandomSeed int64 `envconfig:"RANDOM_SEED" default:"0"`
}

func GetConfig() *Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return &config
}
