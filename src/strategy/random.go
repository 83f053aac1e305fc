package strategy

import (
	"context"
	"math/rand"

	"tradeexecutor/src/model"
)

// RandomDecider flips a coin per symbol. It exists for exercising the full
// order lifecycle on a testnet and must be enabled explicitly; it is never a
// production default.
type RandomDecider struct {
	rng *rand.Rand
}

func NewRandomDecider(seed int64) *RandomDecider {
	return &RandomDecider{rng: rand.New(rand.NewSource(seed))}
}

func (r *RandomDecider) Decide(ctx context.Context, symbol string) (model.TradeDecision, error) {
	if r.rng.Intn(2) == 0 {
		return model.DecisionBuy, nil
	}
	return model.DecisionSell, nil
}
