package mapper

import (
	logger "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"

	"tradeexecutor/src/model"
)

// MapWirePosition converts a raw position payload into the domain model in a
// "safe" way: parsing errors on numeric fields are logged and defaulted to
// zero instead of aborting the whole snapshot, so one malformed position
// never hides the rest of the account.
func MapWirePosition(w model.WirePosition) model.Position {
	parseDecimalSafe := func(field, v string) decimal.Decimal {
		if v == "" {
			return decimal.Zero
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			logger.WithFields(map[string]interface{}{
				"field":  field,
				"value":  v,
				"symbol": w.Symbol,
			}).WithError(err).Error("Failed to parse numeric position field; defaulting to 0")
			return decimal.Zero
		}
		return d
	}

	return model.Position{
		ID:            w.PositionID,
		Symbol:        w.Symbol,
		Side:          model.Side(w.Side),
		AvgEntryPrice: parseDecimalSafe("avgEntryPrice", w.AvgEntryPrice),
		Size:          parseDecimalSafe("size", w.Size),
		LockedMargin:  parseDecimalSafe("positionMargin", w.PositionMargin),
		TakeProfit:    parseDecimalSafe("takeProfitPrice", w.TakeProfit),
		StopLoss:      parseDecimalSafe("stopLossPrice", w.StopLoss),
	}
}

// MapWirePositions converts a full snapshot.
func MapWirePositions(ws model.WirePositionList) []model.Position {
	out := make([]model.Position, 0, len(ws))
	for _, w := range ws {
		out = append(out, MapWirePosition(w))
	}
	return out
}
