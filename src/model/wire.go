package model

import (
	"bytes"
	"encoding/json"
)

// WireProduct is one entry of the active-product list endpoint.
type WireProduct struct {
	Symbol string `json:"symbol"`
	Status string `json:"status"`
}

// WireProductDetail is the raw per-instrument metadata payload. Numeric
// fields arrive as strings, as the exchange serializes them.
type WireProductDetail struct {
	Symbol      string `json:"symbol"`
	TickSize    string `json:"tickSize"`
	QtyStepSize string `json:"qtyStepSize"`
	MinOrderQty string `json:"minOrderQty"`
	MaxLeverage int    `json:"maxLeverage"`
	QtyType     string `json:"qtyType"` // "integer" or "decimal"
}

// WirePosition is the raw position payload of the positions snapshot.
type WirePosition struct {
	PositionID     string `json:"positionID"`
	Symbol         string `json:"symbol"`
	Side           string `json:"side"`
	AvgEntryPrice  string `json:"avgEntryPrice"`
	Size           string `json:"size"`
	PositionMargin string `json:"positionMargin"`
	TakeProfit     string `json:"takeProfitPrice"`
	StopLoss       string `json:"stopLossPrice"`
}

// WirePositionList accepts both shapes the positions endpoint is known to
// return: a JSON array of positions, or a single position object when the
// account holds exactly one.
type WirePositionList []WirePosition

func (l *WirePositionList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = nil
		return nil
	}

	if trimmed[0] == '[' {
		var many []WirePosition
		if err := json.Unmarshal(trimmed, &many); err != nil {
			return err
		}
		*l = many
		return nil
	}

	var one WirePosition
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return err
	}
	*l = WirePositionList{one}
	return nil
}
