package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"tradeexecutor/src/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakeSink struct {
	marketRes  *model.OrderResult
	marketErr  error
	bracketRes *model.OrderResult
	bracketErr error
	levErr     error

	marketCalls  int
	bracketCalls int

	lastSide       model.Side
	lastQty        string
	lastReduceOnly bool
}

func (f *fakeSink) PlaceMarketOrder(ctx context.Context, symbol string, side model.Side, qty string, reduceOnly bool) (*model.OrderResult, error) {
	f.marketCalls++
	f.lastSide = side
	f.lastQty = qty
	f.lastReduceOnly = reduceOnly
	return f.marketRes, f.marketErr
}

func (f *fakeSink) PlaceBracketOrder(ctx context.Context, positionID string, spec model.BracketSpec) (*model.OrderResult, error) {
	f.bracketCalls++
	return f.bracketRes, f.bracketErr
}

func (f *fakeSink) SetLeverage(ctx context.Context, symbol string, leverage int) error {
	return f.levErr
}

func btc() model.Instrument {
	return model.Instrument{
		Symbol:   "BTCUSDT",
		TickSize: d("0.5"),
		StepSize: d("0.001"),
		MinSize:  d("0.001"),
	}
}

func TestComputeBracket_LongSides(t *testing.T) {
	inst := model.Instrument{Symbol: "BTCUSDT", TickSize: d("1"), StepSize: d("0.001"), MinSize: d("0.001")}
	spec := ComputeBracket(d("100"), model.SideBuy, d("0.05"), d("0.03"), 0, inst)

	if !spec.TakeProfitStop.Equal(d("105")) {
		t.Fatalf("long TP stop = %s, want 105", spec.TakeProfitStop)
	}
	if !spec.StopLossStop.Equal(d("97")) {
		t.Fatalf("long SL stop = %s, want 97", spec.StopLossStop)
	}
}

func TestComputeBracket_ShortSides(t *testing.T) {
	inst := model.Instrument{Symbol: "BTCUSDT", TickSize: d("1"), StepSize: d("0.001"), MinSize: d("0.001")}
	spec := ComputeBracket(d("100"), model.SideSell, d("0.05"), d("0.03"), 0, inst)

	if !spec.TakeProfitStop.Equal(d("95")) {
		t.Fatalf("short TP stop = %s, want 95", spec.TakeProfitStop)
	}
	if !spec.StopLossStop.Equal(d("103")) {
		t.Fatalf("short SL stop = %s, want 103", spec.StopLossStop)
	}
}

func TestComputeBracket_LimitsStayReachable(t *testing.T) {
	spec := ComputeBracket(d("100"), model.SideBuy, d("0.05"), d("0.03"), 4, btc())

	// long exits sell: limits sit under their stops
	if !spec.TakeProfitLimit.Equal(spec.TakeProfitStop.Sub(d("2"))) {
		t.Fatalf("long TP limit = %s, stop %s", spec.TakeProfitLimit, spec.TakeProfitStop)
	}
	if !spec.StopLossLimit.Equal(spec.StopLossStop.Sub(d("2"))) {
		t.Fatalf("long SL limit = %s, stop %s", spec.StopLossLimit, spec.StopLossStop)
	}

	spec = ComputeBracket(d("100"), model.SideSell, d("0.05"), d("0.03"), 4, btc())

	// short exits buy: limits sit over their stops
	if !spec.TakeProfitLimit.Equal(spec.TakeProfitStop.Add(d("2"))) {
		t.Fatalf("short TP limit = %s, stop %s", spec.TakeProfitLimit, spec.TakeProfitStop)
	}
	if !spec.StopLossLimit.Equal(spec.StopLossStop.Add(d("2"))) {
		t.Fatalf("short SL limit = %s, stop %s", spec.StopLossLimit, spec.StopLossStop)
	}
}

func TestComputeBracket_QuantizesToTick(t *testing.T) {
	// entry 64123.3 with 5% TP = 67329.465, tick 0.5 => 67329.5
	spec := ComputeBracket(d("64123.3"), model.SideBuy, d("0.05"), d("0.03"), 0, btc())

	if !spec.TakeProfitStop.Mod(d("0.5")).IsZero() {
		t.Fatalf("TP stop %s not on tick", spec.TakeProfitStop)
	}
	if !spec.TakeProfitStop.Equal(d("67329.5")) {
		t.Fatalf("TP stop = %s, want 67329.5", spec.TakeProfitStop)
	}
	if !spec.StopLossStop.Mod(d("0.5")).IsZero() {
		t.Fatalf("SL stop %s not on tick", spec.StopLossStop)
	}
}

func TestSubmitMarketOrder_Accepted(t *testing.T) {
	sink := &fakeSink{marketRes: &model.OrderResult{OrderID: "ord-1", Code: 0}}
	s := NewSubmitter(sink)

	id, err := s.SubmitMarketOrder(context.Background(), "BTCUSDT", model.SideBuy, d("0.5"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if id != "ord-1" {
		t.Fatalf("order id = %q", id)
	}
}

func TestSubmitMarketOrder_RejectionIsTypedNotRetried(t *testing.T) {
	sink := &fakeSink{marketRes: &model.OrderResult{Code: 11001, Msg: "insufficient balance"}}
	s := NewSubmitter(sink)

	_, err := s.SubmitMarketOrder(context.Background(), "BTCUSDT", model.SideBuy, d("0.5"))

	var rej *RejectionError
	if !errors.As(err, &rej) {
		t.Fatalf("expected RejectionError, got %v", err)
	}
	if rej.Code != 11001 {
		t.Fatalf("code = %d", rej.Code)
	}
	if sink.marketCalls != 1 {
		t.Fatalf("rejected order must not be retried, calls = %d", sink.marketCalls)
	}
}

func TestSubmitMarketOrder_MissingOrderIDIsRejection(t *testing.T) {
	sink := &fakeSink{marketRes: &model.OrderResult{Code: 0, OrderID: ""}}
	s := NewSubmitter(sink)

	_, err := s.SubmitMarketOrder(context.Background(), "BTCUSDT", model.SideBuy, d("0.5"))

	var rej *RejectionError
	if !errors.As(err, &rej) {
		t.Fatalf("expected RejectionError, got %v", err)
	}
}

func TestSubmitBracketOrder_FailureDoesNotUnwind(t *testing.T) {
	sink := &fakeSink{bracketRes: &model.OrderResult{Code: 42, Msg: "bad trigger"}}
	s := NewSubmitter(sink)

	err := s.SubmitBracketOrder(context.Background(), "p1", model.BracketSpec{})

	var rej *RejectionError
	if !errors.As(err, &rej) {
		t.Fatalf("expected RejectionError, got %v", err)
	}
	if sink.bracketCalls != 1 {
		t.Fatalf("bracket must not be retried, calls = %d", sink.bracketCalls)
	}
}

func TestSubmitCloseOrder_OppositeSideReduceOnly(t *testing.T) {
	sink := &fakeSink{marketRes: &model.OrderResult{OrderID: "ord-9", Code: 0}}
	s := NewSubmitter(sink)

	id, err := s.SubmitCloseOrder(context.Background(), "BTCUSDT", model.SideBuy, d("32"))
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if id != "ord-9" {
		t.Fatalf("order id = %q", id)
	}
	if sink.lastSide != model.SideSell {
		t.Fatalf("close of a long must sell, got %s", sink.lastSide)
	}
	if !sink.lastReduceOnly {
		t.Fatal("close order must be reduce-only")
	}
	if sink.lastQty != "32" {
		t.Fatalf("qty = %q", sink.lastQty)
	}
}

func TestSubmitCloseOrder_RejectionIsTyped(t *testing.T) {
	sink := &fakeSink{marketRes: &model.OrderResult{Code: 11002, Msg: "reduce-only violation"}}
	s := NewSubmitter(sink)

	_, err := s.SubmitCloseOrder(context.Background(), "BTCUSDT", model.SideSell, d("5"))

	var rej *RejectionError
	if !errors.As(err, &rej) {
		t.Fatalf("expected RejectionError, got %v", err)
	}
}
