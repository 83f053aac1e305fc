package positions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tradeexecutor/src/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakeSource struct {
	calls     int
	err       error
	byCall    map[int][]model.Position // response per call number (1-based)
	snapshots []model.Position
}

func (f *fakeSource) ListPositions(ctx context.Context, currency string) ([]model.Position, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.byCall != nil {
		return f.byCall[f.calls], nil
	}
	return f.snapshots, nil
}

func pos(symbol, entry, size string) model.Position {
	return model.Position{
		ID:            "id-" + symbol,
		Symbol:        symbol,
		AvgEntryPrice: d(entry),
		Size:          d(size),
	}
}

func TestFind_ReturnsMatchingSymbol(t *testing.T) {
	src := &fakeSource{snapshots: []model.Position{
		pos("ETHUSDT", "3000", "1"),
		pos("BTCUSDT", "64000", "0.5"),
	}}
	q := NewQuery(src, []string{"USDT"})

	p, err := q.Find(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if p == nil || p.ID != "id-BTCUSDT" {
		t.Fatalf("unexpected position: %+v", p)
	}
}

func TestFind_NoPositionIsNilNotError(t *testing.T) {
	q := NewQuery(&fakeSource{}, []string{"USDT"})

	p, err := q.Find(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil, got %+v", p)
	}
}

func TestActiveSymbols_AppliesORHeuristic(t *testing.T) {
	marginOnly := model.Position{Symbol: "DOGEUSDT", LockedMargin: d("10")}
	triggerOnly := model.Position{Symbol: "SOLUSDT", StopLoss: d("90")}
	flat := model.Position{Symbol: "XRPUSDT"}

	src := &fakeSource{snapshots: []model.Position{
		pos("BTCUSDT", "64000", "0.5"),
		marginOnly,
		triggerOnly,
		flat,
	}}
	q := NewQuery(src, []string{"USDT"})

	active, err := q.ActiveSymbols(context.Background())
	if err != nil {
		t.Fatalf("active symbols: %v", err)
	}

	for _, want := range []string{"BTCUSDT", "DOGEUSDT", "SOLUSDT"} {
		if _, ok := active[want]; !ok {
			t.Fatalf("expected %s active, got %v", want, active)
		}
	}
	if _, ok := active["XRPUSDT"]; ok {
		t.Fatal("flat position must not be active")
	}
}

func TestAwaitFill_TimesOutAfterExactlyMaxAttempts(t *testing.T) {
	src := &fakeSource{snapshots: []model.Position{pos("BTCUSDT", "0", "0")}}
	q := NewQuery(src, []string{"USDT"})

	_, err := q.AwaitFill(context.Background(), "BTCUSDT", 3, time.Millisecond)
	if !errors.Is(err, ErrFillTimeout) {
		t.Fatalf("expected ErrFillTimeout, got %v", err)
	}
	if src.calls != 3 {
		t.Fatalf("expected exactly 3 polls, got %d", src.calls)
	}
}

func TestAwaitFill_ReturnsFirstNonzeroPrice(t *testing.T) {
	src := &fakeSource{byCall: map[int][]model.Position{
		1: {pos("BTCUSDT", "0", "0")},
		2: {pos("BTCUSDT", "64123.5", "0.5")},
	}}
	q := NewQuery(src, []string{"USDT"})

	price, err := q.AwaitFill(context.Background(), "BTCUSDT", 5, time.Millisecond)
	if err != nil {
		t.Fatalf("await fill: %v", err)
	}
	if !price.Equal(d("64123.5")) {
		t.Fatalf("expected 64123.5, got %s", price)
	}
	if src.calls != 2 {
		t.Fatalf("expected 2 polls, got %d", src.calls)
	}
}

func TestAwaitFill_SnapshotErrorsConsumeAttempts(t *testing.T) {
	src := &fakeSource{err: errors.New("boom")}
	q := NewQuery(src, []string{"USDT"})

	_, err := q.AwaitFill(context.Background(), "BTCUSDT", 2, time.Millisecond)
	if !errors.Is(err, ErrFillTimeout) {
		t.Fatalf("expected ErrFillTimeout, got %v", err)
	}
	if src.calls != 2 {
		t.Fatalf("expected 2 polls, got %d", src.calls)
	}
}

func TestAwaitFill_HonorsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{snapshots: []model.Position{pos("BTCUSDT", "0", "0")}}
	q := NewQuery(src, []string{"USDT"})

	_, err := q.AwaitFill(ctx, "BTCUSDT", 10, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestActivePositions_FiltersFlatPositions(t *testing.T) {
	src := &fakeSource{snapshots: []model.Position{
		pos("BTCUSDT", "64000", "0.5"),
		pos("ETHUSDT", "0", "0"),
		pos("SOLUSDT", "150", "10"),
	}}
	q := NewQuery(src, []string{"USDT"})

	active, err := q.ActivePositions(context.Background())
	if err != nil {
		t.Fatalf("active positions: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("active = %d, want 2", len(active))
	}
	if active[0].Symbol != "BTCUSDT" || active[1].Symbol != "SOLUSDT" {
		t.Fatalf("unexpected symbols: %s %s", active[0].Symbol, active[1].Symbol)
	}
}

func TestActivePositions_SnapshotErrorPropagates(t *testing.T) {
	q := NewQuery(&fakeSource{err: errors.New("boom")}, []string{"USDT"})

	if _, err := q.ActivePositions(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
