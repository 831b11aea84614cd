package supervisor_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/victorious243/scalper/internal/broker"
	"github.com/victorious243/scalper/internal/config"
	"github.com/victorious243/scalper/internal/risk"
	"github.com/victorious243/scalper/internal/supervisor"
	"github.com/victorious243/scalper/pkg/types"
)

func testRiskManager(adapter broker.Adapter) *risk.Manager {
	cfg := config.Default()
	cfg.Symbols = []config.SymbolConfig{{Symbol: "EURUSD", RiskPerTrade: 0.005, MinRR: 1.0}}
	return risk.New(zap.NewNop(), cfg, adapter, nil)
}

func TestEvaluateClosesOnTimedExit(t *testing.T) {
	p := broker.NewPaper(decimal.NewFromFloat(10000))
	now := time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC)
	p.SeedTick("EURUSD", types.Tick{Time: now, Bid: decimal.NewFromFloat(1.1005), Ask: decimal.NewFromFloat(1.1007)})

	entry := decimal.NewFromFloat(1.1000)
	positionID := "pos-1"
	order := types.OrderRequest{Symbol: "EURUSD", Side: types.OrderSideBuy, EntryPrice: entry, StopLoss: decimal.NewFromFloat(1.0950), TakeProfit: decimal.NewFromFloat(1.1100), ClientOrderID: positionID, Time: now.Add(-4 * time.Hour)}
	p.PlaceOrder(order)

	sup := supervisor.New(p, testRiskManager(p), false, 1.0)
	sup.Register(positionID, types.PositionMeta{
		MaxHoldMinutes: 60,
		EntryTime:      now.Add(-2 * time.Hour),
		EntryPrice:     entry,
		ATRAtEntry:     decimal.NewFromFloat(0.001),
	})

	state := types.MarketState{Symbol: "EURUSD", Time: now, RegimePrimary: types.RegimeTrend, TrendStrength: decimal.NewFromFloat(0.001)}
	positions := p.GetOpenPositions("EURUSD")
	sup.Evaluate(state, positions)

	if got := p.GetOpenPositions("EURUSD"); len(got) != 0 {
		t.Errorf("expected position closed by timed exit, got %d open", len(got))
	}
}

func TestEvaluateExitsOnRegimeFlip(t *testing.T) {
	p := broker.NewPaper(decimal.NewFromFloat(10000))
	now := time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC)
	p.SeedTick("EURUSD", types.Tick{Time: now, Bid: decimal.NewFromFloat(1.1005), Ask: decimal.NewFromFloat(1.1007)})

	entry := decimal.NewFromFloat(1.1000)
	positionID := "pos-2"
	p.PlaceOrder(types.OrderRequest{Symbol: "EURUSD", Side: types.OrderSideBuy, EntryPrice: entry, StopLoss: decimal.NewFromFloat(1.0950), TakeProfit: decimal.NewFromFloat(1.1100), ClientOrderID: positionID, Time: now})

	sup := supervisor.New(p, testRiskManager(p), false, 1.0)

	state := types.MarketState{Symbol: "EURUSD", Time: now, RegimePrimary: types.RegimeRange, TrendStrength: decimal.NewFromFloat(0.0001)}
	sup.Evaluate(state, p.GetOpenPositions("EURUSD"))

	if got := p.GetOpenPositions("EURUSD"); len(got) != 0 {
		t.Errorf("expected position closed on regime flip, got %d open", len(got))
	}
}
