package risk_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/victorious243/scalper/internal/broker"
	"github.com/victorious243/scalper/internal/config"
	"github.com/victorious243/scalper/internal/risk"
	"github.com/victorious243/scalper/pkg/types"
)

func testConfig() config.BotConfig {
	cfg := config.Default()
	cfg.MaxDailyTrades = 3
	cfg.MaxConsecutiveLosses = 2
	cfg.Symbols = []config.SymbolConfig{
		{
			Symbol:              "EURUSD",
			SpreadMode:          "pips",
			MaxSpread:           2.0,
			MinSpreadChecks:     3,
			SpreadSpikeCooldownMinutes: 10,
			MinATR:              0.0001,
			MaxATR:              0.01,
			MinStopATR:          0.1,
			MinRegimeConfidence: 0.1,
			RiskPerTrade:        0.005,
			MaxDailyLoss:        0.02,
			MaxTradesPerDay:     3,
			MaxConsecutiveLosses: 2,
			MinRR:               1.2,
		},
	}
	return cfg
}

func newState(symbol string) types.MarketState {
	return types.MarketState{
		Symbol:          symbol,
		Time:            time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC),
		RegimePrimary:   types.RegimeTrend,
		RegimeSecondary: types.RegimeLowVol,
		Volatility:      decimal.NewFromFloat(0.0008),
		Session:         "LONDON",
		Confidence:      decimal.NewFromFloat(0.5),
	}
}

func newSignal(symbol string, rr float64) types.Signal {
	entry := decimal.NewFromFloat(1.1000)
	stop := decimal.NewFromFloat(1.0950)
	risk := entry.Sub(stop)
	take := entry.Add(risk.Mul(decimal.NewFromFloat(rr)))
	return types.Signal{
		Symbol:     symbol,
		Time:       time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC),
		Strategy:   "trend_pullback",
		Side:       types.OrderSideBuy,
		OrderType:  types.OrderTypeMarket,
		EntryPrice: entry,
		StopLoss:   stop,
		TakeProfit: take,
		Confidence: decimal.NewFromFloat(0.5),
	}
}

func symbolInfo() types.SymbolInfo {
	return types.SymbolInfo{
		Point:            decimal.NewFromFloat(0.00001),
		Digits:           5,
		ContractSize:     decimal.NewFromFloat(100000),
		VolumeMin:        decimal.NewFromFloat(0.01),
		VolumeMax:        decimal.NewFromFloat(50),
		VolumeStep:       decimal.NewFromFloat(0.01),
		TradeStopsLevel:  decimal.Zero,
		TradeFreezeLevel: decimal.Zero,
		TradeMode:        1,
	}
}

func newPaper() *broker.Paper {
	p := broker.NewPaper(decimal.NewFromFloat(10000))
	p.SeedTick("EURUSD", types.Tick{
		Time: time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC),
		Bid:  decimal.NewFromFloat(1.10000),
		Ask:  decimal.NewFromFloat(1.10010),
	})
	return p
}

func TestApproveRejectsLowRR(t *testing.T) {
	cfg := testConfig()
	adapter := newPaper()
	mgr := risk.New(zap.NewNop(), cfg, adapter, nil)

	signal := newSignal("EURUSD", 1.0)
	state := newState("EURUSD")

	decision := mgr.Approve(signal, state)
	if decision.Approved {
		t.Fatalf("expected rejection for low RR, got approved")
	}
	if decision.Reason != risk.ReasonRRTooLow {
		t.Errorf("reason = %s, want %s", decision.Reason, risk.ReasonRRTooLow)
	}
}

func TestApproveValidTradeSizesVolume(t *testing.T) {
	cfg := testConfig()
	adapter := newPaper()
	mgr := risk.New(zap.NewNop(), cfg, adapter, nil)

	signal := newSignal("EURUSD", 1.6)
	state := newState("EURUSD")

	decision := mgr.Approve(signal, state)
	if !decision.Approved {
		t.Fatalf("expected approval, got reason %s", decision.Reason)
	}
	if decision.AdjustedSize.LessThanOrEqual(decimal.Zero) {
		t.Errorf("expected positive sized volume, got %s", decision.AdjustedSize)
	}
}

func TestApproveRejectsWhenGlobalTradeCapReached(t *testing.T) {
	cfg := testConfig()
	cfg.MaxDailyTrades = 1
	adapter := newPaper()
	mgr := risk.New(zap.NewNop(), cfg, adapter, nil)

	now := time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC)
	mgr.RegisterTradeOpen("EURUSD", now)

	signal := newSignal("EURUSD", 1.6)
	state := newState("EURUSD")

	decision := mgr.Approve(signal, state)
	if decision.Approved {
		t.Fatalf("expected rejection once global daily trade cap is reached")
	}
	if decision.Reason != risk.ReasonGlobalMaxTrades {
		t.Errorf("reason = %s, want %s", decision.Reason, risk.ReasonGlobalMaxTrades)
	}
}

func TestApproveRejectsOnGlobalConsecutiveLosses(t *testing.T) {
	cfg := testConfig()
	cfg.MaxConsecutiveLosses = 1
	adapter := newPaper()
	mgr := risk.New(zap.NewNop(), cfg, adapter, nil)

	loss := types.TradeRecord{
		Symbol:   "EURUSD",
		PnL:      decimal.NewFromFloat(-10),
		ExitTime: time.Date(2026, 7, 31, 9, 0, 0, 0, time.UTC),
	}
	mgr.RegisterTradeResult(loss)

	signal := newSignal("EURUSD", 1.6)
	state := newState("EURUSD")

	decision := mgr.Approve(signal, state)
	if decision.Approved {
		t.Fatalf("expected rejection once global consecutive loss cap is reached")
	}
	if decision.Reason != risk.ReasonGlobalConsecutiveLoss {
		t.Errorf("reason = %s, want %s", decision.Reason, risk.ReasonGlobalConsecutiveLoss)
	}
}

func TestResetDailyClearsCounters(t *testing.T) {
	cfg := testConfig()
	adapter := newPaper()
	mgr := risk.New(zap.NewNop(), cfg, adapter, nil)

	now := time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC)
	mgr.RegisterTradeOpen("EURUSD", now)
	mgr.ResetDaily(now.AddDate(0, 0, 1))

	stats := mgr.Stats()
	if s, ok := stats["EURUSD"]; ok && s.TradesToday != 0 {
		t.Errorf("expected trades reset, got %d", s.TradesToday)
	}
}

func TestApproveAdjustmentBlockedByKillSwitch(t *testing.T) {
	cfg := testConfig()
	cfg.DrawdownKillSwitch = 0.0001
	adapter := newPaper()
	mgr := risk.New(zap.NewNop(), cfg, adapter, nil)

	signal := newSignal("EURUSD", 1.6)
	state := newState("EURUSD")
	mgr.Approve(signal, state)
	adapter.SetEquity(decimal.NewFromFloat(9000))
	mgr.Approve(signal, state)

	decision := mgr.ApproveAdjustment("EURUSD", time.Date(2026, 7, 31, 10, 5, 0, 0, time.UTC))
	if decision.Approved {
		t.Fatalf("expected adjustment rejection once drawdown kill switch has tripped")
	}
}
