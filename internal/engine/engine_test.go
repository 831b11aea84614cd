package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"

	"github.com/victorious243/scalper/internal/broker"
	"github.com/victorious243/scalper/internal/config"
	"github.com/victorious243/scalper/internal/engine"
)

func testConfig() config.BotConfig {
	cfg := config.Default()
	cfg.DryRun = true
	cfg.Symbols = []config.SymbolConfig{{
		Symbol:              "EURUSD",
		SpreadMode:          "pips",
		MaxSpread:           2.0,
		MinATR:              0.0002,
		MaxATR:              0.02,
		MinStopATR:          0.3,
		MinRegimeConfidence: 0.0,
		RiskPerTrade:        0.005,
		MaxDailyLoss:        100,
		MaxTradesPerDay:     10,
		MinRR:               1.0,
		NewsSensitivity:     "low",
	}}
	return cfg
}

func TestRunOnceSkipsSymbolsWithoutEnoughBars(t *testing.T) {
	adapter := broker.NewPaper(decimal.NewFromFloat(10000))
	e := engine.New(zaptest.NewLogger(t), testConfig(), adapter, nil)

	if err := e.RunOnce(context.Background(), time.Now()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
}

func TestRunOnceReturnsErrorOnCancelledContext(t *testing.T) {
	adapter := broker.NewPaper(decimal.NewFromFloat(10000))
	e := engine.New(zaptest.NewLogger(t), testConfig(), adapter, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.RunOnce(ctx, time.Now()); err == nil {
		t.Error("expected error from a cancelled context")
	}
}
