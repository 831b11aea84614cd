package execution_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/victorious243/scalper/internal/broker"
	"github.com/victorious243/scalper/internal/execution"
	"github.com/victorious243/scalper/pkg/types"
)

func TestPlaceFillsThroughPaperBroker(t *testing.T) {
	p := broker.NewPaper(decimal.NewFromFloat(10000))
	eng := execution.New(p, zap.NewNop())

	signal := types.Signal{
		Symbol:     "EURUSD",
		Strategy:   "trend_pullback",
		Side:       types.OrderSideBuy,
		OrderType:  types.OrderTypeMarket,
		EntryPrice: decimal.NewFromFloat(1.1000),
		StopLoss:   decimal.NewFromFloat(1.0950),
		TakeProfit: decimal.NewFromFloat(1.1100),
		Time:       time.Now(),
	}

	result := eng.Place(signal, decimal.NewFromFloat(0.1))
	if !result.Success {
		t.Fatalf("expected successful fill, got %+v", result)
	}
	if eng.CanOpen("EURUSD", 1) {
		t.Error("expected CanOpen to be false after filling the only slot")
	}
}
