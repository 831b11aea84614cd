package broker_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/victorious243/scalper/internal/broker"
	"github.com/victorious243/scalper/pkg/types"
)

func TestPaperPlaceOrderFillsAtRequestedPrice(t *testing.T) {
	p := broker.NewPaper(decimal.NewFromFloat(10000))
	result := p.PlaceOrder(types.OrderRequest{
		Symbol:        "EURUSD",
		Side:          types.OrderSideBuy,
		EntryPrice:    decimal.NewFromFloat(1.1000),
		StopLoss:      decimal.NewFromFloat(1.0950),
		TakeProfit:    decimal.NewFromFloat(1.1100),
		ClientOrderID: "order-1",
		Time:          time.Now(),
	})
	if !result.Success {
		t.Fatalf("expected fill, got %+v", result)
	}
	positions := p.GetOpenPositions("EURUSD")
	if len(positions) != 1 {
		t.Fatalf("expected 1 open position, got %d", len(positions))
	}
	if !positions[0].EntryPrice.Equal(decimal.NewFromFloat(1.1000)) {
		t.Errorf("EntryPrice = %s, want 1.1000", positions[0].EntryPrice)
	}
}

func TestPaperSeedTickClosesOnStopHit(t *testing.T) {
	p := broker.NewPaper(decimal.NewFromFloat(10000))
	p.PlaceOrder(types.OrderRequest{
		Symbol:        "EURUSD",
		Side:          types.OrderSideBuy,
		EntryPrice:    decimal.NewFromFloat(1.1000),
		StopLoss:      decimal.NewFromFloat(1.0950),
		TakeProfit:    decimal.NewFromFloat(1.1100),
		ClientOrderID: "order-2",
		Time:          time.Now(),
	})

	p.SeedTick("EURUSD", types.Tick{Time: time.Now(), Bid: decimal.NewFromFloat(1.0940), Ask: decimal.NewFromFloat(1.0942)})

	if positions := p.GetOpenPositions("EURUSD"); len(positions) != 0 {
		t.Errorf("expected position closed on stop hit, got %d open", len(positions))
	}
}

func TestSymbolInfoDerivesMetalsContractSize(t *testing.T) {
	p := broker.NewPaper(decimal.NewFromFloat(10000))
	info := p.SymbolInfo("XAUUSD")
	if !info.ContractSize.Equal(decimal.NewFromInt(100)) {
		t.Errorf("ContractSize = %s, want 100", info.ContractSize)
	}
}
