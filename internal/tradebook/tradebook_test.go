package tradebook_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/victorious243/scalper/internal/tradebook"
	"github.com/victorious243/scalper/pkg/types"
)

func TestCloseComputesSideAwarePnL(t *testing.T) {
	b := tradebook.New()
	entryTime := time.Date(2026, 7, 31, 9, 0, 0, 0, time.UTC)
	b.RegisterOpen("pos-1", types.TradeRecord{
		Symbol:       "EURUSD",
		Side:         types.OrderSideBuy,
		Volume:       decimal.NewFromFloat(0.5),
		ContractSize: decimal.NewFromFloat(100000),
		EntryPrice:   decimal.NewFromFloat(1.1000),
		EntryTime:    entryTime,
	})

	exitTime := entryTime.Add(30 * time.Minute)
	trade := b.Close("pos-1", decimal.NewFromFloat(1.1050), exitTime, "take_profit")
	if trade == nil {
		t.Fatal("expected a closed trade")
	}
	wantPnL := decimal.NewFromFloat(1.1050).Sub(decimal.NewFromFloat(1.1000)).Mul(decimal.NewFromFloat(0.5)).Mul(decimal.NewFromFloat(100000))
	if !trade.PnL.Equal(wantPnL) {
		t.Errorf("PnL = %s, want %s", trade.PnL, wantPnL)
	}
	if trade.HoldMinutes != 30 {
		t.Errorf("HoldMinutes = %v, want 30", trade.HoldMinutes)
	}
}

func TestReconcileClosesVanishedPositions(t *testing.T) {
	b := tradebook.New()
	entryTime := time.Date(2026, 7, 31, 9, 0, 0, 0, time.UTC)
	b.RegisterOpen("pos-2", types.TradeRecord{
		Symbol:       "EURUSD",
		Side:         types.OrderSideSell,
		Volume:       decimal.NewFromFloat(1),
		ContractSize: decimal.NewFromFloat(100000),
		EntryPrice:   decimal.NewFromFloat(1.1000),
		EntryTime:    entryTime,
	})

	closed := b.Reconcile(nil, map[string]decimal.Decimal{"EURUSD": decimal.NewFromFloat(1.0990)}, entryTime.Add(time.Hour))
	if len(closed) != 1 {
		t.Fatalf("expected 1 closed trade, got %d", len(closed))
	}
	if closed[0].Reason != "broker_exit" {
		t.Errorf("Reason = %s, want broker_exit", closed[0].Reason)
	}
}
