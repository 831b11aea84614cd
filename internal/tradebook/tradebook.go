// Package tradebook tracks the lifecycle of open trades, keyed by broker
// position id, from fill through close or broker-side reconciliation.
package tradebook

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/victorious243/scalper/pkg/types"
)

type openTrade struct {
	trade      types.TradeRecord
	positionID string
}

// TradeBook holds every currently-open trade and closes them with
// side-aware PnL, either explicitly or via reconciliation against the
// broker's own open-position list.
type TradeBook struct {
	mu    sync.Mutex
	open  map[string]openTrade
}

// New builds an empty TradeBook.
func New() *TradeBook {
	return &TradeBook{open: make(map[string]openTrade)}
}

// RegisterOpen records a freshly filled trade under positionID.
func (b *TradeBook) RegisterOpen(positionID string, trade types.TradeRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open[positionID] = openTrade{trade: trade, positionID: positionID}
}

// Close finalizes the trade at positionID with the given exit price/time
// and reason, returning the completed record, or nil if no such trade is
// open.
func (b *TradeBook) Close(positionID string, exitPrice decimal.Decimal, exitTime time.Time, reason string) *types.TradeRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closeLocked(positionID, exitPrice, exitTime, reason)
}

func (b *TradeBook) closeLocked(positionID string, exitPrice decimal.Decimal, exitTime time.Time, reason string) *types.TradeRecord {
	ot, ok := b.open[positionID]
	if !ok {
		return nil
	}
	delete(b.open, positionID)

	trade := ot.trade
	trade.ExitPrice = exitPrice
	trade.ExitTime = exitTime
	trade.HoldMinutes = exitTime.Sub(trade.EntryTime).Minutes()
	if trade.Side == types.OrderSideBuy {
		trade.PnL = exitPrice.Sub(trade.EntryPrice).Mul(trade.Volume).Mul(trade.ContractSize)
	} else {
		trade.PnL = trade.EntryPrice.Sub(exitPrice).Mul(trade.Volume).Mul(trade.ContractSize)
	}
	trade.Reason = reason
	return &trade
}

// Reconcile closes every open trade whose position id no longer appears
// in currentPositions, using the last known tick price per symbol (or the
// trade's own entry price if no tick is available). Returns the records
// closed this way, tagged "broker_exit".
func (b *TradeBook) Reconcile(currentPositions []types.Position, tickPrice map[string]decimal.Decimal, now time.Time) []types.TradeRecord {
	b.mu.Lock()
	defer b.mu.Unlock()

	current := make(map[string]bool, len(currentPositions))
	for _, p := range currentPositions {
		if p.BrokerPositionID != nil {
			current[*p.BrokerPositionID] = true
		}
	}

	var closed []types.TradeRecord
	for positionID, ot := range b.open {
		if current[positionID] {
			continue
		}
		price, ok := tickPrice[ot.trade.Symbol]
		if !ok {
			price = ot.trade.EntryPrice
		}
		if trade := b.closeLocked(positionID, price, now, "broker_exit"); trade != nil {
			closed = append(closed, *trade)
		}
	}
	return closed
}

// Open returns a snapshot of currently open trades, for the monitoring
// API.
func (b *TradeBook) Open() []types.TradeRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]types.TradeRecord, 0, len(b.open))
	for _, ot := range b.open {
		out = append(out, ot.trade)
	}
	return out
}
