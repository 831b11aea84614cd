// Package broker defines the capability interface the engine depends on
// for market data and order routing, and provides a paper-trading
// simulator implementation for tests and dry runs.
package broker

import (
	"github.com/shopspring/decimal"

	"github.com/victorious243/scalper/pkg/types"
)

// Adapter is the capability every broker integration (live venue, paper
// simulator, hybrid) must satisfy. Concrete variants are selected at
// construction; the engine never reaches into adapter internals.
type Adapter interface {
	Connect() bool
	IsConnected() bool
	Shutdown()
	GetBars(symbol, timeframe string, count int) []types.Bar
	GetTick(symbol string) (types.Tick, bool)
	GetAccountInfo() types.AccountInfo
	GetOpenPositions(symbol string) []types.Position
	PlaceOrder(order types.OrderRequest) types.OrderResult
	ModifyPosition(positionID string, stopLoss, takeProfit decimal.Decimal) types.OrderResult
	ClosePosition(positionID string) types.OrderResult
	SymbolInfo(symbol string) types.SymbolInfo
}
