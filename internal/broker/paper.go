package broker

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/victorious243/scalper/pkg/types"
)

// Paper is an in-memory broker simulator: it holds seeded bars and ticks,
// fills orders immediately at the requested price, and auto-closes
// positions whose stop or take level the next seeded tick crosses.
type Paper struct {
	mu         sync.Mutex
	balance    decimal.Decimal
	equity     decimal.Decimal
	marginFree decimal.Decimal
	currency   string
	positions  map[string]types.Position
	lastTick   map[string]types.Tick
	bars       map[string]map[string][]types.Bar
}

// NewPaper builds a Paper broker seeded with initialBalance.
func NewPaper(initialBalance decimal.Decimal) *Paper {
	return &Paper{
		balance:    initialBalance,
		equity:     initialBalance,
		marginFree: initialBalance,
		currency:   "USD",
		positions:  make(map[string]types.Position),
		lastTick:   make(map[string]types.Tick),
		bars:       make(map[string]map[string][]types.Bar),
	}
}

// SetEquity overrides the simulated account equity, for scenarios that
// need to force a drawdown or margin condition.
func (p *Paper) SetEquity(equity decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.equity = equity
}

// Connect implements Adapter.
func (p *Paper) Connect() bool { return true }

// IsConnected implements Adapter.
func (p *Paper) IsConnected() bool { return true }

// Shutdown implements Adapter.
func (p *Paper) Shutdown() {}

// SeedBars loads bar history for symbol/timeframe, as a test or
// replay harness would.
func (p *Paper) SeedBars(symbol, timeframe string, bars []types.Bar) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bars[symbol] == nil {
		p.bars[symbol] = make(map[string][]types.Bar)
	}
	p.bars[symbol][timeframe] = bars
}

// SeedTick records a new tick and simulates any SL/TP hits it triggers
// on open positions for that symbol.
func (p *Paper) SeedTick(symbol string, tick types.Tick) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastTick[symbol] = tick

	for id, pos := range p.positions {
		if pos.Symbol != symbol {
			continue
		}
		if pos.Side == types.OrderSideBuy {
			if tick.Bid.LessThanOrEqual(pos.StopLoss) || tick.Bid.GreaterThanOrEqual(pos.TakeProfit) {
				delete(p.positions, id)
			}
		} else {
			if tick.Ask.GreaterThanOrEqual(pos.StopLoss) || tick.Ask.LessThanOrEqual(pos.TakeProfit) {
				delete(p.positions, id)
			}
		}
	}
}

// GetBars implements Adapter.
func (p *Paper) GetBars(symbol, timeframe string, count int) []types.Bar {
	p.mu.Lock()
	defer p.mu.Unlock()
	bars := p.bars[symbol][timeframe]
	if len(bars) <= count {
		return append([]types.Bar{}, bars...)
	}
	return append([]types.Bar{}, bars[len(bars)-count:]...)
}

// GetTick implements Adapter.
func (p *Paper) GetTick(symbol string) (types.Tick, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	tick, ok := p.lastTick[symbol]
	return tick, ok
}

// GetAccountInfo implements Adapter.
func (p *Paper) GetAccountInfo() types.AccountInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	return types.AccountInfo{
		Equity:     p.equity,
		Balance:    p.balance,
		MarginFree: p.marginFree,
		Currency:   p.currency,
	}
}

// GetOpenPositions implements Adapter.
func (p *Paper) GetOpenPositions(symbol string) []types.Position {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []types.Position
	for _, pos := range p.positions {
		if symbol == "" || pos.Symbol == symbol {
			out = append(out, pos)
		}
	}
	return out
}

// PlaceOrder implements Adapter, filling immediately at the requested
// entry price and keyed by the request's client order id.
func (p *Paper) PlaceOrder(order types.OrderRequest) types.OrderResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	positionID := order.ClientOrderID
	p.positions[positionID] = types.Position{
		Symbol:           order.Symbol,
		Side:             order.Side,
		Volume:           order.Volume,
		EntryPrice:       order.EntryPrice,
		StopLoss:         order.StopLoss,
		TakeProfit:       order.TakeProfit,
		OpenTime:         order.Time,
		BrokerPositionID: &positionID,
	}
	return types.OrderResult{Success: true, BrokerPositionID: &positionID, Status: "FILLED", Message: "Paper fill"}
}

// ModifyPosition implements Adapter.
func (p *Paper) ModifyPosition(positionID string, stopLoss, takeProfit decimal.Decimal) types.OrderResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	pos, ok := p.positions[positionID]
	if !ok {
		return types.OrderResult{Success: false, Status: "NOT_FOUND", Message: "Position not found"}
	}
	pos.StopLoss = stopLoss
	pos.TakeProfit = takeProfit
	p.positions[positionID] = pos
	return types.OrderResult{Success: true, BrokerPositionID: &positionID, Status: "MODIFIED", Message: "Paper modify"}
}

// ClosePosition implements Adapter.
func (p *Paper) ClosePosition(positionID string) types.OrderResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.positions[positionID]; !ok {
		return types.OrderResult{Success: false, Status: "NOT_FOUND", Message: "Position not found"}
	}
	delete(p.positions, positionID)
	return types.OrderResult{Success: true, BrokerPositionID: &positionID, Status: "CLOSED", Message: "Paper close"}
}

// SymbolInfo implements Adapter, deriving contract metadata from the
// symbol's instrument family (JPY cross, gold, silver, default FX).
func (p *Paper) SymbolInfo(symbol string) types.SymbolInfo {
	upper := strings.ToUpper(symbol)
	contractSize := decimal.NewFromInt(100000)
	point := decimal.NewFromFloat(0.0001)
	digits := 5

	switch {
	case strings.Contains(upper, "JPY"):
		point = decimal.NewFromFloat(0.001)
		digits = 3
	case strings.Contains(upper, "XAU"):
		contractSize = decimal.NewFromInt(100)
		point = decimal.NewFromFloat(0.01)
		digits = 2
	case strings.Contains(upper, "XAG"):
		contractSize = decimal.NewFromInt(5000)
		point = decimal.NewFromFloat(0.01)
		digits = 2
	}

	tickSize := point
	tickValue := contractSize.Mul(tickSize)

	return types.SymbolInfo{
		Point:            point,
		Digits:           digits,
		ContractSize:     contractSize,
		TickSize:         tickSize,
		TickValue:        tickValue,
		VolumeMin:        decimal.NewFromFloat(0.01),
		VolumeMax:        decimal.NewFromInt(100),
		VolumeStep:       decimal.NewFromFloat(0.01),
		TradeStopsLevel:  decimal.NewFromInt(10),
		TradeFreezeLevel: decimal.Zero,
		TradeMode:        1,
	}
}
