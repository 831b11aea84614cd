// Package strategy implements the signal generators evaluated against
// each symbol's market state every cycle: trend-pullback, range
// mean-reversion, and supply/demand zone entries.
package strategy

import (
	"sync"

	"go.uber.org/zap"

	"github.com/victorious243/scalper/pkg/types"
)

// Context carries per-cycle inputs a strategy may need beyond the M15/H1
// bar windows: the full per-timeframe bar map (supply/demand's higher
// timeframes) and the symbol's broker metadata.
type Context struct {
	BarsByTimeframe map[string][]types.Bar
	SymbolInfo      types.SymbolInfo
	Logger          *zap.Logger
}

// Strategy proposes at most one candidate Signal per cycle for a symbol,
// or nil if its entry conditions aren't met.
type Strategy interface {
	Name() string
	Generate(state types.MarketState, barsM15, barsH1 []types.Bar, ctx Context) *types.Signal
}

// Registry holds the strategies the engine evaluates each cycle, in
// registration order.
type Registry struct {
	mu         sync.RWMutex
	strategies []Strategy
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends s to the evaluation order.
func (r *Registry) Register(s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies = append(r.strategies, s)
}

// All returns a snapshot of the registered strategies.
func (r *Registry) All() []Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Strategy, len(r.strategies))
	copy(out, r.strategies)
	return out
}

// Default builds a Registry with the three built-in strategies, mirroring
// the bundle the reference engine wires by default.
func Default() *Registry {
	r := NewRegistry()
	r.Register(NewTrendPullback(0.0006, 1.6))
	r.Register(NewRangeMeanRevert(20, 1.3))
	r.Register(NewSupplyDemand(DefaultSupplyDemandConfig()))
	return r
}
