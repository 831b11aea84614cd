// Package supervisor manages open positions after entry: timed exits,
// break-even and trailing stop adjustments, a regime-flip exit, and an
// optional early close once a position has banked a configured multiple
// of its initial risk.
package supervisor

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/victorious243/scalper/internal/broker"
	"github.com/victorious243/scalper/internal/risk"
	"github.com/victorious243/scalper/pkg/types"
)

// Supervisor evaluates every open position each cycle against the exit
// and adjustment rules, gated through risk.ApproveAdjustment.
type Supervisor struct {
	mu      sync.Mutex
	adapter broker.Adapter
	risk    *risk.Manager
	meta    map[string]types.PositionMeta

	closeOnGoodProfit bool
	goodProfitRR      decimal.Decimal
}

// New builds a Supervisor bound to adapter and risk manager. When
// closeOnGoodProfit is true, a position is closed outright once its
// floating PnL reaches goodProfitRR times the initial risk, ahead of the
// trailing-stop logic.
func New(adapter broker.Adapter, riskManager *risk.Manager, closeOnGoodProfit bool, goodProfitRR float64) *Supervisor {
	return &Supervisor{
		adapter:           adapter,
		risk:              riskManager,
		meta:              make(map[string]types.PositionMeta),
		closeOnGoodProfit: closeOnGoodProfit,
		goodProfitRR:      decimal.NewFromFloat(goodProfitRR),
	}
}

// Register attaches entry-time bookkeeping to a newly opened position,
// keyed by its broker position id.
func (s *Supervisor) Register(positionID string, meta types.PositionMeta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meta[positionID] = meta
}

// Forget drops bookkeeping for a closed position.
func (s *Supervisor) Forget(positionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.meta, positionID)
}

// Evaluate runs exit/adjustment logic for every open position against the
// current market state.
func (s *Supervisor) Evaluate(state types.MarketState, positions []types.Position) {
	for _, pos := range positions {
		if pos.BrokerPositionID == nil {
			continue
		}
		positionID := *pos.BrokerPositionID

		decision := s.risk.ApproveAdjustment(pos.Symbol, state.Time)
		if !decision.Approved {
			continue
		}

		tick, ok := s.adapter.GetTick(pos.Symbol)
		if !ok {
			continue
		}
		currentPrice := tick.Bid
		if pos.Side == types.OrderSideSell {
			currentPrice = tick.Ask
		}

		var pnl decimal.Decimal
		if pos.Side == types.OrderSideBuy {
			pnl = currentPrice.Sub(pos.EntryPrice)
		} else {
			pnl = pos.EntryPrice.Sub(currentPrice)
		}

		s.mu.Lock()
		meta, hasMeta := s.meta[positionID]
		s.mu.Unlock()

		if hasMeta {
			if state.Time.Sub(meta.EntryTime) > time.Duration(meta.MaxHoldMinutes)*time.Minute {
				s.adapter.ClosePosition(positionID)
				s.Forget(positionID)
				continue
			}

			initialRisk := pos.EntryPrice.Sub(pos.StopLoss).Abs()

			if s.closeOnGoodProfit && initialRisk.Sign() > 0 && pnl.GreaterThanOrEqual(initialRisk.Mul(s.goodProfitRR)) {
				s.adapter.ClosePosition(positionID)
				s.Forget(positionID)
				continue
			}

			// Break-even once profit exceeds entry ATR or the initial risk.
			if pnl.GreaterThan(decimal.Max(meta.ATRAtEntry, initialRisk)) {
				newSL := pos.EntryPrice
				if (pos.Side == types.OrderSideBuy && newSL.GreaterThan(pos.StopLoss)) ||
					(pos.Side == types.OrderSideSell && newSL.LessThan(pos.StopLoss)) {
					s.adapter.ModifyPosition(positionID, newSL, pos.TakeProfit)
				}
			}

			// Conservative trailing once profit clears 0.8x entry ATR.
			trailDistance := meta.ATRAtEntry.Mul(decimal.NewFromFloat(0.8))
			if pnl.GreaterThan(trailDistance) {
				if pos.Side == types.OrderSideBuy {
					trailSL := currentPrice.Sub(trailDistance)
					if trailSL.GreaterThan(pos.StopLoss) {
						s.adapter.ModifyPosition(positionID, trailSL, pos.TakeProfit)
					}
				} else {
					trailSL := currentPrice.Add(trailDistance)
					if trailSL.LessThan(pos.StopLoss) {
						s.adapter.ModifyPosition(positionID, trailSL, pos.TakeProfit)
					}
				}
			}
		}

		// Exit once the regime reads as a flat range (RANGE with |trend|
		// below 0.0002), whichever strategy opened the position.
		if state.RegimePrimary == types.RegimeRange && state.TrendStrength.Abs().LessThan(decimal.NewFromFloat(0.0002)) {
			s.adapter.ClosePosition(positionID)
			s.Forget(positionID)
		}
	}
}
