// Package risk implements the multi-gate admission controller: per-symbol
// and global daily accounting, the ordered approve() gate sequence, kill
// switches, and risk-based position sizing.
package risk

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/victorious243/scalper/internal/broker"
	"github.com/victorious243/scalper/internal/config"
	"github.com/victorious243/scalper/internal/pips"
	"github.com/victorious243/scalper/pkg/types"
)

// Manager is the hard risk admission controller: it owns per-symbol and
// global RiskStats and evaluates every candidate signal against the
// ordered gate sequence before it may be sized and placed.
type Manager struct {
	mu           sync.Mutex
	logger       *zap.Logger
	config       config.BotConfig
	adapter      broker.Adapter
	drawdownKill decimal.Decimal

	stats       map[string]*types.RiskStats
	globalStats *types.GlobalRiskStats
}

// New builds a Manager bound to cfg and adapter. drawdownKill overrides
// cfg.DrawdownKillSwitch when non-nil.
func New(logger *zap.Logger, cfg config.BotConfig, adapter broker.Adapter, drawdownKill *decimal.Decimal) *Manager {
	dd := decimal.NewFromFloat(cfg.DrawdownKillSwitch)
	if drawdownKill != nil {
		dd = *drawdownKill
	}
	return &Manager{
		logger:       logger.Named("risk"),
		config:       cfg,
		adapter:      adapter,
		drawdownKill: dd,
		stats:        make(map[string]*types.RiskStats),
	}
}

func (m *Manager) symbolConfig(symbol string) (config.SymbolConfig, error) {
	if s, ok := m.config.SymbolByName(symbol); ok {
		return s, nil
	}
	return config.SymbolConfig{}, fmt.Errorf("risk: no config for symbol %s", symbol)
}

func dateTag(t time.Time) string { return t.Format("2006-01-02") }

// resetIfNewDay reinitializes the symbol's RiskStats (peak_equity := current
// equity) when its date tag is stale. Must be called with mu held.
func (m *Manager) resetIfNewDay(symbol string, now time.Time) {
	date := dateTag(now)
	stats, ok := m.stats[symbol]
	if !ok || stats.Date != date {
		equity := m.adapter.GetAccountInfo().Equity
		m.stats[symbol] = &types.RiskStats{Date: date, PeakEquity: equity}
	}
}

// resetGlobalIfNewDay is the cross-symbol counterpart of resetIfNewDay.
// Must be called with mu held.
func (m *Manager) resetGlobalIfNewDay(now time.Time) {
	date := dateTag(now)
	if m.globalStats == nil || m.globalStats.Date != date {
		equity := m.adapter.GetAccountInfo().Equity
		m.globalStats = &types.GlobalRiskStats{Date: date, PeakEquity: equity}
	}
}

// Approve runs the ordered gate sequence against signal and state, as
// described in the core's risk manager design: the first failing gate
// returns immediately with its reason code; success returns the sized
// volume.
func (m *Manager) Approve(signal types.Signal, state types.MarketState) types.RiskDecision {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.resetIfNewDay(signal.Symbol, signal.Time)
	m.resetGlobalIfNewDay(signal.Time)
	stats := m.stats[signal.Symbol]
	global := m.globalStats

	cfg, err := m.symbolConfig(signal.Symbol)
	if err != nil {
		return types.RiskDecision{Approved: false, Reason: ReasonMarketClosed}
	}

	// 2. Kill switch.
	if stats.KillSwitch || (global != nil && global.KillSwitch) {
		return types.RiskDecision{Approved: false, Reason: ReasonKillSwitch}
	}

	// 3. Session.
	if state.Session == "OFF" {
		return types.RiskDecision{Approved: false, Reason: ReasonOutsideSession}
	}

	// 4. Regime confidence / mixed secondary.
	if state.Confidence.LessThan(decimal.NewFromFloat(cfg.MinRegimeConfidence)) || state.RegimeSecondary == types.RegimeMixed {
		return types.RiskDecision{Approved: false, Reason: ReasonLowRegimeConfidence}
	}

	// 5. RR floor.
	if signal.RR().LessThan(decimal.NewFromFloat(cfg.MinRR)) {
		return types.RiskDecision{Approved: false, Reason: ReasonRRTooLow}
	}

	// 6. Cooldown since last close.
	cooldownMinutes := m.config.TradeCooldownMinutes
	if cfg.TradeCooldownMinutes != nil {
		cooldownMinutes = *cfg.TradeCooldownMinutes
	}
	if stats.LastCloseTime != nil && signal.Time.Before(stats.LastCloseTime.Add(time.Duration(cooldownMinutes)*time.Minute)) {
		return types.RiskDecision{Approved: false, Reason: ReasonCooldownActive}
	}

	// 7. Symbol tradable.
	symbolInfo := m.adapter.SymbolInfo(signal.Symbol)
	if symbolInfo.TradeMode == 0 {
		return types.RiskDecision{Approved: false, Reason: ReasonMarketClosed}
	}

	tick, ok := m.adapter.GetTick(signal.Symbol)
	if !ok {
		return types.RiskDecision{Approved: false, Reason: ReasonMarketClosed}
	}

	// 8. Spread-spike cooldown.
	if stats.SpreadCooldownUntil != nil && signal.Time.Before(*stats.SpreadCooldownUntil) {
		return types.RiskDecision{Approved: false, Reason: ReasonSpreadSpikeCooldown}
	}

	// 9. Spread width, with spike counter/cooldown arming.
	var spreadValue decimal.Decimal
	if cfg.SpreadMode == "points" {
		spreadValue = pips.InPoints(tick.Bid, tick.Ask, symbolInfo.Point)
	} else {
		spreadValue = pips.InPips(tick.Bid, tick.Ask, signal.Symbol, symbolInfo.Digits, symbolInfo.Point)
	}
	maxSpread := decimal.NewFromFloat(cfg.MaxSpread).Mul(decimal.NewFromFloat(m.config.SpreadFilterMultiplier))
	if spreadValue.GreaterThan(maxSpread) {
		stats.SpreadSpikeCount++
		if stats.SpreadSpikeCount >= cfg.MinSpreadChecks {
			until := signal.Time.Add(time.Duration(cfg.SpreadSpikeCooldownMinutes) * time.Minute)
			stats.SpreadCooldownUntil = &until
			stats.SpreadSpikeCount = 0
		}
		return types.RiskDecision{Approved: false, Reason: ReasonSpreadTooWide}
	}
	stats.SpreadSpikeCount = 0

	// 10. Volatility bounds.
	if state.Volatility.LessThan(decimal.NewFromFloat(cfg.MinATR)) {
		return types.RiskDecision{Approved: false, Reason: ReasonVolatilityTooLow}
	}
	if state.Volatility.GreaterThan(decimal.NewFromFloat(cfg.MaxATR)) {
		return types.RiskDecision{Approved: false, Reason: ReasonVolatilityTooHigh}
	}

	// 11. Per-symbol trade/loss caps.
	if stats.TradesToday >= cfg.MaxTradesPerDay {
		return types.RiskDecision{Approved: false, Reason: ReasonMaxTradesReached}
	}
	if stats.ConsecutiveLosses >= cfg.MaxConsecutiveLosses {
		return types.RiskDecision{Approved: false, Reason: ReasonMaxConsecutiveLosses}
	}

	// 12. Global trade/loss caps.
	if global != nil {
		if global.TradesToday >= m.config.MaxDailyTrades {
			return types.RiskDecision{Approved: false, Reason: ReasonGlobalMaxTrades}
		}
		if global.ConsecutiveLosses >= m.config.MaxConsecutiveLosses {
			return types.RiskDecision{Approved: false, Reason: ReasonGlobalConsecutiveLoss}
		}
	}

	// 13. Margin.
	info := m.adapter.GetAccountInfo()
	if info.MarginFree.Sign() <= 0 {
		return types.RiskDecision{Approved: false, Reason: ReasonInsufficientMargin}
	}

	// 14. Daily loss caps.
	maxDailyLoss := cfg.MaxDailyLoss
	if m.config.MaxDailyLoss < maxDailyLoss {
		maxDailyLoss = m.config.MaxDailyLoss
	}
	symbolFloor := decimal.NewFromFloat(maxDailyLoss).Mul(info.Equity).Neg().Abs().Neg()
	if stats.DailyLoss.LessThanOrEqual(symbolFloor) {
		return types.RiskDecision{Approved: false, Reason: ReasonDailyLossLimit}
	}
	if global != nil {
		globalFloor := decimal.NewFromFloat(m.config.MaxDailyLoss).Mul(info.Equity).Neg().Abs().Neg()
		if global.DailyLoss.LessThanOrEqual(globalFloor) {
			return types.RiskDecision{Approved: false, Reason: ReasonGlobalDailyLoss}
		}
	}

	// 15. Drawdown kill switch.
	if global != nil {
		if info.Equity.GreaterThan(global.PeakEquity) {
			global.PeakEquity = info.Equity
		}
		drawdown := decimal.Zero
		if global.PeakEquity.Sign() > 0 {
			drawdown = global.PeakEquity.Sub(info.Equity).Div(global.PeakEquity)
		}
		if drawdown.GreaterThanOrEqual(m.drawdownKill) {
			global.KillSwitch = true
			return types.RiskDecision{Approved: false, Reason: ReasonDrawdownKillSwitch}
		}
	}

	minLot := symbolInfo.VolumeMin
	step := symbolInfo.VolumeStep
	if cfg.MinLotOverride != nil {
		minLot = decimal.NewFromFloat(*cfg.MinLotOverride)
	}
	if cfg.LotStepOverride != nil {
		step = decimal.NewFromFloat(*cfg.LotStepOverride)
	}

	// 16. Broker stop/freeze-level compliance.
	stopsLevel := symbolInfo.TradeStopsLevel.Mul(symbolInfo.Point)
	freezeLevel := symbolInfo.TradeFreezeLevel.Mul(symbolInfo.Point)
	if signal.Side == types.OrderSideBuy {
		if signal.EntryPrice.Sub(signal.StopLoss).LessThan(stopsLevel) {
			return types.RiskDecision{Approved: false, Reason: ReasonStopTooClose}
		}
		if signal.TakeProfit.Sub(signal.EntryPrice).LessThan(stopsLevel) {
			return types.RiskDecision{Approved: false, Reason: ReasonTPTooClose}
		}
		if freezeLevel.Sign() > 0 && signal.EntryPrice.Sub(signal.StopLoss).LessThan(freezeLevel) {
			return types.RiskDecision{Approved: false, Reason: ReasonFreezeLevel}
		}
	} else {
		if signal.StopLoss.Sub(signal.EntryPrice).LessThan(stopsLevel) {
			return types.RiskDecision{Approved: false, Reason: ReasonStopTooClose}
		}
		if signal.EntryPrice.Sub(signal.TakeProfit).LessThan(stopsLevel) {
			return types.RiskDecision{Approved: false, Reason: ReasonTPTooClose}
		}
		if freezeLevel.Sign() > 0 && signal.StopLoss.Sub(signal.EntryPrice).LessThan(freezeLevel) {
			return types.RiskDecision{Approved: false, Reason: ReasonFreezeLevel}
		}
	}

	// 17. Stop distance validity.
	contractSize := symbolInfo.ContractSize
	riskAmount := info.Equity.Mul(decimal.NewFromFloat(cfg.RiskPerTrade))
	stopDistance := signal.EntryPrice.Sub(signal.StopLoss).Abs()
	if stopDistance.Sign() <= 0 {
		return types.RiskDecision{Approved: false, Reason: ReasonInvalidStopDistance}
	}
	if stopDistance.LessThan(decimal.NewFromFloat(cfg.MinStopATR).Mul(state.Volatility)) {
		return types.RiskDecision{Approved: false, Reason: ReasonStopTooTightATR}
	}

	// 18. Volume sizing: round to the nearest broker lot step, floor at
	// the broker minimum.
	rawVolume := riskAmount.Div(stopDistance.Mul(contractSize))
	steppedVolume := rawVolume.Div(step).Round(0).Mul(step)
	volume := decimal.Max(minLot, steppedVolume)
	if volume.LessThan(minLot) {
		return types.RiskDecision{Approved: false, Reason: ReasonVolumeBelowMin}
	}

	return types.RiskDecision{Approved: true, Reason: ReasonApproved, AdjustedSize: volume}
}

// RegisterTradeResult updates daily PnL, consecutive-loss streaks, and
// last-close time from a closed trade.
func (m *Manager) RegisterTradeResult(trade types.TradeRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()

	closeTime := trade.ExitTime
	if closeTime.IsZero() {
		closeTime = time.Now()
	}
	m.resetIfNewDay(trade.Symbol, closeTime)
	m.resetGlobalIfNewDay(closeTime)

	stats := m.stats[trade.Symbol]
	if trade.PnL.Sign() < 0 {
		stats.DailyLoss = stats.DailyLoss.Add(trade.PnL)
		stats.ConsecutiveLosses++
	} else {
		stats.ConsecutiveLosses = 0
	}
	stats.LastCloseTime = &closeTime

	if m.globalStats != nil {
		if trade.PnL.Sign() < 0 {
			m.globalStats.DailyLoss = m.globalStats.DailyLoss.Add(trade.PnL)
			m.globalStats.ConsecutiveLosses++
		} else {
			m.globalStats.ConsecutiveLosses = 0
		}
	}
}

// ResetDaily force-rolls every symbol's and the global stats to date,
// discarding accumulated counters. Used by explicit day-boundary callers.
func (m *Manager) ResetDaily(date time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tag := dateTag(date)
	for symbol := range m.stats {
		m.stats[symbol] = &types.RiskStats{Date: tag}
	}
	m.globalStats = &types.GlobalRiskStats{Date: tag}
}

// ApproveAdjustment is the lightweight gate the supervisor consults
// before modifying a position's stop/take: it only checks the kill
// switch.
func (m *Manager) ApproveAdjustment(symbol string, now time.Time) types.RiskDecision {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetIfNewDay(symbol, now)
	m.resetGlobalIfNewDay(now)
	stats := m.stats[symbol]
	if stats.KillSwitch || (m.globalStats != nil && m.globalStats.KillSwitch) {
		return types.RiskDecision{Approved: false, Reason: ReasonKillSwitch}
	}
	return types.RiskDecision{Approved: true, Reason: ReasonApprovedAdjustment}
}

// RegisterTradeOpen increments the per-symbol and global trades-today
// counters after daily rollover.
func (m *Manager) RegisterTradeOpen(symbol string, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetIfNewDay(symbol, now)
	m.stats[symbol].TradesToday++
	m.resetGlobalIfNewDay(now)
	if m.globalStats != nil {
		m.globalStats.TradesToday++
	}
}

// Stats returns a copy of the current per-symbol RiskStats snapshot, for
// the monitoring API.
func (m *Manager) Stats() map[string]types.RiskStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]types.RiskStats, len(m.stats))
	for k, v := range m.stats {
		out[k] = *v
	}
	return out
}

// GlobalStats returns a copy of the current global risk stats, if any
// have been initialized.
func (m *Manager) GlobalStats() (types.GlobalRiskStats, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.globalStats == nil {
		return types.GlobalRiskStats{}, false
	}
	return *m.globalStats, true
}
