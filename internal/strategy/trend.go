package strategy

import (
	"github.com/shopspring/decimal"

	"github.com/victorious243/scalper/internal/indicators"
	"github.com/victorious243/scalper/pkg/types"
)

// TrendPullback enters on a shallow EMA20 pullback within an established
// H1 trend, confirmed by candle direction and an RSI filter against
// chasing an extended move.
type TrendPullback struct {
	minTrend decimal.Decimal
	rr       decimal.Decimal
}

// NewTrendPullback builds a TrendPullback with the given minimum H1 trend
// strength and reward-to-risk target.
func NewTrendPullback(minTrend, rr float64) *TrendPullback {
	return &TrendPullback{minTrend: decimal.NewFromFloat(minTrend), rr: decimal.NewFromFloat(rr)}
}

// Name implements Strategy.
func (s *TrendPullback) Name() string { return "trend_pullback" }

// Generate implements Strategy.
func (s *TrendPullback) Generate(state types.MarketState, barsM15, barsH1 []types.Bar, ctx Context) *types.Signal {
	if state.RegimePrimary != types.RegimeTrend {
		return nil
	}
	if len(barsM15) == 0 || len(barsH1) == 0 {
		return nil
	}

	trend := indicators.TrendStrength(barsH1, 20, 50)
	if trend.Abs().LessThan(s.minTrend) {
		return nil
	}

	closes := make([]decimal.Decimal, len(barsM15))
	for i, b := range barsM15 {
		closes[i] = b.Close
	}
	fastEMA := indicators.EMA(closes, 20)
	last := barsM15[len(barsM15)-1]
	lastRSI := indicators.RSI(closes, 14)
	atrVal := indicators.ATR(barsM15, 14)
	swingHigh, swingLow := indicators.RollingHighLow(barsM15, 12)

	confidenceMult := decimal.NewFromFloat(800)

	if trend.Sign() > 0 {
		upper := fastEMA.Mul(decimal.NewFromFloat(1.001))
		lower := fastEMA.Mul(decimal.NewFromFloat(0.997))
		pullback := last.Close.LessThanOrEqual(upper) && last.Close.GreaterThanOrEqual(lower)
		if !pullback || last.Close.LessThanOrEqual(last.Open) || lastRSI.GreaterThan(decimal.NewFromInt(70)) {
			return nil
		}
		entry := last.Close
		stop := decimal.Min(swingLow, last.Low).Sub(atrVal.Mul(decimal.NewFromFloat(0.3)))
		risk := entry.Sub(stop)
		if risk.LessThanOrEqual(atrVal.Mul(decimal.NewFromFloat(0.5))) {
			stop = entry.Sub(atrVal.Mul(decimal.NewFromFloat(0.7)))
			risk = entry.Sub(stop)
		}
		take := entry.Add(risk.Mul(s.rr))
		confidence := decimal.Min(decimal.NewFromInt(1), decimal.NewFromFloat(0.5).Add(trend.Abs().Mul(confidenceMult)))
		return &types.Signal{
			Symbol:         state.Symbol,
			Time:           last.Time,
			Strategy:       s.Name(),
			Side:           types.OrderSideBuy,
			OrderType:      types.OrderTypeMarket,
			EntryPrice:     entry,
			StopLoss:       stop,
			TakeProfit:     take,
			MaxHoldMinutes: 180,
			Confidence:     confidence,
			Rationale:      []string{"h1_trend_up", "m15_pullback", "ema20_touch"},
		}
	}

	if trend.Sign() < 0 {
		upper := fastEMA.Mul(decimal.NewFromFloat(1.003))
		lower := fastEMA.Mul(decimal.NewFromFloat(0.999))
		pullback := last.Close.GreaterThanOrEqual(lower) && last.Close.LessThanOrEqual(upper)
		if !pullback || last.Close.GreaterThanOrEqual(last.Open) || lastRSI.LessThan(decimal.NewFromInt(30)) {
			return nil
		}
		entry := last.Close
		stop := decimal.Max(swingHigh, last.High).Add(atrVal.Mul(decimal.NewFromFloat(0.3)))
		risk := stop.Sub(entry)
		if risk.LessThanOrEqual(atrVal.Mul(decimal.NewFromFloat(0.5))) {
			stop = entry.Add(atrVal.Mul(decimal.NewFromFloat(0.7)))
			risk = stop.Sub(entry)
		}
		take := entry.Sub(risk.Mul(s.rr))
		confidence := decimal.Min(decimal.NewFromInt(1), decimal.NewFromFloat(0.5).Add(trend.Abs().Mul(confidenceMult)))
		return &types.Signal{
			Symbol:         state.Symbol,
			Time:           last.Time,
			Strategy:       s.Name(),
			Side:           types.OrderSideSell,
			OrderType:      types.OrderTypeMarket,
			EntryPrice:     entry,
			StopLoss:       stop,
			TakeProfit:     take,
			MaxHoldMinutes: 180,
			Confidence:     confidence,
			Rationale:      []string{"h1_trend_down", "m15_pullback", "ema20_touch"},
		}
	}

	return nil
}
