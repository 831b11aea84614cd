package strategy

import (
	"github.com/shopspring/decimal"

	"github.com/victorious243/scalper/internal/indicators"
	"github.com/victorious243/scalper/pkg/types"
)

// RangeMeanRevert enters at the extremes of a rolling 20-bar range when
// RSI confirms an oversold or overbought bounce.
type RangeMeanRevert struct {
	lookback int
	rr       decimal.Decimal
}

// NewRangeMeanRevert builds a RangeMeanRevert with the given lookback and
// reward-to-risk target.
func NewRangeMeanRevert(lookback int, rr float64) *RangeMeanRevert {
	return &RangeMeanRevert{lookback: lookback, rr: decimal.NewFromFloat(rr)}
}

// Name implements Strategy.
func (s *RangeMeanRevert) Name() string { return "range_mean_revert" }

var fifteenPercent = decimal.NewFromFloat(0.15)

// Generate implements Strategy.
func (s *RangeMeanRevert) Generate(state types.MarketState, barsM15, barsH1 []types.Bar, ctx Context) *types.Signal {
	if state.RegimePrimary != types.RegimeRange {
		return nil
	}
	if len(barsM15) == 0 {
		return nil
	}

	last := barsM15[len(barsM15)-1]
	high, low := indicators.RollingHighLow(barsM15, s.lookback)
	if high.IsZero() || low.IsZero() {
		return nil
	}

	rangeSize := high.Sub(low)
	if rangeSize.Sign() <= 0 {
		return nil
	}

	closes := make([]decimal.Decimal, len(barsM15))
	for i, b := range barsM15 {
		closes[i] = b.Close
	}
	lastRSI := indicators.RSI(closes, 14)
	atrVal := indicators.ATR(barsM15, 14)

	nearHigh := high.Sub(last.Close).Div(rangeSize).LessThan(fifteenPercent)
	nearLow := last.Close.Sub(low).Div(rangeSize).LessThan(fifteenPercent)

	confidence := decimal.Min(decimal.NewFromInt(1), decimal.NewFromFloat(0.45).Add(decimal.NewFromInt(50).Sub(lastRSI).Abs().Div(decimal.NewFromInt(100))))

	if nearLow && lastRSI.LessThan(decimal.NewFromInt(30)) {
		entry := last.Close
		stop := low.Sub(atrVal.Mul(decimal.NewFromFloat(0.2)))
		risk := entry.Sub(stop)
		if risk.LessThanOrEqual(atrVal.Mul(decimal.NewFromFloat(0.4))) {
			stop = entry.Sub(atrVal.Mul(decimal.NewFromFloat(0.6)))
			risk = entry.Sub(stop)
		}
		take := entry.Add(risk.Mul(s.rr))
		return &types.Signal{
			Symbol:         state.Symbol,
			Time:           last.Time,
			Strategy:       s.Name(),
			Side:           types.OrderSideBuy,
			OrderType:      types.OrderTypeMarket,
			EntryPrice:     entry,
			StopLoss:       stop,
			TakeProfit:     take,
			MaxHoldMinutes: 120,
			Confidence:     confidence,
			Rationale:      []string{"range_low", "rsi_oversold"},
		}
	}

	if nearHigh && lastRSI.GreaterThan(decimal.NewFromInt(70)) {
		entry := last.Close
		stop := high.Add(atrVal.Mul(decimal.NewFromFloat(0.2)))
		risk := stop.Sub(entry)
		if risk.LessThanOrEqual(atrVal.Mul(decimal.NewFromFloat(0.4))) {
			stop = entry.Add(atrVal.Mul(decimal.NewFromFloat(0.6)))
			risk = stop.Sub(entry)
		}
		take := entry.Sub(risk.Mul(s.rr))
		return &types.Signal{
			Symbol:         state.Symbol,
			Time:           last.Time,
			Strategy:       s.Name(),
			Side:           types.OrderSideSell,
			OrderType:      types.OrderTypeMarket,
			EntryPrice:     entry,
			StopLoss:       stop,
			TakeProfit:     take,
			MaxHoldMinutes: 120,
			Confidence:     confidence,
			Rationale:      []string{"range_high", "rsi_overbought"},
		}
	}

	return nil
}
