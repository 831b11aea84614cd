// Package observer classifies market regime from recent bar history: a
// primary trend/range dimension from H1 EMAs and a secondary volatility
// bucket from M15 ATR, plus session and confidence.
package observer

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/victorious243/scalper/internal/config"
	"github.com/victorious243/scalper/internal/indicators"
	"github.com/victorious243/scalper/pkg/types"
)

var (
	trendThreshold   = decimal.NewFromFloat(0.0006)
	highVolThreshold = decimal.NewFromFloat(0.004)
	lowVolThreshold  = decimal.NewFromFloat(0.0015)
)

// Observer computes a MarketState for one symbol per cycle. It holds no
// mutable state of its own; every call is a pure function of the bars and
// timestamp handed to it.
type Observer struct {
	logger   *zap.Logger
	sessions []config.SessionConfig
	timezone string
}

// New builds an Observer bound to the bot's configured sessions and
// default timezone.
func New(logger *zap.Logger, sessions []config.SessionConfig, timezone string) *Observer {
	return &Observer{
		logger:   logger.Named("observer"),
		sessions: sessions,
		timezone: timezone,
	}
}

// Evaluate computes the MarketState for symbol given its M15 and H1 bar
// history as of now.
func (o *Observer) Evaluate(symbol string, barsM15, barsH1 []types.Bar, now time.Time) types.MarketState {
	trend := indicators.TrendStrength(barsH1, 20, 50)
	volatility := indicators.ATR(barsM15, 14)
	compression := indicators.RangeCompression(barsM15, 20)
	session := InSessions(now, o.sessions, o.timezone)

	var return1 decimal.Decimal
	if len(barsM15) >= 2 {
		prevClose := barsM15[len(barsM15)-2].Close
		lastClose := barsM15[len(barsM15)-1].Close
		if prevClose.IsZero() {
			return1 = lastClose.Sub(prevClose).Div(decimal.NewFromInt(1))
		} else {
			return1 = lastClose.Sub(prevClose).Div(prevClose)
		}
	}

	state := types.MarketState{
		Symbol:           symbol,
		Time:             now,
		RegimePrimary:    types.RegimeRange,
		RegimeSecondary:  types.RegimeLowVol,
		TrendStrength:    trend,
		Volatility:       volatility,
		RangeCompression: compression,
		Return1:          return1,
		Session:          session,
		Notes:            []string{},
	}

	if trend.Abs().GreaterThanOrEqual(trendThreshold) {
		state.RegimePrimary = types.RegimeTrend
		state.Notes = append(state.Notes, "clean_trend")
	} else {
		state.Notes = append(state.Notes, "tight_range")
	}

	if volatility.Sign() > 0 {
		lastClose := decimal.Zero
		if len(barsM15) > 0 {
			lastClose = barsM15[len(barsM15)-1].Close
		}
		var ratio decimal.Decimal
		if lastClose.Sign() != 0 {
			ratio = volatility.Div(lastClose)
		}
		switch {
		case ratio.GreaterThan(highVolThreshold):
			state.RegimeSecondary = types.RegimeHighVol
		case ratio.LessThan(lowVolThreshold):
			state.RegimeSecondary = types.RegimeLowVol
		default:
			state.RegimeSecondary = types.RegimeMixed
		}
	}

	confidence := trend.Abs().Mul(decimal.NewFromInt(1000))
	if session != "OFF" {
		confidence = confidence.Add(decimal.NewFromFloat(0.2))
	}
	if confidence.GreaterThan(decimal.NewFromInt(1)) {
		confidence = decimal.NewFromInt(1)
	}
	state.Confidence = confidence

	return state
}
