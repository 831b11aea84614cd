// Package confirmation implements the multi-candle confirmation checks
// (break of structure, wick rejection, a reserved nested-zone hook) that
// gate entry into a supply/demand zone.
package confirmation

import (
	"github.com/shopspring/decimal"

	"github.com/victorious243/scalper/pkg/types"
)

// Config selects which confirmation checks are required.
type Config struct {
	RequireBOS         bool
	RequireRejection   bool
	RequireNestedZone  bool
	WickBodyRatio      float64
	SwingLookback      int
}

// DefaultConfig mirrors the reference defaults: BOS required, rejection
// and nested-zone checks off.
func DefaultConfig() Config {
	return Config{
		RequireBOS:        true,
		RequireRejection:  false,
		RequireNestedZone: false,
		WickBodyRatio:     2.0,
		SwingLookback:     5,
	}
}

func swingHigh(bars []types.Bar, lookback int) decimal.Decimal {
	window := bars[len(bars)-1-lookback : len(bars)-1]
	high := window[0].High
	for _, b := range window[1:] {
		if b.High.GreaterThan(high) {
			high = b.High
		}
	}
	return high
}

func swingLow(bars []types.Bar, lookback int) decimal.Decimal {
	window := bars[len(bars)-1-lookback : len(bars)-1]
	low := window[0].Low
	for _, b := range window[1:] {
		if b.Low.LessThan(low) {
			low = b.Low
		}
	}
	return low
}

// BOSConfirmed reports a break of structure: for a demand zone, the last
// close must exceed the prior swing high; for supply, it must undercut
// the prior swing low. Requires at least lookback+2 bars.
func BOSConfirmed(bars []types.Bar, zoneType types.ZoneType, lookback int) bool {
	if len(bars) < lookback+2 {
		return false
	}
	last := bars[len(bars)-1]
	if zoneType == types.ZoneTypeDemand {
		return last.Close.GreaterThan(swingHigh(bars, lookback))
	}
	return last.Close.LessThan(swingLow(bars, lookback))
}

// RejectionConfirmed reports a wick/body asymmetry rejection candle: for
// demand, a long lower wick on a bullish close; for supply, a long upper
// wick on a bearish close.
func RejectionConfirmed(bars []types.Bar, zoneType types.ZoneType, wickBodyRatio float64) bool {
	if len(bars) == 0 {
		return false
	}
	last := bars[len(bars)-1]
	body := last.Open.Sub(last.Close).Abs()
	ratio := decimal.NewFromFloat(wickBodyRatio)

	if zoneType == types.ZoneTypeDemand {
		lowerWick := decimal.Min(last.Open, last.Close).Sub(last.Low)
		return lowerWick.GreaterThan(body.Mul(ratio)) && last.Close.GreaterThan(last.Open)
	}
	upperWick := last.High.Sub(decimal.Max(last.Open, last.Close))
	return upperWick.GreaterThan(body.Mul(ratio)) && last.Close.LessThan(last.Open)
}

// Passed is the logical AND of every enabled check; vacuously true if no
// checks are enabled. The nested-zone check is a reserved hook that
// always passes in this implementation.
func Passed(bars []types.Bar, zoneType types.ZoneType, cfg Config) bool {
	if cfg.RequireBOS && !BOSConfirmed(bars, zoneType, cfg.SwingLookback) {
		return false
	}
	if cfg.RequireRejection && !RejectionConfirmed(bars, zoneType, cfg.WickBodyRatio) {
		return false
	}
	// Nested-zone confirmation is a reserved hook; no production
	// implementation exists, so it always passes when enabled.
	return true
}
