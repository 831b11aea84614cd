// Package pips computes pip sizes and spreads for FX/metals instruments
// from broker-reported digits and point size.
package pips

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/victorious243/scalper/internal/news"
)

// Size returns the pip size for symbol given its broker digits and point.
// Yen crosses use 0.01; metals fall back to the broker's raw point since
// pip thresholds aren't meaningful for them unless explicitly requested;
// other FX pairs use 0.0001 when digits>=4, else the raw point.
func Size(symbol string, digits int, point decimal.Decimal) decimal.Decimal {
	base := news.NormalizeSymbol(symbol)
	if strings.HasSuffix(base, "JPY") {
		return decimal.NewFromFloat(0.01)
	}
	if base == "XAUUSD" || base == "XAGUSD" {
		return point
	}
	if digits >= 4 {
		return decimal.NewFromFloat(0.0001)
	}
	return point
}

// InPips returns the bid/ask spread expressed in pips.
func InPips(bid, ask decimal.Decimal, symbol string, digits int, point decimal.Decimal) decimal.Decimal {
	pip := Size(symbol, digits, point)
	if pip.IsZero() {
		return decimal.Zero
	}
	return ask.Sub(bid).Div(pip)
}

// InPoints returns the bid/ask spread expressed in raw broker points.
func InPoints(bid, ask, point decimal.Decimal) decimal.Decimal {
	if point.IsZero() {
		return decimal.Zero
	}
	return ask.Sub(bid).Div(point)
}
