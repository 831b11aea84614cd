// Package indicators provides the handful of stateless technical
// indicators the observer and strategies compute over bar windows: ATR,
// a weighted EMA, RSI, rolling high/low, trend strength, and range
// compression.
package indicators

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/victorious243/scalper/pkg/types"
)

// ATR returns the classical average true range over the trailing period
// bars. The first bar's true range is high-low (no prior close to
// reference). Returns zero if fewer than period+1 bars are available.
func ATR(bars []types.Bar, period int) decimal.Decimal {
	if len(bars) < period+1 {
		return decimal.Zero
	}

	trs := make([]decimal.Decimal, len(bars))
	for i, b := range bars {
		hl := b.High.Sub(b.Low)
		if i == 0 {
			trs[i] = hl
			continue
		}
		prevClose := bars[i-1].Close
		hc := b.High.Sub(prevClose).Abs()
		lc := b.Low.Sub(prevClose).Abs()
		trs[i] = decimal.Max(hl, decimal.Max(hc, lc))
	}

	window := trs[len(trs)-period:]
	sum := decimal.Zero
	for _, v := range window {
		sum = sum.Add(v)
	}
	return sum.Div(decimal.NewFromInt(int64(period)))
}

// EMA computes a weighted backward average over the trailing period
// values, with exponentially increasing weight toward the most recent
// value. If fewer than period values are supplied, the last value is
// returned unchanged (or zero for an empty slice).
func EMA(values []decimal.Decimal, period int) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	if len(values) < period {
		return values[len(values)-1]
	}

	window := values[len(values)-period:]
	weights := make([]float64, period)
	weightSum := 0.0
	for i := 0; i < period; i++ {
		// linspace(-1, 0, period)
		x := -1.0 + float64(i)*(1.0/float64(period-1))
		if period == 1 {
			x = 0
		}
		w := math.Exp(x)
		weights[i] = w
		weightSum += w
	}

	result := decimal.Zero
	for i, v := range window {
		w := decimal.NewFromFloat(weights[i] / weightSum)
		result = result.Add(v.Mul(w))
	}
	return result
}

// RSI computes the relative strength index over the trailing period
// closes using a simple average of gains and losses. Returns 50 (neutral)
// if fewer than period+1 values are available, 100 if there were no
// losses in the window.
func RSI(values []decimal.Decimal, period int) decimal.Decimal {
	if len(values) < period+1 {
		return decimal.NewFromInt(50)
	}

	window := values[len(values)-(period+1):]
	gain := decimal.Zero
	loss := decimal.Zero
	for i := 1; i < len(window); i++ {
		diff := window[i].Sub(window[i-1])
		if diff.Sign() > 0 {
			gain = gain.Add(diff)
		} else if diff.Sign() < 0 {
			loss = loss.Add(diff.Neg())
		}
	}
	n := decimal.NewFromInt(int64(period))
	avgGain := gain.Div(n)
	avgLoss := loss.Div(n)
	if avgLoss.IsZero() {
		return decimal.NewFromInt(100)
	}
	rs := avgGain.Div(avgLoss)
	hundred := decimal.NewFromInt(100)
	return hundred.Sub(hundred.Div(decimal.NewFromInt(1).Add(rs)))
}

// RollingHighLow returns the highest high and lowest low over the
// trailing lookback bars. Returns (0, 0) for an empty slice.
func RollingHighLow(bars []types.Bar, lookback int) (high, low decimal.Decimal) {
	if len(bars) == 0 {
		return decimal.Zero, decimal.Zero
	}
	start := len(bars) - lookback
	if start < 0 {
		start = 0
	}
	window := bars[start:]
	high = window[0].High
	low = window[0].Low
	for _, b := range window[1:] {
		if b.High.GreaterThan(high) {
			high = b.High
		}
		if b.Low.LessThan(low) {
			low = b.Low
		}
	}
	return high, low
}

// TrendStrength is (EMA_fast - EMA_slow) / EMA_slow over closes. Returns
// zero if fewer than slow bars are available.
func TrendStrength(bars []types.Bar, fast, slow int) decimal.Decimal {
	if len(bars) < slow {
		return decimal.Zero
	}
	closes := closesOf(bars)
	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)
	if slowEMA.IsZero() {
		return decimal.Zero
	}
	return fastEMA.Sub(slowEMA).Div(slowEMA)
}

// RangeCompression is the coefficient of variation (stddev/mean) of
// closes over the trailing lookback bars. Returns zero if fewer bars are
// available.
func RangeCompression(bars []types.Bar, lookback int) decimal.Decimal {
	if len(bars) < lookback {
		return decimal.Zero
	}
	window := closesOf(bars[len(bars)-lookback:])

	mean := decimal.Zero
	for _, c := range window {
		mean = mean.Add(c)
	}
	mean = mean.Div(decimal.NewFromInt(int64(len(window))))

	variance := decimal.Zero
	for _, c := range window {
		d := c.Sub(mean)
		variance = variance.Add(d.Mul(d))
	}
	variance = variance.Div(decimal.NewFromInt(int64(len(window))))
	stddev := decimal.NewFromFloat(math.Sqrt(variance.InexactFloat64()))

	if mean.IsZero() {
		return stddev
	}
	return stddev.Div(mean)
}

func closesOf(bars []types.Bar) []decimal.Decimal {
	out := make([]decimal.Decimal, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}
