package indicators_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/victorious243/scalper/internal/indicators"
	"github.com/victorious243/scalper/pkg/types"
)

func bar(o, h, l, c float64) types.Bar {
	return types.Bar{
		Time:  time.Now(),
		Open:  decimal.NewFromFloat(o),
		High:  decimal.NewFromFloat(h),
		Low:   decimal.NewFromFloat(l),
		Close: decimal.NewFromFloat(c),
	}
}

func TestATRSinglePeriodIsLastBarTrueRange(t *testing.T) {
	bars := []types.Bar{
		bar(1.0, 1.1, 0.9, 1.05),
		bar(1.05, 1.2, 1.0, 1.1),
	}
	got := indicators.ATR(bars, 1)
	want := decimal.NewFromFloat(0.2) // max(high-low, |high-prevclose|, |low-prevclose|) for bar 2
	if !got.Equal(want) {
		t.Errorf("ATR(1) = %s, want %s", got, want)
	}
}

func TestATRInsufficientBarsIsZero(t *testing.T) {
	bars := []types.Bar{bar(1, 1.1, 0.9, 1.0)}
	if got := indicators.ATR(bars, 14); !got.IsZero() {
		t.Errorf("ATR with insufficient bars = %s, want 0", got)
	}
}

func TestRSINeutralWhenInsufficientData(t *testing.T) {
	values := []decimal.Decimal{decimal.NewFromFloat(1.1), decimal.NewFromFloat(1.2)}
	if got := indicators.RSI(values, 14); !got.Equal(decimal.NewFromInt(50)) {
		t.Errorf("RSI with insufficient data = %s, want 50", got)
	}
}

func TestRSIAllGainsIsHundred(t *testing.T) {
	values := make([]decimal.Decimal, 0, 15)
	for i := 0; i < 15; i++ {
		values = append(values, decimal.NewFromFloat(1.0+float64(i)*0.001))
	}
	if got := indicators.RSI(values, 14); !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("RSI with all gains = %s, want 100", got)
	}
}

func TestRollingHighLow(t *testing.T) {
	bars := []types.Bar{
		bar(1, 1.05, 0.95, 1.0),
		bar(1, 1.20, 0.90, 1.1),
		bar(1, 1.10, 1.00, 1.05),
	}
	high, low := indicators.RollingHighLow(bars, 2)
	if !high.Equal(decimal.NewFromFloat(1.20)) {
		t.Errorf("high = %s, want 1.20", high)
	}
	if !low.Equal(decimal.NewFromFloat(0.90)) {
		t.Errorf("low = %s, want 0.90", low)
	}
}

func TestTrendStrengthZeroWhenInsufficientBars(t *testing.T) {
	bars := []types.Bar{bar(1, 1.1, 0.9, 1.0)}
	if got := indicators.TrendStrength(bars, 20, 50); !got.IsZero() {
		t.Errorf("TrendStrength with insufficient bars = %s, want 0", got)
	}
}

func TestRangeCompressionZeroWhenInsufficientBars(t *testing.T) {
	bars := []types.Bar{bar(1, 1.1, 0.9, 1.0)}
	if got := indicators.RangeCompression(bars, 20); !got.IsZero() {
		t.Errorf("RangeCompression with insufficient bars = %s, want 0", got)
	}
}
