package strategy_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/victorious243/scalper/internal/strategy"
	"github.com/victorious243/scalper/pkg/types"
)

func bar(t time.Time, open, high, low, close float64) types.Bar {
	return types.Bar{
		Time:  t,
		Open:  decimal.NewFromFloat(open),
		High:  decimal.NewFromFloat(high),
		Low:   decimal.NewFromFloat(low),
		Close: decimal.NewFromFloat(close),
	}
}

func TestTrendPullbackNoSignalOutsideTrendRegime(t *testing.T) {
	s := strategy.NewTrendPullback(0.0006, 1.6)
	state := types.MarketState{Symbol: "EURUSD", RegimePrimary: types.RegimeRange}
	if got := s.Generate(state, nil, nil, strategy.Context{}); got != nil {
		t.Errorf("expected nil signal outside TREND regime, got %+v", got)
	}
}

func TestRangeMeanRevertNoSignalWithoutBars(t *testing.T) {
	s := strategy.NewRangeMeanRevert(20, 1.3)
	state := types.MarketState{Symbol: "EURUSD", RegimePrimary: types.RegimeRange}
	if got := s.Generate(state, nil, nil, strategy.Context{}); got != nil {
		t.Errorf("expected nil signal with no bars, got %+v", got)
	}
}

func TestSupplyDemandDisabledReturnsNil(t *testing.T) {
	cfg := strategy.DefaultSupplyDemandConfig()
	cfg.Enabled = false
	s := strategy.NewSupplyDemand(cfg)
	state := types.MarketState{Symbol: "EURUSD"}
	if got := s.Generate(state, nil, nil, strategy.Context{}); got != nil {
		t.Errorf("expected nil signal when disabled, got %+v", got)
	}
}

func TestDefaultRegistryHasThreeStrategies(t *testing.T) {
	r := strategy.Default()
	if got := len(r.All()); got != 3 {
		t.Errorf("len(All()) = %d, want 3", got)
	}
}
