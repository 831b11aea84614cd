package confirmation_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/victorious243/scalper/internal/confirmation"
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

func TestBOSConfirmedDemand(t *testing.T) {
	bars := []types.Bar{
		bar(1.10, 1.101, 1.097, 1.099),
		bar(1.10, 1.102, 1.098, 1.100),
		bar(1.10, 1.103, 1.099, 1.101),
		bar(1.10, 1.104, 1.099, 1.102),
		bar(1.10, 1.105, 1.100, 1.103),
		bar(1.10, 1.106, 1.101, 1.104),
		bar(1.10, 1.110, 1.101, 1.109), // breaks above prior swing high
	}
	if !confirmation.BOSConfirmed(bars, types.ZoneTypeDemand, 5) {
		t.Error("expected BOS confirmed for demand zone")
	}
}

func TestBOSNotConfirmedInsufficientBars(t *testing.T) {
	bars := []types.Bar{bar(1.1, 1.11, 1.09, 1.1)}
	if confirmation.BOSConfirmed(bars, types.ZoneTypeDemand, 5) {
		t.Error("expected BOS not confirmed with insufficient bars")
	}
}

func TestPassedVacuouslyTrueWhenNoChecksEnabled(t *testing.T) {
	cfg := confirmation.Config{}
	if !confirmation.Passed(nil, types.ZoneTypeDemand, cfg) {
		t.Error("expected confirmation to pass vacuously with no checks enabled")
	}
}

func TestBOSIdempotent(t *testing.T) {
	bars := []types.Bar{
		bar(1.10, 1.102, 1.098, 1.100),
		bar(1.10, 1.103, 1.099, 1.101),
		bar(1.10, 1.104, 1.099, 1.102),
		bar(1.10, 1.105, 1.100, 1.103),
		bar(1.10, 1.106, 1.101, 1.104),
		bar(1.10, 1.110, 1.101, 1.109),
	}
	first := confirmation.BOSConfirmed(bars, types.ZoneTypeDemand, 5)
	second := confirmation.BOSConfirmed(bars, types.ZoneTypeDemand, 5)
	if first != second {
		t.Error("BOSConfirmed should be idempotent over the same bar sequence")
	}
}
