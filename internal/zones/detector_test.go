package zones_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/victorious243/scalper/internal/zones"
	"github.com/victorious243/scalper/pkg/types"
)

func bar(t time.Time, o, h, l, c float64) types.Bar {
	return types.Bar{
		Time:  t,
		Open:  decimal.NewFromFloat(o),
		High:  decimal.NewFromFloat(h),
		Low:   decimal.NewFromFloat(l),
		Close: decimal.NewFromFloat(c),
	}
}

func TestDetectFindsDemandZone(t *testing.T) {
	base := time.Date(2026, 1, 28, 8, 0, 0, 0, time.UTC)
	next := func(i int) time.Time { return base.Add(time.Duration(i) * 15 * time.Minute) }

	bars := []types.Bar{
		bar(next(0), 1.1050, 1.1055, 1.1020, 1.1025), // bearish
		bar(next(1), 1.1025, 1.1030, 1.1000, 1.1005), // bearish
		bar(next(2), 1.1005, 1.1010, 1.0998, 1.1002), // base
		bar(next(3), 1.1002, 1.1012, 1.0999, 1.1008), // base
		bar(next(4), 1.1008, 1.1030, 1.1006, 1.1028), // bullish impulse
		bar(next(5), 1.1028, 1.1050, 1.1025, 1.1048),
		bar(next(6), 1.1048, 1.1070, 1.1045, 1.1068),
		bar(next(7), 1.1068, 1.1090, 1.1065, 1.1088),
	}

	cfg := zones.Config{
		BaseMin:             1,
		BaseMax:             3,
		ImpulsiveMinCandles: 2,
		ImpulseATRMult:      0.5,
		ImpulseMinPips:      5,
		MaxBaseATRMult:      5.0,
		MaxTouches:          2,
		OverlapThreshold:    0.4,
		ZoneBodyRule:        "body",
	}

	result := zones.Detect("EURUSD", "H1", bars, cfg, 3, decimal.NewFromFloat(0.0001))
	foundDemand := false
	for _, z := range result.Zones {
		if z.ZoneType == types.ZoneTypeDemand {
			foundDemand = true
			if z.Upper.LessThan(z.Lower) {
				t.Errorf("zone upper %s < lower %s", z.Upper, z.Lower)
			}
			if z.Score.LessThan(decimal.Zero) || z.Score.GreaterThan(decimal.NewFromInt(1)) {
				t.Errorf("zone score %s out of [0,1]", z.Score)
			}
		}
	}
	if !foundDemand {
		t.Error("expected at least one DEMAND zone")
	}
}

func TestUpdateTouchesDeactivatesAtMax(t *testing.T) {
	cfg := zones.Config{MaxTouches: 1}
	zone := types.Zone{
		Lower:  decimal.NewFromFloat(1.0),
		Upper:  decimal.NewFromFloat(1.01),
		Active: true,
	}
	price := decimal.NewFromFloat(1.005)

	zone = zones.UpdateTouches(zone, price, cfg)
	if !zone.Active {
		t.Fatal("zone should still be active after first touch")
	}
	zone = zones.UpdateTouches(zone, price, cfg)
	if zone.Active {
		t.Error("zone should be deactivated after exceeding max_touches")
	}
}
