package zones

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/victorious243/scalper/internal/indicators"
	"github.com/victorious243/scalper/pkg/types"
)

// DetectionResult is the zone list produced by one Detect call, plus the
// ATR computed over the scanned bars.
type DetectionResult struct {
	Zones []types.Zone
	ATR   decimal.Decimal
}

func bodyHigh(b types.Bar) decimal.Decimal {
	return decimal.Max(b.Open, b.Close)
}

func bodyLow(b types.Bar) decimal.Decimal {
	return decimal.Min(b.Open, b.Close)
}

func impulsiveCandles(bars []types.Bar, direction int) int {
	count := 0
	for _, b := range bars {
		if direction > 0 && b.Close.GreaterThan(b.Open) {
			count++
		} else if direction < 0 && b.Close.LessThan(b.Open) {
			count++
		}
	}
	return count
}

func overlapRatio(a, b types.Zone) decimal.Decimal {
	if a.Upper.LessThanOrEqual(b.Lower) || b.Upper.LessThanOrEqual(a.Lower) {
		return decimal.Zero
	}
	overlap := decimal.Min(a.Upper, b.Upper).Sub(decimal.Max(a.Lower, b.Lower))
	denom := decimal.Max(a.Width(), b.Width(), decimal.NewFromFloat(1e-9))
	return overlap.Div(denom)
}

// Detect scans htf bars for DBR (demand) and RBD (supply) patterns and
// returns the greedy, non-overlapping, score-ranked zone list.
func Detect(symbol, timeframe string, bars []types.Bar, cfg Config, atrPeriod int, pipSize decimal.Decimal) DetectionResult {
	var zones []types.Zone
	if len(bars) < cfg.BaseMax+cfg.ImpulsiveMinCandles+2 {
		return DetectionResult{Zones: zones, ATR: decimal.Zero}
	}

	atrVal := indicators.ATR(bars, atrPeriod)
	maxBaseATR := decimal.NewFromFloat(cfg.MaxBaseATRMult)
	impulseATRMult := decimal.NewFromFloat(cfg.ImpulseATRMult)
	impulseMinPips := decimal.NewFromFloat(cfg.ImpulseMinPips)

	for i := cfg.BaseMin; i <= len(bars)-cfg.ImpulsiveMinCandles-2; i++ {
		for baseLen := cfg.BaseMin; baseLen <= cfg.BaseMax; baseLen++ {
			start := i - baseLen + 1
			if start < 1 {
				continue
			}
			base := bars[start : i+1]
			baseHigh := base[0].High
			baseLow := base[0].Low
			for _, b := range base[1:] {
				if b.High.GreaterThan(baseHigh) {
					baseHigh = b.High
				}
				if b.Low.LessThan(baseLow) {
					baseLow = b.Low
				}
			}
			baseRange := baseHigh.Sub(baseLow)
			if atrVal.Sign() > 0 && baseRange.GreaterThan(maxBaseATR.Mul(atrVal)) {
				continue
			}

			before := bars[start-1]
			after := bars[i+1 : i+1+cfg.ImpulsiveMinCandles]

			// Demand: Drop -> Base -> Rally (DBR)
			drop := before.Close.LessThan(before.Open)
			rally := impulsiveCandles(after, 1) >= cfg.ImpulsiveMinCandles
			moveAway := after[len(after)-1].Close.Sub(baseHigh)
			if drop && rally {
				impulseOK := moveAway.GreaterThanOrEqual(impulseATRMult.Mul(atrVal)) ||
					moveAway.GreaterThanOrEqual(impulseMinPips.Mul(pipSize))
				if impulseOK {
					var lower, upper decimal.Decimal
					if cfg.ZoneBodyRule == "wick" {
						lower, upper = baseLow, baseHigh
					} else {
						lower = baseLow
						upper = base[0].Open
						if base[0].Close.GreaterThan(upper) {
							upper = base[0].Close
						}
						for _, b := range base[1:] {
							bh := bodyHigh(b)
							if bh.GreaterThan(upper) {
								upper = bh
							}
						}
					}
					zone := types.Zone{
						ID:          fmt.Sprintf("%s-%s-D-%d", symbol, timeframe, bars[i].Time.Unix()),
						Symbol:      symbol,
						ZoneType:    types.ZoneTypeDemand,
						Timeframe:   timeframe,
						CreatedAt:   bars[i].Time,
						Lower:       lower,
						Upper:       upper,
						BaseStart:   base[0].Time,
						BaseEnd:     base[len(base)-1].Time,
						ImpulseSize: moveAway,
						ATR:         atrVal,
						Active:      true,
						Notes:       []string{"DBR"},
					}
					zone.Score = Score(zone)
					zones = append(zones, zone)
				}
			}

			// Supply: Rally -> Base -> Drop (RBD)
			rallyBefore := before.Close.GreaterThan(before.Open)
			dropAfter := impulsiveCandles(after, -1) >= cfg.ImpulsiveMinCandles
			moveAwaySupply := baseLow.Sub(after[len(after)-1].Close)
			if rallyBefore && dropAfter {
				impulseOK := moveAwaySupply.GreaterThanOrEqual(impulseATRMult.Mul(atrVal)) ||
					moveAwaySupply.GreaterThanOrEqual(impulseMinPips.Mul(pipSize))
				if impulseOK {
					var lower, upper decimal.Decimal
					if cfg.ZoneBodyRule == "wick" {
						lower, upper = baseLow, baseHigh
					} else {
						upper = baseHigh
						lower = bodyLow(base[0])
						for _, b := range base[1:] {
							bl := bodyLow(b)
							if bl.LessThan(lower) {
								lower = bl
							}
						}
					}
					zone := types.Zone{
						ID:          fmt.Sprintf("%s-%s-S-%d", symbol, timeframe, bars[i].Time.Unix()),
						Symbol:      symbol,
						ZoneType:    types.ZoneTypeSupply,
						Timeframe:   timeframe,
						CreatedAt:   bars[i].Time,
						Lower:       lower,
						Upper:       upper,
						BaseStart:   base[0].Time,
						BaseEnd:     base[len(base)-1].Time,
						ImpulseSize: moveAwaySupply,
						ATR:         atrVal,
						Active:      true,
						Notes:       []string{"RBD"},
					}
					zone.Score = Score(zone)
					zones = append(zones, zone)
				}
			}
		}
	}

	filtered := greedyNonOverlapping(zones, cfg.OverlapThreshold)
	return DetectionResult{Zones: filtered, ATR: atrVal}
}

func greedyNonOverlapping(zones []types.Zone, overlapThreshold float64) []types.Zone {
	sorted := make([]types.Zone, len(zones))
	copy(sorted, zones)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j].Score.GreaterThan(sorted[i].Score) {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}

	threshold := decimal.NewFromFloat(overlapThreshold)
	var filtered []types.Zone
	for _, z := range sorted {
		overlaps := false
		for _, other := range filtered {
			if overlapRatio(z, other).GreaterThanOrEqual(threshold) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			filtered = append(filtered, z)
		}
	}
	return filtered
}

// UpdateTouches increments the zone's touch count when price falls
// inside an active zone, deactivating it once touches exceed max_touches.
func UpdateTouches(zone types.Zone, price decimal.Decimal, cfg Config) types.Zone {
	if !zone.Active {
		return zone
	}
	if zone.Contains(price) {
		zone.Touches++
		if zone.Touches > cfg.MaxTouches {
			zone.Active = false
		}
	}
	return zone
}
