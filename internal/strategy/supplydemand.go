package strategy

import (
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/victorious243/scalper/internal/confirmation"
	"github.com/victorious243/scalper/internal/logging"
	"github.com/victorious243/scalper/internal/pips"
	"github.com/victorious243/scalper/internal/zones"
	"github.com/victorious243/scalper/pkg/types"
)

// SupplyDemandConfig carries the tunables for zone detection, selection,
// and entry buffering consumed by SupplyDemand.
type SupplyDemandConfig struct {
	Enabled           bool
	LTFTimeframe      string
	HTFTimeframes     []string
	TopKZones         int
	MinRR             float64
	SLBufferATRMult   float64
	SLBufferPips      float64
	AllowNeutralTrend bool
	Zone              zones.Config
	Confirmation      confirmation.Config
}

// DefaultSupplyDemandConfig mirrors the reference defaults.
func DefaultSupplyDemandConfig() SupplyDemandConfig {
	return SupplyDemandConfig{
		Enabled:           true,
		LTFTimeframe:      "M15",
		HTFTimeframes:     []string{"H1", "H4"},
		TopKZones:         3,
		MinRR:             1.5,
		SLBufferATRMult:   0.25,
		SLBufferPips:      5,
		AllowNeutralTrend: false,
		Zone:              zones.DefaultConfig(),
		Confirmation:      confirmation.DefaultConfig(),
	}
}

// trendDirection is the 5-bar swing-structure read used to align zone
// entries with the prevailing higher-timeframe trend.
type trendDirection string

const (
	trendBull    trendDirection = "BULL"
	trendBear    trendDirection = "BEAR"
	trendNeutral trendDirection = "NEUTRAL"
)

// SupplyDemand enters at the best-scoring active, confirmed supply or
// demand zone aligned with the higher-timeframe swing trend. Zones are
// recomputed from scratch every cycle; no zone state carries across
// cycles.
type SupplyDemand struct {
	cfg SupplyDemandConfig
}

// NewSupplyDemand builds a SupplyDemand strategy with cfg.
func NewSupplyDemand(cfg SupplyDemandConfig) *SupplyDemand {
	if cfg.Zone == (zones.Config{}) {
		cfg.Zone = zones.DefaultConfig()
	}
	return &SupplyDemand{cfg: cfg}
}

func skipEvent(ctx Context, reason string) {
	if ctx.Logger == nil {
		return
	}
	logging.Event(ctx.Logger, "snd_skip", zap.String("reason", reason))
}

// Name implements Strategy.
func (s *SupplyDemand) Name() string { return "supply_demand" }

func swingTrend(bars []types.Bar) trendDirection {
	if len(bars) < 10 {
		return trendNeutral
	}
	window := bars[len(bars)-6 : len(bars)-1]
	maxHigh := window[0].High
	minLow := window[0].Low
	for _, b := range window[1:] {
		if b.High.GreaterThan(maxHigh) {
			maxHigh = b.High
		}
		if b.Low.LessThan(minLow) {
			minLow = b.Low
		}
	}
	last := bars[len(bars)-1]
	hh := last.High.GreaterThan(maxHigh)
	hl := last.Low.GreaterThan(minLow)
	lh := last.High.LessThan(maxHigh)
	ll := last.Low.LessThan(minLow)
	if hh && hl {
		return trendBull
	}
	if lh && ll {
		return trendBear
	}
	return trendNeutral
}

func (s *SupplyDemand) selectZones(symbol, timeframe string, bars []types.Bar, pipSize decimal.Decimal) []types.Zone {
	result := zones.Detect(symbol, timeframe, bars, s.cfg.Zone, 14, pipSize)
	zoneList := result.Zones
	sort.Slice(zoneList, func(i, j int) bool { return zoneList[i].Score.GreaterThan(zoneList[j].Score) })
	if len(zoneList) > s.cfg.TopKZones {
		zoneList = zoneList[:s.cfg.TopKZones]
	}
	return zoneList
}

// Generate implements Strategy.
func (s *SupplyDemand) Generate(state types.MarketState, barsM15, barsH1 []types.Bar, ctx Context) *types.Signal {
	if !s.cfg.Enabled {
		return nil
	}

	ltfBars := ctx.BarsByTimeframe[s.cfg.LTFTimeframe]
	if len(ltfBars) == 0 && s.cfg.LTFTimeframe == "M15" {
		ltfBars = barsM15
	}
	if len(ltfBars) == 0 {
		return nil
	}

	pipSize := pips.Size(state.Symbol, ctx.SymbolInfo.Digits, ctx.SymbolInfo.Point)

	var allZones []types.Zone
	for _, tf := range s.cfg.HTFTimeframes {
		htfBars := ctx.BarsByTimeframe[tf]
		if len(htfBars) == 0 {
			continue
		}
		allZones = append(allZones, s.selectZones(state.Symbol, tf, htfBars, pipSize)...)
	}
	if len(allZones) == 0 {
		skipEvent(ctx, "no_zones")
		return nil
	}

	htfTrendBars := barsH1
	if len(s.cfg.HTFTimeframes) > 0 {
		if bars, ok := ctx.BarsByTimeframe[s.cfg.HTFTimeframes[0]]; ok {
			htfTrendBars = bars
		}
	}
	trend := swingTrend(htfTrendBars)
	if trend == trendNeutral && !s.cfg.AllowNeutralTrend {
		skipEvent(ctx, "neutral_trend")
		return nil
	}

	lastPrice := ltfBars[len(ltfBars)-1].Close

	var active []types.Zone
	for _, zone := range allZones {
		zone = zones.UpdateTouches(zone, lastPrice, s.cfg.Zone)
		if zone.Active {
			active = append(active, zone)
		}
	}

	if ctx.Logger != nil {
		logging.Event(ctx.Logger, "snd_zones",
			zap.String("symbol", state.Symbol),
			zap.Int("detected", len(allZones)),
			zap.Int("active", len(active)),
			zap.String("trend", string(trend)),
		)
	}

	sort.Slice(active, func(i, j int) bool { return active[i].Score.GreaterThan(active[j].Score) })

	for _, zone := range active {
		if trend == trendBull && zone.ZoneType != types.ZoneTypeDemand {
			continue
		}
		if trend == trendBear && zone.ZoneType != types.ZoneTypeSupply {
			continue
		}
		if !zone.Contains(lastPrice) {
			continue
		}
		if !confirmation.Passed(ltfBars, zone.ZoneType, s.cfg.Confirmation) {
			skipEvent(ctx, "confirmation_failed")
			continue
		}

		entry := lastPrice
		side := types.OrderSideBuy
		if zone.ZoneType == types.ZoneTypeSupply {
			side = types.OrderSideSell
		}

		atrBuffer := decimal.NewFromFloat(s.cfg.SLBufferATRMult).Mul(decimal.Max(zone.ATR, state.Volatility))
		pipBuffer := decimal.NewFromFloat(s.cfg.SLBufferPips).Mul(pipSize)
		buffer := decimal.Max(atrBuffer, pipBuffer)

		var stop, take decimal.Decimal
		if side == types.OrderSideBuy {
			stop = zone.Lower.Sub(buffer)
			take = entry.Add(entry.Sub(stop).Mul(decimal.NewFromFloat(s.cfg.MinRR)))
		} else {
			stop = zone.Upper.Add(buffer)
			take = entry.Sub(stop.Sub(entry).Mul(decimal.NewFromFloat(s.cfg.MinRR)))
		}

		return &types.Signal{
			Symbol:         state.Symbol,
			Time:           ltfBars[len(ltfBars)-1].Time,
			Strategy:       s.Name(),
			Side:           side,
			OrderType:      types.OrderTypeMarket,
			EntryPrice:     entry,
			StopLoss:       stop,
			TakeProfit:     take,
			MaxHoldMinutes: 240,
			Confidence:     zone.Score,
			Rationale:      []string{"zone:" + zone.ID, "trend:" + string(trend), "tf:" + zone.Timeframe},
		}
	}

	skipEvent(ctx, "no_entry")
	return nil
}

