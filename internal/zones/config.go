// Package zones implements supply-and-demand zone detection: the
// drop-base-rally / rally-base-drop pattern scan over higher-timeframe
// bars, zone scoring, greedy overlap filtering, and touch accounting.
package zones

// Config carries the tunable thresholds for zone detection and touch
// accounting, mirroring the reference implementation's defaults.
type Config struct {
	BaseMin              int
	BaseMax              int
	ImpulsiveMinCandles  int
	ImpulseATRMult       float64
	ImpulseMinPips       float64
	MaxBaseATRMult       float64
	MaxTouches           int
	OverlapThreshold     float64
	ZoneBodyRule         string // "wick" or "body"
}

// DefaultConfig returns the zone detector's reference defaults.
func DefaultConfig() Config {
	return Config{
		BaseMin:             1,
		BaseMax:             4,
		ImpulsiveMinCandles: 2,
		ImpulseATRMult:      1.5,
		ImpulseMinPips:      8.0,
		MaxBaseATRMult:      1.0,
		MaxTouches:          2,
		OverlapThreshold:    0.4,
		ZoneBodyRule:        "body",
	}
}
