package zones

import (
	"github.com/shopspring/decimal"

	"github.com/victorious243/scalper/pkg/types"
)

var (
	epsilon  = decimal.NewFromFloat(1e-6)
	twoX     = decimal.NewFromInt(2)
	one      = decimal.NewFromInt(1)
	zero     = decimal.Zero
	touchPen = decimal.NewFromFloat(0.4)
)

// Score computes the deterministic zone quality score: a weighted sum of
// impulse size, freshness (inverse of touch count), and a width penalty,
// clamped to [0, 1].
func Score(z types.Zone) decimal.Decimal {
	denom := decimal.Max(z.ATR.Mul(twoX), epsilon)

	impulseScore := decimal.Min(one, z.ImpulseSize.Div(denom))

	freshness := one.Sub(decimal.NewFromInt(int64(z.Touches)).Mul(touchPen))
	if freshness.LessThan(zero) {
		freshness = zero
	}

	widthPenalty := decimal.Min(one, z.Width().Div(denom))

	score := decimal.NewFromFloat(0.6).Mul(impulseScore).
		Add(decimal.NewFromFloat(0.3).Mul(freshness)).
		Add(decimal.NewFromFloat(0.1).Mul(one.Sub(widthPenalty)))

	if score.LessThan(zero) {
		return zero
	}
	if score.GreaterThan(one) {
		return one
	}
	return score
}
