// Package mlfilter provides the pluggable signal-scoring collaborator.
// The default implementation is a pass-through; a thresholded variant is
// available for callers that want to gate on signal confidence alone
// until a real model is wired in.
package mlfilter

import (
	"github.com/shopspring/decimal"

	"github.com/victorious243/scalper/pkg/types"
)

// Filter scores a candidate signal against the prevailing market state.
type Filter interface {
	Score(signal types.Signal, state types.MarketState) types.MLDecision
}

// PassThrough always approves with a neutral score; this is the core's
// default ML filter until a real model is wired in.
type PassThrough struct{}

// Score implements Filter.
func (PassThrough) Score(types.Signal, types.MarketState) types.MLDecision {
	return types.MLDecision{Approved: true, Score: decimal.NewFromFloat(0.5), Reason: "ml_disabled"}
}

// Threshold approves a signal only when its own confidence meets
// MinScore; it is a rule-based proxy for a model, not a model itself.
type Threshold struct {
	MinScore decimal.Decimal
}

// NewThreshold builds a Threshold filter with the given minimum score.
func NewThreshold(minScore decimal.Decimal) Threshold {
	return Threshold{MinScore: minScore}
}

// Score implements Filter.
func (t Threshold) Score(signal types.Signal, _ types.MarketState) types.MLDecision {
	score := signal.Confidence
	if score.LessThan(decimal.Zero) {
		score = decimal.Zero
	}
	if score.GreaterThan(decimal.NewFromInt(1)) {
		score = decimal.NewFromInt(1)
	}
	return types.MLDecision{
		Approved: score.GreaterThanOrEqual(t.MinScore),
		Score:    score,
		Reason:   "rule_proxy",
	}
}
