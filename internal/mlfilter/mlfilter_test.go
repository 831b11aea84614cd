package mlfilter_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/victorious243/scalper/internal/mlfilter"
	"github.com/victorious243/scalper/pkg/types"
)

func TestPassThroughAlwaysApproves(t *testing.T) {
	decision := mlfilter.PassThrough{}.Score(types.Signal{}, types.MarketState{})
	if !decision.Approved || decision.Reason != "ml_disabled" {
		t.Errorf("PassThrough.Score() = %+v, want approved/ml_disabled", decision)
	}
}

func TestThresholdRejectsBelowMinScore(t *testing.T) {
	f := mlfilter.NewThreshold(decimal.NewFromFloat(0.6))
	decision := f.Score(types.Signal{Confidence: decimal.NewFromFloat(0.4)}, types.MarketState{})
	if decision.Approved {
		t.Error("expected rejection below MinScore")
	}
}

func TestThresholdApprovesAboveMinScore(t *testing.T) {
	f := mlfilter.NewThreshold(decimal.NewFromFloat(0.6))
	decision := f.Score(types.Signal{Confidence: decimal.NewFromFloat(0.8)}, types.MarketState{})
	if !decision.Approved {
		t.Error("expected approval above MinScore")
	}
}
