package engine

import (
	"testing"

	"github.com/blockberries/hashvote/types"
)

func testConfig(threshold float64, liveness bool) types.ConsensusConfig {
	return types.ConsensusConfig{
		NetworkType:         types.NetworkGossipsub,
		ConsensusThreshold:  threshold,
		TimeoutSeconds:      60,
		LivenessCriteriaYes: liveness,
		RoundCap:            2,
	}
}

func TestEvaluateSufficientMajority(t *testing.T) {
	cfg := testConfig(2.0/3.0, true)
	dec := Evaluate(3, 0, 4, cfg, false, false)
	if !dec.Decided || dec.Result != true {
		t.Fatalf("expected decided YES, got %+v", dec)
	}
}

func TestEvaluateSufficientTieUsesTieBreak(t *testing.T) {
	cfg := testConfig(0.5, true)
	dec := Evaluate(2, 2, 4, cfg, true, false)
	if !dec.Decided || dec.Result != true {
		t.Fatalf("expected tie broken to YES, got %+v", dec)
	}
	dec = Evaluate(2, 2, 4, cfg, false, false)
	if !dec.Decided || dec.Result != false {
		t.Fatalf("expected tie broken to NO, got %+v", dec)
	}
}

func TestEvaluateInsufficientStaysActive(t *testing.T) {
	cfg := testConfig(2.0/3.0, true)
	dec := Evaluate(1, 0, 4, cfg, false, false)
	if dec.Decided || dec.Failed {
		t.Fatalf("expected still active, got %+v", dec)
	}
}

// TestEvaluateDeadlineWithLivenessStillFailsBelowRequiredCount covers
// spec.md §4.4 step 4: liveness only overturns Timeout when one side's
// own count has independently reached required. Step 4 is only reached
// when total<required, and yes/no are each <=total, so neither side
// can ever meet required there. An insufficient plurality still fails
// Timeout even with liveness enabled.
func TestEvaluateDeadlineWithLivenessStillFailsBelowRequiredCount(t *testing.T) {
	cfg := testConfig(2.0/3.0, true)
	dec := Evaluate(2, 1, 5, cfg, false, true) // required = ceil(2/3*5) = 4, total = 3 < 4
	if !dec.Failed || dec.Reason != types.ReasonTimeout {
		t.Fatalf("expected Timeout failure despite liveness, got %+v", dec)
	}
}

func TestEvaluateDeadlineWithoutLivenessFails(t *testing.T) {
	cfg := testConfig(2.0/3.0, false)
	dec := Evaluate(2, 1, 5, cfg, false, true) // required = ceil(2/3*5) = 4, total = 3 < 4
	if !dec.Failed || dec.Reason != types.ReasonTimeout {
		t.Fatalf("expected Timeout failure, got %+v", dec)
	}
}

func TestEvaluateDeadlineNoVotesFails(t *testing.T) {
	cfg := testConfig(2.0/3.0, true)
	dec := Evaluate(0, 0, 4, cfg, false, true)
	if !dec.Failed || dec.Reason != types.ReasonTimeout {
		t.Fatalf("expected Timeout failure with no votes, got %+v", dec)
	}
}
