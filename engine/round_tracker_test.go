package engine

import (
	"testing"

	"github.com/blockberries/hashvote/types"
)

func TestRoundTrackerGossipsubJumpsToTwo(t *testing.T) {
	cfg := types.NewConsensusConfig(types.ScopeConfig{NetworkType: types.NetworkGossipsub}, 5)
	rt := NewRoundTracker(cfg)

	if rt.Current() != 0 {
		t.Fatalf("expected initial round 0, got %d", rt.Current())
	}
	if capReached := rt.OnVoteAccepted(); capReached {
		t.Fatal("gossipsub round tracker should never report cap exhaustion")
	}
	if rt.Current() != 2 {
		t.Fatalf("expected round 2 after first accepted vote, got %d", rt.Current())
	}
	rt.OnVoteAccepted()
	if rt.Current() != 2 {
		t.Fatalf("expected round to stay at 2, got %d", rt.Current())
	}
}

func TestRoundTrackerP2PIncrementsAndCaps(t *testing.T) {
	cfg := types.NewConsensusConfig(types.ScopeConfig{NetworkType: types.NetworkP2P}, 3) // round_cap = ceil(2*3/3) = 2
	rt := NewRoundTracker(cfg)

	if rt.RoundCap() != 2 {
		t.Fatalf("expected round_cap 2 for 3 expected voters, got %d", rt.RoundCap())
	}

	if capReached := rt.OnVoteAccepted(); capReached {
		t.Fatal("cap should not be reached after first vote")
	}
	if rt.Current() != 1 {
		t.Fatalf("expected round 1 after first vote, got %d", rt.Current())
	}

	if capReached := rt.OnVoteAccepted(); !capReached {
		t.Fatal("expected cap reached after second vote")
	}
	if rt.Current() != 2 {
		t.Fatalf("expected round 2, got %d", rt.Current())
	}

	// further votes saturate, do not overflow the cap
	rt.OnVoteAccepted()
	if rt.Current() != 2 {
		t.Fatalf("expected round to saturate at 2, got %d", rt.Current())
	}
}

func TestComputeRoundCapP2PFloorsAtOne(t *testing.T) {
	cfg := types.NewConsensusConfig(types.ScopeConfig{NetworkType: types.NetworkP2P}, 1)
	if cfg.RoundCap < 1 {
		t.Fatalf("round_cap must never be zero, got %d", cfg.RoundCap)
	}
}
