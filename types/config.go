package types

import "math"

// ScopeConfig holds the defaults a scope applies to every proposal
// created within it, unless a proposal supplies its own override (see
// ConsensusConfig).
type ScopeConfig struct {
	NetworkType         NetworkType
	ConsensusThreshold  float64 // fraction in (0, 1] of expected_voters required to decide
	TimeoutSeconds      uint32  // seconds from CreatedAt to ExpiresAt, minimum 1
	LivenessCriteriaYes bool    // whether a side meeting required count alone can still decide at deadline
	MaxSessions         int     // capacity of the scope's session set, minimum 1
}

// DefaultScopeConfig mirrors the teacher's DefaultConfig(): a
// majority-of-two-thirds threshold, a one-minute deadline, liveness
// enabled, and a modest session cap.
func DefaultScopeConfig() ScopeConfig {
	return ScopeConfig{
		NetworkType:         NetworkGossipsub,
		ConsensusThreshold:  2.0 / 3.0,
		TimeoutSeconds:      60,
		LivenessCriteriaYes: true,
		MaxSessions:         10,
	}
}

// Clamp normalizes out-of-range fields to their defaults in place,
// mirroring the teacher's DefaultConfig field-by-field fallback.
func (c *ScopeConfig) Clamp() {
	def := DefaultScopeConfig()
	if !c.NetworkType.Valid() {
		c.NetworkType = def.NetworkType
	}
	if c.ConsensusThreshold <= 0 || c.ConsensusThreshold > 1 {
		c.ConsensusThreshold = def.ConsensusThreshold
	}
	if c.TimeoutSeconds < 1 {
		c.TimeoutSeconds = def.TimeoutSeconds
	}
	if c.MaxSessions < 1 {
		c.MaxSessions = def.MaxSessions
	}
}

// ConsensusConfig is the per-proposal snapshot of a scope's consensus
// parameters, taken at proposal creation time (§4.6). RoundCap is
// derived once from NetworkType and the proposal's expected_voters and
// then frozen for the life of the session.
type ConsensusConfig struct {
	NetworkType         NetworkType
	ConsensusThreshold  float64
	TimeoutSeconds      uint32
	LivenessCriteriaYes bool
	RoundCap            uint32
}

// NewConsensusConfig snapshots scope into a ConsensusConfig for a
// proposal expecting expectedVoters voters.
func NewConsensusConfig(scope ScopeConfig, expectedVoters uint32) ConsensusConfig {
	scope.Clamp()
	return ConsensusConfig{
		NetworkType:         scope.NetworkType,
		ConsensusThreshold:  scope.ConsensusThreshold,
		TimeoutSeconds:      scope.TimeoutSeconds,
		LivenessCriteriaYes: scope.LivenessCriteriaYes,
		RoundCap:            ComputeRoundCap(scope.NetworkType, expectedVoters),
	}
}

// ComputeRoundCap implements §4.3: Gossipsub scopes get a fixed cap of
// 2; P2P scopes get ceil(2*expected_voters/3), floored at 1. Exported
// so validate_proposal (§4.2) can recheck a peer-supplied round_cap
// against the value its own network_type and expected_voters imply.
func ComputeRoundCap(nt NetworkType, expectedVoters uint32) uint32 {
	switch nt {
	case NetworkP2P:
		cap32 := uint32(math.Ceil(2 * float64(expectedVoters) / 3))
		if cap32 < 1 {
			cap32 = 1
		}
		return cap32
	case NetworkGossipsub:
		fallthrough
	default:
		return 2
	}
}

// RequiredVotes returns ceil(threshold * expectedVoters), the vote
// count needed for count-based sufficiency (§4.4).
func (c ConsensusConfig) RequiredVotes(expectedVoters uint32) uint32 {
	req := uint32(math.Ceil(c.ConsensusThreshold * float64(expectedVoters)))
	if req < 1 {
		req = 1
	}
	return req
}

// FailReason names why a session transitioned to Failed.
type FailReason string

const (
	ReasonTimeout           FailReason = "timeout"
	ReasonRoundCapExhausted FailReason = "round_cap_exhausted"
)
