package engine

import "github.com/blockberries/hashvote/types"

// RoundTracker implements §4.3: it advances current_round on every
// accepted vote according to the session's network type, and reports
// whether the round cap has been reached without a decision.
//
// Gossipsub scopes have a fixed cap of 2: the round jumps straight to
// 2 on the first accepted vote (there is no meaningful "round 1"
// waiting state on a best-effort broadcast network) and never advances
// further. P2P scopes increment by 1 per accepted vote, saturating at
// round_cap; reaching the cap without a decision fails the session
// with RoundCapExhausted.
type RoundTracker struct {
	networkType types.NetworkType
	roundCap    uint32
	current     uint32
}

// NewRoundTracker builds a tracker for a session using cfg's network
// type and round cap. current_round starts at 0.
func NewRoundTracker(cfg types.ConsensusConfig) *RoundTracker {
	return &RoundTracker{networkType: cfg.NetworkType, roundCap: cfg.RoundCap}
}

func (r *RoundTracker) Current() uint32 {
	return r.current
}

func (r *RoundTracker) RoundCap() uint32 {
	return r.roundCap
}

// OnVoteAccepted advances the round after a vote has been accepted
// into the session and reports whether round_cap has now been reached.
// Gossipsub sessions never report cap exhaustion: their fixed 2-round
// cap is not a liveness failure condition, only P2P's dynamic cap is.
func (r *RoundTracker) OnVoteAccepted() (capReached bool) {
	switch r.networkType {
	case types.NetworkP2P:
		if r.current < r.roundCap {
			r.current++
		}
		return r.current >= r.roundCap
	case types.NetworkGossipsub:
		fallthrough
	default:
		if r.current < 2 {
			r.current = 2
		}
		return false
	}
}
