package engine

import (
	"sync"
	"time"

	"github.com/blockberries/hashvote/types"
)

// VoteOutcome describes what AcceptVote actually did, so callers can
// decide whether to persist, publish an event, or record evidence.
type VoteOutcome uint8

const (
	// VoteAdded means the vote was new and is now part of the session.
	VoteAdded VoteOutcome = iota
	// VoteDuplicate means an identical vote_id was already present;
	// the call was a no-op idempotent success.
	VoteDuplicate
	// VoteRejected means the vote was refused; see the returned error.
	VoteRejected
)

// ConsensusSession is the per-proposal state machine of §4.5: it owns
// the accepted vote set, the round tracker, and the terminal status.
// A session's own mutex serializes all operations on one proposal_id;
// distinct sessions in the same scope may be operated on concurrently
// (§5).
type ConsensusSession struct {
	mu sync.Mutex

	proposal *types.Proposal
	round    *RoundTracker

	status       types.SessionStatus
	votes        []*types.Vote
	lastByVoter  map[types.Address]*types.Vote
	yes          int
	no           int
	lastActivity time.Time
}

// NewSession starts a fresh Active session for proposal, owning a
// defensive copy of it.
func NewSession(proposal *types.Proposal, now time.Time) *ConsensusSession {
	return &ConsensusSession{
		proposal:     proposal.Clone(),
		round:        NewRoundTracker(proposal.Config),
		status:       types.ActiveStatus(),
		lastByVoter:  make(map[types.Address]*types.Vote),
		lastActivity: now,
	}
}

func (s *ConsensusSession) Proposal() *types.Proposal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proposal.Clone()
}

func (s *ConsensusSession) Status() types.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *ConsensusSession) CurrentRound() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round.Current()
}

func (s *ConsensusSession) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Tally returns the current (yes, no) vote counts.
func (s *ConsensusSession) Tally() (yes, no int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.yes, s.no
}

// Votes returns a defensive copy of every vote accepted so far.
func (s *ConsensusSession) Votes() []*types.Vote {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*types.Vote, len(s.votes))
	for i, v := range s.votes {
		out[i] = v.Clone()
	}
	return out
}

// HasVoted reports whether addr already has an accepted vote in this
// session.
func (s *ConsensusSession) HasVoted(addr types.Address) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.lastByVoter[addr]
	return ok
}

// LastVoteID returns the vote_id of addr's most recently accepted
// vote, so a caller composing a new vote knows what to set
// parent_hash to.
func (s *ConsensusSession) LastVoteID(addr types.Address) (types.Hash, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.lastByVoter[addr]
	if !ok {
		return types.Hash{}, false
	}
	return v.VoteID, true
}

// AcceptVote ingests v, assumed already structurally and
// cryptographically valid (ValidateVote must be called first — chain
// integrity is the only check left to do here, since it depends on
// this session's prior votes). It implements, in order:
//
//  1. duplicate policy: an exact vote_id repeat of a voter's accepted
//     vote is an idempotent no-op, also after the session is terminal.
//  2. any other vote on a session that is no longer Active is
//     rejected with ErrSessionClosed.
//  3. chain check (§4.2 validate_vote_chain): a first-time voter must
//     set parent_hash to ZeroHash; a returning voter must set it to
//     their own last accepted vote_id.
//  4. a distinct vote_id from a voter who already has an accepted
//     vote is a double vote, even when its chain is intact.
//  5. on acceptance: append to the vote set, advance the round
//     tracker, and re-evaluate the decision procedure.
func (s *ConsensusSession) AcceptVote(v *types.Vote, now time.Time) (VoteOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, hasPrev := s.lastByVoter[v.VoterAddress]
	if hasPrev && prev.VoteID == v.VoteID {
		return VoteDuplicate, nil
	}

	if s.status.Kind != types.StatusActive {
		return VoteRejected, ErrSessionClosed
	}

	if hasPrev {
		if v.ParentHash != prev.VoteID {
			return VoteRejected, ErrChainBroken
		}
	} else if !v.ParentHash.IsZero() {
		return VoteRejected, ErrChainBroken
	}

	if hasPrev {
		return VoteRejected, ErrDoubleVote
	}

	cp := v.Clone()
	s.votes = append(s.votes, cp)
	s.lastByVoter[v.VoterAddress] = cp
	if v.Value {
		s.yes++
	} else {
		s.no++
	}
	s.lastActivity = now

	capReached := s.round.OnVoteAccepted()
	s.evaluateLocked(now, capReached)

	return VoteAdded, nil
}

// EvaluateDeadline re-runs the decision procedure with the deadline
// treated as having passed, transitioning the session to its terminal
// state if the deadline has genuinely arrived. It is a no-op if the
// session is already terminal or the deadline hasn't arrived yet.
// Callers arrange for this to run once, at proposal.ExpiresAt (§5).
func (s *ConsensusSession) EvaluateDeadline(now time.Time) (transitioned bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.Kind != types.StatusActive {
		return false
	}
	if !deadlinePassed(s.proposal, now) {
		return false
	}
	before := s.status
	s.lastActivity = now
	s.evaluateLocked(now, false)
	return s.status != before
}

// evaluateLocked must be called with s.mu held. It runs the decision
// procedure and, in the P2P round-cap-exhausted case with no verdict,
// fails the session even before the deadline arrives.
func (s *ConsensusSession) evaluateLocked(now time.Time, capReached bool) {
	dec := Evaluate(s.yes, s.no, s.proposal.ExpectedVoters, s.proposal.Config, s.proposal.TieBreakYes, deadlinePassed(s.proposal, now))
	switch {
	case dec.Decided:
		s.status = types.ReachedStatus(dec.Result)
	case dec.Failed:
		s.status = types.FailedStatus(dec.Reason)
	case capReached:
		s.status = types.FailedStatus(types.ReasonRoundCapExhausted)
	}
}
