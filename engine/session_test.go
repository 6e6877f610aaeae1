package engine

import (
	stded25519 "crypto/ed25519"
	"errors"
	"testing"
	"time"

	"github.com/blockberries/hashvote/crypto"
	"github.com/blockberries/hashvote/types"
)

type testVoter struct {
	signer *crypto.Ed25519Signer
}

func newTestVoter(t *testing.T) testVoter {
	t.Helper()
	_, priv, err := stded25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	signer, err := crypto.NewEd25519Signer(priv)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	return testVoter{signer: signer}
}

func newTestProposal(expectedVoters uint32, now time.Time) *types.Proposal {
	p := &types.Proposal{
		ProposalID:     1,
		Name:           "raise-the-fee",
		Payload:        []byte("payload"),
		OwnerAddress:   types.ZeroAddress,
		ExpectedVoters: expectedVoters,
		CreatedAt:      now,
		ExpiresAt:      now.Add(time.Minute),
		TieBreakYes:    false,
		Config:         types.NewConsensusConfig(types.ScopeConfig{NetworkType: types.NetworkGossipsub}, expectedVoters),
	}
	p.ProposalHash = types.ComputeProposalHash(p)
	return p
}

func castVote(voter testVoter, p *types.Proposal, value bool, parent types.Hash, ts time.Time) *types.Vote {
	v := &types.Vote{
		ProposalID:           p.ProposalID,
		VoterAddress:         voter.signer.Address(),
		Value:                value,
		Timestamp:            ts,
		ParentHash:           parent,
		ReceivedProposalHash: p.ProposalHash,
	}
	v.VoteID = types.ComputeVoteHash(v)
	sig, _ := voter.signer.Sign(v.SignDigest())
	v.Signature = sig
	return v
}

func TestSessionAcceptVoteReachesConsensus(t *testing.T) {
	now := time.Now()
	p := newTestProposal(3, now)
	s := NewSession(p, now)

	// required = ceil(2/3*3) = 2, so the session decides on the second
	// vote; a third voter's vote arrives after the session is terminal.
	voters := []testVoter{newTestVoter(t), newTestVoter(t), newTestVoter(t)}
	for i, v := range voters[:2] {
		vote := castVote(v, p, true, types.ZeroHash, now.Add(time.Duration(i)*time.Second))
		outcome, err := s.AcceptVote(vote, now)
		if err != nil {
			t.Fatalf("vote %d: unexpected error: %v", i, err)
		}
		if outcome != VoteAdded {
			t.Fatalf("vote %d: expected VoteAdded, got %v", i, outcome)
		}
	}

	status := s.Status()
	if status.Kind != types.StatusConsensusReached || !status.Result {
		t.Fatalf("expected ConsensusReached(true), got %+v", status)
	}
	if s.CurrentRound() != 2 {
		t.Fatalf("expected round 2 for gossipsub session, got %d", s.CurrentRound())
	}

	late := castVote(voters[2], p, true, types.ZeroHash, now.Add(2*time.Second))
	if _, err := s.AcceptVote(late, now); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed for a vote after the decision, got %v", err)
	}
}

func TestSessionDuplicateVoteIsIdempotent(t *testing.T) {
	now := time.Now()
	p := newTestProposal(3, now)
	s := NewSession(p, now)
	voter := newTestVoter(t)
	vote := castVote(voter, p, true, types.ZeroHash, now)

	if _, err := s.AcceptVote(vote, now); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	outcome, err := s.AcceptVote(vote, now)
	if err != nil {
		t.Fatalf("replayed vote should not error: %v", err)
	}
	if outcome != VoteDuplicate {
		t.Fatalf("expected VoteDuplicate, got %v", outcome)
	}
}

func TestSessionDoubleVoteRejected(t *testing.T) {
	now := time.Now()
	p := newTestProposal(3, now)
	s := NewSession(p, now)
	voter := newTestVoter(t)

	first := castVote(voter, p, true, types.ZeroHash, now)
	if _, err := s.AcceptVote(first, now); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	second := castVote(voter, p, false, first.VoteID, now.Add(time.Second))
	_, err := s.AcceptVote(second, now)
	if err != ErrDoubleVote {
		t.Fatalf("expected ErrDoubleVote, got %v", err)
	}
}

func TestSessionChainBrokenForWrongRoot(t *testing.T) {
	now := time.Now()
	p := newTestProposal(3, now)
	s := NewSession(p, now)
	voterA := newTestVoter(t)
	voterB := newTestVoter(t)

	firstA := castVote(voterA, p, true, types.ZeroHash, now)
	if _, err := s.AcceptVote(firstA, now); err != nil {
		t.Fatalf("voter A vote: %v", err)
	}

	// voter B references A's vote_id as if it were their own chain root.
	badB := castVote(voterB, p, true, firstA.VoteID, now.Add(time.Second))
	_, err := s.AcceptVote(badB, now)
	if err != ErrChainBroken {
		t.Fatalf("expected ErrChainBroken, got %v", err)
	}
}

func TestSessionEvaluateDeadlineFailsWithoutQuorum(t *testing.T) {
	now := time.Now()
	p := newTestProposal(4, now)
	s := NewSession(p, now)
	voter := newTestVoter(t)
	vote := castVote(voter, p, true, types.ZeroHash, now)
	if _, err := s.AcceptVote(vote, now); err != nil {
		t.Fatalf("vote: %v", err)
	}

	after := now.Add(2 * time.Minute)
	if !s.EvaluateDeadline(after) {
		t.Fatal("expected deadline evaluation to transition the session")
	}
	status := s.Status()
	if status.Kind != types.StatusFailed {
		t.Fatalf("expected Failed, got %+v", status)
	}
}
