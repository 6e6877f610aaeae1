package engine

import (
	"fmt"
	"time"

	"github.com/blockberries/hashvote/crypto"
	"github.com/blockberries/hashvote/types"
)

// ValidateProposal implements §4.2's structural checks on a freshly
// created or freshly received proposal: name is non-empty, at least
// one voter is expected, expires_at strictly follows created_at, the
// threshold is in (0, 1], the embedded round_cap matches what its own
// network_type and expected_voters imply, and the stored proposal_hash
// matches a recomputation from the rest of the fields.
func ValidateProposal(p *types.Proposal) error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidProposal)
	}
	if p.ExpectedVoters == 0 {
		return fmt.Errorf("%w: expected_voters must be positive", ErrInvalidProposal)
	}
	if !p.ExpiresAt.After(p.CreatedAt) {
		return fmt.Errorf("%w: expires_at must be after created_at", ErrInvalidProposal)
	}
	if p.Config.ConsensusThreshold <= 0 || p.Config.ConsensusThreshold > 1 {
		return fmt.Errorf("%w: consensus_threshold out of range", ErrInvalidProposal)
	}
	if p.Config.TimeoutSeconds < 1 {
		return fmt.Errorf("%w: timeout_seconds must be positive", ErrInvalidProposal)
	}
	if !p.Config.NetworkType.Valid() {
		return fmt.Errorf("%w: unknown network_type", ErrInvalidProposal)
	}
	if want := types.ComputeRoundCap(p.Config.NetworkType, p.ExpectedVoters); p.Config.RoundCap != want {
		return fmt.Errorf("%w: round_cap=%d does not match expected %d for network_type=%s and expected_voters=%d",
			ErrInvalidProposal, p.Config.RoundCap, want, p.Config.NetworkType, p.ExpectedVoters)
	}
	if got := ComputeProposalHash(p); got != p.ProposalHash {
		return fmt.Errorf("%w: proposal_hash does not match content", ErrInvalidProposal)
	}
	return nil
}

// ComputeProposalHash is a thin re-export so callers in this package
// don't need to import types twice; identical to types.ComputeProposalHash.
func ComputeProposalHash(p *types.Proposal) types.Hash {
	return types.ComputeProposalHash(p)
}

// ValidateVote implements §4.2's per-vote checks that don't require
// session state: the vote_id matches a recomputation from its
// content, the vote references the proposal it claims to (by
// received_proposal_hash), its timestamp falls within the proposal's
// [created_at, expires_at] window, and its signature verifies to the
// claimed voter_address.
func ValidateVote(v *types.Vote, p *types.Proposal, verifier crypto.Verifier) error {
	if got := types.ComputeVoteHash(v); got != v.VoteID {
		return fmt.Errorf("%w: vote_id does not match content", ErrInvalidVote)
	}
	if v.ProposalID != p.ProposalID {
		return fmt.Errorf("%w: proposal_id mismatch", ErrInvalidVote)
	}
	if v.ReceivedProposalHash != p.ProposalHash {
		return fmt.Errorf("%w: received_proposal_hash=%s does not match session proposal_hash=%s",
			ErrProposalMismatch, v.ReceivedProposalHash, p.ProposalHash)
	}
	if v.Timestamp.Before(p.CreatedAt) || v.Timestamp.After(p.ExpiresAt) {
		return fmt.Errorf("%w: timestamp=%s outside [%s, %s]",
			ErrVoteOutsideWindow, v.Timestamp, p.CreatedAt, p.ExpiresAt)
	}
	addr, err := verifier.Recover(v.SignDigest(), v.Signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}
	if addr != v.VoterAddress {
		return fmt.Errorf("%w: recovered address does not match voter_address", ErrSignatureInvalid)
	}
	return nil
}

// deadlinePassed is a small helper shared by AcceptVote and
// EvaluateDeadline so both compare against wall time the same way.
func deadlinePassed(p *types.Proposal, now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}
