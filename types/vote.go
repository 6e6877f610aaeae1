package types

import "time"

// Vote is one voter's signed YES/NO statement on a proposal, linked to
// that voter's previous vote in the same session by ParentHash (or to
// ZeroHash if this is their first vote in the session).
type Vote struct {
	VoteID                Hash
	ProposalID            uint32
	VoterAddress          Address
	Value                 bool
	Timestamp             time.Time
	ParentHash            Hash
	ReceivedProposalHash  Hash
	Signature             Signature
}

// ComputeVoteHash derives vote_id deterministically from the vote's
// content fields, per §4.1. Signature is excluded: it authenticates
// the content, but is not part of the content being agreed on.
func ComputeVoteHash(v *Vote) Hash {
	e := &encoder{}
	e.uint32(v.ProposalID)
	e.fixed(v.VoterAddress[:])
	e.bool(v.Value)
	e.time(v.Timestamp)
	e.fixed(v.ParentHash[:])
	e.fixed(v.ReceivedProposalHash[:])
	return HashBytes(e.Bytes())
}

// SignDigest returns the byte string a Signer signs and a Verifier
// verifies against: the vote_id itself, since it already binds every
// content field.
func (v *Vote) SignDigest() Hash {
	return v.VoteID
}

func (v *Vote) Clone() *Vote {
	cp := *v
	if v.Signature != nil {
		cp.Signature = make(Signature, len(v.Signature))
		copy(cp.Signature, v.Signature)
	}
	return &cp
}
