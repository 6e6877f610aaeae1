package types

import "time"

// Proposal is the unit consensus is sought over: a binary YES/NO
// question with an opaque payload, published by an owner and subject
// to a scope's consensus parameters.
type Proposal struct {
	ProposalID     uint32
	Name           string
	Payload        []byte
	OwnerAddress   Address
	ExpectedVoters uint32
	CreatedAt      time.Time
	ExpiresAt      time.Time
	TieBreakYes    bool
	Config         ConsensusConfig
	ProposalHash   Hash
}

// ComputeProposalHash derives proposal_hash deterministically from the
// proposal's content fields, per §4.1. It does not depend on
// ProposalID (an assigned sequence number, not content) or on the
// hash field itself.
func ComputeProposalHash(p *Proposal) Hash {
	e := &encoder{}
	e.string(p.Name)
	e.bytes(p.Payload)
	e.fixed(p.OwnerAddress[:])
	e.uint32(p.ExpectedVoters)
	e.time(p.CreatedAt)
	e.time(p.ExpiresAt)
	e.bool(p.TieBreakYes)
	e.fixed(encodeConsensusConfig(p.Config))
	return HashBytes(e.Bytes())
}

// Clone returns a deep copy safe to hand to callers or store without
// aliasing the receiver's slice fields.
func (p *Proposal) Clone() *Proposal {
	cp := *p
	if p.Payload != nil {
		cp.Payload = make([]byte, len(p.Payload))
		copy(cp.Payload, p.Payload)
	}
	return &cp
}
