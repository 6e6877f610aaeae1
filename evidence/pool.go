// Package evidence records confirmed Byzantine behavior — double
// votes and broken vote chains rejected by engine.ConsensusSession —
// so a caller can inspect misbehavior after the fact. It does not feed
// back into consensus: no slashing, no evidence gossip. Those need a
// membership/economic layer this engine deliberately doesn't have.
package evidence

import (
	"sync"
	"time"

	"github.com/blockberries/hashvote/types"
)

// Kind names the two rejection reasons the engine can attribute to a
// specific voter.
type Kind string

const (
	KindDoubleVote  Kind = "double_vote"
	KindChainBroken Kind = "chain_broken"
)

// Record is one piece of confirmed evidence: a voter's rejected vote,
// alongside the vote it conflicted with (when known).
type Record struct {
	ProposalID      uint32
	VoterAddress    types.Address
	Kind            Kind
	ExistingVoteID  types.Hash
	OffendingVoteID types.Hash
	DetectedAt      time.Time
}

// Pool holds evidence per scope, capped at maxPerScope records with
// oldest-first eviction so a misbehaving voter can't exhaust memory by
// spamming rejected votes.
type Pool struct {
	mu          sync.RWMutex
	maxPerScope int
	records     map[types.ScopeID][]Record
}

func NewPool(maxPerScope int) *Pool {
	if maxPerScope < 1 {
		maxPerScope = 256
	}
	return &Pool{maxPerScope: maxPerScope, records: make(map[types.ScopeID][]Record)}
}

func (p *Pool) Record(scope types.ScopeID, rec Record) {
	p.mu.Lock()
	defer p.mu.Unlock()
	list := append(p.records[scope], rec)
	if len(list) > p.maxPerScope {
		list = list[len(list)-p.maxPerScope:]
	}
	p.records[scope] = list
}

// For returns a defensive copy of the evidence recorded for scope.
func (p *Pool) For(scope types.ScopeID) []Record {
	p.mu.RLock()
	defer p.mu.RUnlock()
	src := p.records[scope]
	out := make([]Record, len(src))
	copy(out, src)
	return out
}

// Count reports how many records are held for scope.
func (p *Pool) Count(scope types.ScopeID) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.records[scope])
}
