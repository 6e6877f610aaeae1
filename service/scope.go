package service

import (
	"context"
	"sync"

	"github.com/blockberries/hashvote/engine"
	"github.com/blockberries/hashvote/types"
)

// scopeState holds one scope's live sessions and configuration. Its
// own mutex guards the session index (creation, eviction, id
// assignment); each session guards its own vote-ingestion state, so
// operations on distinct proposal_ids in the same scope may proceed
// concurrently (§5).
type scopeState struct {
	mu sync.Mutex

	id       types.ScopeID
	config   types.ScopeConfig
	sessions map[uint32]*engine.ConsensusSession
	order    []uint32 // proposal_ids in insertion order, oldest first
	nextID   uint32
}

func newScopeState(id types.ScopeID, cfg types.ScopeConfig) *scopeState {
	return &scopeState{
		id:       id,
		config:   cfg,
		sessions: make(map[uint32]*engine.ConsensusSession),
	}
}

// insertLocked adds session under proposalID and evicts, if necessary,
// to stay within config.MaxSessions. Caller must hold ss.mu.
func (ss *scopeState) insertLocked(proposalID uint32, session *engine.ConsensusSession) (evicted []uint32) {
	ss.sessions[proposalID] = session
	ss.order = append(ss.order, proposalID)

	for len(ss.order) > ss.config.MaxSessions {
		idx := ss.oldestEvictionCandidateLocked()
		victim := ss.order[idx]
		delete(ss.sessions, victim)
		ss.order = append(ss.order[:idx], ss.order[idx+1:]...)
		evicted = append(evicted, victim)
	}
	return evicted
}

// oldestEvictionCandidateLocked implements the eviction policy: the
// oldest non-Active session first; if every session is Active, the
// oldest Active one. Caller must hold ss.mu.
func (ss *scopeState) oldestEvictionCandidateLocked() int {
	for i, pid := range ss.order {
		if s, ok := ss.sessions[pid]; ok && s.Status().Kind != types.StatusActive {
			return i
		}
	}
	return 0
}

// ScopeBuilder configures and (re)initializes a scope. Obtain one via
// Service.Scope.
type ScopeBuilder struct {
	svc *Service
	id  types.ScopeID
	cfg types.ScopeConfig
}

func (b *ScopeBuilder) NetworkType(nt types.NetworkType) *ScopeBuilder {
	b.cfg.NetworkType = nt
	return b
}

func (b *ScopeBuilder) Threshold(t float64) *ScopeBuilder {
	b.cfg.ConsensusThreshold = t
	return b
}

func (b *ScopeBuilder) TimeoutSeconds(s uint32) *ScopeBuilder {
	b.cfg.TimeoutSeconds = s
	return b
}

func (b *ScopeBuilder) LivenessCriteriaYes(v bool) *ScopeBuilder {
	b.cfg.LivenessCriteriaYes = v
	return b
}

func (b *ScopeBuilder) MaxSessions(n int) *ScopeBuilder {
	b.cfg.MaxSessions = n
	return b
}

// StrictConsensus applies the strict_consensus preset (§4.6): a high
// supermajority threshold and no liveness fallback, so a decision is
// only ever reached by genuine quorum agreement.
func (b *ScopeBuilder) StrictConsensus() *ScopeBuilder {
	b.cfg.ConsensusThreshold = 0.9
	b.cfg.LivenessCriteriaYes = false
	return b
}

// FastConsensus applies the fast_consensus preset (§4.6): a lower
// supermajority threshold, a short deadline, and liveness enabled so a
// session resolves quickly even without full turnout.
func (b *ScopeBuilder) FastConsensus() *ScopeBuilder {
	b.cfg.ConsensusThreshold = 0.6
	b.cfg.TimeoutSeconds = 30
	b.cfg.LivenessCriteriaYes = true
	return b
}

// DefaultConsensus resets the builder to types.DefaultScopeConfig(),
// mirroring the teacher's DefaultConfig().
func (b *ScopeBuilder) DefaultConsensus() *ScopeBuilder {
	b.cfg = types.DefaultScopeConfig()
	return b
}

// Initialize creates the scope. It fails with ErrScopeAlreadyInitialized
// if the scope already exists.
func (b *ScopeBuilder) Initialize(ctx context.Context) error {
	return b.svc.initializeScope(ctx, b.id, b.cfg)
}

// Update replaces the live configuration of an already-initialized
// scope. It fails with ErrScopeNotInitialized otherwise. In-flight
// sessions keep the ConsensusConfig snapshot they were created with;
// only future proposals see the new defaults.
func (b *ScopeBuilder) Update(ctx context.Context) error {
	return b.svc.updateScope(ctx, b.id, b.cfg)
}
