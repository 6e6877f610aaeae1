package storage

import (
	"context"
	"sync"

	"github.com/blockberries/hashvote/engine"
	"github.com/blockberries/hashvote/types"
)

// Memory is a Storage backed by process memory, guarded by a single
// RWMutex, mirroring the teacher's NopWAL in shape (no actual durable
// log — a plain map) but honoring the full Storage contract rather
// than discarding writes.
type Memory struct {
	mu       sync.RWMutex
	sessions map[types.ScopeID]map[uint32]*engine.ConsensusSession
	configs  map[types.ScopeID]types.ScopeConfig
}

func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[types.ScopeID]map[uint32]*engine.ConsensusSession),
		configs:  make(map[types.ScopeID]types.ScopeConfig),
	}
}

func (m *Memory) SaveSession(_ context.Context, scope types.ScopeID, session *engine.ConsensusSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket, ok := m.sessions[scope]
	if !ok {
		bucket = make(map[uint32]*engine.ConsensusSession)
		m.sessions[scope] = bucket
	}
	bucket[session.Proposal().ProposalID] = session
	return nil
}

func (m *Memory) GetSession(_ context.Context, scope types.ScopeID, proposalID uint32) (*engine.ConsensusSession, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bucket, ok := m.sessions[scope]
	if !ok {
		return nil, false, nil
	}
	s, ok := bucket[proposalID]
	return s, ok, nil
}

func (m *Memory) ListSessions(_ context.Context, scope types.ScopeID) ([]*engine.ConsensusSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bucket := m.sessions[scope]
	out := make([]*engine.ConsensusSession, 0, len(bucket))
	for _, s := range bucket {
		out = append(out, s)
	}
	return out, nil
}

func (m *Memory) RemoveSession(_ context.Context, scope types.ScopeID, proposalID uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket, ok := m.sessions[scope]
	if !ok {
		return nil
	}
	delete(bucket, proposalID)
	return nil
}

func (m *Memory) GetConfig(_ context.Context, scope types.ScopeID) (types.ScopeConfig, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg, ok := m.configs[scope]
	return cfg, ok, nil
}

func (m *Memory) PutConfig(_ context.Context, scope types.ScopeID, cfg types.ScopeConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[scope] = cfg
	return nil
}
