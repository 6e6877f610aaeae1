// Package service orchestrates the engine's operations (§4.6): scope
// lifecycle, proposal/vote intake, and the read-side queries built on
// top of engine.ConsensusSession. It is the seam where the Storage,
// EventBus, Signer and Verifier capabilities (§6) get wired together.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/blockberries/hashvote/crypto"
	"github.com/blockberries/hashvote/engine"
	"github.com/blockberries/hashvote/evidence"
	"github.com/blockberries/hashvote/events"
	"github.com/blockberries/hashvote/logging"
	"github.com/blockberries/hashvote/metrics"
	"github.com/blockberries/hashvote/storage"
	"github.com/blockberries/hashvote/types"
	"github.com/rs/zerolog"
)

// Config wires the Service's dependencies. Storage, Bus, Clock and
// Evidence default to in-memory/real implementations when left nil;
// Verifier has no sensible default and must be supplied.
type Config struct {
	Storage  storage.Storage
	Bus      events.Bus
	Verifier crypto.Verifier
	Clock    Clock
	Evidence *evidence.Pool
	Metrics  *metrics.Metrics
	Logger   *zerolog.Logger
}

// Service is the top-level entry point for callers: create proposals,
// cast and ingest votes, and query session state, all scoped by
// types.ScopeID.
type Service struct {
	mu     sync.RWMutex
	scopes map[types.ScopeID]*scopeState

	storage  storage.Storage
	bus      events.Bus
	verifier crypto.Verifier
	clock    Clock
	evidence *evidence.Pool
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func New(cfg Config) *Service {
	if cfg.Storage == nil {
		cfg.Storage = storage.NewMemory()
	}
	if cfg.Bus == nil {
		cfg.Bus = events.NewMemoryBus()
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock()
	}
	if cfg.Evidence == nil {
		cfg.Evidence = evidence.NewPool(0)
	}
	logger := logging.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	return &Service{
		scopes:   make(map[types.ScopeID]*scopeState),
		storage:  cfg.Storage,
		bus:      cfg.Bus,
		verifier: cfg.Verifier,
		clock:    cfg.Clock,
		evidence: cfg.Evidence,
		metrics:  cfg.Metrics,
		logger:   logger.With().Str("component", "service").Logger(),
	}
}

// Scope returns a builder for initializing or updating scope's
// configuration.
func (s *Service) Scope(id types.ScopeID) *ScopeBuilder {
	return &ScopeBuilder{svc: s, id: id, cfg: types.DefaultScopeConfig()}
}

func (s *Service) initializeScope(ctx context.Context, id types.ScopeID, cfg types.ScopeConfig) error {
	cfg.Clamp()
	s.mu.Lock()
	if _, exists := s.scopes[id]; exists {
		s.mu.Unlock()
		return ErrScopeAlreadyInitialized
	}
	s.scopes[id] = newScopeState(id, cfg)
	s.mu.Unlock()

	if err := s.storage.PutConfig(ctx, id, cfg); err != nil {
		return fmt.Errorf("service: persist scope config: %w", err)
	}
	s.logger.Info().Str("scope", id.String()).Msg("scope initialized")
	return nil
}

func (s *Service) updateScope(ctx context.Context, id types.ScopeID, cfg types.ScopeConfig) error {
	cfg.Clamp()
	ss, err := s.getScope(id)
	if err != nil {
		return err
	}
	ss.mu.Lock()
	ss.config = cfg
	ss.mu.Unlock()

	if err := s.storage.PutConfig(ctx, id, cfg); err != nil {
		return fmt.Errorf("service: persist scope config: %w", err)
	}
	s.logger.Info().Str("scope", id.String()).Msg("scope config updated")
	return nil
}

func (s *Service) getScope(id types.ScopeID) (*scopeState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ss, ok := s.scopes[id]
	if !ok {
		return nil, ErrScopeNotInitialized
	}
	return ss, nil
}

// CreateProposalRequest describes a proposal originating locally and
// owned by owner (who does not thereby cast a vote —
// creating a proposal and voting on it are independent operations,
// per §4.6).
type CreateProposalRequest struct {
	Name           string
	Payload        []byte
	ExpectedVoters uint32
	TieBreakYes    bool
}

// CreateProposal assigns a fresh proposal_id within scope, computes
// proposal_hash, opens a new session, and arranges the deadline wake
// described in §5.
func (s *Service) CreateProposal(ctx context.Context, scope types.ScopeID, owner types.Address, req CreateProposalRequest) (*types.Proposal, error) {
	ss, err := s.getScope(scope)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	ss.mu.Lock()
	ss.nextID++
	proposalID := ss.nextID
	cfg := ss.config
	ss.mu.Unlock()

	p := &types.Proposal{
		ProposalID:     proposalID,
		Name:           req.Name,
		Payload:        req.Payload,
		OwnerAddress:   owner,
		ExpectedVoters: req.ExpectedVoters,
		CreatedAt:      now,
		ExpiresAt:      now.Add(time.Duration(cfg.TimeoutSeconds) * time.Second),
		TieBreakYes:    req.TieBreakYes,
		Config:         types.NewConsensusConfig(cfg, req.ExpectedVoters),
	}
	p.ProposalHash = types.ComputeProposalHash(p)

	if err := engine.ValidateProposal(p); err != nil {
		return nil, err
	}

	if err := s.admitSession(ctx, ss, p, now); err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// ProcessIncomingProposal admits a proposal that arrived from the
// network. A proposal_id already claimed by an identical proposal is
// an idempotent no-op; claimed by a different one is ErrProposalConflict
// (§9: proposal_hash mismatch is always a conflict, never tolerated as
// clock skew, since expires_at is fully determined by created_at and
// timeout_seconds — both already part of the hashed content).
func (s *Service) ProcessIncomingProposal(ctx context.Context, scope types.ScopeID, p *types.Proposal) error {
	ss, err := s.getScope(scope)
	if err != nil {
		return err
	}
	if err := engine.ValidateProposal(p); err != nil {
		return err
	}

	ss.mu.Lock()
	if existing, ok := ss.sessions[p.ProposalID]; ok {
		ss.mu.Unlock()
		if existing.Proposal().ProposalHash == p.ProposalHash {
			return nil
		}
		return ErrProposalConflict
	}
	ss.mu.Unlock()

	return s.admitSession(ctx, ss, p, s.clock.Now())
}

// admitSession inserts a validated proposal's session into ss,
// evicting per policy if needed, persists it, and schedules the
// deadline wake.
func (s *Service) admitSession(ctx context.Context, ss *scopeState, p *types.Proposal, now time.Time) error {
	session := engine.NewSession(p, now)

	ss.mu.Lock()
	evicted := ss.insertLocked(p.ProposalID, session)
	ss.mu.Unlock()

	for _, pid := range evicted {
		_ = s.storage.RemoveSession(ctx, ss.id, pid)
		s.incEvicted(ss.id)
		s.logger.Debug().Str("scope", ss.id.String()).Uint32("proposal_id", pid).Msg("session evicted")
	}

	if err := s.storage.SaveSession(ctx, ss.id, session); err != nil {
		return fmt.Errorf("service: persist session: %w", err)
	}
	s.setActiveGauge(ss)

	delay := p.ExpiresAt.Sub(now)
	scope, proposalID := ss.id, p.ProposalID
	s.clock.AfterFunc(delay, func() {
		s.onDeadline(context.Background(), scope, proposalID)
	})

	s.logger.Debug().Str("scope", ss.id.String()).Uint32("proposal_id", p.ProposalID).Msg("session opened")
	return nil
}

// onDeadline runs when a session's one-shot deadline timer fires; it
// is a no-op if the session already reached a terminal state earlier
// (e.g. via CastVote).
func (s *Service) onDeadline(ctx context.Context, scope types.ScopeID, proposalID uint32) {
	ss, err := s.getScope(scope)
	if err != nil {
		return
	}
	ss.mu.Lock()
	session, ok := ss.sessions[proposalID]
	ss.mu.Unlock()
	if !ok {
		return
	}

	if session.EvaluateDeadline(s.clock.Now()) {
		_ = s.storage.SaveSession(ctx, scope, session)
		s.publishTerminal(scope, session)
		s.setActiveGauge(ss)
	}
}

// CastVote builds, signs and ingests a vote for proposalID on behalf
// of signer, chaining it from signer's previous vote in the session
// (or from ZeroHash if this is their first).
func (s *Service) CastVote(ctx context.Context, scope types.ScopeID, proposalID uint32, value bool, signer crypto.Signer) (*types.Vote, error) {
	ss, err := s.getScope(scope)
	if err != nil {
		return nil, err
	}
	ss.mu.Lock()
	session, ok := ss.sessions[proposalID]
	ss.mu.Unlock()
	if !ok {
		return nil, ErrProposalNotFound
	}

	proposal := session.Proposal()
	parent, hasPrev := session.LastVoteID(signer.Address())
	if !hasPrev {
		parent = types.ZeroHash
	}

	v := &types.Vote{
		ProposalID:           proposalID,
		VoterAddress:         signer.Address(),
		Value:                value,
		Timestamp:            s.clock.Now(),
		ParentHash:           parent,
		ReceivedProposalHash: proposal.ProposalHash,
	}
	v.VoteID = types.ComputeVoteHash(v)
	sig, err := signer.Sign(v.SignDigest())
	if err != nil {
		return nil, fmt.Errorf("service: sign vote: %w", err)
	}
	v.Signature = sig

	if err := engine.ValidateVote(v, proposal, s.verifier); err != nil {
		s.incRejected(ss.id, "validate")
		return nil, err
	}
	if err := s.ingestVote(ctx, ss, session, v); err != nil {
		return nil, err
	}
	return v.Clone(), nil
}

// ProcessIncomingVote validates and ingests a vote that arrived from
// the network.
func (s *Service) ProcessIncomingVote(ctx context.Context, scope types.ScopeID, v *types.Vote) error {
	ss, err := s.getScope(scope)
	if err != nil {
		return err
	}
	ss.mu.Lock()
	session, ok := ss.sessions[v.ProposalID]
	ss.mu.Unlock()
	if !ok {
		return ErrProposalNotFound
	}

	proposal := session.Proposal()
	if err := engine.ValidateVote(v, proposal, s.verifier); err != nil {
		s.incRejected(ss.id, "validate")
		return err
	}
	return s.ingestVote(ctx, ss, session, v)
}

func (s *Service) ingestVote(ctx context.Context, ss *scopeState, session *engine.ConsensusSession, v *types.Vote) error {
	now := s.clock.Now()
	outcome, err := session.AcceptVote(v, now)
	switch {
	case err == engine.ErrDoubleVote || err == engine.ErrChainBroken:
		s.recordEvidence(ss.id, session, v, err)
		s.incRejected(ss.id, evidenceKindFor(err))
		return err
	case err != nil:
		s.incRejected(ss.id, "closed")
		return err
	case outcome == engine.VoteDuplicate:
		return nil
	}

	if err := s.storage.SaveSession(ctx, ss.id, session); err != nil {
		return fmt.Errorf("service: persist session: %w", err)
	}
	s.incProcessed(ss.id)

	status := session.Status()
	if status.IsTerminal() {
		s.publishTerminal(ss.id, session)
	}
	s.setActiveGauge(ss)
	return nil
}

func evidenceKindFor(err error) string {
	if err == engine.ErrDoubleVote {
		return "double_vote"
	}
	return "chain_broken"
}

func (s *Service) recordEvidence(scope types.ScopeID, session *engine.ConsensusSession, v *types.Vote, cause error) {
	kind := evidence.KindChainBroken
	if cause == engine.ErrDoubleVote {
		kind = evidence.KindDoubleVote
	}
	existing, _ := session.LastVoteID(v.VoterAddress)
	s.evidence.Record(scope, evidence.Record{
		ProposalID:      v.ProposalID,
		VoterAddress:    v.VoterAddress,
		Kind:            kind,
		ExistingVoteID:  existing,
		OffendingVoteID: v.VoteID,
		DetectedAt:      s.clock.Now(),
	})
	s.logger.Warn().Str("scope", scope.String()).Str("voter", v.VoterAddress.String()).Str("kind", string(kind)).Msg("byzantine vote rejected")
}

func (s *Service) publishTerminal(scope types.ScopeID, session *engine.ConsensusSession) {
	status := session.Status()
	proposal := session.Proposal()
	round := session.CurrentRound()
	now := s.clock.Now()

	switch status.Kind {
	case types.StatusConsensusReached:
		s.bus.Publish(scope, events.ConsensusReached{ProposalID: proposal.ProposalID, Result: status.Result, Round: round, At: now})
		s.incReached(scope, status.Result)
	case types.StatusFailed:
		s.bus.Publish(scope, events.ConsensusFailed{ProposalID: proposal.ProposalID, Reason: status.Reason, Round: round, At: now})
		s.incFailed(scope, status.Reason)
	}
	s.logger.Info().Str("scope", scope.String()).Uint32("proposal_id", proposal.ProposalID).Str("status", status.Kind.String()).Msg("session reached terminal state")
}

// Subscribe returns a Receiver of ConsensusReached/ConsensusFailed
// events across every scope this Service manages.
func (s *Service) Subscribe() events.Receiver {
	return s.bus.Subscribe()
}

// GetConsensusResult returns the current status of proposalID's
// session within scope. A session whose deadline has already elapsed
// is evaluated on the spot if the scheduled timer hasn't fired yet, so
// readers never observe a stale Active status past expires_at.
func (s *Service) GetConsensusResult(ctx context.Context, scope types.ScopeID, proposalID uint32) (types.SessionStatus, error) {
	ss, err := s.getScope(scope)
	if err != nil {
		return types.SessionStatus{}, err
	}
	ss.mu.Lock()
	session, ok := ss.sessions[proposalID]
	ss.mu.Unlock()
	if !ok {
		return types.SessionStatus{}, ErrProposalNotFound
	}
	return s.refreshStatus(ctx, scope, session), nil
}

// refreshStatus forces a deadline re-evaluation before returning a
// session's status, persisting and publishing if that flips it to a
// terminal state.
func (s *Service) refreshStatus(ctx context.Context, scope types.ScopeID, session *engine.ConsensusSession) types.SessionStatus {
	if session.EvaluateDeadline(s.clock.Now()) {
		_ = s.storage.SaveSession(ctx, scope, session)
		s.publishTerminal(scope, session)
	}
	return session.Status()
}

// GetActiveProposals returns every proposal in scope whose session is
// still Active.
func (s *Service) GetActiveProposals(ctx context.Context, scope types.ScopeID) ([]*types.Proposal, error) {
	return s.filterProposals(ctx, scope, func(st types.SessionStatus) bool { return st.Kind == types.StatusActive })
}

// GetReachedProposals returns every proposal in scope whose session
// reached ConsensusReached.
func (s *Service) GetReachedProposals(ctx context.Context, scope types.ScopeID) ([]*types.Proposal, error) {
	return s.filterProposals(ctx, scope, func(st types.SessionStatus) bool { return st.Kind == types.StatusConsensusReached })
}

func (s *Service) filterProposals(ctx context.Context, scope types.ScopeID, keep func(types.SessionStatus) bool) ([]*types.Proposal, error) {
	ss, err := s.getScope(scope)
	if err != nil {
		return nil, err
	}
	ss.mu.Lock()
	sessions := make([]*engine.ConsensusSession, 0, len(ss.sessions))
	for _, sess := range ss.sessions {
		sessions = append(sessions, sess)
	}
	ss.mu.Unlock()

	out := make([]*types.Proposal, 0, len(sessions))
	for _, sess := range sessions {
		if keep(s.refreshStatus(ctx, scope, sess)) {
			out = append(out, sess.Proposal())
		}
	}
	return out, nil
}

// HasSufficientVotesForProposal reports whether proposalID's session
// has already accumulated enough votes to satisfy count-based
// sufficiency (§4.4 step 1), independent of whether a decision has
// actually been reached (a sufficient-but-tied tally still needs
// tie-break evaluation to decide).
func (s *Service) HasSufficientVotesForProposal(ctx context.Context, scope types.ScopeID, proposalID uint32) (bool, error) {
	ss, err := s.getScope(scope)
	if err != nil {
		return false, err
	}
	ss.mu.Lock()
	session, ok := ss.sessions[proposalID]
	ss.mu.Unlock()
	if !ok {
		return false, ErrProposalNotFound
	}

	proposal := session.Proposal()
	yes, no := session.Tally()
	required := proposal.Config.RequiredVotes(proposal.ExpectedVoters)
	return uint32(yes+no) >= required, nil
}
