package service

import (
	"context"
	"strconv"

	"github.com/blockberries/hashvote/types"
)

// ScopeStats summarizes a scope's session set, mirroring the
// dimensions also exported to Prometheus (§11/§12).
type ScopeStats struct {
	Active          int
	ConsensusReached int
	Failed          int
	VotesProcessed  int
	EvidenceRecords int
}

// GetScopeStats implements §4.6's get_scope_stats operation.
func (s *Service) GetScopeStats(ctx context.Context, scope types.ScopeID) (ScopeStats, error) {
	ss, err := s.getScope(scope)
	if err != nil {
		return ScopeStats{}, err
	}
	ss.mu.Lock()
	sessions := make([]*sessionSnapshot, 0, len(ss.sessions))
	for _, sess := range ss.sessions {
		yes, no := sess.Tally()
		sessions = append(sessions, &sessionSnapshot{status: sess.Status(), votes: yes + no})
	}
	ss.mu.Unlock()

	var stats ScopeStats
	for _, snap := range sessions {
		switch snap.status.Kind {
		case types.StatusActive:
			stats.Active++
		case types.StatusConsensusReached:
			stats.ConsensusReached++
		case types.StatusFailed:
			stats.Failed++
		}
		stats.VotesProcessed += snap.votes
	}
	stats.EvidenceRecords = s.evidence.Count(scope)
	return stats, nil
}

type sessionSnapshot struct {
	status types.SessionStatus
	votes  int
}

// The helpers below are nil-safe no-ops when the Service was built
// without a *metrics.Metrics, so instrumentation stays optional.

func (s *Service) incEvicted(scope types.ScopeID) {
	if s.metrics == nil {
		return
	}
	s.metrics.SessionsEvicted.WithLabelValues(scope.String()).Inc()
}

func (s *Service) incProcessed(scope types.ScopeID) {
	if s.metrics == nil {
		return
	}
	s.metrics.VotesProcessed.WithLabelValues(scope.String()).Inc()
}

func (s *Service) incRejected(scope types.ScopeID, reason string) {
	if s.metrics == nil {
		return
	}
	s.metrics.VotesRejected.WithLabelValues(scope.String(), reason).Inc()
}

func (s *Service) incReached(scope types.ScopeID, result bool) {
	if s.metrics == nil {
		return
	}
	s.metrics.SessionsReached.WithLabelValues(scope.String(), strconv.FormatBool(result)).Inc()
}

func (s *Service) incFailed(scope types.ScopeID, reason types.FailReason) {
	if s.metrics == nil {
		return
	}
	s.metrics.SessionsFailed.WithLabelValues(scope.String(), string(reason)).Inc()
}

func (s *Service) setActiveGauge(ss *scopeState) {
	if s.metrics == nil {
		return
	}
	ss.mu.Lock()
	active := 0
	for _, sess := range ss.sessions {
		if sess.Status().Kind == types.StatusActive {
			active++
		}
	}
	scopeID := ss.id
	ss.mu.Unlock()
	s.metrics.SessionsActive.WithLabelValues(scopeID.String()).Set(float64(active))
}
