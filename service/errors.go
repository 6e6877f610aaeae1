package service

import "errors"

var (
	ErrScopeAlreadyInitialized = errors.New("service: scope already initialized")
	ErrScopeNotInitialized     = errors.New("service: scope not initialized")
	ErrProposalNotFound        = errors.New("service: proposal not found in scope")
	// ErrProposalConflict is returned when an incoming proposal reuses a
	// proposal_id already claimed in the scope with different content.
	// A proposal_id stays claimed while the scope holds its session,
	// including after that session reaches a terminal state. Once the
	// session is evicted, the id is no longer tracked, and a later
	// incoming proposal with that id is admitted as a new session.
	ErrProposalConflict = errors.New("service: proposal_id already claimed by a different proposal")
)
