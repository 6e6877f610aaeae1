// Package engine implements the per-proposal consensus session state
// machine: round tracking, threshold/decision evaluation, message
// validation, and the vote-chain integrity checks that make a
// session's vote set Byzantine-tolerant.
package engine

import "errors"

// Validation-time errors (§7). None of these mutate session state.
var (
	ErrInvalidProposal    = errors.New("engine: invalid proposal")
	ErrInvalidVote        = errors.New("engine: invalid vote")
	ErrSignatureInvalid   = errors.New("engine: signature does not verify")
	ErrProposalMismatch   = errors.New("engine: vote's received proposal hash does not match this session's proposal")
	ErrVoteOutsideWindow  = errors.New("engine: vote timestamp outside proposal's active window")
)

// Ingestion-time errors (§7). ErrChainBroken and ErrDoubleVote reflect
// rejected Byzantine behavior and are recorded to the evidence pool by
// callers, but likewise never mutate session state.
var (
	ErrDoubleVote   = errors.New("engine: voter already cast a different vote in this session")
	ErrChainBroken  = errors.New("engine: vote's parent_hash does not chain from voter's prior vote")
	ErrSessionClosed = errors.New("engine: session is no longer active")
)
