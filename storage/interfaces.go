// Package storage declares the Storage capability (§6) the service
// depends on to persist sessions and scope configuration, and ships an
// in-memory implementation suitable for tests and single-process use.
package storage

import (
	"context"

	"github.com/blockberries/hashvote/engine"
	"github.com/blockberries/hashvote/types"
)

// Storage is the persistence capability injected into the service.
// Implementations are free to be as durable as the deployment needs;
// the engine only requires the read-your-writes ordering implied by
// this interface's method set.
type Storage interface {
	SaveSession(ctx context.Context, scope types.ScopeID, session *engine.ConsensusSession) error
	GetSession(ctx context.Context, scope types.ScopeID, proposalID uint32) (*engine.ConsensusSession, bool, error)
	ListSessions(ctx context.Context, scope types.ScopeID) ([]*engine.ConsensusSession, error)
	RemoveSession(ctx context.Context, scope types.ScopeID, proposalID uint32) error

	GetConfig(ctx context.Context, scope types.ScopeID) (types.ScopeConfig, bool, error)
	PutConfig(ctx context.Context, scope types.ScopeID, cfg types.ScopeConfig) error
}
