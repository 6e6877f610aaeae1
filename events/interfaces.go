// Package events declares the EventBus capability (§6) and ships an
// in-memory best-effort broadcaster: subscribers that fall behind may
// miss events rather than blocking publishers, mirroring the delivery
// semantics of a gossip network.
package events

import (
	"time"

	"github.com/blockberries/hashvote/types"
	"github.com/google/uuid"
)

// Event is the payload carried by an Envelope. The two concrete
// kinds mirror the two terminal SessionStatus kinds.
type Event interface {
	isEvent()
}

type ConsensusReached struct {
	ProposalID uint32
	Result     bool
	Round      uint32
	At         time.Time
}

type ConsensusFailed struct {
	ProposalID uint32
	Reason     types.FailReason
	Round      uint32
	At         time.Time
}

func (ConsensusReached) isEvent() {}
func (ConsensusFailed) isEvent()  {}

// Envelope wraps an Event with delivery metadata. ID is a delivery
// identifier distinct from any content hash in the domain model — a
// subscriber that persists delivered events can use it as a dedup key
// without confusing it for proposal_hash or vote_id.
type Envelope struct {
	ID    uuid.UUID
	Scope types.ScopeID
	Event Event
}

// Bus is the publish/subscribe capability injected into the service.
type Bus interface {
	Publish(scope types.ScopeID, ev Event)
	Subscribe() Receiver
}

// Receiver is a subscriber's inbound channel plus its own lifecycle.
type Receiver interface {
	Events() <-chan Envelope
	Close()
}
