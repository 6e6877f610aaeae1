package events

import (
	"sync"

	"github.com/blockberries/hashvote/types"
	"github.com/google/uuid"
)

// subscriberBufferSize bounds how far a subscriber may lag before newly
// published events start being dropped for it.
const subscriberBufferSize = 64

// MemoryBus is an in-memory Bus. Publish never blocks: a subscriber
// whose channel is full has the event dropped for it, matching the
// gossip-style "no guaranteed delivery" semantics of §6.
type MemoryBus struct {
	mu   sync.RWMutex
	subs map[*memoryReceiver]struct{}
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[*memoryReceiver]struct{})}
}

func (b *MemoryBus) Publish(scope types.ScopeID, ev Event) {
	env := Envelope{ID: uuid.New(), Scope: scope, Event: ev}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for r := range b.subs {
		select {
		case r.ch <- env:
		default:
			// subscriber is behind; best-effort delivery drops this event for it.
		}
	}
}

func (b *MemoryBus) Subscribe() Receiver {
	r := &memoryReceiver{bus: b, ch: make(chan Envelope, subscriberBufferSize)}
	b.mu.Lock()
	b.subs[r] = struct{}{}
	b.mu.Unlock()
	return r
}

type memoryReceiver struct {
	bus  *MemoryBus
	ch   chan Envelope
	once sync.Once
}

func (r *memoryReceiver) Events() <-chan Envelope {
	return r.ch
}

func (r *memoryReceiver) Close() {
	r.once.Do(func() {
		r.bus.mu.Lock()
		delete(r.bus.subs, r)
		r.bus.mu.Unlock()
		close(r.ch)
	})
}
