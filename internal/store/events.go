package store

import (
	"context"
	"sync"
)

// EventOp identifies what kind of store mutation occurred
type EventOp string

const (
	EventCreated EventOp = "created"
	EventRemoved EventOp = "removed"
	EventChanged EventOp = "changed"
	EventMoved   EventOp = "moved"
)

// Event describes a single committed mutation.
type Event struct {
	Op     EventOp
	NodeID int
	// ParentID is the node's parent after the mutation (for removals, the
	// parent it was removed from).
	ParentID int
	// OldParentID is set for moves only.
	OldParentID int
}

// Touches reports whether the event affects the direct contents of the
// folder with the given id.
func (e Event) Touches(id int) bool {
	return e.NodeID == id || e.ParentID == id ||
		(e.Op == EventMoved && e.OldParentID == id)
}

// broker fans out events to subscribers without blocking publishers.
type broker struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

func newBroker() *broker {
	return &broker{subs: make(map[chan Event]struct{})}
}

// subscribe registers for future events. The returned channel closes when
// the provided context is done.
func (b *broker) subscribe(ctx context.Context) <-chan Event {
	b.mu.Lock()
	ch := make(chan Event, 64)
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[ch]; !ok {
			return
		}
		delete(b.subs, ch)
		close(ch)
	}()

	return ch
}

// publish sends the event to all subscribers, dropping it for any
// subscriber whose buffer is full.
func (b *broker) publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (b *broker) shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		close(ch)
	}
	b.subs = make(map[chan Event]struct{})
}
