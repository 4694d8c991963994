package store

import "sync"

// EventType identifies a change notification
type EventType string

const (
	// EventDataChanged fires after any mutation of the document tree
	EventDataChanged EventType = "data_changed"
	// EventCaseUpdated fires when a single case changed outside a direct
	// tree mutation (e.g. a classification completing); carries the case id
	EventCaseUpdated EventType = "case_updated"
	// EventPromotionsUpdated fires when the promotions staging list changed
	EventPromotionsUpdated EventType = "promotions_updated"
)

// Event is a typed change notification delivered to view-layer listeners
type Event struct {
	Type   EventType `json:"type"`
	CaseID string    `json:"caseId,omitempty"`
}

// Bus delivers change notifications synchronously to all current
// listeners. Listeners must not block; slow consumers should hand off to
// their own goroutine.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

func NewBus() *Bus {
	return &Bus{subs: map[int]func(Event){}}
}

// Subscribe registers a listener and returns its unsubscribe function
func (b *Bus) Subscribe(fn func(Event)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish delivers the event to every listener. Listeners are called
// outside the registry lock so they may subscribe/unsubscribe freely.
func (b *Bus) Publish(event Event) {
	b.mu.Lock()
	listeners := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		listeners = append(listeners, fn)
	}
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(event)
	}
}
