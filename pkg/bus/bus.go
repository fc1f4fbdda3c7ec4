// Package bus is a minimal in-process publish/subscribe channel. The device
// administration handlers use it to make the session reconciler react to a
// self-block in the same turn instead of waiting for the next poll tick.
package bus

import "sync"

type EventType int

const (
	EventSessionRevoked EventType = iota
	EventDeviceBlocked
)

type Event struct {
	Type   EventType
	Reason string
}

type Handler func(Event)

type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]Handler
}

func New() *Bus {
	return &Bus{handlers: make(map[int]Handler)}
}

// Subscribe registers a handler and returns a function that removes it.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}
}

// Publish delivers the event synchronously to all current subscribers.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		hs = append(hs, h)
	}
	b.mu.RUnlock()
	for _, h := range hs {
		h(e)
	}
}
