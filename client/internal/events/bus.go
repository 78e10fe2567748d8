// Package events is a tiny synchronous in-process signal bus. The SDK emits a
// single application-wide signal, AuthExpired, when a session cannot be refreshed.
package events

import "sync"

// Event names a signal.
type Event string

// AuthExpired is emitted when the refresh token is rejected and the user must log in again.
const AuthExpired Event = "auth:expired"

// Handler receives an emitted event.
type Handler func(Event)

// Bus delivers events to subscribers on the emitting goroutine.
type Bus struct {
	mu   sync.RWMutex
	next int
	subs map[Event]map[int]Handler
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Event]map[int]Handler)}
}

// Subscribe registers h for ev and returns a function that removes it.
func (b *Bus) Subscribe(ev Event, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	if b.subs[ev] == nil {
		b.subs[ev] = make(map[int]Handler)
	}
	b.subs[ev][id] = h

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[ev], id)
		})
	}
}

// Emit calls every handler for ev before returning. Handlers may subscribe or
// unsubscribe; changes apply to the next Emit.
func (b *Bus) Emit(ev Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[ev]))
	for _, h := range b.subs[ev] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}
