package events

import (
	"sync"
	"sync/atomic"

	eventbus "github.com/jilio/ebu"
)

// Wildcard is the name under which SubscribeAll handlers are stored.
const Wildcard = "*"

// Handler receives an emitted payload.
type Handler[T any] func(name string, payload T)

// Message is the typed event published on the underlying ebu bus.
type Message[T any] struct {
	Name    string
	Payload T
}

type subscription struct {
	name   string
	active atomic.Bool
}

// Bus dispatches payloads of type T to handlers keyed by event name.
type Bus[T any] struct {
	bus *eventbus.EventBus

	mu   sync.Mutex
	subs map[*subscription]struct{}
}

// New returns an empty bus.
func New[T any]() *Bus[T] {
	return &Bus[T]{
		bus:  eventbus.New(),
		subs: make(map[*subscription]struct{}),
	}
}

// Subscribe registers fn for the named event and returns a function that
// removes it. Calling the returned function more than once is harmless.
// A removed handler stays registered on the ebu bus but no longer runs.
func (b *Bus[T]) Subscribe(name string, fn Handler[T]) func() {
	sub := &subscription{name: name}
	sub.active.Store(true)

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	eventbus.Subscribe(b.bus, func(msg Message[T]) {
		if !sub.active.Load() {
			return
		}
		if name == Wildcard || name == msg.Name {
			fn(msg.Name, msg.Payload)
		}
	})

	return func() {
		if !sub.active.CompareAndSwap(true, false) {
			return
		}
		b.mu.Lock()
		delete(b.subs, sub)
		b.mu.Unlock()
	}
}

// SubscribeAll registers fn for every event emitted on the bus.
func (b *Bus[T]) SubscribeAll(fn Handler[T]) func() {
	return b.Subscribe(Wildcard, fn)
}

// Emit publishes payload under name. Handlers run in subscription order on the
// calling goroutine, and Emit returns once all of them returned.
func (b *Bus[T]) Emit(name string, payload T) {
	eventbus.Publish(b.bus, Message[T]{Name: name, Payload: payload})
}

// Count returns the number of handlers that an emit of name would reach.
func (b *Bus[T]) Count(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for sub := range b.subs {
		if sub.name == Wildcard || sub.name == name {
			n++
		}
	}
	return n
}
