package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ObserverFunc receives every event regardless of its name.
type ObserverFunc func(context.Context, Event) error

type subscription struct {
	id       int
	handler  Handler
	observer ObserverFunc
}

// Bus keeps the handlers events are delivered to.
type Bus struct {
	mu        sync.RWMutex
	handlers  map[string][]subscription
	observers []subscription
	nextID    int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]subscription)}
}

// Subscribe registers handlers and returns a function removing them.
func (b *Bus) Subscribe(handlers ...Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	ids := make([]int, 0, len(handlers))
	for _, h := range handlers {
		b.nextID++
		name := h.EventName()
		b.handlers[name] = append(b.handlers[name], subscription{id: b.nextID, handler: h})
		ids = append(ids, b.nextID)
	}
	return func() { b.remove(ids...) }
}

// SubscribeAll registers fn for every event and returns a function removing it.
func (b *Bus) SubscribeAll(fn ObserverFunc) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.observers = append(b.observers, subscription{id: b.nextID, observer: fn})
	id := b.nextID
	return func() { b.remove(id) }
}

func (b *Bus) remove(ids ...int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	drop := func(list []subscription) []subscription {
		out := list[:0]
		for _, s := range list {
			keep := true
			for _, id := range ids {
				if s.id == id {
					keep = false
					break
				}
			}
			if keep {
				out = append(out, s)
			}
		}
		return out
	}
	for name, list := range b.handlers {
		b.handlers[name] = drop(list)
	}
	b.observers = drop(b.observers)
}

// Deliver calls the handlers of ev.Name and then every observer in the
// caller's goroutine. Panics are recovered and errors are joined.
func (b *Bus) Deliver(ctx context.Context, ev Event) error {
	b.mu.RLock()
	subs := make([]subscription, 0, len(b.handlers[ev.Name])+len(b.observers))
	subs = append(subs, b.handlers[ev.Name]...)
	subs = append(subs, b.observers...)
	b.mu.RUnlock()

	ctx = WithEventMeta(ctx, ev)
	var errs []error
	for _, s := range subs {
		if err := safeCall(ctx, s, ev); err != nil {
			errs = append(errs, fmt.Errorf("handler of %s failed: %w", ev.Name, err))
		}
	}
	return errors.Join(errs...)
}

func safeCall(ctx context.Context, s subscription, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	if s.observer != nil {
		return s.observer(ctx, ev)
	}
	return s.handler.Handle(ctx, ev.Payload)
}
