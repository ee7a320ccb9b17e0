package eventbus

import (
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"orderdesk/core/event"
	"orderdesk/core/state"
)

// subscription represents a single registered listener.
type subscription struct {
	id      string
	name    string
	handler Handler
	state   atomic.Int32
}

func (s *subscription) active() bool {
	return state.SubscriptionState(s.state.Load()).IsActive()
}

// remove moves the subscription to StateRemoved. It fails if the subscription
// was already removed.
func (s *subscription) remove() error {
	from := state.SubscriptionState(s.state.Load())
	if !from.CanTransitionTo(state.StateRemoved) ||
		!s.state.CompareAndSwap(int32(from), int32(state.StateRemoved)) {
		return &state.TransitionError{From: from, To: state.StateRemoved}
	}
	return nil
}

// syncEventBus dispatches synchronously over an ordered registry.
type syncEventBus struct {
	mu            sync.Mutex
	subscriptions []*subscription

	logger       *slog.Logger
	errorHandler ErrorHandler
	failFast     bool
	newID        func() string
}

// New creates a new synchronous EventBus.
func New(opts ...Option) EventBus {
	o := &options{
		idGenerator: uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	return &syncEventBus{
		logger:       o.logger,
		errorHandler: o.errorHandler,
		failFast:     o.failFast,
		newID:        o.idGenerator,
	}
}

// On registers a handler under the coerced name.
func (b *syncEventBus) On(name any, handler Handler) string {
	sub := &subscription{
		id:      b.newID(),
		name:    event.NameOf(name),
		handler: handler,
	}

	b.mu.Lock()
	b.subscriptions = append(b.subscriptions, sub)
	b.mu.Unlock()

	return sub.id
}

// Trigger dispatches the payload to a snapshot of the matching subscriptions.
// Subscriptions added during the dispatch are not invoked by it; subscriptions
// removed before their turn are skipped.
func (b *syncEventBus) Trigger(name any, payload *event.Payload) error {
	eventName := event.NameOf(name)
	if payload == nil {
		payload = &event.Payload{}
	}

	var errs error
	for _, sub := range b.snapshot(eventName) {
		if !sub.active() {
			continue
		}

		payload.EventName = eventName
		if sub.handler == nil {
			continue
		}

		if err := b.invoke(eventName, sub, payload); err != nil {
			b.report(err)
			errs = multierr.Append(errs, err)
			if b.failFast {
				break
			}
		}
	}

	return errs
}

// Destroy removes every subscription whose id matches.
func (b *syncEventBus) Destroy(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	removed := false
	kept := make([]*subscription, 0, len(b.subscriptions))
	for _, sub := range b.subscriptions {
		if sub.id == id {
			if err := sub.remove(); err != nil {
				b.logger.Warn("Removing subscription", "id", id, "error", err)
			}
			removed = true
			continue
		}
		kept = append(kept, sub)
	}

	if removed {
		b.subscriptions = kept
	}
	return removed
}

// StopListenTo is an alias for Destroy.
func (b *syncEventBus) StopListenTo(id string) bool {
	return b.Destroy(id)
}

// Has reports whether id is currently registered.
func (b *syncEventBus) Has(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subscriptions {
		if sub.id == id {
			return true
		}
	}
	return false
}

// Count returns the number of registered subscriptions.
func (b *syncEventBus) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscriptions)
}

// CountFor returns the number of subscriptions registered under name.
func (b *syncEventBus) CountFor(name any) int {
	return len(b.snapshot(event.NameOf(name)))
}

// snapshot copies the subscriptions matching name, in registration order.
// The lock is not held while handlers run, so handlers may re-enter the bus.
func (b *syncEventBus) snapshot(name string) []*subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	matches := make([]*subscription, 0, len(b.subscriptions))
	for _, sub := range b.subscriptions {
		if sub.name == name {
			matches = append(matches, sub)
		}
	}
	return matches
}

// invoke calls a single handler, converting a returned error or a panic into a HandlerError.
func (b *syncEventBus) invoke(eventName string, sub *subscription, payload *event.Payload) (err error) {
	defer func() {
		if r := recover(); r != nil {
			herr := &HandlerError{
				EventName:      eventName,
				SubscriptionID: sub.id,
				Panic:          r,
				Stack:          debug.Stack(),
			}
			if e, ok := r.(error); ok {
				herr.Err = e
			}
			err = herr
		}
	}()

	if herr := sub.handler(payload); herr != nil {
		return &HandlerError{
			EventName:      eventName,
			SubscriptionID: sub.id,
			Err:            herr,
		}
	}
	return nil
}

// report logs a handler failure and forwards it to the configured error handler.
func (b *syncEventBus) report(err error) {
	herr, ok := err.(*HandlerError)
	if !ok {
		return
	}

	if herr.Panicked() {
		b.logger.Error("Event handler panicked",
			"event", herr.EventName,
			"subscription", herr.SubscriptionID,
			"panic", herr.Panic,
			"stack", string(herr.Stack))
	} else {
		b.logger.Error("Event handler failed",
			"event", herr.EventName,
			"subscription", herr.SubscriptionID,
			"error", herr.Err)
	}

	if b.errorHandler != nil {
		b.errorHandler(herr)
	}
}
