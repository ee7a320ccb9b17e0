// Package eventbus provides the in-process mediator between the data layer and UI components.
//
// Listeners are registered under an event name and receive an opaque id. Trigger
// invokes every listener registered under that name synchronously, in registration
// order, in the calling goroutine.
package eventbus

import (
	"log/slog"

	"orderdesk/core/event"
)

// EventBus is the interface for the event bus.
type EventBus interface {
	// On registers handler under name and returns the subscription id.
	// The name is coerced with event.NameOf. On never fails and does not validate handler.
	On(name any, handler Handler) string

	// Trigger dispatches payload to every handler registered under name.
	// A nil payload is replaced by an empty one. The same payload instance is
	// passed to every handler after its EventName field is stamped.
	// Handler failures do not stop delivery; they are returned combined.
	Trigger(name any, payload *event.Payload) error

	// Destroy removes every subscription with the given id.
	// Returns false if nothing was removed.
	Destroy(id string) bool

	// StopListenTo is an alias for Destroy.
	StopListenTo(id string) bool

	// Has reports whether id is currently registered.
	Has(id string) bool

	// Count returns the number of registered subscriptions.
	Count() int

	// CountFor returns the number of subscriptions registered under name.
	CountFor(name any) int
}

// Handler handles a dispatched payload.
type Handler func(p *event.Payload) error

// ErrorHandler receives every handler failure observed during dispatch.
type ErrorHandler func(err *HandlerError)

// Option configures an EventBus.
type Option func(*options)

type options struct {
	logger       *slog.Logger
	errorHandler ErrorHandler
	failFast     bool
	idGenerator  func() string
}

// WithLogger sets the logger used to report handler failures.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithErrorHandler sets a callback invoked for every handler failure.
func WithErrorHandler(h ErrorHandler) Option {
	return func(o *options) {
		o.errorHandler = h
	}
}

// WithFailFast stops a dispatch at the first failing handler.
// The remaining handlers of that dispatch are not invoked.
func WithFailFast(failFast bool) Option {
	return func(o *options) {
		o.failFast = failFast
	}
}

// WithIDGenerator replaces the subscription id generator.
// Generated ids must be unique for the lifetime of the bus.
func WithIDGenerator(gen func() string) Option {
	return func(o *options) {
		if gen != nil {
			o.idGenerator = gen
		}
	}
}
