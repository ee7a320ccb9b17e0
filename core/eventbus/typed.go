package eventbus

import "orderdesk/core/event"

// CollectionHandler handles a typed collection change.
type CollectionHandler[T any] func(c event.Collection[T]) error

// OnCollection registers a typed handler for one operation on an entity collection.
// A payload whose record is not a T is reported as a handler failure wrapping event.ErrPayloadType.
func OnCollection[T any](bus EventBus, op event.Operation, entity string, fn CollectionHandler[T]) string {
	return bus.On(event.CollectionName(op, entity), adaptCollection(fn))
}

// ScopeCollection is OnCollection for a scope.
func ScopeCollection[T any](scope *Scope, op event.Operation, entity string, fn CollectionHandler[T]) (string, error) {
	return scope.On(event.CollectionName(op, entity), adaptCollection(fn))
}

// EmitCollection dispatches a typed collection change.
func EmitCollection[T any](bus EventBus, c event.Collection[T]) error {
	return bus.Trigger(c.Name(), c.Payload())
}

func adaptCollection[T any](fn CollectionHandler[T]) Handler {
	if fn == nil {
		return nil
	}
	return func(p *event.Payload) error {
		c, err := event.CollectionFromPayload[T](p)
		if err != nil {
			return err
		}
		return fn(c)
	}
}
