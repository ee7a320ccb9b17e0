package event

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPayloadType is returned when a payload does not carry the expected record type.
var ErrPayloadType = errors.New("payload record has unexpected type")

// collectionPrefix is the first segment of every collection event name.
const collectionPrefix = "collection"

// Operation is a data-layer change kind.
type Operation string

const (
	OpAdd    Operation = "add"
	OpEdit   Operation = "edit"
	OpDelete Operation = "delete"
)

// String returns the operation name.
func (o Operation) String() string {
	return string(o)
}

// Valid reports whether o is one of the known operations.
func (o Operation) Valid() bool {
	switch o {
	case OpAdd, OpEdit, OpDelete:
		return true
	}
	return false
}

// Operations returns every known operation in emit order.
func Operations() []Operation {
	return []Operation{OpAdd, OpEdit, OpDelete}
}

// CollectionName builds the event name for a change to an entity collection,
// e.g. "collection:add:order".
func CollectionName(op Operation, entity string) string {
	return collectionPrefix + ":" + string(op) + ":" + strings.ToLower(entity)
}

// ParseCollectionName splits a collection event name into its operation and entity.
func ParseCollectionName(name string) (Operation, string, bool) {
	parts := strings.Split(name, ":")
	if len(parts) != 3 || parts[0] != collectionPrefix || parts[2] == "" {
		return "", "", false
	}
	op := Operation(parts[1])
	if !op.Valid() {
		return "", "", false
	}
	return op, parts[2], true
}

// Collection is a typed change event for an entity collection.
type Collection[T any] struct {
	Op         Operation
	Entity     string
	Record     T
	PrimaryKey string
	Err        error

	// Foundation references the emitting service; opaque to listeners.
	Foundation any
}

// Name returns the event name this change is dispatched under.
func (c Collection[T]) Name() string {
	return CollectionName(c.Op, c.Entity)
}

// Payload converts the typed event into a bus payload.
func (c Collection[T]) Payload() *Payload {
	return &Payload{
		Data:       c.Record,
		Error:      c.Err,
		PrimaryKey: c.PrimaryKey,
		Foundation: c.Foundation,
	}
}

// CollectionFromPayload recovers a typed collection event from a dispatched payload.
// A payload without a record (for example a failed delete) yields the zero record.
func CollectionFromPayload[T any](p *Payload) (Collection[T], error) {
	var c Collection[T]
	if p == nil {
		return c, fmt.Errorf("%w: nil payload", ErrPayloadType)
	}

	op, entity, ok := ParseCollectionName(p.EventName)
	if !ok {
		return c, fmt.Errorf("not a collection event: %q", p.EventName)
	}
	c.Op = op
	c.Entity = entity
	c.PrimaryKey = p.PrimaryKey
	c.Err = p.Error
	c.Foundation = p.Foundation

	if p.Data == nil {
		return c, nil
	}
	rec, ok := p.Data.(T)
	if !ok {
		return c, fmt.Errorf("%w: got %T, want %T", ErrPayloadType, p.Data, c.Record)
	}
	c.Record = rec
	return c, nil
}
