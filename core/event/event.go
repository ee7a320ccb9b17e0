// Package event defines event names and the payload delivered to bus listeners.
// Events are emitted by the data layer and consumed by the presentation layer.
package event

import "fmt"

// Payload is the object handed to every listener matching an event name.
// A single Payload instance is shared by all listeners of one dispatch.
type Payload struct {
	// EventName is stamped by the bus with the name being dispatched.
	EventName string

	// Data is the affected record.
	Data any

	// Error is set by the emitter when the originating operation failed.
	Error error

	// PrimaryKey identifies the changed record for edit and delete events.
	PrimaryKey string

	// Foundation and Document reference the originating context.
	// They are opaque to the bus.
	Foundation any
	Document   any

	// Fields carries free-form values that have no dedicated field.
	Fields map[string]any
}

// NewPayload creates a payload carrying the given record.
func NewPayload(data any) *Payload {
	return &Payload{Data: data}
}

// Failed reports whether the emitter recorded an error on the payload.
func (p *Payload) Failed() bool {
	return p != nil && p.Error != nil
}

// Set stores a free-form value on the payload.
func (p *Payload) Set(key string, value any) {
	if p.Fields == nil {
		p.Fields = make(map[string]any)
	}
	p.Fields[key] = value
}

// Get returns a free-form value previously stored with Set.
func (p *Payload) Get(key string) (any, bool) {
	if p == nil || p.Fields == nil {
		return nil, false
	}
	v, ok := p.Fields[key]
	return v, ok
}

// NameOf coerces any value to the string form used as an event name.
// Stringers are formatted through fmt, so a nil pointer whose String method
// cannot handle it yields "<nil>" instead of panicking.
func NameOf(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case nil:
		return ""
	default:
		return fmt.Sprint(n)
	}
}
