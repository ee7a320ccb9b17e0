package eventbus

import (
	"errors"
	"fmt"
)

// ErrScopeClosed is returned when registering through a scope that was already closed.
var ErrScopeClosed = errors.New("subscription scope is closed")

// HandlerError describes a failure of a single handler during dispatch.
type HandlerError struct {
	EventName      string
	SubscriptionID string

	// Err is the error returned by the handler, or the panic value if it was an error.
	Err error

	// Panic holds the recovered value if the handler panicked.
	Panic any
	Stack []byte
}

func (e *HandlerError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("handler %s for %q panicked: %v", e.SubscriptionID, e.EventName, e.Panic)
	}
	return fmt.Sprintf("handler %s for %q failed: %v", e.SubscriptionID, e.EventName, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

// Panicked reports whether the handler panicked instead of returning an error.
func (e *HandlerError) Panicked() bool {
	return e.Panic != nil
}
