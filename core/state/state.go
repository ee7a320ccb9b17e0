// Package state defines the subscription lifecycle state machine.
package state

import "fmt"

// SubscriptionState represents the lifecycle state of a bus subscription.
type SubscriptionState int32

const (
	// StateRegistered is the state from the moment a listener is added until it is removed.
	StateRegistered SubscriptionState = iota
	// StateRemoved is terminal; a removed subscription is never invoked again.
	StateRemoved
)

// String returns the string representation of the state.
func (s SubscriptionState) String() string {
	switch s {
	case StateRegistered:
		return "Registered"
	case StateRemoved:
		return "Removed"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// validTransitions defines the allowed state transitions.
var validTransitions = map[SubscriptionState][]SubscriptionState{
	StateRegistered: {StateRemoved},
	StateRemoved:    {},
}

// CanTransitionTo checks if transitioning from the current state to the target state is valid.
func (s SubscriptionState) CanTransitionTo(target SubscriptionState) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible.
func (s SubscriptionState) IsTerminal() bool {
	return s == StateRemoved
}

// IsActive returns true if the subscription still receives events.
func (s SubscriptionState) IsActive() bool {
	return s == StateRegistered
}

// TransitionError represents an invalid state transition attempt.
type TransitionError struct {
	From SubscriptionState
	To   SubscriptionState
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid subscription state transition from %s to %s", e.From, e.To)
}
