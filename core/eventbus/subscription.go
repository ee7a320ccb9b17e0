package eventbus

import (
	"sync"
	"sync/atomic"

	"orderdesk/core/event"
	"orderdesk/core/state"
)

// Subscription is an owned handle for a single listener.
// Close releases the listener; it is safe to call more than once.
type Subscription struct {
	bus    EventBus
	id     string
	name   string
	closed atomic.Bool
}

// Listen registers handler under name and returns an owned handle.
func Listen(bus EventBus, name any, handler Handler) *Subscription {
	return &Subscription{
		bus:  bus,
		id:   bus.On(name, handler),
		name: event.NameOf(name),
	}
}

// ID returns the subscription id.
func (s *Subscription) ID() string {
	return s.id
}

// Name returns the coerced event name the subscription matches.
func (s *Subscription) Name() string {
	return s.name
}

// State returns the current lifecycle state.
// A subscription destroyed directly through the bus also reports StateRemoved.
func (s *Subscription) State() state.SubscriptionState {
	if s.closed.Load() || !s.bus.Has(s.id) {
		return state.StateRemoved
	}
	return state.StateRegistered
}

// Close removes the listener. It returns true only for the call that removed it.
func (s *Subscription) Close() bool {
	if s.closed.Swap(true) {
		return false
	}
	return s.bus.Destroy(s.id)
}

// Scope groups the subscriptions of one owner, such as a UI component,
// so they are all released together when the owner is torn down.
//
//	scope := eventbus.NewScope(bus)
//	defer scope.Close()
type Scope struct {
	bus    EventBus
	mu     sync.Mutex
	ids    []string
	closed bool
}

// NewScope creates an empty scope over bus.
func NewScope(bus EventBus) *Scope {
	return &Scope{bus: bus}
}

// Bus returns the bus the scope registers on.
func (s *Scope) Bus() EventBus {
	return s.bus
}

// On registers handler under name and records the id for release by Close.
func (s *Scope) On(name any, handler Handler) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrScopeClosed
	}

	id := s.bus.On(name, handler)
	s.ids = append(s.ids, id)
	return id, nil
}

// Len returns the number of subscriptions owned by the scope.
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// Closed reports whether Close has been called.
func (s *Scope) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close destroys every subscription the scope owns and returns how many were still registered.
// Further calls return 0.
func (s *Scope) Close() int {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0
	}
	s.closed = true
	ids := s.ids
	s.ids = nil
	s.mu.Unlock()

	removed := 0
	for _, id := range ids {
		if s.bus.Destroy(id) {
			removed++
		}
	}
	return removed
}
