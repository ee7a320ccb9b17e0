// Package order defines the Order entity and related types.
package order

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// EntityName is the collection name used in order change events.
const EntityName = "order"

// Common errors for order operations.
var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrInvalidOrder            = errors.New("invalid order")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
)

// Status is the fulfilment state of an order.
type Status string

const (
	// StatusPending is the initial state of a new order.
	StatusPending Status = "pending"
	// StatusPaid indicates payment was received.
	StatusPaid Status = "paid"
	// StatusShipped is terminal; the order left the warehouse.
	StatusShipped Status = "shipped"
	// StatusCancelled is terminal.
	StatusCancelled Status = "cancelled"
)

var validTransitions = map[Status][]Status{
	StatusPending:   {StatusPaid, StatusCancelled},
	StatusPaid:      {StatusShipped, StatusCancelled},
	StatusShipped:   {},
	StatusCancelled: {},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransitionTo checks if moving from s to target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusShipped || s == StatusCancelled
}

// Item is a single order line.
type Item struct {
	SKU            string
	Quantity       int
	UnitPriceCents int64
}

// TotalCents returns the line total.
func (i Item) TotalCents() int64 {
	return int64(i.Quantity) * i.UnitPriceCents
}

// Order represents a customer order.
type Order struct {
	// ID is the unique identifier (MongoDB ObjectID)
	ID string

	// Number is the human-facing order number, e.g. "ORD-1A2B3C4D"
	Number string

	// UserID references the user who placed the order
	UserID string

	Items  []Item
	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TotalCents returns the sum of all line totals.
func (o *Order) TotalCents() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.TotalCents()
	}
	return total
}

// ItemCount returns the total quantity across all lines.
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// Validate checks the fields required to persist an order.
func (o *Order) Validate() error {
	if strings.TrimSpace(o.UserID) == "" {
		return fmt.Errorf("%w: user is required", ErrInvalidOrder)
	}
	if len(o.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrInvalidOrder)
	}
	for i, item := range o.Items {
		if item.SKU == "" {
			return fmt.Errorf("%w: item %d has no SKU", ErrInvalidOrder, i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item %s has quantity %d", ErrInvalidOrder, item.SKU, item.Quantity)
		}
		if item.UnitPriceCents < 0 {
			return fmt.Errorf("%w: item %s has negative price", ErrInvalidOrder, item.SKU)
		}
	}
	if o.Status != "" && !o.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidOrder, o.Status)
	}
	return nil
}

// Clone creates a deep copy of the order.
func (o *Order) Clone() *Order {
	clone := *o
	if len(o.Items) > 0 {
		clone.Items = make([]Item, len(o.Items))
		copy(clone.Items, o.Items)
	}
	return &clone
}
