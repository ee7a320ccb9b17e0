// Package presentation provides the UI-facing models with event bridging to the data layer.
package presentation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"orderdesk/core/event"
	"orderdesk/core/eventbus"
	"orderdesk/domain/order"
	"orderdesk/domain/user"
)

// UIEventBridge bridges UI intents to the domain services and routes change events back to UI callbacks.
// It provides a clean separation between UI and business logic.
type UIEventBridge struct {
	orders *order.Service
	users  *user.Service
	bus    eventbus.EventBus
	logger *slog.Logger

	// UI callbacks - set by UI components
	callbacks   *UICallbacks
	callbacksMu sync.RWMutex

	// Subscription management
	scope     *eventbus.Scope
	ownsScope bool
}

// UICallbacks contains callbacks for UI updates.
type UICallbacks struct {
	OnOrderAdded   func(o *order.Order)
	OnOrderEdited  func(o *order.Order)
	OnOrderDeleted func(orderID string)

	OnUserAdded   func(u *user.User)
	OnUserEdited  func(u *user.User)
	OnUserDeleted func(userID string)

	// OnOperationFailed is called for every change event that carries an error.
	OnOperationFailed func(entity string, op event.Operation, key string, err error)
}

// BridgeConfig holds configuration for UIEventBridge.
type BridgeConfig struct {
	OrderService *order.Service
	UserService  *user.Service
	EventBus     eventbus.EventBus
	Logger       *slog.Logger

	// Scope, when set, receives the bridge's subscriptions and is closed by its owner.
	// Otherwise the bridge creates a scope on EventBus and Close releases it.
	Scope *eventbus.Scope
}

// NewUIEventBridge creates a new UI event bridge subscribed to order and user changes.
func NewUIEventBridge(cfg *BridgeConfig) (*UIEventBridge, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	b := &UIEventBridge{
		orders:    cfg.OrderService,
		users:     cfg.UserService,
		bus:       cfg.EventBus,
		logger:    cfg.Logger,
		callbacks: &UICallbacks{},
	}

	switch {
	case cfg.Scope != nil:
		b.scope = cfg.Scope
	case b.bus != nil:
		b.scope = eventbus.NewScope(b.bus)
		b.ownsScope = true
	default:
		return b, nil
	}

	if err := b.subscribe(); err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to subscribe UI bridge: %w", err)
	}
	return b, nil
}

func (b *UIEventBridge) subscribe() error {
	for _, op := range event.Operations() {
		if _, err := eventbus.ScopeCollection(b.scope, op, order.EntityName, b.handleOrder); err != nil {
			return err
		}
		if _, err := eventbus.ScopeCollection(b.scope, op, user.EntityName, b.handleUser); err != nil {
			return err
		}
	}
	return nil
}

// SetCallbacks sets the UI callbacks.
func (b *UIEventBridge) SetCallbacks(callbacks *UICallbacks) {
	b.callbacksMu.Lock()
	defer b.callbacksMu.Unlock()
	b.callbacks = callbacks
}

// Close unsubscribes from the event bus. A caller-provided scope is left to its owner.
func (b *UIEventBridge) Close() {
	if b.scope != nil && b.ownsScope {
		b.scope.Close()
	}
}

// Command dispatching methods

// PlaceOrder creates a new order for a user.
func (b *UIEventBridge) PlaceOrder(ctx context.Context, userID string, items []order.Item) (*order.Order, error) {
	o := &order.Order{UserID: userID, Items: items}
	if err := b.orders.CreateOrder(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// MarkPaid moves an order to the paid status.
func (b *UIEventBridge) MarkPaid(ctx context.Context, orderID string) error {
	_, err := b.orders.UpdateStatus(ctx, orderID, order.StatusPaid)
	return err
}

// MarkShipped moves an order to the shipped status.
func (b *UIEventBridge) MarkShipped(ctx context.Context, orderID string) error {
	_, err := b.orders.UpdateStatus(ctx, orderID, order.StatusShipped)
	return err
}

// CancelOrder moves an order to the cancelled status.
func (b *UIEventBridge) CancelOrder(ctx context.Context, orderID string) error {
	_, err := b.orders.UpdateStatus(ctx, orderID, order.StatusCancelled)
	return err
}

// DeleteOrder removes an order.
func (b *UIEventBridge) DeleteOrder(ctx context.Context, orderID string) error {
	return b.orders.DeleteOrder(ctx, orderID)
}

// RegisterUser creates a new user.
func (b *UIEventBridge) RegisterUser(ctx context.Context, name, email string, role user.Role) (*user.User, error) {
	u := &user.User{Name: name, Email: email, Role: role}
	if err := b.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// RenameUser changes the display name of a user.
func (b *UIEventBridge) RenameUser(ctx context.Context, userID, name string) error {
	u, err := b.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	u.Name = name
	return b.users.UpdateUser(ctx, u)
}

// RemoveUser deletes a user and the user's orders.
func (b *UIEventBridge) RemoveUser(ctx context.Context, userID string) error {
	return b.users.DeleteUser(ctx, userID)
}

// Event handling

func (b *UIEventBridge) currentCallbacks() *UICallbacks {
	b.callbacksMu.RLock()
	defer b.callbacksMu.RUnlock()
	return b.callbacks
}

func (b *UIEventBridge) handleOrder(c event.Collection[*order.Order]) error {
	callbacks := b.currentCallbacks()
	if callbacks == nil {
		return nil
	}

	if c.Err != nil {
		b.operationFailed(callbacks, c.Entity, c.Op, c.PrimaryKey, c.Err)
		return nil
	}

	switch c.Op {
	case event.OpAdd:
		if callbacks.OnOrderAdded != nil {
			callbacks.OnOrderAdded(c.Record)
		}
	case event.OpEdit:
		if callbacks.OnOrderEdited != nil {
			callbacks.OnOrderEdited(c.Record)
		}
	case event.OpDelete:
		if callbacks.OnOrderDeleted != nil {
			callbacks.OnOrderDeleted(c.PrimaryKey)
		}
	}
	return nil
}

func (b *UIEventBridge) handleUser(c event.Collection[*user.User]) error {
	callbacks := b.currentCallbacks()
	if callbacks == nil {
		return nil
	}

	if c.Err != nil {
		b.operationFailed(callbacks, c.Entity, c.Op, c.PrimaryKey, c.Err)
		return nil
	}

	switch c.Op {
	case event.OpAdd:
		if callbacks.OnUserAdded != nil {
			callbacks.OnUserAdded(c.Record)
		}
	case event.OpEdit:
		if callbacks.OnUserEdited != nil {
			callbacks.OnUserEdited(c.Record)
		}
	case event.OpDelete:
		if callbacks.OnUserDeleted != nil {
			callbacks.OnUserDeleted(c.PrimaryKey)
		}
	}
	return nil
}

func (b *UIEventBridge) operationFailed(callbacks *UICallbacks, entity string, op event.Operation, key string, err error) {
	b.logger.Warn("Operation failed", "entity", entity, "op", op, "key", key, "error", err)
	if callbacks.OnOperationFailed != nil {
		callbacks.OnOperationFailed(entity, op, key, err)
	}
}
