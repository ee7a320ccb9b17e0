package presentation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderdesk/core/event"
	"orderdesk/core/eventbus"
	"orderdesk/domain/order"
	"orderdesk/domain/user"
	"orderdesk/infrastructure/repository"
)

type testApp struct {
	bus    eventbus.EventBus
	orders *order.Service
	users  *user.Service
}

func newTestApp() *testApp {
	logger := discardLogger()
	bus := eventbus.New(eventbus.WithLogger(logger))
	orders := order.NewService(&order.ServiceConfig{
		Repository: repository.NewMemoryOrderRepository(),
		EventBus:   bus,
		Logger:     logger,
	})
	users := user.NewService(&user.ServiceConfig{
		Repository: repository.NewMemoryUserRepository(),
		EventBus:   bus,
		Orders:     orders,
		Logger:     logger,
	})
	return &testApp{bus: bus, orders: orders, users: users}
}

func (a *testApp) bridge(t *testing.T) *UIEventBridge {
	t.Helper()
	b, err := NewUIEventBridge(&BridgeConfig{
		OrderService: a.orders,
		UserService:  a.users,
		EventBus:     a.bus,
		Logger:       discardLogger(),
	})
	require.NoError(t, err)
	return b
}

func TestUIEventBridge_Callbacks(t *testing.T) {
	app := newTestApp()
	bridge := app.bridge(t)
	defer bridge.Close()

	var added []*order.Order
	var edited []order.Status
	var deleted []string
	var usersAdded []string
	bridge.SetCallbacks(&UICallbacks{
		OnOrderAdded:   func(o *order.Order) { added = append(added, o) },
		OnOrderEdited:  func(o *order.Order) { edited = append(edited, o.Status) },
		OnOrderDeleted: func(id string) { deleted = append(deleted, id) },
		OnUserAdded:    func(u *user.User) { usersAdded = append(usersAdded, u.Name) },
	})

	ctx := context.Background()
	u, err := bridge.RegisterUser(ctx, "Ada", "ada@example.com", user.RoleCustomer)
	require.NoError(t, err)

	o, err := bridge.PlaceOrder(ctx, u.ID, []order.Item{{SKU: "A", Quantity: 1, UnitPriceCents: 100}})
	require.NoError(t, err)
	require.NoError(t, bridge.MarkPaid(ctx, o.ID))
	require.NoError(t, bridge.MarkShipped(ctx, o.ID))
	require.NoError(t, bridge.DeleteOrder(ctx, o.ID))

	assert.Equal(t, []string{"Ada"}, usersAdded)
	require.Len(t, added, 1)
	assert.Equal(t, o.ID, added[0].ID)
	assert.Equal(t, []order.Status{order.StatusPaid, order.StatusShipped}, edited)
	assert.Equal(t, []string{o.ID}, deleted)
}

func TestUIEventBridge_OperationFailed(t *testing.T) {
	app := newTestApp()
	bridge := app.bridge(t)
	defer bridge.Close()

	type failure struct {
		entity string
		op     event.Operation
		key    string
	}
	var failures []failure
	bridge.SetCallbacks(&UICallbacks{
		OnOperationFailed: func(entity string, op event.Operation, key string, err error) {
			failures = append(failures, failure{entity, op, key})
		},
	})

	ctx := context.Background()
	_, err := bridge.RegisterUser(ctx, "", "", "")
	assert.ErrorIs(t, err, user.ErrInvalidUser)

	assert.ErrorIs(t, bridge.CancelOrder(ctx, "missing"), order.ErrOrderNotFound)
	assert.ErrorIs(t, bridge.RenameUser(ctx, "missing", "x"), user.ErrUserNotFound)

	assert.Equal(t, []failure{
		{"user", event.OpAdd, ""},
		{"order", event.OpEdit, "missing"},
	}, failures)
}

func TestUIEventBridge_RemoveUserCascades(t *testing.T) {
	app := newTestApp()
	bridge := app.bridge(t)
	defer bridge.Close()

	var deletedOrders, deletedUsers []string
	var renamed []string
	bridge.SetCallbacks(&UICallbacks{
		OnOrderDeleted: func(id string) { deletedOrders = append(deletedOrders, id) },
		OnUserDeleted:  func(id string) { deletedUsers = append(deletedUsers, id) },
		OnUserEdited:   func(u *user.User) { renamed = append(renamed, u.Name) },
	})

	ctx := context.Background()
	u, err := bridge.RegisterUser(ctx, "Ada", "", user.RoleStaff)
	require.NoError(t, err)
	require.NoError(t, bridge.RenameUser(ctx, u.ID, "Ada L."))

	for i := 0; i < 2; i++ {
		_, err := bridge.PlaceOrder(ctx, u.ID, []order.Item{{SKU: "A", Quantity: 1}})
		require.NoError(t, err)
	}

	require.NoError(t, bridge.RemoveUser(ctx, u.ID))
	assert.Len(t, deletedOrders, 2)
	assert.Equal(t, []string{u.ID}, deletedUsers)
	assert.Equal(t, []string{"Ada L."}, renamed)
}

func TestUIEventBridge_CloseReleasesListeners(t *testing.T) {
	app := newTestApp()
	bridge := app.bridge(t)
	assert.Equal(t, 6, app.bus.Count())

	bridge.Close()
	assert.Equal(t, 0, app.bus.Count())

	called := false
	bridge.SetCallbacks(&UICallbacks{OnUserAdded: func(*user.User) { called = true }})
	_, err := bridge.RegisterUser(context.Background(), "Ada", "", "")
	require.NoError(t, err)
	assert.False(t, called)
}

func TestUIEventBridge_ClosedScope(t *testing.T) {
	app := newTestApp()
	scope := eventbus.NewScope(app.bus)
	scope.Close()

	b, err := NewUIEventBridge(&BridgeConfig{
		OrderService: app.orders,
		UserService:  app.users,
		EventBus:     app.bus,
		Logger:       discardLogger(),
		Scope:        scope,
	})
	assert.ErrorIs(t, err, eventbus.ErrScopeClosed)
	assert.Nil(t, b)
	assert.Equal(t, 0, app.bus.Count())
}

func TestUIEventBridge_SharedScope(t *testing.T) {
	app := newTestApp()
	scope := eventbus.NewScope(app.bus)

	b, err := NewUIEventBridge(&BridgeConfig{
		OrderService: app.orders,
		UserService:  app.users,
		EventBus:     app.bus,
		Logger:       discardLogger(),
		Scope:        scope,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, scope.Len())

	b.Close()
	assert.Equal(t, 6, app.bus.Count(), "a shared scope is released by its owner")
	assert.Equal(t, 6, scope.Close())
	assert.Equal(t, 0, app.bus.Count())
}
