package order

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderdesk/core/event"
	"orderdesk/core/eventbus"
)

// memoryRepo is an in-memory Repository for tests.
type memoryRepo struct {
	orders map[string]*Order
	nextID int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{orders: make(map[string]*Order)}
}

func (r *memoryRepo) FindByID(ctx context.Context, id string) (*Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	return o.Clone(), nil
}

func (r *memoryRepo) FindAll(ctx context.Context) ([]*Order, error) {
	orders := make([]*Order, 0, len(r.orders))
	for _, o := range r.orders {
		orders = append(orders, o.Clone())
	}
	return orders, nil
}

func (r *memoryRepo) FindByUserID(ctx context.Context, userID string) ([]*Order, error) {
	var orders []*Order
	for _, o := range r.orders {
		if o.UserID == userID {
			orders = append(orders, o.Clone())
		}
	}
	return orders, nil
}

func (r *memoryRepo) Insert(ctx context.Context, o *Order) error {
	r.nextID++
	o.ID = fmt.Sprintf("o%d", r.nextID)
	r.orders[o.ID] = o.Clone()
	return nil
}

func (r *memoryRepo) Update(ctx context.Context, o *Order) error {
	if _, ok := r.orders[o.ID]; !ok {
		return ErrOrderNotFound
	}
	r.orders[o.ID] = o.Clone()
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.orders[id]; !ok {
		return ErrOrderNotFound
	}
	delete(r.orders, id)
	return nil
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestService() (*Service, *memoryRepo, eventbus.EventBus) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := eventbus.New(eventbus.WithLogger(logger))
	repo := newMemoryRepo()
	svc := NewService(&ServiceConfig{Repository: repo, EventBus: bus, Logger: logger})
	svc.now = func() time.Time { return fixedNow }
	return svc, repo, bus
}

func captureOrderEvents(bus eventbus.EventBus, op event.Operation) *[]event.Collection[*Order] {
	var got []event.Collection[*Order]
	eventbus.OnCollection(bus, op, EntityName, func(c event.Collection[*Order]) error {
		got = append(got, c)
		return nil
	})
	return &got
}

func sampleOrder(userID string) *Order {
	return &Order{
		UserID: userID,
		Items:  []Item{{SKU: "SKU-1", Quantity: 2, UnitPriceCents: 500}},
	}
}

func TestNewNumber(t *testing.T) {
	n := NewNumber()
	assert.Regexp(t, regexp.MustCompile(`^ORD-[0-9A-F]{8}$`), n)
	assert.NotEqual(t, n, NewNumber())
}

func TestService_CreateOrder(t *testing.T) {
	svc, _, bus := newTestService()
	added := captureOrderEvents(bus, event.OpAdd)

	o := sampleOrder("u1")
	require.NoError(t, svc.CreateOrder(context.Background(), o))

	assert.Equal(t, "o1", o.ID)
	assert.Equal(t, StatusPending, o.Status)
	assert.NotEmpty(t, o.Number)
	assert.Equal(t, fixedNow, o.CreatedAt)
	assert.Equal(t, fixedNow, o.UpdatedAt)

	require.Len(t, *added, 1)
	got := (*added)[0]
	assert.Equal(t, "collection:add:order", got.Name())
	assert.Equal(t, "o1", got.Record.ID)
	assert.Equal(t, int64(1000), got.Record.TotalCents())
	assert.NoError(t, got.Err)
}

func TestService_CreateOrderInvalid(t *testing.T) {
	svc, repo, bus := newTestService()
	added := captureOrderEvents(bus, event.OpAdd)

	err := svc.CreateOrder(context.Background(), &Order{UserID: "u1"})
	assert.ErrorIs(t, err, ErrInvalidOrder)
	assert.Empty(t, repo.orders)

	require.Len(t, *added, 1)
	assert.ErrorIs(t, (*added)[0].Err, ErrInvalidOrder)
}

func TestService_UpdateStatus(t *testing.T) {
	svc, _, bus := newTestService()
	edited := captureOrderEvents(bus, event.OpEdit)

	o := sampleOrder("u1")
	require.NoError(t, svc.CreateOrder(context.Background(), o))

	updated, err := svc.UpdateStatus(context.Background(), o.ID, StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, updated.Status)

	_, err = svc.UpdateStatus(context.Background(), o.ID, StatusPending)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	_, err = svc.UpdateStatus(context.Background(), "missing", StatusPaid)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	require.Len(t, *edited, 3)
	assert.NoError(t, (*edited)[0].Err)
	assert.Equal(t, StatusPaid, (*edited)[0].Record.Status)
	assert.ErrorIs(t, (*edited)[1].Err, ErrInvalidStatusTransition)
	assert.ErrorIs(t, (*edited)[2].Err, ErrOrderNotFound)
	assert.Equal(t, "missing", (*edited)[2].PrimaryKey)

	stored, err := svc.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, stored.Status)
}

func TestService_DeleteOrder(t *testing.T) {
	svc, _, bus := newTestService()
	deleted := captureOrderEvents(bus, event.OpDelete)

	o := sampleOrder("u1")
	require.NoError(t, svc.CreateOrder(context.Background(), o))
	require.NoError(t, svc.DeleteOrder(context.Background(), o.ID))

	assert.ErrorIs(t, svc.DeleteOrder(context.Background(), o.ID), ErrOrderNotFound)

	require.Len(t, *deleted, 2)
	assert.Equal(t, o.ID, (*deleted)[0].PrimaryKey)
	assert.Equal(t, o.Number, (*deleted)[0].Record.Number)
	assert.ErrorIs(t, (*deleted)[1].Err, ErrOrderNotFound)
}

func TestService_DeleteOrdersForUser(t *testing.T) {
	svc, repo, bus := newTestService()
	deleted := captureOrderEvents(bus, event.OpDelete)

	for _, userID := range []string{"u1", "u1", "u2"} {
		require.NoError(t, svc.CreateOrder(context.Background(), sampleOrder(userID)))
	}

	n, err := svc.DeleteOrdersForUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, *deleted, 2)
	assert.Len(t, repo.orders, 1)
}

func TestService_ListOrdersNewestFirst(t *testing.T) {
	svc, _, _ := newTestService()

	base := fixedNow
	for i, userID := range []string{"u1", "u2", "u1"} {
		o := sampleOrder(userID)
		o.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, svc.CreateOrder(context.Background(), o))
	}

	orders, err := svc.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, []string{"o3", "o2", "o1"}, []string{orders[0].ID, orders[1].ID, orders[2].ID})

	mine, err := svc.ListOrdersForUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "o3", mine[0].ID)
}
