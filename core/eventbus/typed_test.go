package eventbus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderdesk/core/event"
)

type testOrder struct {
	ID int
}

func TestOnCollection_TypedDelivery(t *testing.T) {
	bus := newTestBus()

	var got []event.Collection[*testOrder]
	for i := 0; i < 2; i++ {
		OnCollection(bus, event.OpAdd, "Order", func(c event.Collection[*testOrder]) error {
			got = append(got, c)
			return nil
		})
	}

	err := EmitCollection(bus, event.Collection[*testOrder]{
		Op:     event.OpAdd,
		Entity: "Order",
		Record: &testOrder{ID: 7},
	})
	require.NoError(t, err)

	require.Len(t, got, 2)
	for _, c := range got {
		assert.Equal(t, 7, c.Record.ID)
		assert.Equal(t, "collection:add:order", c.Name())
	}
}

func TestOnCollection_UntypedListenerSeesSameEvent(t *testing.T) {
	bus := newTestBus()

	var payload *event.Payload
	bus.On("collection:delete:order", func(p *event.Payload) error {
		payload = p
		return nil
	})

	failure := errors.New("delete failed")
	require.NoError(t, EmitCollection(bus, event.Collection[*testOrder]{
		Op:         event.OpDelete,
		Entity:     "order",
		PrimaryKey: "7",
		Err:        failure,
	}))

	require.NotNil(t, payload)
	assert.Equal(t, "collection:delete:order", payload.EventName)
	assert.Equal(t, "7", payload.PrimaryKey)
	assert.True(t, payload.Failed())
}

func TestOnCollection_PayloadTypeMismatch(t *testing.T) {
	bus := newTestBus()

	called := false
	OnCollection(bus, event.OpEdit, "order", func(c event.Collection[*testOrder]) error {
		called = true
		return nil
	})

	err := bus.Trigger("collection:edit:order", event.NewPayload("not an order"))
	assert.ErrorIs(t, err, event.ErrPayloadType)
	assert.False(t, called)
}

func TestOnCollection_NilHandler(t *testing.T) {
	bus := newTestBus()
	OnCollection[*testOrder](bus, event.OpAdd, "order", nil)

	assert.NoError(t, bus.Trigger("collection:add:order", nil))
}

func TestScopeCollection(t *testing.T) {
	bus := newTestBus()
	scope := NewScope(bus)

	calls := 0
	_, err := ScopeCollection(scope, event.OpAdd, "user", func(c event.Collection[string]) error {
		calls++
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, EmitCollection(bus, event.Collection[string]{Op: event.OpAdd, Entity: "user", Record: "u1"}))
	scope.Close()
	require.NoError(t, EmitCollection(bus, event.Collection[string]{Op: event.OpAdd, Entity: "user", Record: "u2"}))

	assert.Equal(t, 1, calls)
}
