package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderdesk/core/state"
)

func TestSubscription_Close(t *testing.T) {
	bus := newTestBus()
	rec := &recorder{}

	sub := Listen(bus, "x", rec.handler("x"))
	assert.Equal(t, "x", sub.Name())
	assert.NotEmpty(t, sub.ID())
	assert.Equal(t, state.StateRegistered, sub.State())

	assert.True(t, sub.Close())
	assert.False(t, sub.Close(), "close is idempotent")
	assert.Equal(t, state.StateRemoved, sub.State())

	require.NoError(t, bus.Trigger("x", nil))
	assert.Empty(t, rec.got())
}

func TestSubscription_DestroyedThroughBus(t *testing.T) {
	bus := newTestBus()

	sub := Listen(bus, 7, nil)
	assert.Equal(t, "7", sub.Name())

	require.True(t, bus.Destroy(sub.ID()))
	assert.Equal(t, state.StateRemoved, sub.State())
	assert.False(t, sub.Close())
}

func TestScope_CloseReleasesAll(t *testing.T) {
	bus := newTestBus()
	rec := &recorder{}
	outside := bus.On("a", rec.handler("outside"))

	scope := NewScope(bus)
	for _, name := range []string{"a", "b", "c"} {
		_, err := scope.On(name, rec.handler("scoped-"+name))
		require.NoError(t, err)
	}
	assert.Equal(t, 3, scope.Len())
	assert.Equal(t, 4, bus.Count())
	assert.Same(t, bus, scope.Bus())

	assert.Equal(t, 3, scope.Close())
	assert.True(t, scope.Closed())
	assert.Equal(t, 0, scope.Len())
	assert.Equal(t, 0, scope.Close())

	assert.Equal(t, 1, bus.Count())
	assert.True(t, bus.Has(outside))

	require.NoError(t, bus.Trigger("a", nil))
	assert.Equal(t, []string{"outside"}, rec.got())
}

func TestScope_CloseSkipsAlreadyRemoved(t *testing.T) {
	bus := newTestBus()
	scope := NewScope(bus)

	id, err := scope.On("x", nil)
	require.NoError(t, err)
	_, err = scope.On("y", nil)
	require.NoError(t, err)

	require.True(t, bus.Destroy(id))
	assert.Equal(t, 1, scope.Close())
}

func TestScope_RejectsAfterClose(t *testing.T) {
	bus := newTestBus()
	scope := NewScope(bus)
	scope.Close()

	id, err := scope.On("x", nil)
	assert.ErrorIs(t, err, ErrScopeClosed)
	assert.Empty(t, id)
	assert.Equal(t, 0, bus.Count())
}
