package sigslot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop[T any](context.Context, T) error { return nil }

func TestRegistry_AddRemoveOrder(t *testing.T) {
	r := newRegistry[int](0)

	for i := 0; i < 4; i++ {
		id, err := r.add(Synchronous, noop[int])
		require.NoError(t, err)
		assert.Equal(t, HandlerID(i), id)
	}

	e, ok := r.remove(1)
	require.True(t, ok)
	assert.True(t, e.removed)
	assert.Equal(t, HandlerID(1), e.id)

	_, ok = r.remove(1)
	assert.False(t, ok)

	id, err := r.add(Asynchronous, noop[int])
	require.NoError(t, err)
	assert.Equal(t, HandlerID(4), id)

	assert.Equal(t, []HandlerID{0, 2, 3, 4}, r.ids())
	assert.Equal(t, 4, r.len())
}

func TestRegistry_Limit(t *testing.T) {
	r := newRegistry[int](2)

	_, err := r.add(Synchronous, noop[int])
	require.NoError(t, err)
	_, err = r.add(Synchronous, noop[int])
	require.NoError(t, err)

	id, err := r.add(Synchronous, noop[int])
	assert.ErrorIs(t, err, ErrRegistryFull)
	assert.Equal(t, InvalidHandlerID, id)
	assert.Equal(t, 2, r.len())

	_, ok := r.remove(0)
	require.True(t, ok)

	id, err = r.add(Synchronous, noop[int])
	require.NoError(t, err)
	assert.Equal(t, HandlerID(2), id, "IDs are not reused after removal")
}

func TestRegistry_IDSpaceExhausted(t *testing.T) {
	r := newRegistry[int](0)
	r.nextID = InvalidHandlerID - 1

	id, err := r.add(Synchronous, noop[int])
	require.NoError(t, err)
	assert.Equal(t, InvalidHandlerID-1, id)

	id, err = r.add(Synchronous, noop[int])
	assert.ErrorIs(t, err, ErrRegistryFull)
	assert.Equal(t, InvalidHandlerID, id)
	assert.Equal(t, InvalidHandlerID, r.nextID, "counter must not wrap")
	assert.Equal(t, 1, r.len())
}

func TestRegistry_SnapshotIsStable(t *testing.T) {
	r := newRegistry[int](0)
	for i := 0; i < 3; i++ {
		_, err := r.add(Synchronous, noop[int])
		require.NoError(t, err)
	}

	snap := r.snapshot()
	r.remove(0)
	_, _ = r.add(Synchronous, noop[int])

	require.Len(t, snap, 3)
	assert.Equal(t, HandlerID(0), snap[0].id)
	assert.True(t, snap[0].removed)
	assert.Nil(t, newRegistry[int](0).snapshot())
}

func TestRegistry_Clone(t *testing.T) {
	r := newRegistry[int](5)
	_, _ = r.add(Synchronous, noop[int])
	_, _ = r.add(Asynchronous, noop[int])
	r.remove(0)

	c := r.clone()
	assert.Equal(t, r.ids(), c.ids())
	assert.Equal(t, r.nextID, c.nextID)
	assert.Equal(t, r.limit, c.limit)
	require.Equal(t, 1, c.len())
	assert.Equal(t, Asynchronous, c.entries[0].mode)
	assert.NotSame(t, r.entries[0], c.entries[0])
	assert.NotSame(t, r.entries[0].pending, c.entries[0].pending)

	c.remove(1)
	assert.Equal(t, 1, r.len(), "clone must not share entries with its source")
}

func TestRegistry_Clear(t *testing.T) {
	r := newRegistry[int](0)
	_, _ = r.add(Synchronous, noop[int])
	_, _ = r.add(Synchronous, noop[int])

	removed := r.clear()
	require.Len(t, removed, 2)
	for _, e := range removed {
		assert.True(t, e.removed)
	}
	assert.Equal(t, 0, r.len())

	id, err := r.add(Synchronous, noop[int])
	require.NoError(t, err)
	assert.Equal(t, HandlerID(2), id)
}
