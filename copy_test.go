package sigslot

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClone(t *testing.T) {
	s := New[int]()
	var syncCalls, asyncCalls atomic.Int32
	gate := make(chan struct{})

	mustRegister(t, s, Sync(Func(func(int) { syncCalls.Add(1) })))
	mustRegister(t, s, Async(func(context.Context, int) error {
		<-gate
		asyncCalls.Add(1)
		return nil
	}))

	require.NoError(t, s.Emit(context.Background(), 1))
	require.Equal(t, 1, s.Pending())

	c := s.Clone()
	assert.Equal(t, s.IDs(), c.IDs())
	assert.Equal(t, 0, c.Pending(), "clone carries no in-flight work")
	assert.Equal(t, 1, s.Pending())

	close(gate)
	require.NoError(t, c.Emit(context.Background(), 2))
	c.Wait()
	s.Wait()

	assert.Equal(t, int32(2), syncCalls.Load())
	assert.Equal(t, int32(2), asyncCalls.Load())

	require.NoError(t, s.Emit(context.Background(), 3))
	require.NoError(t, c.Emit(context.Background(), 4))
	s.Wait()
	c.Wait()

	assert.Equal(t, int32(4), syncCalls.Load())
	assert.Equal(t, int32(4), asyncCalls.Load())
}

func TestClone_Independent(t *testing.T) {
	s := New[int]()
	first := mustRegister(t, s, Sync(noop[int]))
	mustRegister(t, s, Sync(noop[int]))

	c := s.Clone()
	require.True(t, c.Unregister(first))

	assert.Equal(t, 2, s.Count())
	assert.Equal(t, 1, c.Count())

	// Both continue from the same counter.
	idS := mustRegister(t, s, Sync(noop[int]))
	idC := mustRegister(t, c, Sync(noop[int]))
	assert.Equal(t, HandlerID(2), idS)
	assert.Equal(t, HandlerID(2), idC)
}

func TestCopyFrom(t *testing.T) {
	src := New[int]()
	dst := New[int]()
	var srcCalls, dstCalls atomic.Int32

	mustRegister(t, src, Sync(Func(func(int) { srcCalls.Add(1) })))
	mustRegister(t, src, Sync(Func(func(int) { srcCalls.Add(1) })))
	mustRegister(t, dst, Sync(Func(func(int) { dstCalls.Add(1) })))

	dst.CopyFrom(src)

	assert.Equal(t, src.IDs(), dst.IDs())
	require.NoError(t, dst.Emit(context.Background(), 1))
	assert.Equal(t, int32(2), srcCalls.Load())
	assert.Zero(t, dstCalls.Load(), "previous handlers are replaced")

	assert.Equal(t, 2, src.Count())

	dst.CopyFrom(dst)
	assert.Equal(t, 2, dst.Count())
}

func TestMove(t *testing.T) {
	s := New[int]()
	var calls atomic.Int32
	gate := make(chan struct{})

	mustRegister(t, s, Sync(Func(func(int) { calls.Add(1) })))
	mustRegister(t, s, Async(func(context.Context, int) error {
		<-gate
		return nil
	}))
	require.NoError(t, s.Emit(context.Background(), 0))
	require.Equal(t, int32(1), calls.Load())

	d := s.Move()

	assert.Equal(t, []HandlerID{0, 1}, d.IDs())
	assert.Equal(t, 1, d.Pending(), "in-flight work moves with the handlers")
	assert.Equal(t, 0, s.Count())
	assert.Equal(t, 0, s.Pending())

	require.NoError(t, s.Emit(context.Background(), 1))
	assert.Equal(t, int32(1), calls.Load(), "moved-from signal has no handlers")

	require.NoError(t, d.Emit(context.Background(), 2))
	assert.Equal(t, int32(2), calls.Load())

	id := mustRegister(t, s, Sync(noop[int]))
	assert.Equal(t, HandlerID(0), id, "moved-from counter restarts at 0")

	id = mustRegister(t, d, Sync(noop[int]))
	assert.Equal(t, HandlerID(2), id)

	close(gate)
	d.Wait()
	assert.Equal(t, 0, d.Pending())
}

func TestMoveFrom(t *testing.T) {
	src := New[int]()
	dst := New[int]()
	var srcCalls, dstCalls atomic.Int32

	mustRegister(t, dst, Async(func(context.Context, int) error {
		dstCalls.Add(1)
		return nil
	}))
	require.NoError(t, dst.Emit(context.Background(), 0))

	for i := 0; i < 3; i++ {
		mustRegister(t, src, Sync(Func(func(int) { srcCalls.Add(1) })))
	}

	dst.MoveFrom(src)

	// The destination's previous async work was waited for.
	assert.Equal(t, int32(1), dstCalls.Load())
	assert.Equal(t, []HandlerID{0, 1, 2}, dst.IDs())
	assert.Equal(t, 0, src.Count())

	require.NoError(t, dst.Emit(context.Background(), 1))
	require.NoError(t, src.Emit(context.Background(), 1))
	assert.Equal(t, int32(3), srcCalls.Load())
	assert.Equal(t, int32(1), dstCalls.Load())

	id := mustRegister(t, src, Sync(noop[int]))
	assert.Equal(t, HandlerID(0), id)

	dst.MoveFrom(nil)
	assert.Equal(t, 3, dst.Count())
}

func TestMove_ConcurrentCallersRetryOnNewGuard(t *testing.T) {
	s := New[int]()
	var calls atomic.Int32
	mustRegister(t, s, Sync(Func(func(int) { calls.Add(1) })))

	held := s.lock()
	done := make(chan struct{})
	go func() {
		defer close(done)
		// Blocks on the old guard, which Move hands to the new signal.
		_ = s.Emit(context.Background(), 1)
	}()

	// Move from the goroutine already holding the guard; the lock is
	// reentrant.
	d := s.Move()
	held.Unlock()

	waitClosed(t, done, "Emit on moved-from signal")
	assert.Zero(t, calls.Load(), "Emit observed the reset signal")
	assert.Equal(t, 1, d.Count())
}
