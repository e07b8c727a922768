package sigslot

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for use by asynchronous handlers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestLogger(w *syncBuffer, level logiface.Level) *logiface.Logger[logiface.Event] {
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
		stumpy.L.WithLevel(level),
	).Logger()
}

func TestLogging_Lifecycle(t *testing.T) {
	var buf syncBuffer
	s := New(
		WithName[int]("audit"),
		WithLogger[int](newTestLogger(&buf, logiface.LevelDebug)),
	)

	id := mustRegister(t, s, Sync(noop[int]))
	require.True(t, s.Unregister(id))

	out := buf.String()
	assert.Contains(t, out, "handler registered")
	assert.Contains(t, out, "handler unregistered")
	assert.Contains(t, out, `"signal":"audit"`)
	assert.Contains(t, out, `"mode":"sync"`)
}

func TestLogging_AsyncFailure(t *testing.T) {
	var buf syncBuffer
	s := New(WithLogger[int](newTestLogger(&buf, logiface.LevelError)))

	mustRegister(t, s, Async(func(context.Context, int) error {
		return errors.New("remote unavailable")
	}))
	require.NoError(t, s.Emit(context.Background(), 1))
	s.Wait()

	out := buf.String()
	assert.Contains(t, out, "async handler failed")
	assert.Contains(t, out, "remote unavailable")
	assert.Contains(t, out, `"emit_id":`)
	assert.NotContains(t, out, "handler registered", "debug lines are filtered")
}

func TestLogging_Full(t *testing.T) {
	var buf syncBuffer
	s := New(
		WithMaxHandlers[int](1),
		WithLogger[int](newTestLogger(&buf, logiface.LevelWarning)),
	)

	mustRegister(t, s, Sync(noop[int]))
	_, err := s.Register(Sync(noop[int]))
	require.ErrorIs(t, err, ErrRegistryFull)

	assert.Contains(t, buf.String(), "handler registration failed")
}
