package sigslot

import (
	"context"
	"math"
)

// HandlerID identifies a registered handler. IDs are allocated from 0 in
// registration order and are never reused by the same Signal.
type HandlerID uint64

// InvalidHandlerID is returned by Register when no handler was added.
const InvalidHandlerID HandlerID = math.MaxUint64

// Mode determines how a handler is run by Emit.
type Mode int

const (
	// Synchronous runs the handler inline in the emitting goroutine, in
	// registration order, before Emit moves on to the next handler.
	Synchronous Mode = iota

	// Asynchronous runs the handler on a new goroutine per Emit. Emit does
	// not wait for it; see Signal.Wait.
	Asynchronous
)

// String returns a human-readable mode name.
func (m Mode) String() string {
	switch m {
	case Synchronous:
		return "sync"
	case Asynchronous:
		return "async"
	default:
		return "unknown"
	}
}

// HandlerFunc is the callable a Signal delivers its arguments to.
type HandlerFunc[T any] func(ctx context.Context, args T) error

// AsyncErrorHandler receives failures of asynchronous handlers. The error is
// a *HandlerError or a *PanicError. It runs on the handler's goroutine.
type AsyncErrorHandler func(err error)

// PanicHandler is called when a handler panics, before the panic is turned
// into a *PanicError.
type PanicHandler func(id HandlerID, recovered any, stack []byte)

// Stats contains signal statistics.
type Stats struct {
	// Handlers is the current number of registered handlers.
	Handlers int

	// Emits is the total number of Emit calls.
	Emits uint64

	// SyncExecuted is the number of synchronous handler executions.
	SyncExecuted uint64

	// AsyncSpawned is the number of asynchronous invocations started.
	AsyncSpawned uint64

	// AsyncRunning is the number of asynchronous invocations that have not
	// returned yet.
	AsyncRunning int

	// Pending is the number of asynchronous invocation handles still
	// tracked by registered handlers.
	Pending int

	// HandlerErrors is the number of handlers that returned errors.
	HandlerErrors uint64

	// HandlerPanics is the number of handlers that panicked.
	HandlerPanics uint64

	// AsyncFailures is the number of failures reported through the
	// asynchronous error channel.
	AsyncFailures uint64
}
