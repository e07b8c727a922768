package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
)

// Invocation is the handle of one asynchronous call. It is safe to wait on
// from any number of goroutines.
type Invocation struct {
	done   chan struct{}
	result Result
}

// Done returns a channel that is closed once the call has returned.
func (i *Invocation) Done() <-chan struct{} {
	return i.done
}

// Wait blocks until the call has returned and then reports its result.
func (i *Invocation) Wait() Result {
	<-i.done
	return i.result
}

// Finished reports whether the call has returned, without blocking.
func (i *Invocation) Finished() bool {
	select {
	case <-i.done:
		return true
	default:
		return false
	}
}

// WaitAll waits for every invocation in order.
func WaitAll(invs []*Invocation) {
	for _, inv := range invs {
		inv.Wait()
	}
}

// AsyncDispatcher runs every call on its own goroutine.
type AsyncDispatcher struct {
	executor *Executor
	wg       sync.WaitGroup

	spawned atomic.Uint64
	running atomic.Int64
	stats   counters
}

// NewAsyncDispatcher creates a new asynchronous dispatcher.
func NewAsyncDispatcher(opts ...AsyncOption) *AsyncDispatcher {
	d := &AsyncDispatcher{
		executor: NewExecutor(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// AsyncOption configures an AsyncDispatcher.
type AsyncOption func(*AsyncDispatcher)

// WithAsyncPanicHandler sets the panic handler for async execution.
func WithAsyncPanicHandler(h PanicHandler) AsyncOption {
	return func(d *AsyncDispatcher) {
		d.executor = NewExecutor(WithExecutorPanicHandler(h))
	}
}

// Spawn starts call on a new goroutine and returns immediately.
// onDone, if not nil, runs on that goroutine with the call's result before
// the invocation is marked finished, so anything it records is visible to
// callers of Wait.
func (d *AsyncDispatcher) Spawn(ctx context.Context, call Call, onDone func(Result)) *Invocation {
	inv := &Invocation{done: make(chan struct{})}

	d.spawned.Add(1)
	d.running.Add(1)
	d.wg.Add(1)

	go func() {
		defer d.wg.Done()
		defer close(inv.done)
		defer d.running.Add(-1)

		result := d.executor.Execute(ctx, call)
		d.stats.record(result)
		inv.result = result

		if onDone != nil {
			func() {
				defer func() { _ = recover() }()
				onDone(result)
			}()
		}
	}()

	return inv
}

// Running returns the number of calls that have not returned yet.
func (d *AsyncDispatcher) Running() int {
	return int(d.running.Load())
}

// WaitIdle blocks until every call spawned so far has returned.
func (d *AsyncDispatcher) WaitIdle() {
	d.wg.Wait()
}

// Stats returns dispatcher statistics.
func (d *AsyncDispatcher) Stats() AsyncStats {
	return AsyncStats{
		Stats:   d.stats.snapshot(),
		Spawned: d.spawned.Load(),
		Running: d.Running(),
	}
}

// AsyncStats contains statistics for an async dispatcher. The embedded
// Stats count calls that have returned.
type AsyncStats struct {
	Stats

	// Spawned is the total number of goroutines started.
	Spawned uint64

	// Running is the number of calls that have not returned yet.
	Running int
}
