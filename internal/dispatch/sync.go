package dispatch

import "context"

// SyncDispatcher runs calls inline on the caller's goroutine.
type SyncDispatcher struct {
	executor *Executor
	stats    counters
}

// SyncOption configures a SyncDispatcher.
type SyncOption func(*SyncDispatcher)

// WithPanicHandler sets the panic handler for inline execution.
func WithPanicHandler(h PanicHandler) SyncOption {
	return func(d *SyncDispatcher) {
		d.executor = NewExecutor(WithExecutorPanicHandler(h))
	}
}

// NewSyncDispatcher creates a new synchronous dispatcher.
func NewSyncDispatcher(opts ...SyncOption) *SyncDispatcher {
	d := &SyncDispatcher{executor: NewExecutor()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs call and returns once it has returned or panicked.
func (d *SyncDispatcher) Dispatch(ctx context.Context, call Call) Result {
	result := d.executor.Execute(ctx, call)
	d.stats.record(result)
	return result
}

// Stats returns dispatch statistics.
func (d *SyncDispatcher) Stats() Stats {
	return d.stats.snapshot()
}
