// Package dispatch runs signal handlers.
//
// It implements the two execution modes of a signal with panic recovery and
// timing, plus the bookkeeping for asynchronous invocations that have not
// been waited on yet.
//
// # Dispatchers
//
//   - SyncDispatcher: runs a call inline in the caller's goroutine and
//     returns its Result.
//
//   - AsyncDispatcher: starts a new goroutine for every call and returns an
//     Invocation handle. There is no pool and no queue; a call never waits
//     for a free worker.
//
// # Pending invocations
//
// Pending is a FIFO of Invocation handles owned by one registered handler.
// Completed handles are pruned, unfinished ones are only ever handed to a
// caller that waits on them. A handle for running work can not be dropped
// or overwritten.
//
// # Usage
//
//	async := dispatch.NewAsyncDispatcher(
//	    dispatch.WithAsyncPanicHandler(func(v any, stack []byte) {
//	        log.Printf("panic in handler: %v\n%s", v, stack)
//	    }),
//	)
//	inv := async.Spawn(ctx, func(ctx context.Context) error {
//	    return work(ctx)
//	}, nil)
//	pending.Track(inv)
//	...
//	dispatch.WaitAll(pending.Drain())
package dispatch
