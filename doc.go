// Package sigslot provides a typed multicast signal: handlers are registered
// with an execution mode and every Emit delivers its arguments to all of
// them.
//
// # Execution modes
//
//   - Synchronous: the handler runs inline in the goroutine calling Emit, in
//     registration order, before the next handler is considered. With a
//     pointer argument type, a change made by one handler is seen by the
//     handlers after it.
//
//   - Asynchronous: every Emit starts a new goroutine for the handler and
//     does not wait for it. The goroutine owns its copy of the arguments.
//     Wait blocks until such work has finished; Unregister, Clear and Close
//     wait for the work of the handlers they remove.
//
// # Basic Usage
//
//	sig := sigslot.New[int](sigslot.WithName[int]("ticks"))
//	defer sig.Close()
//
//	id, err := sig.Register(sigslot.Sync(func(ctx context.Context, n int) error {
//	    fmt.Println("tick", n)
//	    return nil
//	}))
//
//	_, _ = sig.Register(sigslot.Async(func(ctx context.Context, n int) error {
//	    return store(ctx, n)
//	}))
//
//	if err := sig.Emit(ctx, 9); err != nil {
//	    // a synchronous handler failed
//	}
//	sig.Wait()
//
//	sig.Unregister(id)
//
// # Handler IDs
//
// IDs start at 0 and increase with every registration; they are never
// reused, even after Unregister. Register returns InvalidHandlerID together
// with ErrRegistryFull when no handler can be added.
//
// # Errors
//
// Errors returned by synchronous handlers, and their panics, are collected
// as *HandlerError and *PanicError values and returned by Emit after every
// handler ran. Asynchronous failures cannot reach the Emit call, which has
// usually returned already; they go to the function set with
// WithAsyncErrorHandler and to the logger.
//
// # Copy and move
//
// Clone and CopyFrom duplicate the registered handlers into an independent
// signal with its own lock; in-flight asynchronous work stays with the
// source. Move and MoveFrom transfer the lock, the handlers and their
// in-flight work; the source is left empty with its ID counter reset.
//
// # Thread Safety
//
// A Signal is safe for concurrent use. Its lock is reentrant for the
// goroutine holding it, so a synchronous handler can emit on, register with,
// or unregister from the signal it was called by. An asynchronous handler
// must not unregister itself: Unregister would wait for the handler's own
// invocation.
//
// # Observability
//
// Emit records OpenTelemetry metrics (sigslot.emit.count,
// sigslot.handler.executions, sigslot.handler.duration) and a sigslot.emit
// span, using the global providers unless WithMeter or WithTracer is given.
// Structured logs go to a logiface logger set with WithLogger.
package sigslot
