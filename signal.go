package sigslot

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"

	"github.com/dshills/sigslot/internal/dispatch"
	"github.com/dshills/sigslot/internal/guard"
)

// Signal delivers values of type T to registered handlers.
//
// All bookkeeping and every Emit run under one reentrant lock per Signal,
// so handlers running synchronously may call back into the same Signal from
// the emitting goroutine. Asynchronous handlers run on their own goroutine
// and are waited for by Wait, Unregister, Clear and Close.
//
// The zero value is an empty Signal ready to use. A Signal must not be
// copied by value; use Clone or Move.
type Signal[T any] struct {
	guard atomic.Pointer[guard.Mutex]

	// reg is protected by guard.
	reg *registry[T]

	cfg config[T]

	once    sync.Once
	inst    *instruments
	inline  *dispatch.SyncDispatcher
	spawner *dispatch.AsyncDispatcher

	emits         atomic.Uint64
	asyncFailures atomic.Uint64
}

// New creates an empty signal with the given options.
func New[T any](opts ...Option[T]) *Signal[T] {
	cfg := defaultConfig[T]()
	for _, opt := range opts {
		opt(&cfg)
	}
	return newSignal(cfg, guard.New(), newRegistry[T](cfg.maxHandlers))
}

func newSignal[T any](cfg config[T], g *guard.Mutex, reg *registry[T]) *Signal[T] {
	s := &Signal[T]{cfg: cfg, reg: reg}
	s.guard.Store(g)
	s.once.Do(s.init)
	return s
}

func (s *Signal[T]) init() {
	s.inst = newInstruments(s.cfg.name, s.cfg.meter, s.cfg.tracer)
	s.inline = dispatch.NewSyncDispatcher()
	s.spawner = dispatch.NewAsyncDispatcher()
}

// lock acquires the current guard. A Move or MoveFrom may swap the guard
// while a caller is blocked on the old one; the caller then retries on the
// new guard.
func (s *Signal[T]) lock() *guard.Mutex {
	s.once.Do(s.init)
	for {
		g := s.guard.Load()
		if g == nil {
			s.guard.CompareAndSwap(nil, guard.New())
			continue
		}
		g.Lock()
		if s.guard.Load() == g {
			if s.reg == nil {
				s.reg = newRegistry[T](s.cfg.maxHandlers)
			}
			return g
		}
		g.Unlock()
	}
}

// Name returns the name set with WithName.
func (s *Signal[T]) Name() string {
	return s.cfg.name
}

// Register adds a handler at the back of the registry and returns its ID.
// The handler is not invoked.
//
// When the handler limit is reached or the ID space is exhausted, Register
// returns InvalidHandlerID and ErrRegistryFull and nothing is added.
func (s *Signal[T]) Register(d Descriptor[T]) (HandlerID, error) {
	if d.fn == nil {
		return InvalidHandlerID, ErrNilHandler
	}
	if d.mode != Synchronous && d.mode != Asynchronous {
		return InvalidHandlerID, ErrInvalidMode
	}

	g := s.lock()
	id, err := s.reg.add(d.mode, d.fn)
	g.Unlock()

	if err != nil {
		s.cfg.logger.Warning().
			Str("signal", s.cfg.name).
			Err(err).
			Log("handler registration failed")
		return id, err
	}

	s.cfg.logger.Debug().
		Str("signal", s.cfg.name).
		Uint64("handler_id", uint64(id)).
		Str("mode", d.mode.String()).
		Log("handler registered")
	return id, nil
}

// Unregister removes the handler with the given ID. It blocks until every
// asynchronous invocation of that handler still in flight has returned.
// It reports false, with no effect, if no such handler is registered.
func (s *Signal[T]) Unregister(id HandlerID) bool {
	g := s.lock()
	e, ok := s.reg.remove(id)
	var pending []*dispatch.Invocation
	if ok {
		pending = e.pending.Drain()
	}
	g.Unlock()

	if !ok {
		return false
	}

	s.cfg.logger.Debug().
		Str("signal", s.cfg.name).
		Uint64("handler_id", uint64(id)).
		Int("pending", len(pending)).
		Log("handler unregistered")

	dispatch.WaitAll(pending)
	return true
}

// Count returns the number of registered handlers.
func (s *Signal[T]) Count() int {
	g := s.lock()
	defer g.Unlock()
	return s.reg.len()
}

// IDs returns the registered handler IDs in registration order, which is
// the order Emit runs them in.
func (s *Signal[T]) IDs() []HandlerID {
	g := s.lock()
	defer g.Unlock()
	return s.reg.ids()
}

// Clear removes every handler, then blocks until all of their asynchronous
// invocations have returned.
func (s *Signal[T]) Clear() {
	g := s.lock()
	removed := s.reg.clear()
	pending := drainAll(removed)
	g.Unlock()

	if len(removed) > 0 {
		s.cfg.logger.Debug().
			Str("signal", s.cfg.name).
			Int("handlers", len(removed)).
			Int("pending", len(pending)).
			Log("handlers cleared")
	}

	dispatch.WaitAll(pending)
}

// Close tears the signal down: it removes every handler and waits for all of
// their asynchronous work. The signal stays usable afterwards.
func (s *Signal[T]) Close() {
	s.Clear()
}

// Wait blocks until every asynchronous invocation launched so far for the
// registered handlers has returned; their side effects are visible once Wait
// returns. The lock is not held while waiting, so asynchronous handlers may
// use the signal.
func (s *Signal[T]) Wait() {
	g := s.lock()
	var invs []*dispatch.Invocation
	for _, e := range s.reg.entries {
		invs = append(invs, e.pending.Snapshot()...)
	}
	g.Unlock()

	if len(invs) == 0 {
		return
	}
	dispatch.WaitAll(invs)

	g = s.lock()
	for _, e := range s.reg.entries {
		e.pending.Prune()
	}
	g.Unlock()
}

// Pending returns the number of asynchronous invocation handles tracked by
// registered handlers that have not been waited for.
func (s *Signal[T]) Pending() int {
	g := s.lock()
	defer g.Unlock()
	return s.reg.pending()
}

// Emit delivers args to every handler registered when Emit is called, once
// each, in registration order.
//
// Synchronous handlers run inline before Emit moves to the next handler.
// Asynchronous handlers are started on a new goroutine with their own copy
// of args (see WithArgsCloner) and a context that is not cancelled with ctx;
// Emit does not wait for them.
//
// Emit holds the signal's lock throughout, so concurrent Emits serialize. A
// synchronous handler may call Emit, Register or Unregister on the same
// signal; a handler unregistered that way is skipped by the outer Emit.
//
// Errors and panics of synchronous handlers are returned, joined, after all
// handlers were processed. Failures of asynchronous handlers are reported
// through WithAsyncErrorHandler and the logger.
func (s *Signal[T]) Emit(ctx context.Context, args T) error {
	g := s.lock()
	defer g.Unlock()

	entries := s.reg.snapshot()
	emitID := uuid.NewString()
	s.emits.Add(1)

	ctx, span := s.inst.startEmit(ctx, emitID, len(entries))
	defer span.End()

	var errs []error
	for _, e := range entries {
		if e.removed {
			continue
		}
		if e.mode == Asynchronous {
			s.spawn(ctx, emitID, e, args)
			continue
		}
		if err := s.invoke(ctx, emitID, e, args); err != nil {
			errs = append(errs, err)
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return err
}

// invoke runs a synchronous handler inline.
func (s *Signal[T]) invoke(ctx context.Context, emitID string, e *entry[T], args T) error {
	fn := e.fn
	result := s.inline.Dispatch(ctx, func(ctx context.Context) error {
		return fn(ctx, args)
	})
	s.inst.record(ctx, Synchronous, result)

	err := s.failure(emitID, e.id, Synchronous, result)
	if err != nil {
		s.cfg.logger.Debug().
			Str("signal", s.cfg.name).
			Str("emit_id", emitID).
			Uint64("handler_id", uint64(e.id)).
			Err(err).
			Log("sync handler failed")
	}
	return err
}

// spawn starts an asynchronous handler and tracks its invocation on the
// entry. The goroutine owns its copy of args.
func (s *Signal[T]) spawn(ctx context.Context, emitID string, e *entry[T], args T) {
	owned := args
	if s.cfg.cloner != nil {
		owned = s.cfg.cloner(args)
	}

	fn := e.fn
	id := e.id
	actx := context.WithoutCancel(ctx)

	inv := s.spawner.Spawn(actx, func(ctx context.Context) error {
		return fn(ctx, owned)
	}, func(result dispatch.Result) {
		s.reportAsync(actx, emitID, id, result)
	})
	e.pending.Track(inv)
}

// reportAsync records a finished asynchronous invocation and sends a failure
// to the side channel.
func (s *Signal[T]) reportAsync(ctx context.Context, emitID string, id HandlerID, result dispatch.Result) {
	s.inst.record(ctx, Asynchronous, result)

	err := s.failure(emitID, id, Asynchronous, result)
	if err == nil {
		return
	}
	s.asyncFailures.Add(1)

	s.cfg.logger.Err().
		Str("signal", s.cfg.name).
		Str("emit_id", emitID).
		Uint64("handler_id", uint64(id)).
		Err(err).
		Log("async handler failed")

	if h := s.cfg.asyncErrorHandler; h != nil {
		h(err)
	}
}

// failure converts a failed result into a *HandlerError or *PanicError.
func (s *Signal[T]) failure(emitID string, id HandlerID, mode Mode, result dispatch.Result) error {
	switch {
	case result.Panicked:
		if h := s.cfg.panicHandler; h != nil {
			func() {
				defer func() { _ = recover() }()
				h(id, result.PanicValue, result.PanicStack)
			}()
		}
		return &PanicError{
			Signal:    s.cfg.name,
			HandlerID: id,
			Mode:      mode,
			EmitID:    emitID,
			Value:     result.PanicValue,
			Stack:     string(result.PanicStack),
		}
	case result.Error != nil:
		return &HandlerError{
			Signal:    s.cfg.name,
			HandlerID: id,
			Mode:      mode,
			EmitID:    emitID,
			Err:       result.Error,
		}
	default:
		return nil
	}
}

// Stats returns current signal statistics.
func (s *Signal[T]) Stats() Stats {
	g := s.lock()
	handlers := s.reg.len()
	pending := s.reg.pending()
	g.Unlock()

	syncStats := s.inline.Stats()
	asyncStats := s.spawner.Stats()

	return Stats{
		Handlers:      handlers,
		Emits:         s.emits.Load(),
		SyncExecuted:  syncStats.Executed,
		AsyncSpawned:  asyncStats.Spawned,
		AsyncRunning:  asyncStats.Running,
		Pending:       pending,
		HandlerErrors: syncStats.Failed + asyncStats.Failed,
		HandlerPanics: syncStats.Panicked + asyncStats.Panicked,
		AsyncFailures: s.asyncFailures.Load(),
	}
}
