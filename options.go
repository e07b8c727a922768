package sigslot

import (
	"math"

	"github.com/joeycumines/logiface"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a Signal.
type Option[T any] func(*config[T])

// config contains configuration for a signal. It does not change after New.
type config[T any] struct {
	// name labels logs, metrics, spans and errors.
	name string

	// logger receives structured log lines; nil disables logging.
	logger *logiface.Logger[logiface.Event]

	// meter and tracer default to the global OTel providers.
	meter  metric.Meter
	tracer trace.Tracer

	// maxHandlers caps the number of registered handlers.
	maxHandlers uint64

	// cloner produces the copy of the arguments owned by an asynchronous
	// invocation.
	cloner func(T) T

	asyncErrorHandler AsyncErrorHandler
	panicHandler      PanicHandler
}

// defaultConfig returns the configuration used by New and by the zero Signal.
func defaultConfig[T any]() config[T] {
	return config[T]{
		maxHandlers: math.MaxUint64 - 1,
	}
}

// WithName sets the name used in logs, metrics, spans and errors.
func WithName[T any](name string) Option[T] {
	return func(c *config[T]) {
		c.name = name
	}
}

// WithLogger sets the structured logger.
func WithLogger[T any](logger *logiface.Logger[logiface.Event]) Option[T] {
	return func(c *config[T]) {
		c.logger = logger
	}
}

// WithMeter sets the meter used for emit and handler metrics.
func WithMeter[T any](meter metric.Meter) Option[T] {
	return func(c *config[T]) {
		c.meter = meter
	}
}

// WithTracer sets the tracer used for emit spans.
func WithTracer[T any](tracer trace.Tracer) Option[T] {
	return func(c *config[T]) {
		c.tracer = tracer
	}
}

// WithMaxHandlers caps the number of handlers that may be registered at the
// same time. Register fails with ErrRegistryFull once the cap is reached.
func WithMaxHandlers[T any](n uint64) Option[T] {
	return func(c *config[T]) {
		if n > 0 && n < math.MaxUint64 {
			c.maxHandlers = n
		}
	}
}

// WithArgsCloner sets the function that copies the arguments handed to each
// asynchronous invocation. It runs on the emitting goroutine, once per
// asynchronous handler, before Emit returns. Use it when T holds pointers,
// slices or maps the caller may modify after Emit.
func WithArgsCloner[T any](clone func(T) T) Option[T] {
	return func(c *config[T]) {
		c.cloner = clone
	}
}

// WithAsyncErrorHandler sets the channel through which asynchronous handler
// failures are reported.
func WithAsyncErrorHandler[T any](h AsyncErrorHandler) Option[T] {
	return func(c *config[T]) {
		c.asyncErrorHandler = h
	}
}

// WithPanicHandler sets a callback invoked for every recovered handler panic.
func WithPanicHandler[T any](h PanicHandler) Option[T] {
	return func(c *config[T]) {
		c.panicHandler = h
	}
}
