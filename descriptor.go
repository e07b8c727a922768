package sigslot

import "context"

// Descriptor pairs a handler with its execution mode. It is an immutable
// value; Register copies it into the signal's registry.
type Descriptor[T any] struct {
	fn   HandlerFunc[T]
	mode Mode
}

// NewDescriptor builds a Descriptor for fn with the given mode.
func NewDescriptor[T any](fn HandlerFunc[T], mode Mode) Descriptor[T] {
	return Descriptor[T]{fn: fn, mode: mode}
}

// Sync builds a Descriptor that runs fn inline during Emit.
func Sync[T any](fn HandlerFunc[T]) Descriptor[T] {
	return NewDescriptor(fn, Synchronous)
}

// Async builds a Descriptor that runs fn on its own goroutine per Emit.
func Async[T any](fn HandlerFunc[T]) Descriptor[T] {
	return NewDescriptor(fn, Asynchronous)
}

// Func adapts a handler that cannot fail.
func Func[T any](fn func(args T)) HandlerFunc[T] {
	if fn == nil {
		return nil
	}
	return func(_ context.Context, args T) error {
		fn(args)
		return nil
	}
}

// Mode returns the execution mode.
func (d Descriptor[T]) Mode() Mode {
	return d.mode
}

// Valid reports whether the descriptor carries a handler.
func (d Descriptor[T]) Valid() bool {
	return d.fn != nil && (d.mode == Synchronous || d.mode == Asynchronous)
}
