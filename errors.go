package sigslot

import (
	"errors"
	"fmt"
)

// Sentinel errors for signals.
var (
	// ErrNilHandler is returned when a descriptor carries no handler.
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrInvalidMode is returned when a descriptor has an unknown mode.
	ErrInvalidMode = errors.New("invalid execution mode")

	// ErrRegistryFull is returned when no further handler IDs can be
	// allocated or the handler limit has been reached.
	ErrRegistryFull = errors.New("handler registry is full")

	// ErrHandlerPanic is matched by every *PanicError.
	ErrHandlerPanic = errors.New("handler panicked")
)

// HandlerError wraps an error returned by a handler.
type HandlerError struct {
	// Signal is the name of the signal, possibly empty.
	Signal string

	// HandlerID is the ID of the handler that failed.
	HandlerID HandlerID

	// Mode is the mode the handler ran in.
	Mode Mode

	// EmitID identifies the Emit call that delivered the arguments.
	EmitID string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s handler %d%s failed: %v", e.Mode, e.HandlerID, signalSuffix(e.Signal), e.Err)
}

// Unwrap returns the underlying error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// PanicError wraps a panic value recovered from a handler.
type PanicError struct {
	// Signal is the name of the signal, possibly empty.
	Signal string

	// HandlerID is the ID of the handler that panicked.
	HandlerID HandlerID

	// Mode is the mode the handler ran in.
	Mode Mode

	// EmitID identifies the Emit call that delivered the arguments.
	EmitID string

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace at the time of the panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("%s handler %d%s panicked: %v", e.Mode, e.HandlerID, signalSuffix(e.Signal), e.Value)
}

// Is allows errors.Is to match PanicError with ErrHandlerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanic
}

// Unwrap returns the panic value if it was an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func signalSuffix(name string) string {
	if name == "" {
		return ""
	}
	return " on signal " + name
}
