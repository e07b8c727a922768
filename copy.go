package sigslot

import (
	"github.com/dshills/sigslot/internal/dispatch"
	"github.com/dshills/sigslot/internal/guard"
)

// Clone returns an independent signal with the same handlers, IDs, modes and
// ID counter. The clone has its own lock and carries none of the receiver's
// in-flight asynchronous work. The receiver is unaffected.
func (s *Signal[T]) Clone() *Signal[T] {
	g := s.lock()
	reg := s.reg.clone()
	g.Unlock()

	return newSignal(s.cfg, guard.New(), reg)
}

// CopyFrom replaces the receiver's handlers with a copy of src's, as Clone
// does. The receiver's previous handlers are removed first, waiting for their
// asynchronous work. The receiver keeps its own lock and options.
func (s *Signal[T]) CopyFrom(src *Signal[T]) {
	if src == nil || src == s {
		return
	}

	g := src.lock()
	reg := src.reg.clone()
	g.Unlock()

	mine := s.lock()
	pending := drainAll(s.reg.clear())
	s.reg = reg
	mine.Unlock()

	dispatch.WaitAll(pending)
}

// Move transfers the receiver's lock, handlers, ID counter and in-flight
// asynchronous work to a new signal and returns it. The receiver is left
// empty with a fresh lock and its ID counter reset to 0; it remains usable.
func (s *Signal[T]) Move() *Signal[T] {
	g, reg := s.detach()
	return newSignal(s.cfg, g, reg)
}

// MoveFrom transfers src's lock, handlers, ID counter and in-flight work to
// the receiver, as Move does, after removing the receiver's previous
// handlers and waiting for their asynchronous work. src is left empty and
// usable. The receiver keeps its own options.
func (s *Signal[T]) MoveFrom(src *Signal[T]) {
	if src == nil || src == s {
		return
	}

	g, reg := src.detach()

	mine := s.lock()
	pending := drainAll(s.reg.clear())
	handlers := reg.len()
	s.reg = reg
	s.guard.Store(g)
	mine.Unlock()

	s.cfg.logger.Debug().
		Str("signal", s.cfg.name).
		Str("from", src.cfg.name).
		Int("handlers", handlers).
		Log("signal moved")

	dispatch.WaitAll(pending)
}

// detach takes the lock and registry out of s and installs a fresh lock and
// an empty registry.
func (s *Signal[T]) detach() (*guard.Mutex, *registry[T]) {
	g := s.lock()
	reg := s.reg
	s.reg = newRegistry[T](s.cfg.maxHandlers)
	s.guard.Store(guard.New())
	g.Unlock()
	return g, reg
}
