package sigslot

import (
	"math"

	"github.com/dshills/sigslot/internal/dispatch"
)

// entry is a registered handler. It is owned by exactly one registry.
type entry[T any] struct {
	id      HandlerID
	mode    Mode
	fn      HandlerFunc[T]
	pending *dispatch.Pending

	// removed is set when the entry leaves the registry, so that an Emit
	// already walking a snapshot skips it.
	removed bool
}

// registry keeps handlers in registration order. It is not safe for
// concurrent use; the owning Signal's guard protects it.
type registry[T any] struct {
	entries []*entry[T]
	byID    map[HandlerID]*entry[T]
	nextID  HandlerID
	limit   uint64
}

func newRegistry[T any](limit uint64) *registry[T] {
	if limit == 0 || limit == math.MaxUint64 {
		limit = math.MaxUint64 - 1
	}
	return &registry[T]{
		byID:  make(map[HandlerID]*entry[T]),
		limit: limit,
	}
}

// add appends a handler and returns its ID.
func (r *registry[T]) add(mode Mode, fn HandlerFunc[T]) (HandlerID, error) {
	if uint64(len(r.entries)) >= r.limit || r.nextID == InvalidHandlerID {
		return InvalidHandlerID, ErrRegistryFull
	}

	id := r.nextID
	r.nextID++

	e := &entry[T]{
		id:      id,
		mode:    mode,
		fn:      fn,
		pending: dispatch.NewPending(),
	}
	r.entries = append(r.entries, e)
	r.byID[id] = e
	return id, nil
}

// remove detaches the entry with the given ID. The caller must wait for the
// entry's pending invocations.
func (r *registry[T]) remove(id HandlerID) (*entry[T], bool) {
	e, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	delete(r.byID, id)

	for i, cur := range r.entries {
		if cur == e {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			break
		}
	}
	e.removed = true
	return e, true
}

// clear detaches every entry and returns them in registration order.
func (r *registry[T]) clear() []*entry[T] {
	removed := r.entries
	for _, e := range removed {
		e.removed = true
	}
	r.entries = nil
	r.byID = make(map[HandlerID]*entry[T])
	return removed
}

// snapshot returns the entries present now, in registration order.
func (r *registry[T]) snapshot() []*entry[T] {
	if len(r.entries) == 0 {
		return nil
	}
	out := make([]*entry[T], len(r.entries))
	copy(out, r.entries)
	return out
}

// ids returns the registered IDs in registration order.
func (r *registry[T]) ids() []HandlerID {
	out := make([]HandlerID, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.id
	}
	return out
}

func (r *registry[T]) len() int {
	return len(r.entries)
}

// pending returns the number of tracked asynchronous handles.
func (r *registry[T]) pending() int {
	n := 0
	for _, e := range r.entries {
		n += e.pending.Len()
	}
	return n
}

// clone duplicates IDs, modes and handlers. Pending invocations are not
// carried over.
func (r *registry[T]) clone() *registry[T] {
	c := newRegistry[T](r.limit)
	c.nextID = r.nextID
	c.entries = make([]*entry[T], 0, len(r.entries))
	for _, e := range r.entries {
		dup := &entry[T]{
			id:      e.id,
			mode:    e.mode,
			fn:      e.fn,
			pending: dispatch.NewPending(),
		}
		c.entries = append(c.entries, dup)
		c.byID[dup.id] = dup
	}
	return c
}

// drainAll takes every pending handle from the given entries.
func drainAll[T any](entries []*entry[T]) []*dispatch.Invocation {
	var out []*dispatch.Invocation
	for _, e := range entries {
		out = append(out, e.pending.Drain()...)
	}
	return out
}
