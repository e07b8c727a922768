// Package guard provides the reentrant lock that protects a dispatcher's
// registry and serializes emission.
package guard

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Mutex is an exclusive lock that the owning goroutine may acquire again
// without blocking. Each Lock must be paired with an Unlock on the same
// goroutine.
//
// The zero value is an unlocked Mutex.
type Mutex struct {
	mu    sync.Mutex
	owner atomic.Uint64
	depth int
}

// New returns an unlocked Mutex.
func New() *Mutex {
	return &Mutex{}
}

// Lock acquires the mutex, or increments the recursion depth if the calling
// goroutine already holds it.
func (m *Mutex) Lock() {
	id := goroutineID()
	if m.owner.Load() == id {
		m.depth++
		return
	}
	m.mu.Lock()
	m.owner.Store(id)
	m.depth = 1
}

// Unlock releases one level of ownership. The mutex becomes available to
// other goroutines once the depth drops to zero.
//
// Unlock panics if the calling goroutine does not hold the mutex.
func (m *Mutex) Unlock() {
	if m.owner.Load() != goroutineID() {
		panic("guard: unlock of mutex not held by this goroutine")
	}
	m.depth--
	if m.depth == 0 {
		m.owner.Store(0)
		m.mu.Unlock()
	}
}

// HeldByCurrent reports whether the calling goroutine owns the mutex.
func (m *Mutex) HeldByCurrent() bool {
	return m.owner.Load() == goroutineID()
}

// Depth returns the recursion depth. It is only meaningful to the owner.
func (m *Mutex) Depth() int {
	if !m.HeldByCurrent() {
		return 0
	}
	return m.depth
}

// goroutineID returns the current goroutine's ID, parsed from the header
// line of runtime.Stack ("goroutine 42 [running]:").
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}
