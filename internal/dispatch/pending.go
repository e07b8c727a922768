package dispatch

import (
	"github.com/eapache/queue"
)

// Pending is the FIFO of asynchronous invocations launched for one
// registered handler that nobody has observed complete yet.
//
// A handle leaves the queue in exactly two ways: Track prunes handles that
// have already finished, and Drain hands every handle to a caller that must
// wait on them. Running work is therefore never silently discarded.
//
// Pending is not safe for concurrent use; the owning signal guards it.
type Pending struct {
	q *queue.Queue
}

// NewPending returns an empty queue.
func NewPending() *Pending {
	return &Pending{q: queue.New()}
}

// Track appends inv after pruning finished handles from the front.
func (p *Pending) Track(inv *Invocation) {
	p.Prune()
	p.q.Add(inv)
}

// Prune removes finished handles from the front of the queue and returns
// how many were removed. Handles behind an unfinished one stay until it is
// done.
func (p *Pending) Prune() int {
	n := 0
	for p.q.Length() > 0 {
		inv := p.q.Peek().(*Invocation)
		if !inv.Finished() {
			break
		}
		p.q.Remove()
		n++
	}
	return n
}

// Len returns the number of tracked handles, finished or not.
func (p *Pending) Len() int {
	return p.q.Length()
}

// Snapshot returns the tracked handles without removing them.
func (p *Pending) Snapshot() []*Invocation {
	n := p.q.Length()
	if n == 0 {
		return nil
	}
	out := make([]*Invocation, n)
	for i := 0; i < n; i++ {
		out[i] = p.q.Get(i).(*Invocation)
	}
	return out
}

// Drain removes and returns every tracked handle. The caller takes over the
// obligation to wait for them.
func (p *Pending) Drain() []*Invocation {
	out := p.Snapshot()
	p.q = queue.New()
	return out
}
