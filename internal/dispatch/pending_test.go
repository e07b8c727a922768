package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blockedInvocation(d *AsyncDispatcher) (*Invocation, chan struct{}) {
	release := make(chan struct{})
	inv := d.Spawn(context.Background(), func(context.Context) error {
		<-release
		return nil
	}, nil)
	return inv, release
}

func TestPending_TrackKeepsUnfinished(t *testing.T) {
	d := NewAsyncDispatcher()
	p := NewPending()

	first, releaseFirst := blockedInvocation(d)
	second, releaseSecond := blockedInvocation(d)

	p.Track(first)
	p.Track(second)
	require.Equal(t, 2, p.Len(), "a running handle must never be replaced")

	close(releaseSecond)
	second.Wait()
	assert.Equal(t, 0, p.Prune(), "finished handle behind a running one stays queued")
	assert.Equal(t, 2, p.Len())

	close(releaseFirst)
	first.Wait()
	assert.Equal(t, 2, p.Prune())
	assert.Equal(t, 0, p.Len())
}

func TestPending_TrackPrunesFinished(t *testing.T) {
	d := NewAsyncDispatcher()
	p := NewPending()

	done := d.Spawn(context.Background(), func(context.Context) error { return nil }, nil)
	done.Wait()
	p.Track(done)

	running, release := blockedInvocation(d)
	defer close(release)
	p.Track(running)

	assert.Equal(t, 1, p.Len())
	assert.Equal(t, []*Invocation{running}, p.Snapshot())
}

func TestPending_Drain(t *testing.T) {
	d := NewAsyncDispatcher()
	p := NewPending()

	inv, release := blockedInvocation(d)
	p.Track(inv)

	snap := p.Snapshot()
	assert.Len(t, snap, 1)
	assert.Equal(t, 1, p.Len(), "Snapshot must not remove handles")

	drained := p.Drain()
	assert.Equal(t, []*Invocation{inv}, drained)
	assert.Equal(t, 0, p.Len())
	assert.Nil(t, p.Drain())

	close(release)
	WaitAll(drained)
	assert.True(t, inv.Finished())
}
