package dispatch

import (
	"sync/atomic"
	"time"
)

// Stats contains execution statistics of a dispatcher.
type Stats struct {
	// Executed is the number of calls that have returned.
	Executed uint64

	// Succeeded is the number of calls that returned nil.
	Succeeded uint64

	// Failed is the number of calls that returned an error.
	Failed uint64

	// Panicked is the number of calls that panicked.
	Panicked uint64

	// TotalDuration is the cumulative time spent in calls.
	TotalDuration time.Duration

	// AvgDuration is the average call duration.
	AvgDuration time.Duration
}

// counters accumulates Stats without a mutex; a snapshot taken while calls
// finish may be slightly inconsistent.
type counters struct {
	executed  atomic.Uint64
	succeeded atomic.Uint64
	failed    atomic.Uint64
	panicked  atomic.Uint64
	totalNs   atomic.Int64
}

func (c *counters) record(result Result) {
	c.executed.Add(1)
	c.totalNs.Add(result.Duration.Nanoseconds())

	switch {
	case result.Panicked:
		c.panicked.Add(1)
	case result.Error != nil:
		c.failed.Add(1)
	default:
		c.succeeded.Add(1)
	}
}

func (c *counters) snapshot() Stats {
	executed := c.executed.Load()
	totalNs := c.totalNs.Load()

	var avgNs int64
	if executed > 0 {
		avgNs = totalNs / int64(executed)
	}

	return Stats{
		Executed:      executed,
		Succeeded:     c.succeeded.Load(),
		Failed:        c.failed.Load(),
		Panicked:      c.panicked.Load(),
		TotalDuration: time.Duration(totalNs),
		AvgDuration:   time.Duration(avgNs),
	}
}
