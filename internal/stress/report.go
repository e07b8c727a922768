package stress

import (
	"errors"
	"fmt"
	"time"

	"github.com/dshills/sigslot"
)

// ErrInvariant is matched by every error returned from Report.Check.
var ErrInvariant = errors.New("invariant violated")

// Report summarizes a run.
type Report struct {
	Signal   string        `json:"signal"`
	Emits    uint64        `json:"emits"`
	Duration time.Duration `json:"duration"`
	Cloned   bool          `json:"cloned"`
	Moved    bool          `json:"moved"`

	SyncHandlers  int `json:"sync_handlers"`
	AsyncHandlers int `json:"async_handlers"`

	SyncCalls       uint64 `json:"sync_calls"`
	AsyncCalls      uint64 `json:"async_calls"`
	ExpectedSync    uint64 `json:"expected_sync"`
	ExpectedAsync   uint64 `json:"expected_async"`
	SyncErrors      uint64 `json:"sync_errors"`
	AsyncErrors     uint64 `json:"async_errors"`
	ExpectedErrors  uint64 `json:"expected_errors"`
	MetricExecution int64  `json:"metric_executions"`
	PendingAfter    int    `json:"pending_after_wait"`

	Stats sigslot.Stats `json:"stats"`
}

// Check verifies that every handler ran once per emission and that every
// injected failure was reported.
func (r *Report) Check() error {
	var errs []error
	violation := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvariant}, args...)...))
	}

	if r.SyncCalls != r.ExpectedSync {
		violation("sync calls %d, expected %d", r.SyncCalls, r.ExpectedSync)
	}
	if r.AsyncCalls != r.ExpectedAsync {
		violation("async calls %d, expected %d", r.AsyncCalls, r.ExpectedAsync)
	}
	if got := r.SyncErrors + r.AsyncErrors; got != r.ExpectedErrors {
		violation("reported failures %d, expected %d", got, r.ExpectedErrors)
	}
	if r.PendingAfter != 0 {
		violation("%d async invocations still tracked after wait", r.PendingAfter)
	}
	if total := r.ExpectedSync + r.ExpectedAsync; r.MetricExecution != int64(total) {
		violation("metrics counted %d executions, expected %d", r.MetricExecution, total)
	}
	return errors.Join(errs...)
}

// expectedFailures returns how many of n calls to one handler fail when
// every failEvery-th call fails.
func expectedFailures(n uint64, failEvery int) uint64 {
	if failEvery <= 0 {
		return 0
	}
	return n / uint64(failEvery)
}
