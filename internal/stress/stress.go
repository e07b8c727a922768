package stress

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeycumines/logiface"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/dshills/sigslot"
	"github.com/dshills/sigslot/internal/config"
)

// Payload is the value emitted on the signal under test.
type Payload struct {
	Seq     uint64
	Emitter int
	Tags    []string
}

// clonePayload gives each asynchronous invocation its own Tags slice.
func clonePayload(p Payload) Payload {
	p.Tags = append([]string(nil), p.Tags...)
	return p
}

// errInjected is returned by handlers on their failing calls.
var errInjected = errors.New("injected failure")

// Runner executes one stress run.
type Runner struct {
	cfg    *config.Config
	logger *logiface.Logger[logiface.Event]

	reader *sdkmetric.ManualReader
	meter  *sdkmetric.MeterProvider

	// mu orders emitters against the mid-run clone or move: emitters hold
	// it shared while emitting, the swap holds it exclusively.
	mu      sync.RWMutex
	current *sigslot.Signal[Payload]

	syncCalls   atomic.Uint64
	asyncCalls  atomic.Uint64
	syncErrors  atomic.Uint64
	asyncErrors atomic.Uint64
}

// NewRunner creates a runner for a validated configuration. A nil logger
// disables logging.
func NewRunner(cfg *config.Config, logger *logiface.Logger[logiface.Event]) *Runner {
	reader := sdkmetric.NewManualReader()
	return &Runner{
		cfg:    cfg,
		logger: logger,
		reader: reader,
		meter:  sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
	}
}

// Run performs the run and returns its report. It returns an error if the
// signal could not be set up or ctx was cancelled; invariant violations are
// reported by Report.Check instead.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	defer func() { _ = r.meter.Shutdown(context.Background()) }()

	sig, err := r.setup()
	if err != nil {
		return nil, err
	}
	r.current = sig

	report := &Report{
		Signal:        r.cfg.Signal.Name,
		SyncHandlers:  r.cfg.Signal.SyncHandlers,
		AsyncHandlers: r.cfg.Signal.AsyncHandlers,
	}

	r.logger.Info().
		Str("signal", r.cfg.Signal.Name).
		Int("sync_handlers", r.cfg.Signal.SyncHandlers).
		Int("async_handlers", r.cfg.Signal.AsyncHandlers).
		Int("emitters", r.cfg.Load.Emitters).
		Int("emits", r.cfg.Load.Emits).
		Float64("rate", r.cfg.Load.Rate).
		Log("stress run starting")

	start := time.Now()
	emitted, err := r.emitAll(ctx, report)
	report.Emits = emitted

	// Outstanding work is waited for even when the run was cut short.
	final := r.current
	final.Wait()
	report.Duration = time.Since(start)
	report.PendingAfter = final.Pending()
	report.Stats = final.Stats()
	final.Close()

	if err != nil {
		return report, err
	}

	report.SyncCalls = r.syncCalls.Load()
	report.AsyncCalls = r.asyncCalls.Load()
	report.SyncErrors = r.syncErrors.Load()
	report.AsyncErrors = r.asyncErrors.Load()
	report.ExpectedSync = emitted * uint64(r.cfg.Signal.SyncHandlers)
	report.ExpectedAsync = emitted * uint64(r.cfg.Signal.AsyncHandlers)
	report.ExpectedErrors = uint64(r.cfg.TotalHandlers()) * expectedFailures(emitted, r.cfg.Signal.FailEvery)

	executions, err := r.collectExecutions(ctx)
	if err != nil {
		return report, err
	}
	report.MetricExecution = executions

	return report, nil
}

// setup creates the signal and registers the handlers.
func (r *Runner) setup() (*sigslot.Signal[Payload], error) {
	opts := []sigslot.Option[Payload]{
		sigslot.WithName[Payload](r.cfg.Signal.Name),
		sigslot.WithLogger[Payload](r.logger),
		sigslot.WithMeter[Payload](r.meter.Meter("sigstress")),
		sigslot.WithArgsCloner(clonePayload),
		sigslot.WithAsyncErrorHandler[Payload](func(err error) {
			if errors.Is(err, errInjected) {
				r.asyncErrors.Add(1)
				return
			}
			r.logger.Err().Err(err).Log("unexpected async failure")
		}),
	}
	if r.cfg.Signal.MaxHandlers > 0 {
		opts = append(opts, sigslot.WithMaxHandlers[Payload](r.cfg.Signal.MaxHandlers))
	}
	sig := sigslot.New(opts...)

	for i := 0; i < r.cfg.Signal.SyncHandlers; i++ {
		if _, err := sig.Register(sigslot.Sync(r.handler(&r.syncCalls))); err != nil {
			return nil, fmt.Errorf("registering sync handler %d: %w", i, err)
		}
	}
	for i := 0; i < r.cfg.Signal.AsyncHandlers; i++ {
		if _, err := sig.Register(sigslot.Async(r.handler(&r.asyncCalls))); err != nil {
			return nil, fmt.Errorf("registering async handler %d: %w", i, err)
		}
	}
	return sig, nil
}

// handler returns a handler that spins for the configured work time, counts
// its call, and fails every FailEvery-th call.
func (r *Runner) handler(calls *atomic.Uint64) sigslot.HandlerFunc[Payload] {
	var own atomic.Uint64
	work := time.Duration(r.cfg.Load.Work)
	failEvery := uint64(max(r.cfg.Signal.FailEvery, 0))

	return func(_ context.Context, p Payload) error {
		spin(work)
		calls.Add(1)
		n := own.Add(1)
		if failEvery > 0 && n%failEvery == 0 {
			return fmt.Errorf("payload %d: %w", p.Seq, errInjected)
		}
		return nil
	}
}

// spin busy-waits for d.
func spin(d time.Duration) {
	if d <= 0 {
		return
	}
	for deadline := time.Now().Add(d); time.Now().Before(deadline); {
	}
}

// emitAll runs the emitters and returns the number of completed Emits.
func (r *Runner) emitAll(ctx context.Context, report *Report) (uint64, error) {
	total := uint64(r.cfg.Load.Emits)
	midpoint := total / 2

	var limiter *rate.Limiter
	if r.cfg.Load.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.cfg.Load.Rate), r.cfg.Load.Burst)
	}

	var next, done atomic.Uint64
	g, gctx := errgroup.WithContext(ctx)

	for e := 0; e < r.cfg.Load.Emitters; e++ {
		emitter := e
		g.Go(func() error {
			for {
				seq := next.Add(1)
				if seq > total {
					return nil
				}
				if limiter != nil {
					if err := limiter.Wait(gctx); err != nil {
						return err
					}
				} else if err := gctx.Err(); err != nil {
					return err
				}

				if seq == midpoint {
					r.swap(report)
				}

				p := Payload{Seq: seq, Emitter: emitter, Tags: []string{"stress"}}
				r.emit(gctx, p)
				done.Add(1)
			}
		})
	}

	err := g.Wait()
	return done.Load(), err
}

// emit delivers p on the current signal and counts injected sync failures.
func (r *Runner) emit(ctx context.Context, p Payload) {
	r.mu.RLock()
	err := r.current.Emit(ctx, p)
	r.mu.RUnlock()

	if err == nil {
		return
	}
	for _, e := range flatten(err) {
		if errors.Is(e, errInjected) {
			r.syncErrors.Add(1)
			continue
		}
		r.logger.Err().Uint64("seq", p.Seq).Err(e).Log("unexpected sync failure")
	}
}

// swap replaces the current signal with a clone or a moved copy.
func (r *Runner) swap(report *Report) {
	if !r.cfg.Load.Clone && !r.cfg.Load.Move {
		return
	}

	r.mu.Lock()
	old := r.current
	var mode string
	if r.cfg.Load.Move {
		r.current = old.Move()
		report.Moved = true
		mode = "move"
	} else {
		r.current = old.Clone()
		report.Cloned = true
		mode = "clone"
	}
	r.mu.Unlock()

	// A clone leaves the original's in-flight work behind.
	old.Close()

	r.logger.Info().
		Str("signal", r.cfg.Signal.Name).
		Str("op", mode).
		Int("handlers", r.current.Count()).
		Log("signal swapped mid-run")
}

// collectExecutions sums the handler execution counter.
func (r *Runner) collectExecutions(ctx context.Context) (int64, error) {
	var rm metricdata.ResourceMetrics
	if err := r.reader.Collect(ctx, &rm); err != nil {
		return 0, fmt.Errorf("collecting metrics: %w", err)
	}

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "sigslot.handler.executions" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total, nil
}

// flatten returns the errors joined by errors.Join, or err itself.
func flatten(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
