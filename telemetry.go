package sigslot

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/dshills/sigslot/internal/dispatch"
)

// instrumentationName is the OTel scope name for signal metrics and spans.
const instrumentationName = "github.com/dshills/sigslot"

// instruments holds the OTel instruments of one signal. Instruments are safe
// for concurrent use and are shared by copies of the signal.
type instruments struct {
	tracer     trace.Tracer
	emits      metric.Int64Counter
	executions metric.Int64Counter
	duration   metric.Float64Histogram
	signal     attribute.KeyValue
}

// newInstruments creates the instruments. If meter or tracer is nil the
// global providers are used, which are noop unless the application installed
// real ones.
func newInstruments(name string, meter metric.Meter, tracer trace.Tracer) *instruments {
	if meter == nil {
		meter = otel.Meter(instrumentationName)
	}
	if tracer == nil {
		tracer = otel.Tracer(instrumentationName)
	}

	// On error the API returns noop instruments, so recording degrades
	// gracefully.
	emits, _ := meter.Int64Counter(
		"sigslot.emit.count",
		metric.WithDescription("Total number of Emit calls"),
		metric.WithUnit("{emit}"),
	)
	executions, _ := meter.Int64Counter(
		"sigslot.handler.executions",
		metric.WithDescription("Total number of handler executions"),
		metric.WithUnit("{execution}"),
	)
	duration, _ := meter.Float64Histogram(
		"sigslot.handler.duration",
		metric.WithDescription("Duration of handler execution in seconds"),
		metric.WithUnit("s"),
	)

	return &instruments{
		tracer:     tracer,
		emits:      emits,
		executions: executions,
		duration:   duration,
		signal:     attribute.String("signal", name),
	}
}

// startEmit opens the span for one Emit and counts it.
func (in *instruments) startEmit(ctx context.Context, emitID string, handlers int) (context.Context, trace.Span) {
	in.emits.Add(ctx, 1, metric.WithAttributes(in.signal))
	return in.tracer.Start(ctx, "sigslot.emit",
		trace.WithAttributes(
			in.signal,
			attribute.String("sigslot.emit_id", emitID),
			attribute.Int("sigslot.handlers", handlers),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// record records one handler execution.
func (in *instruments) record(ctx context.Context, mode Mode, result dispatch.Result) {
	attrs := metric.WithAttributes(
		in.signal,
		attribute.String("mode", mode.String()),
		attribute.String("status", result.Status()),
	)
	in.executions.Add(ctx, 1, attrs)
	in.duration.Record(ctx, result.Duration.Seconds(), attrs)
}
