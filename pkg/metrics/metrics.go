package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Recorder records pipeline metrics.
// Use New for OpenTelemetry metrics or Noop{} when disabled.
type Recorder interface {
	// RecordDisposition records the terminal outcome of one message.
	RecordDisposition(ctx context.Context, disposition string, kind string, attempts int, duration time.Duration)

	// RecordRetry records a failed attempt that is about to be retried.
	RecordRetry(ctx context.Context, attempt int)
}

type otelRecorder struct {
	messages metric.Int64Counter
	retries  metric.Int64Counter
	attempts metric.Int64Histogram
	latency  metric.Float64Histogram
}

func New(meter metric.Meter) (Recorder, error) {
	messages, err := meter.Int64Counter("wikimedia.consumer.messages",
		metric.WithDescription("Number of handled messages by disposition"),
	)
	if err != nil {
		return nil, fmt.Errorf("metrics - New - meter.Int64Counter: %w", err)
	}

	retries, err := meter.Int64Counter("wikimedia.consumer.retries",
		metric.WithDescription("Number of store attempts that were retried"),
	)
	if err != nil {
		return nil, fmt.Errorf("metrics - New - meter.Int64Counter: %w", err)
	}

	attempts, err := meter.Int64Histogram("wikimedia.consumer.store_attempts",
		metric.WithDescription("Store attempts per message"),
	)
	if err != nil {
		return nil, fmt.Errorf("metrics - New - meter.Int64Histogram: %w", err)
	}

	latency, err := meter.Float64Histogram("wikimedia.consumer.handle.latency_ms",
		metric.WithDescription("Time from receipt to terminal disposition in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("metrics - New - meter.Float64Histogram: %w", err)
	}

	return &otelRecorder{
		messages: messages,
		retries:  retries,
		attempts: attempts,
		latency:  latency,
	}, nil
}

func (r *otelRecorder) RecordDisposition(ctx context.Context, disposition string, kind string, attempts int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("disposition", disposition),
		attribute.String("error_kind", kind),
	)

	r.messages.Add(ctx, 1, attrs)
	r.latency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	if attempts > 0 {
		r.attempts.Record(ctx, int64(attempts), attrs)
	}
}

func (r *otelRecorder) RecordRetry(ctx context.Context, attempt int) {
	r.retries.Add(ctx, 1, metric.WithAttributes(attribute.Int("attempt", attempt)))
}

type Noop struct{}

func (Noop) RecordDisposition(context.Context, string, string, int, time.Duration) {}

func (Noop) RecordRetry(context.Context, int) {}
