package remote

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Outcome labels for the request counter
const (
	outcomeOK             = "ok"
	outcomeRemoteError    = "remote_error"
	outcomeTransportError = "transport_error"
	outcomeCanceled       = "canceled"
)

type metrics struct {
	requestsTotal   metric.Int64Counter
	requestDuration metric.Float64Histogram
}

func newMetrics(meter metric.Meter) (*metrics, error) {
	requestsTotal, err := meter.Int64Counter(
		"dfspanel_remote_requests_total",
		metric.WithDescription("Total number of requests sent to the generation service"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"dfspanel_remote_request_duration_seconds",
		metric.WithDescription("Generation service request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
		),
	)
	if err != nil {
		return nil, err
	}

	return &metrics{
		requestsTotal:   requestsTotal,
		requestDuration: requestDuration,
	}, nil
}

func (m *metrics) record(ctx context.Context, endpoint, outcome string, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("outcome", outcome),
	)
	// The request context may already be done; metrics still count
	ctx = context.WithoutCancel(ctx)
	m.requestsTotal.Add(ctx, 1, attrs)
	m.requestDuration.Record(ctx, d.Seconds(), attrs)
}
