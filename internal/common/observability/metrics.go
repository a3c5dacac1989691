package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records dispatcher task metrics through OpenTelemetry,
// exported on the default Prometheus registry.
type Observability struct {
	meterProvider *metric.MeterProvider
	taskCounter   otelmetric.Int64Counter
	taskDuration  otelmetric.Float64Histogram
	channelsSent  otelmetric.Int64Histogram
}

// New never fails; if the exporter cannot be built the returned value
// records nothing.
func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	taskCounter, _ := meter.Int64Counter(
		"dispatch.tasks",
		otelmetric.WithDescription("Delivery tasks processed by the dispatcher"),
	)

	taskDuration, _ := meter.Float64Histogram(
		"dispatch.task.duration",
		otelmetric.WithDescription("Time from dispatch to completion of every channel send"),
		otelmetric.WithUnit("ms"),
	)

	channelsSent, _ := meter.Int64Histogram(
		"dispatch.task.channels",
		otelmetric.WithDescription("Channels attempted per delivery task"),
	)

	return &Observability{
		meterProvider: provider,
		taskCounter:   taskCounter,
		taskDuration:  taskDuration,
		channelsSent:  channelsSent,
	}
}

// Noop returns an Observability that records nothing, for tests.
func Noop() *Observability {
	return &Observability{}
}

// RecordTask records one finished delivery task. mode is "pooled" or "overflow".
func (o *Observability) RecordTask(ctx context.Context, mode string, channels int, duration time.Duration, failed int) {
	if o == nil || o.taskCounter == nil {
		return
	}
	status := "ok"
	if failed > 0 {
		status = "partial_failure"
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("status", status),
	)
	o.taskCounter.Add(ctx, 1, attrs)
	o.taskDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	o.channelsSent.Record(ctx, int64(channels), attrs)
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}
