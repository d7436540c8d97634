package observability

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/zatekoja/doctorconnect"

// Metrics holds all client metrics
type Metrics struct {
	RequestCount          metric.Int64Counter
	RequestDuration       metric.Float64Histogram
	TransitionsApplied    metric.Int64Counter
	TransitionsRolledBack metric.Int64Counter
	GuardRejections       metric.Int64Counter
	CacheHitCount         metric.Int64Counter
	CacheMissCount        metric.Int64Counter
}

// Setup initializes OpenTelemetry tracing, metrics and Go runtime
// instrumentation, exporting over OTLP/gRPC to endpoint.
func Setup(ctx context.Context, serviceName, serviceVersion, endpoint string) (func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	// Set up trace exporter
	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	// Set up metric exporter
	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		_ = tracerProvider.Shutdown(ctx)
		return nil, err
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(15*time.Second))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)

	if err := runtime.Start(runtime.WithMinimumReadMemStatsInterval(15 * time.Second)); err != nil {
		_ = meterProvider.Shutdown(ctx)
		_ = tracerProvider.Shutdown(ctx)
		return nil, err
	}

	shutdown := func(ctx context.Context) error {
		return errors.Join(
			meterProvider.Shutdown(ctx),
			tracerProvider.Shutdown(ctx),
		)
	}

	return shutdown, nil
}

// InitMetrics creates the client instruments on the global meter provider.
// Without Setup they are no-ops.
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	requestCount, err := meter.Int64Counter(
		"http.client.request.count",
		metric.WithDescription("Number of backend requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("Backend request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	applied, err := meter.Int64Counter(
		"appointment.transition.applied",
		metric.WithDescription("Transitions confirmed by the backend"),
	)
	if err != nil {
		return nil, err
	}

	rolledBack, err := meter.Int64Counter(
		"appointment.transition.rolled_back",
		metric.WithDescription("Optimistic transitions reverted after a failed request"),
	)
	if err != nil {
		return nil, err
	}

	guarded, err := meter.Int64Counter(
		"appointment.transition.guard_rejected",
		metric.WithDescription("Transitions refused locally without a request"),
	)
	if err != nil {
		return nil, err
	}

	cacheHitCount, err := meter.Int64Counter(
		"cache.hit.count",
		metric.WithDescription("Number of cache hits"),
	)
	if err != nil {
		return nil, err
	}

	cacheMissCount, err := meter.Int64Counter(
		"cache.miss.count",
		metric.WithDescription("Number of cache misses"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCount:          requestCount,
		RequestDuration:       requestDuration,
		TransitionsApplied:    applied,
		TransitionsRolledBack: rolledBack,
		GuardRejections:       guarded,
		CacheHitCount:         cacheHitCount,
		CacheMissCount:        cacheMissCount,
	}, nil
}

// StartSpan starts a new trace span
func StartSpan(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer(instrumentationName)
	return tracer.Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// RecordError records an error in the current span
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
}

// RecordRequestMetric records one backend call. A nil metrics is ignored.
func RecordRequestMetric(ctx context.Context, metrics *Metrics, method, route string, statusCode int, duration time.Duration) {
	if metrics == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", statusCode),
	)

	metrics.RequestCount.Add(ctx, 1, attrs)
	metrics.RequestDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// TransitionOutcome labels the result of one transition attempt
type TransitionOutcome string

const (
	TransitionApplied    TransitionOutcome = "applied"
	TransitionRolledBack TransitionOutcome = "rolled_back"
	TransitionGuarded    TransitionOutcome = "guard_rejected"
)

// RecordTransition counts a transition attempt by outcome
func RecordTransition(ctx context.Context, metrics *Metrics, action string, outcome TransitionOutcome) {
	if metrics == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("appointment.action", action))
	switch outcome {
	case TransitionApplied:
		metrics.TransitionsApplied.Add(ctx, 1, attrs)
	case TransitionRolledBack:
		metrics.TransitionsRolledBack.Add(ctx, 1, attrs)
	case TransitionGuarded:
		metrics.GuardRejections.Add(ctx, 1, attrs)
	}
}

// RecordCacheHit records a cache hit
func RecordCacheHit(ctx context.Context, metrics *Metrics, key string) {
	if metrics == nil {
		return
	}
	metrics.CacheHitCount.Add(ctx, 1, metric.WithAttributes(attribute.String("cache.key", key)))
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss(ctx context.Context, metrics *Metrics, key string) {
	if metrics == nil {
		return
	}
	metrics.CacheMissCount.Add(ctx, 1, metric.WithAttributes(attribute.String("cache.key", key)))
}
