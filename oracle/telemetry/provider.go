// Package telemetry configures OpenTelemetry tracing and metrics for the
// distance oracle.
package telemetry

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	metricsdk "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName    = "distance-oracle"
	serviceVersion = "1.0.0"
)

// Config holds the configuration for telemetry
type Config struct {
	// OTLPEndpoint enables trace export when set, e.g. "localhost:4318".
	OTLPEndpoint string
	SampleRate   float64
	ChainID      string

	// PrometheusEnabled exposes otel instruments on the default Prometheus registry.
	PrometheusEnabled bool
}

// Provider manages OpenTelemetry tracing and metrics
type Provider struct {
	tracerProvider *tracesdk.TracerProvider
	meterProvider  *metricsdk.MeterProvider
	tracer         trace.Tracer
	meter          metric.Meter
	config         Config
}

// NewProvider initializes tracing and metrics. With an empty config it
// returns a provider backed by the global no-op implementations.
func NewProvider(cfg Config) (*Provider, error) {
	provider := &Provider{config: cfg}
	if cfg.OTLPEndpoint == "" && !cfg.PrometheusEnabled {
		return provider, nil
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid telemetry config: %w", err)
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
			attribute.String("chain.id", cfg.ChainID),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if cfg.OTLPEndpoint != "" {
		if err := provider.initTracing(res); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}
	if cfg.PrometheusEnabled {
		if err := provider.initMetrics(res); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}
	return provider, nil
}

func validateConfig(cfg Config) error {
	if cfg.OTLPEndpoint != "" {
		if _, err := url.Parse(cfg.OTLPEndpoint); err != nil {
			return fmt.Errorf("invalid otlp endpoint: %w", err)
		}
	}
	if cfg.SampleRate < 0 || cfg.SampleRate > 1 {
		return fmt.Errorf("sample rate must be between 0 and 1")
	}
	return nil
}

func (p *Provider) initTracing(res *resource.Resource) error {
	endpoint := strings.TrimPrefix(p.config.OTLPEndpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	client := otlptracehttp.NewClient(
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
		otlptracehttp.WithURLPath("/v1/traces"),
	)
	exporter, err := otlptrace.New(context.Background(), client)
	if err != nil {
		return fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	tp := tracesdk.NewTracerProvider(
		tracesdk.WithBatcher(exporter, tracesdk.WithBatchTimeout(5*time.Second)),
		tracesdk.WithResource(res),
		tracesdk.WithSampler(tracesdk.ParentBased(tracesdk.TraceIDRatioBased(p.config.SampleRate))),
	)
	otel.SetTracerProvider(tp)

	p.tracerProvider = tp
	p.tracer = tp.Tracer(serviceName)
	return nil
}

func (p *Provider) initMetrics(res *resource.Resource) error {
	exporter, err := prometheus.New()
	if err != nil {
		return fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}
	mp := metricsdk.NewMeterProvider(
		metricsdk.WithResource(res),
		metricsdk.WithReader(exporter),
	)
	otel.SetMeterProvider(mp)

	p.meterProvider = mp
	p.meter = mp.Meter(serviceName)
	return nil
}

// Shutdown flushes and stops the providers
func (p *Provider) Shutdown(ctx context.Context) error {
	var err error
	if p.tracerProvider != nil {
		if shutdownErr := p.tracerProvider.Shutdown(ctx); shutdownErr != nil {
			err = fmt.Errorf("failed to shutdown tracer provider: %w", shutdownErr)
		}
	}
	if p.meterProvider != nil {
		if shutdownErr := p.meterProvider.Shutdown(ctx); shutdownErr != nil {
			if err != nil {
				err = fmt.Errorf("%w; failed to shutdown meter provider: %w", err, shutdownErr)
			} else {
				err = fmt.Errorf("failed to shutdown meter provider: %w", shutdownErr)
			}
		}
	}
	return err
}

// Tracer returns the OpenTelemetry tracer
func (p *Provider) Tracer() trace.Tracer {
	if p == nil || p.tracer == nil {
		return otel.Tracer(serviceName)
	}
	return p.tracer
}

// Meter returns the OpenTelemetry meter
func (p *Provider) Meter() metric.Meter {
	if p == nil || p.meter == nil {
		return otel.Meter(serviceName)
	}
	return p.meter
}

// StartRunSpan starts the span covering one oracle run
func StartRunSpan(ctx context.Context, tracer trace.Tracer, runID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "oracle.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("oracle.run_id", runID)),
	)
}

// RecordError records an error on the span
func RecordError(span trace.Span, err error) {
	if span != nil && err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// AddSpanEvent adds an event to a span
func AddSpanEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	if span != nil {
		span.AddEvent(name, trace.WithAttributes(attrs...))
	}
}
