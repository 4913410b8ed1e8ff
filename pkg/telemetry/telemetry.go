// Package telemetry wires OpenTelemetry tracing for a single solver run.
//
// The provider is process wide: Init installs it, StartSpan and Stage use
// it. When tracing is disabled spans go to the global no-op tracer.
package telemetry

import (
	"context"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"maxflow/pkg/apperror"
)

const defaultTracerName = "maxflow"

// Config конфигурация телеметрии
type Config struct {
	Enabled     bool
	Endpoint    string // host:port коллектора OTLP/gRPC
	ServiceName string
	Version     string
	Environment string
	SampleRate  float64
}

// Provider holds the tracer used for spans. tp is nil for a no-op provider.
type Provider struct {
	tp     *sdktrace.TracerProvider
	tracer trace.Tracer
}

var current atomic.Pointer[Provider]

// Init builds the tracer provider described by cfg and installs it.
func Init(ctx context.Context, cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{tracer: otel.Tracer(tracerName(cfg.ServiceName))}, nil
	}
	if cfg.Endpoint == "" {
		return nil, apperror.New(apperror.CodeInvalidArgument, "tracing endpoint is required when tracing is enabled")
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "create trace exporter")
	}

	res, err := newResource(cfg)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "build trace resource")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(samplerFor(cfg.SampleRate)),
	)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return NewProvider(tp, cfg.ServiceName), nil
}

func newResource(cfg Config) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(tracerName(cfg.ServiceName)),
			semconv.ServiceVersion(cfg.Version),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
}

func tracerName(serviceName string) string {
	if serviceName == "" {
		return defaultTracerName
	}
	return serviceName
}

// samplerFor maps a sample rate onto a sampler; rates outside (0,1) clamp.
func samplerFor(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// NewProvider installs tp as the global tracer provider.
func NewProvider(tp *sdktrace.TracerProvider, serviceName string) *Provider {
	otel.SetTracerProvider(tp)
	p := &Provider{tp: tp, tracer: tp.Tracer(tracerName(serviceName))}
	current.Store(p)
	return p
}

// Shutdown flushes pending spans. A run is short, so this is where
// everything actually gets exported.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp == nil {
		return nil
	}
	if current.Load() == p {
		current.Store(nil)
	}
	return p.tp.Shutdown(ctx)
}

func (p *Provider) Tracer() trace.Tracer {
	return p.tracer
}

// Get returns the installed provider or a no-op one.
func Get() *Provider {
	if p := current.Load(); p != nil {
		return p
	}
	return &Provider{tracer: otel.Tracer(defaultTracerName)}
}

// StartSpan начинает новый span
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Get().tracer.Start(ctx, name, opts...)
}

// AddEvent добавляет событие в текущий span
func AddEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}

// SetError marks the current span failed and tags it with the error code.
func SetError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if code := apperror.Code(err); code != "" {
		span.SetAttributes(attribute.String(AttrErrorCode, string(code)))
	}
}

func SetAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).SetAttributes(attrs...)
}

// WithAttributes создаёт SpanStartOption с атрибутами
func WithAttributes(attrs ...attribute.KeyValue) trace.SpanStartOption {
	return trace.WithAttributes(attrs...)
}
