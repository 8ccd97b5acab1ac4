// Package telemetry sets up the OpenTelemetry tracer provider for the client.
package telemetry

import (
	"context"
	"fmt"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	serviceName    = "ragchat"
	serviceVersion = "1.0.0" // TODO: Get this from build info or environment
)

// Config holds the configuration for telemetry
type Config struct {
	Enabled      bool
	OTLPEndpoint string
}

// Provider manages the telemetry system. When disabled it hands out no-op
// tracers, so callers never need to branch.
type Provider struct {
	tracerProvider *sdktrace.TracerProvider
}

// NewProvider creates a new telemetry provider
func NewProvider(ctx context.Context, config Config) (*Provider, error) {
	if !config.Enabled {
		log.Printf("Telemetry disabled")
		return &Provider{}, nil
	}

	exporter, err := newExporter(ctx, config)
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(serviceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to build telemetry resource: %w", err)
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)

	log.Printf("Telemetry enabled, exporting traces to %s", config.OTLPEndpoint)
	return &Provider{tracerProvider: tracerProvider}, nil
}

func newExporter(ctx context.Context, config Config) (*otlptrace.Exporter, error) {
	opts := []otlptracehttp.Option{}
	if config.OTLPEndpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(config.OTLPEndpoint), otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	return exporter, nil
}

// Tracer returns a tracer for instrumenting outgoing requests.
func (p *Provider) Tracer() trace.Tracer {
	if p.tracerProvider == nil {
		return noop.NewTracerProvider().Tracer(serviceName)
	}
	return p.tracerProvider.Tracer(serviceName)
}

// Shutdown flushes any buffered spans and shuts down the tracer provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tracerProvider == nil {
		return nil
	}
	return p.tracerProvider.Shutdown(ctx)
}
