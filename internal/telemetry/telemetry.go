// Package telemetry installs the OpenTelemetry tracer provider that the HTTP
// server and the simulation engine report spans to.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"

	ServiceName = "schemabench"
)

type Options struct {
	// Exporter is one of ExporterNone, ExporterStdout or ExporterOTLP.
	Exporter string
	// Endpoint is the OTLP gRPC collector address, host:port.
	Endpoint string
	Version  string
	// Writer receives stdout spans; defaults to os.Stderr.
	Writer io.Writer
}

// ShutdownFunc flushes pending spans and stops the provider.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Setup installs a global tracer provider for opts.Exporter. With no
// exporter nothing is installed and otel's no-op provider stays in place.
func Setup(ctx context.Context, opts Options) (ShutdownFunc, error) {
	var (
		exporter sdktrace.SpanExporter
		err      error
	)
	switch opts.Exporter {
	case "", ExporterNone:
		return noopShutdown, nil
	case ExporterStdout:
		w := opts.Writer
		if w == nil {
			w = os.Stderr
		}
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(w))
	case ExporterOTLP:
		if opts.Endpoint == "" {
			return nil, fmt.Errorf("otlp exporter needs an endpoint")
		}
		exporter, err = otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(opts.Endpoint),
			otlptracegrpc.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unknown trace exporter %q: must be %q, %q or %q", opts.Exporter, ExporterNone, ExporterStdout, ExporterOTLP)
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s exporter: %w", opts.Exporter, err)
	}

	version := opts.Version
	if version == "" {
		version = "dev"
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceNameKey.String(ServiceName),
			semconv.ServiceVersionKey.String(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}
