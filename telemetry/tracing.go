// Package telemetry configures OpenTelemetry tracing and metrics for the server.
package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// InstrumentationName is the tracer and meter name used by the HTTP layer.
const InstrumentationName = "github.com/bb3d/studio-api"

// Exporter selection, matching config.Exporter* values.
const (
	ExporterOTLP   = "otlp"
	ExporterStdout = "stdout"
	ExporterNone   = "none"
)

// Options selects where telemetry goes.
type Options struct {
	ServiceName    string
	ServiceVersion string
	Exporter       string
	Endpoint       string

	// Writer receives stdout exporter output. Defaults to os.Stderr so that
	// telemetry does not interleave with the JSON access log on stdout.
	Writer io.Writer
}

// ShutdownFunc flushes and stops a provider.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

func (o Options) writer() io.Writer {
	if o.Writer != nil {
		return o.Writer
	}
	return os.Stderr
}

func (o Options) resource(ctx context.Context) (*resource.Resource, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(o.ServiceName),
			semconv.ServiceVersion(o.ServiceVersion),
		),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create resource")
	}
	return res, nil
}

// InitTracing installs a global tracer provider for the chosen exporter.
// With ExporterNone the global no-op provider is left in place.
func InitTracing(ctx context.Context, opts Options) (ShutdownFunc, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	var (
		exporter sdktrace.SpanExporter
		err      error
	)
	switch opts.Exporter {
	case ExporterNone, "":
		slog.Debug("tracing disabled")
		return noopShutdown, nil
	case ExporterStdout:
		exporter, err = stdouttrace.New(
			stdouttrace.WithWriter(opts.writer()),
			stdouttrace.WithPrettyPrint(),
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create stdout exporter")
		}
	case ExporterOTLP:
		exporter, err = otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(opts.Endpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create OTLP exporter")
		}
	default:
		return nil, errors.Errorf("unknown trace exporter %q", opts.Exporter)
	}

	res, err := opts.resource(ctx)
	if err != nil {
		return nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	)
	otel.SetTracerProvider(tracerProvider)

	slog.Info("tracing initialized", "exporter", opts.Exporter, "endpoint", opts.Endpoint)
	return tracerProvider.Shutdown, nil
}
