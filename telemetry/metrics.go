package telemetry

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const exportInterval = 10 * time.Second

// Instruments are the HTTP server metrics recorded by middleware.Metrics.
type Instruments struct {
	RequestsTotal     metric.Int64Counter
	ErrorsTotal       metric.Int64Counter
	ActiveConnections metric.Int64UpDownCounter
	RequestDuration   metric.Float64Histogram
	ResponseSize      metric.Int64Histogram
}

// InitMetrics installs a global meter provider with a periodic reader for the
// chosen exporter. With ExporterNone the global no-op provider is left in place.
func InitMetrics(ctx context.Context, opts Options) (ShutdownFunc, error) {
	var (
		exporter sdkmetric.Exporter
		err      error
	)
	switch opts.Exporter {
	case ExporterNone, "":
		slog.Debug("metrics disabled")
		return noopShutdown, nil
	case ExporterStdout:
		exporter, err = stdoutmetric.New(stdoutmetric.WithWriter(opts.writer()))
		if err != nil {
			return nil, errors.Wrap(err, "failed to create stdout exporter")
		}
	case ExporterOTLP:
		exporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(opts.Endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create OTLP exporter")
		}
	default:
		return nil, errors.Errorf("unknown metric exporter %q", opts.Exporter)
	}

	res, err := opts.resource(ctx)
	if err != nil {
		return nil, err
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(exportInterval)),
		),
	)
	otel.SetMeterProvider(meterProvider)

	slog.Info("metrics initialized", "exporter", opts.Exporter, "endpoint", opts.Endpoint)
	return meterProvider.Shutdown, nil
}

// NewInstruments creates the HTTP server instruments on meter.
func NewInstruments(meter metric.Meter) (*Instruments, error) {
	var (
		inst Instruments
		err  error
	)

	inst.RequestsTotal, err = meter.Int64Counter(
		"http.requests.total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	inst.ErrorsTotal, err = meter.Int64Counter(
		"http.errors.total",
		metric.WithDescription("Total number of HTTP error responses"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	inst.ActiveConnections, err = meter.Int64UpDownCounter(
		"http.active_connections",
		metric.WithDescription("Number of in-flight HTTP requests"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	inst.RequestDuration, err = meter.Float64Histogram(
		"http.request.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	inst.ResponseSize, err = meter.Int64Histogram(
		"http.response.size",
		metric.WithDescription("HTTP response size"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &inst, nil
}

// RegisterRuntimeMetrics registers an observable gauge for heap allocation.
func RegisterRuntimeMetrics(meter metric.Meter) error {
	heapAlloc, err := meter.Int64ObservableGauge(
		"runtime.memory.heap.alloc",
		metric.WithDescription("Bytes of allocated heap objects"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		o.ObserveInt64(heapAlloc, int64(m.Alloc))
		return nil
	}, heapAlloc)
	return err
}
