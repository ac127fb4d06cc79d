package telemetry_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/bb3d/studio-api/telemetry"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func TestNewInstruments_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	inst, err := telemetry.NewInstruments(mp.Meter(telemetry.InstrumentationName))
	require.NoError(t, err)

	ctx := context.Background()
	inst.RequestsTotal.Add(ctx, 3)
	inst.ResponseSize.Record(ctx, 64)

	rm := collect(t, reader)

	m, ok := findMetric(rm, "http.requests.total")
	require.True(t, ok, "http.requests.total not exported")
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "unexpected data type %T", m.Data)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(3), sum.DataPoints[0].Value)

	_, ok = findMetric(rm, "http.response.size")
	assert.True(t, ok, "http.response.size not exported")
}

func TestRegisterRuntimeMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	require.NoError(t, telemetry.RegisterRuntimeMetrics(mp.Meter(telemetry.InstrumentationName)))

	m, ok := findMetric(collect(t, reader), "runtime.memory.heap.alloc")
	require.True(t, ok, "runtime.memory.heap.alloc not exported")
	gauge, ok := m.Data.(metricdata.Gauge[int64])
	require.True(t, ok, "unexpected data type %T", m.Data)
	require.Len(t, gauge.DataPoints, 1)
	assert.Positive(t, gauge.DataPoints[0].Value)
}

func TestInit_None(t *testing.T) {
	before := otel.GetTracerProvider()

	shutdownTracing, err := telemetry.InitTracing(context.Background(), telemetry.Options{Exporter: telemetry.ExporterNone})
	require.NoError(t, err)
	shutdownMetrics, err := telemetry.InitMetrics(context.Background(), telemetry.Options{Exporter: telemetry.ExporterNone})
	require.NoError(t, err)

	assert.Equal(t, before, otel.GetTracerProvider())
	assert.NoError(t, shutdownTracing(context.Background()))
	assert.NoError(t, shutdownMetrics(context.Background()))
}

func TestInit_UnknownExporter(t *testing.T) {
	_, err := telemetry.InitTracing(context.Background(), telemetry.Options{Exporter: "zipkin"})
	assert.Error(t, err)

	_, err = telemetry.InitMetrics(context.Background(), telemetry.Options{Exporter: "zipkin"})
	assert.Error(t, err)
}

func TestInitTracing_Stdout(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var buf bytes.Buffer
	shutdown, err := telemetry.InitTracing(context.Background(), telemetry.Options{
		ServiceName:    "bb-3d-studio",
		ServiceVersion: "test",
		Exporter:       telemetry.ExporterStdout,
		Writer:         &buf,
	})
	require.NoError(t, err)

	_, span := otel.Tracer(telemetry.InstrumentationName).Start(context.Background(), "export-span")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "export-span")
	assert.Contains(t, buf.String(), "bb-3d-studio")
}
