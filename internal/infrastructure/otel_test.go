package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"qoedash/internal/config"
	"qoedash/internal/shared/testutil"
)

func TestInitializeOTel(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	t.Run("metrics enabled exposes prometheus handler", func(t *testing.T) {
		cfg := NewOTelConfig(config.TelemetryConfig{
			ServiceName:    "qoe-test",
			Environment:    "test",
			MetricsEnabled: true,
		}, "v0.0.0")

		providers, err := InitializeOTel(cfg, logger)
		require.NoError(t, err)
		t.Cleanup(func() { _ = providers.Shutdown(context.Background()) })

		require.NotNil(t, providers.PrometheusHTTP)
		require.NotNil(t, providers.MeterProvider)
		assert.Nil(t, providers.TracerProvider)

		metrics, err := CreateBusinessMetrics(providers.Meter)
		require.NoError(t, err)
		RecordUploadMetrics(context.Background(), metrics, "csv", 512, false, nil)

		rec := httptest.NewRecorder()
		providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "dataset_uploads_total")
		assert.Contains(t, rec.Body.String(), "go_goroutines")
	})

	t.Run("everything disabled still yields usable tracer and meter", func(t *testing.T) {
		cfg := NewOTelConfig(config.TelemetryConfig{ServiceName: "qoe-test"}, "v0.0.0")

		providers, err := InitializeOTel(cfg, logger)
		require.NoError(t, err)

		assert.Nil(t, providers.PrometheusHTTP)
		assert.NotNil(t, providers.Tracer)
		assert.NotNil(t, providers.Meter)

		_, err = CreateBusinessMetrics(providers.Meter)
		assert.NoError(t, err)
		assert.NoError(t, providers.Shutdown(context.Background()))
	})

	t.Run("tracing writes spans to the configured writer", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := NewOTelConfig(config.TelemetryConfig{ServiceName: "qoe-test", TracingEnabled: true, SampleRate: 1}, "v0.0.0")
		cfg.TraceWriter = &buf

		providers, err := InitializeOTel(cfg, logger)
		require.NoError(t, err)
		require.NotNil(t, providers.TracerProvider)

		ctx, span := providers.Tracer.Start(context.Background(), "dataset.upload")
		RecordError(ctx, errors.New("bad header"))
		span.End()

		require.NoError(t, providers.Shutdown(context.Background()))
		assert.Contains(t, buf.String(), "dataset.upload")
		assert.Contains(t, buf.String(), "bad header")
	})

	t.Run("unsupported exporter", func(t *testing.T) {
		cfg := NewOTelConfig(config.TelemetryConfig{MetricsEnabled: true}, "v0.0.0")
		cfg.MetricExporter = "otlp"

		_, err := InitializeOTel(cfg, logger)
		assert.Error(t, err)
	})
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumValue(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestBusinessMetricsRecorders(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := CreateBusinessMetrics(provider.Meter(InstrumentationName))
	require.NoError(t, err)

	ctx := context.Background()
	RecordUploadMetrics(ctx, metrics, "csv", 100, false, nil)
	RecordUploadMetrics(ctx, metrics, "csv", 100, true, nil)
	RecordUploadMetrics(ctx, metrics, "xlsx", 10, false, errors.New("bad file"))
	RecordParseMetrics(ctx, metrics, "csv", 20*time.Millisecond, 6)
	RecordViewMetrics(ctx, metrics, "map", time.Millisecond, false)
	RecordMarkerMetrics(ctx, metrics, "route", 4)
	RecordMarkerMetrics(ctx, metrics, "static", 0)

	got := collect(t, reader)
	assert.EqualValues(t, 3, sumValue(t, got["dataset_uploads_total"]))
	assert.EqualValues(t, 1, sumValue(t, got["dataset_parse_cache_hits_total"]))
	assert.EqualValues(t, 1, sumValue(t, got["dataset_parse_cache_misses_total"]))
	assert.EqualValues(t, 1, sumValue(t, got["view_computations_total"]))
	assert.EqualValues(t, 4, sumValue(t, got["map_markers_emitted_total"]))
	assert.Contains(t, got, "dataset_parse_duration_seconds")
}

func TestDatasetGauges(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	sessions := int64(3)
	reg, err := RegisterDatasetGauges(provider.Meter(InstrumentationName),
		func() int64 { return sessions },
		func() int64 { return 1 },
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Unregister() })

	got := collect(t, reader)
	gauge, ok := got["dataset_sessions_active"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.EqualValues(t, 3, gauge.DataPoints[0].Value)
	assert.Contains(t, got, "dataset_parse_cache_entries")
}

func TestRecordersTolerateNilMetrics(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordUploadMetrics(ctx, nil, "csv", 1, false, nil)
		RecordParseMetrics(ctx, nil, "csv", time.Second, 1)
		RecordViewMetrics(ctx, nil, "table", time.Second, true)
		RecordMarkerMetrics(ctx, nil, "route", 1)
		RecordSystemError(ctx, nil, "x", "y")
		RecordError(ctx, errors.New("no span"))
	})
}

func TestSystemMetricsCollector(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	collector, err := NewSystemMetricsCollector(provider.Meter(InstrumentationName), time.Now().Add(-time.Minute))
	require.NoError(t, err)

	stats := collector.Stats()
	assert.Positive(t, stats.Goroutines)
	assert.Positive(t, stats.CPUs)
	assert.NotEmpty(t, stats.GoVersion)
	assert.GreaterOrEqual(t, stats.UptimeSeconds, 60.0)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	assert.True(t, names["system_goroutines"])
	assert.True(t, names["system_process_uptime_seconds"])

	require.NoError(t, collector.Stop())
	require.NoError(t, collector.Stop())
}
