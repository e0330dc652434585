package infrastructure

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// BusinessMetrics holds the dashboard's application metrics
type BusinessMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Dataset metrics
	UploadsTotal     metric.Int64Counter
	UploadBytes      metric.Int64Histogram
	ParseDuration    metric.Float64Histogram
	ParseCacheHits   metric.Int64Counter
	ParseCacheMisses metric.Int64Counter

	// View metrics
	ViewComputations metric.Int64Counter
	ViewDuration     metric.Float64Histogram
	MarkersEmitted   metric.Int64Counter

	SystemErrors metric.Int64Counter
}

// CreateBusinessMetrics creates the application metrics on meter
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	m := &BusinessMetrics{}
	var err error

	// HTTP metrics
	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	); err != nil {
		return nil, err
	}

	// Dataset metrics
	if m.UploadsTotal, err = meter.Int64Counter(
		"dataset_uploads_total",
		metric.WithDescription("Total number of dataset uploads"),
	); err != nil {
		return nil, err
	}

	if m.UploadBytes, err = meter.Int64Histogram(
		"dataset_upload_bytes",
		metric.WithDescription("Size of uploaded measurement files"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}

	if m.ParseDuration, err = meter.Float64Histogram(
		"dataset_parse_duration_seconds",
		metric.WithDescription("Time spent parsing measurement files"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.ParseCacheHits, err = meter.Int64Counter(
		"dataset_parse_cache_hits_total",
		metric.WithDescription("Uploads served from the parse cache"),
	); err != nil {
		return nil, err
	}

	if m.ParseCacheMisses, err = meter.Int64Counter(
		"dataset_parse_cache_misses_total",
		metric.WithDescription("Uploads that required a fresh parse"),
	); err != nil {
		return nil, err
	}

	// View metrics
	if m.ViewComputations, err = meter.Int64Counter(
		"view_computations_total",
		metric.WithDescription("Total number of derived views computed"),
	); err != nil {
		return nil, err
	}

	if m.ViewDuration, err = meter.Float64Histogram(
		"view_duration_seconds",
		metric.WithDescription("Time spent computing derived views"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.MarkersEmitted, err = meter.Int64Counter(
		"map_markers_emitted_total",
		metric.WithDescription("Total number of map markers produced"),
	); err != nil {
		return nil, err
	}

	if m.SystemErrors, err = meter.Int64Counter(
		"system_errors_total",
		metric.WithDescription("Total number of system errors"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordUploadMetrics records one upload attempt
func RecordUploadMetrics(ctx context.Context, metrics *BusinessMetrics, format string, size int64, cached bool, err error) {
	if metrics == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := []attribute.KeyValue{
		attribute.String("format", format),
		attribute.String("status", status),
	}

	metrics.UploadsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.UploadBytes.Record(ctx, size, metric.WithAttributes(attribute.String("format", format)))

	if err != nil {
		return
	}
	if cached {
		metrics.ParseCacheHits.Add(ctx, 1)
	} else {
		metrics.ParseCacheMisses.Add(ctx, 1)
	}
}

// RecordParseMetrics records the duration of one parse
func RecordParseMetrics(ctx context.Context, metrics *BusinessMetrics, format string, duration time.Duration, rows int) {
	if metrics == nil {
		return
	}

	metrics.ParseDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("format", format)))

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent("dataset.parsed",
			trace.WithAttributes(
				attribute.String("format", format),
				attribute.Int("rows", rows),
				attribute.Float64("duration_seconds", duration.Seconds()),
			),
		)
	}
}

// RegisterDatasetGauges reports the session and parse cache sizes on every
// collection. The returned registration must be unregistered on shutdown.
func RegisterDatasetGauges(meter metric.Meter, sessions, parsed func() int64) (metric.Registration, error) {
	sessionGauge, err := meter.Int64ObservableGauge(
		"dataset_sessions_active",
		metric.WithDescription("Number of datasets currently held in sessions"),
	)
	if err != nil {
		return nil, err
	}
	parsedGauge, err := meter.Int64ObservableGauge(
		"dataset_parse_cache_entries",
		metric.WithDescription("Number of parsed files held in the parse memo"),
	)
	if err != nil {
		return nil, err
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(sessionGauge, sessions())
		o.ObserveInt64(parsedGauge, parsed())
		return nil
	}, sessionGauge, parsedGauge)
}

// RecordViewMetrics records the computation of one derived view
func RecordViewMetrics(ctx context.Context, metrics *BusinessMetrics, view string, duration time.Duration, empty bool) {
	if metrics == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("view", view),
		attribute.Bool("empty", empty),
	}
	metrics.ViewComputations.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.ViewDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("view", view)))
}

// RecordMarkerMetrics counts markers by category
func RecordMarkerMetrics(ctx context.Context, metrics *BusinessMetrics, category string, count int) {
	if metrics == nil || count == 0 {
		return
	}
	metrics.MarkersEmitted.Add(ctx, int64(count),
		metric.WithAttributes(attribute.String("category", category)))
}

// RecordSystemError counts an unexpected error in component
func RecordSystemError(ctx context.Context, metrics *BusinessMetrics, errorType, component string) {
	if metrics == nil {
		return
	}
	metrics.SystemErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("error.type", errorType),
		attribute.String("component", component),
	))
}

// ErrorType names err's concrete type for metric attributes
func ErrorType(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%T", err)
}
