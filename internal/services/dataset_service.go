package services

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"

	"qoedash/internal/cache"
	"qoedash/internal/config"
	"qoedash/internal/dataprocessing"
	apierrors "qoedash/internal/errors"
	"qoedash/internal/infrastructure"
	"qoedash/pkg/contracts/domain"
)

// DatasetService owns uploaded datasets. Parsed files are memoized by content
// fingerprint; every upload gets its own session that shares the parsed records.
type DatasetService struct {
	parser       *dataprocessing.Parser
	parsed       *cache.Cache[*domain.Dataset]
	sessions     *cache.Cache[*domain.Dataset]
	group        singleflight.Group
	maxBytes     int64
	metrics      *infrastructure.BusinessMetrics
	registration metric.Registration
	tracer       trace.Tracer
	logger       *slog.Logger
	now          func() time.Time
}

// DatasetStats reports the state of both dataset caches
type DatasetStats struct {
	Parsed   cache.Stats `json:"parsed"`
	Sessions cache.Stats `json:"sessions"`
}

// NewDatasetService creates a dataset service sized by cfg
func NewDatasetService(cacheCfg config.CacheConfig, uploadCfg config.UploadConfig, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "dataset_service")

	return &DatasetService{
		parser: dataprocessing.NewParser(logger),
		parsed: cache.New[*domain.Dataset](cache.Options{
			MaxSize: cacheCfg.MaxDatasets,
		}),
		sessions: cache.New[*domain.Dataset](cache.Options{
			TTL:             cacheCfg.SessionTTL,
			Sliding:         true,
			MaxSize:         cacheCfg.MaxSessions,
			CleanupInterval: cacheCfg.CleanupInterval,
		}),
		maxBytes: uploadCfg.MaxBytes,
		metrics:  metrics,
		tracer:   otel.Tracer(infrastructure.InstrumentationName),
		logger:   logger,
		now:      time.Now,
	}
}

// RegisterMetrics publishes the cache sizes as gauges on meter
func (s *DatasetService) RegisterMetrics(meter metric.Meter) error {
	reg, err := infrastructure.RegisterDatasetGauges(meter,
		func() int64 { return int64(s.sessions.Len()) },
		func() int64 { return int64(s.parsed.Len()) },
	)
	if err != nil {
		return fmt.Errorf("register dataset gauges: %w", err)
	}
	s.registration = reg
	return nil
}

// Fingerprint returns the hex BLAKE2b-256 digest of data
func Fingerprint(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Upload parses data, or reuses an earlier parse of identical bytes, and opens
// a new session for it.
func (s *DatasetService) Upload(ctx context.Context, fileName string, data []byte) (*domain.Dataset, error) {
	ctx, span := s.tracer.Start(ctx, "dataset.upload",
		trace.WithAttributes(
			attribute.String("dataset.file_name", fileName),
			attribute.Int("dataset.size_bytes", len(data)),
		))
	defer span.End()

	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		err := fmt.Errorf("%w: %d bytes exceeds limit of %d", apierrors.ErrUploadTooLarge, len(data), s.maxBytes)
		span.SetStatus(codes.Error, err.Error())
		infrastructure.RecordUploadMetrics(ctx, s.metrics, "unknown", int64(len(data)), false, err)
		return nil, err
	}

	fingerprint := Fingerprint(data)
	span.SetAttributes(attribute.String("dataset.fingerprint", fingerprint))

	parsed, cached, err := s.parse(ctx, fingerprint, fileName, data)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		infrastructure.RecordUploadMetrics(ctx, s.metrics, "unknown", int64(len(data)), false, err)
		s.logger.WarnContext(ctx, "upload rejected",
			slog.String("file", fileName),
			slog.String("fingerprint", fingerprint),
			slog.String("error", err.Error()))
		return nil, err
	}

	session := parsed.Clone(uuid.NewString(), s.now())
	session.FileName = fileName
	s.sessions.Set(session.ID, session)

	span.SetAttributes(
		attribute.String("dataset.id", session.ID),
		attribute.Bool("dataset.cached", cached),
		attribute.Int("dataset.records", session.Len()),
	)
	infrastructure.RecordUploadMetrics(ctx, s.metrics, session.Format, int64(len(data)), cached, nil)

	s.logger.InfoContext(ctx, "dataset session opened",
		slog.String("dataset_id", session.ID),
		slog.String("file", fileName),
		slog.String("format", session.Format),
		slog.Int("records", session.Len()),
		slog.Bool("cached", cached))

	return session, nil
}

// parse returns the memoized dataset for fingerprint, parsing at most once
// across concurrent callers.
func (s *DatasetService) parse(ctx context.Context, fingerprint, fileName string, data []byte) (*domain.Dataset, bool, error) {
	if ds, ok := s.parsed.Get(fingerprint); ok {
		return ds, true, nil
	}

	v, err, shared := s.group.Do(fingerprint, func() (interface{}, error) {
		if ds, ok := s.parsed.Get(fingerprint); ok {
			return ds, nil
		}

		start := time.Now()
		ds, err := s.parser.Parse(fileName, data)
		if err != nil {
			return nil, err
		}
		ds.Fingerprint = fingerprint
		infrastructure.RecordParseMetrics(ctx, s.metrics, ds.Format, time.Since(start), ds.Len())

		s.parsed.Set(fingerprint, ds)
		return ds, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*domain.Dataset), shared, nil
}

// Get returns the session dataset for id and refreshes its expiry
func (s *DatasetService) Get(ctx context.Context, id string) (*domain.Dataset, error) {
	ds, ok := s.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", apierrors.ErrDatasetNotFound, id)
	}
	return ds, nil
}

// Delete ends the session for id
func (s *DatasetService) Delete(ctx context.Context, id string) error {
	if !s.sessions.Delete(id) {
		return fmt.Errorf("%w: %s", apierrors.ErrDatasetNotFound, id)
	}
	s.logger.InfoContext(ctx, "dataset session closed",
		slog.String("dataset_id", id))
	return nil
}

// Stats returns cache statistics for the health endpoints
func (s *DatasetService) Stats() DatasetStats {
	return DatasetStats{
		Parsed:   s.parsed.Stats(),
		Sessions: s.sessions.Stats(),
	}
}

// Close stops the session sweeper and releases the metric callback
func (s *DatasetService) Close() error {
	s.sessions.Stop()
	s.parsed.Stop()
	if s.registration != nil {
		return s.registration.Unregister()
	}
	return nil
}
