package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"qoedash/internal/infrastructure"
	"qoedash/pkg/contracts"
)

// Health states reported by HealthService
const (
	StatusOK       = "ok"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	StatusAlive    = "alive"
)

// DatasetStatser exposes dataset cache statistics
type DatasetStatser interface {
	Stats() DatasetStats
}

// HealthStatus is the body of the /api/health endpoints
type HealthStatus struct {
	Status    string                       `json:"status"`
	Timestamp time.Time                    `json:"timestamp"`
	Version   string                       `json:"version"`
	Uptime    string                       `json:"uptime,omitempty"`
	Runtime   *infrastructure.RuntimeStats `json:"runtime,omitempty"`
	Checks    map[string]ComponentHealth   `json:"checks,omitempty"`
}

// ComponentHealth is the readiness of one dependency
type ComponentHealth struct {
	Status  string        `json:"status"`
	Message string        `json:"message,omitempty"`
	Stats   *DatasetStats `json:"stats,omitempty"`
}

// HealthService answers the health, readiness, liveness and version probes
type HealthService struct {
	version   string
	datasets  DatasetStatser
	startTime time.Time
	logger    *slog.Logger
}

// NewHealthService creates a health service reporting version
func NewHealthService(version string, datasets DatasetStatser, logger *slog.Logger) *HealthService {
	return &HealthService{
		version:   version,
		datasets:  datasets,
		startTime: time.Now(),
		logger:    infrastructure.WithComponent(logger, "health_service"),
	}
}

func (hs *HealthService) status(s string) HealthStatus {
	return HealthStatus{
		Status:    s,
		Timestamp: time.Now().UTC(),
		Version:   hs.version,
		Uptime:    time.Since(hs.startTime).Round(time.Second).String(),
	}
}

// HealthCheck always reports ok while the process serves requests
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return hs.status(StatusOK)
}

// ReadinessCheck reports whether the dataset store can accept uploads
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	datasets := hs.datasetHealth()
	st := hs.status(StatusReady)
	if datasets.Status != StatusReady {
		st.Status = StatusNotReady
		hs.logger.WarnContext(ctx, "dataset store not ready", slog.String("reason", datasets.Message))
	}
	st.Checks = map[string]ComponentHealth{"datasets": datasets}
	return st
}

// LivenessCheck adds a runtime snapshot
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	st := hs.status(StatusAlive)
	rt := infrastructure.ReadRuntimeStats(hs.startTime)
	st.Runtime = &rt
	return st
}

// Version returns build information with the service version
func (hs *HealthService) Version() contracts.VersionInfo {
	info := contracts.GetVersionInfo()
	if hs.version != "" {
		info.Version = hs.version
	}
	return info
}

func (hs *HealthService) datasetHealth() ComponentHealth {
	if hs.datasets == nil {
		return ComponentHealth{Status: StatusNotReady, Message: "dataset store not initialized"}
	}
	stats := hs.datasets.Stats()
	if stats.Sessions.MaxSize <= 0 {
		return ComponentHealth{Status: StatusNotReady, Message: "session store has no capacity", Stats: &stats}
	}
	return ComponentHealth{
		Status:  StatusReady,
		Message: fmt.Sprintf("%d active sessions", stats.Sessions.Entries),
		Stats:   &stats,
	}
}
