package http

import (
	"context"

	"qoedash/internal/dataprocessing"
	"qoedash/internal/services"
	"qoedash/pkg/contracts"
	"qoedash/pkg/contracts/domain"
)

// DatasetServiceInterface defines the dataset session operations
type DatasetServiceInterface interface {
	Upload(ctx context.Context, fileName string, data []byte) (*domain.Dataset, error)
	Get(ctx context.Context, id string) (*domain.Dataset, error)
	Delete(ctx context.Context, id string) error
}

// DashboardServiceInterface defines the dashboard view operations
type DashboardServiceInterface interface {
	Options(ctx context.Context, id string, q services.Query) (domain.FilterOptions, error)
	Records(ctx context.Context, id string, q services.Query, limit, offset int) (services.RecordPage, error)
	Charts(ctx context.Context, id string, q services.Query) (services.ChartsView, error)
	Chart(ctx context.Context, id string, q services.Query, category domain.Category) (domain.LongForm, error)
	Map(ctx context.Context, id string, q services.Query) (domain.MarkerMap, error)
	Comparison(ctx context.Context, id string, q services.Query) (services.ComparisonView, error)
	Profile(ctx context.Context, id string, q services.Query) (services.ProfileView, error)
	Dashboard(ctx context.Context, id string, q services.Query) (domain.DashboardView, error)
	Palette() dataprocessing.Palette
}

// HealthServiceInterface defines the health and version operations
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() contracts.VersionInfo
}

var (
	_ DatasetServiceInterface   = (*services.DatasetService)(nil)
	_ DashboardServiceInterface = (*services.DashboardService)(nil)
	_ HealthServiceInterface    = (*services.HealthService)(nil)
)
