package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"qoedash/internal/dataprocessing"
	apierrors "qoedash/internal/errors"
	"qoedash/internal/middleware"
	"qoedash/internal/services"
	"qoedash/internal/shared/testutil"
	"qoedash/pkg/contracts"
	"qoedash/pkg/contracts/domain"
)

// MockDatasetService is a mock implementation of DatasetServiceInterface
type MockDatasetService struct {
	mock.Mock
}

func (m *MockDatasetService) Upload(ctx context.Context, fileName string, data []byte) (*domain.Dataset, error) {
	args := m.Called(fileName, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dataset), args.Error(1)
}

func (m *MockDatasetService) Get(ctx context.Context, id string) (*domain.Dataset, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dataset), args.Error(1)
}

func (m *MockDatasetService) Delete(ctx context.Context, id string) error {
	return m.Called(id).Error(0)
}

// MockDashboardService is a mock implementation of DashboardServiceInterface
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Options(ctx context.Context, id string, q services.Query) (domain.FilterOptions, error) {
	args := m.Called(id, q)
	return args.Get(0).(domain.FilterOptions), args.Error(1)
}

func (m *MockDashboardService) Records(ctx context.Context, id string, q services.Query, limit, offset int) (services.RecordPage, error) {
	args := m.Called(id, q, limit, offset)
	return args.Get(0).(services.RecordPage), args.Error(1)
}

func (m *MockDashboardService) Charts(ctx context.Context, id string, q services.Query) (services.ChartsView, error) {
	args := m.Called(id, q)
	return args.Get(0).(services.ChartsView), args.Error(1)
}

func (m *MockDashboardService) Chart(ctx context.Context, id string, q services.Query, category domain.Category) (domain.LongForm, error) {
	args := m.Called(id, q, category)
	return args.Get(0).(domain.LongForm), args.Error(1)
}

func (m *MockDashboardService) Map(ctx context.Context, id string, q services.Query) (domain.MarkerMap, error) {
	args := m.Called(id, q)
	return args.Get(0).(domain.MarkerMap), args.Error(1)
}

func (m *MockDashboardService) Comparison(ctx context.Context, id string, q services.Query) (services.ComparisonView, error) {
	args := m.Called(id, q)
	return args.Get(0).(services.ComparisonView), args.Error(1)
}

func (m *MockDashboardService) Profile(ctx context.Context, id string, q services.Query) (services.ProfileView, error) {
	args := m.Called(id, q)
	return args.Get(0).(services.ProfileView), args.Error(1)
}

func (m *MockDashboardService) Dashboard(ctx context.Context, id string, q services.Query) (domain.DashboardView, error) {
	args := m.Called(id, q)
	return args.Get(0).(domain.DashboardView), args.Error(1)
}

func (m *MockDashboardService) Palette() dataprocessing.Palette {
	return dataprocessing.DefaultPalette()
}

// MockHealthService is a mock implementation of HealthServiceInterface
type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) HealthCheck(ctx context.Context) services.HealthStatus {
	return m.Called().Get(0).(services.HealthStatus)
}

func (m *MockHealthService) ReadinessCheck(ctx context.Context) services.HealthStatus {
	return m.Called().Get(0).(services.HealthStatus)
}

func (m *MockHealthService) LivenessCheck(ctx context.Context) services.HealthStatus {
	return m.Called().Get(0).(services.HealthStatus)
}

func (m *MockHealthService) Version() contracts.VersionInfo {
	return m.Called().Get(0).(contracts.VersionInfo)
}

// newTestRouter mounts the dataset and dashboard handlers under /api/datasets
func newTestRouter(t *testing.T, datasets DatasetServiceInterface, dashboard DashboardServiceInterface) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)
	validator := middleware.NewValidationMiddleware(logger, errorHandler)

	datasetHandler := NewDatasetHandler(datasets, validator, logger, errorHandler)
	dashboardHandler := NewDashboardHandler(dashboard, validator, logger, errorHandler)

	r := chi.NewRouter()
	r.Mount("/api/datasets", datasetHandler.Routes(dashboardHandler.Mount))
	return r
}

func multipartBody(t *testing.T, field, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		part, err := mw.CreateFormFile(field, fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no file"))
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}
