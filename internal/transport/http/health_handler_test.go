package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"qoedash/internal/services"
	"qoedash/pkg/contracts"
)

func TestHealthHandler(t *testing.T) {
	now := time.Now()
	health := new(MockHealthService)
	health.On("HealthCheck").Return(services.HealthStatus{Status: "ok", Timestamp: now})
	health.On("LivenessCheck").Return(services.HealthStatus{Status: "alive", Timestamp: now})
	health.On("Version").Return(contracts.VersionInfo{Version: "1.0.0"})

	handler := NewHealthHandler(health)
	r := chi.NewRouter()
	r.Mount("/api/health", handler.Routes())
	r.Get("/api/version", handler.Version)

	tests := []struct {
		path string
		key  string
		want string
	}{
		{path: "/api/health", key: "status", want: "ok"},
		{path: "/api/health/live", key: "status", want: "alive"},
		{path: "/api/version", key: "version", want: "1.0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, decodeBody(t, w)[tt.key])
		})
	}
}

func TestHealthHandler_NotReady(t *testing.T) {
	health := new(MockHealthService)
	health.On("ReadinessCheck").Return(services.HealthStatus{Status: "not_ready"})

	handler := NewHealthHandler(health)
	w := httptest.NewRecorder()
	handler.ReadinessCheck(w, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "not_ready", decodeBody(t, w)["status"])
}
