package errors

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qoedash/internal/shared/testutil"
)

func TestRequestLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel slog.Level
	}{
		{"success logs info", http.StatusOK, slog.LevelInfo},
		{"client error logs warn", http.StatusUnprocessableEntity, slog.LevelWarn},
		{"server error logs error", http.StatusInternalServerError, slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logHandler := testutil.NewTestLogger(t)
			h := NewRequestLogger(logger).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/datasets?x=1", nil))

			assert.Equal(t, tt.status, w.Code)
			records := logHandler.GetRecordsByLevel(tt.wantLevel)
			require.Len(t, records, 1)
			assert.Equal(t, "http request", records[0].Message)
			assert.Equal(t, "x=1", records[0].Attrs["query"])
			assert.Equal(t, "http", records[0].Attrs["component"])
		})
	}
}

func TestRequestLogger_ImplicitOK(t *testing.T) {
	logger, logHandler := testutil.NewTestLogger(t)
	h := NewRequestLogger(logger).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	records := logHandler.GetRecords()
	require.Len(t, records, 1)
	assert.EqualValues(t, http.StatusOK, records[0].Attrs["status"])
	assert.EqualValues(t, 2, records[0].Attrs["bytes"])
}

func TestRequestLogger_DatasetAndUploadAttrs(t *testing.T) {
	logger, logHandler := testutil.NewTestLogger(t)

	r := chi.NewRouter()
	r.Use(NewRequestLogger(logger).Handler)
	r.Post("/api/datasets/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/datasets/abc", strings.NewReader("a,b"))
	r.ServeHTTP(httptest.NewRecorder(), req)

	records := logHandler.GetRecords()
	require.Len(t, records, 1)
	assert.Equal(t, "abc", records[0].Attrs["dataset_id"])
	assert.EqualValues(t, 3, records[0].Attrs["upload_bytes"])
}
