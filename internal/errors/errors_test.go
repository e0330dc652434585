package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qoedash/internal/exporter"
)

func TestAPIErrorConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantStatus int
		wantCode   string
		wantDetail interface{}
	}{
		{
			name:       "invalid request wraps cause",
			err:        InvalidRequestWithError(fmt.Errorf("bad multipart")),
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeInvalidRequest,
			wantDetail: "bad multipart",
		},
		{
			name:       "field validation",
			err:        ErrValidation("limit", "must be positive"),
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeValidationFailed,
			wantDetail: ValidationError{Field: "limit", Message: "must be positive"},
		},
		{
			name:       "multiple validation errors",
			err:        NewValidationErrors([]ValidationError{{Field: "a", Message: "x"}}),
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeValidationFailed,
			wantDetail: ValidationErrors{Errors: []ValidationError{{Field: "a", Message: "x"}}},
		},
		{
			name:       "chart unavailable",
			err:        ChartUnavailable(exporter.ErrNoChartData),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   CodeChartUnavailable,
			wantDetail: exporter.ErrNoChartData.Error(),
		},
		{
			name:       "plain",
			err:        New(http.StatusTeapot, "TEAPOT", "short and stout"),
			wantStatus: http.StatusTeapot,
			wantCode:   "TEAPOT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
			assert.Equal(t, tt.wantDetail, tt.err.Details)
			assert.Equal(t, tt.err.Message, tt.err.Error())
		})
	}
}

func TestAppError(t *testing.T) {
	cause := fmt.Errorf("sheet name too long")
	err := NewExportError("comparison workbook", cause)

	assert.Equal(t, "[EXPORT] comparison workbook: sheet name too long", err.Error())
	assert.True(t, stderrors.Is(err, cause))

	var appErr *AppError
	require.True(t, stderrors.As(fmt.Errorf("wrapped: %w", err), &appErr))
	assert.Equal(t, ErrTypeExport, appErr.Type)

	assert.Equal(t, "[CONFIG] load", NewConfigError("load", nil).Error())
}

func TestAppError_WithContext(t *testing.T) {
	err := NewConfigError("yaml", nil).
		WithContext("file", "config.yaml").
		WithContext("line", 3)

	assert.Equal(t, map[string]interface{}{"file": "config.yaml", "line": 3}, err.Context)

	var bare AppError
	bare.WithContext("row", 3)
	assert.Equal(t, 3, bare.Context["row"])
}
