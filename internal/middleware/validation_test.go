package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "qoedash/internal/errors"
	"qoedash/internal/shared/testutil"
)

type sampleQuery struct {
	Period   string `query:"period" validate:"omitempty,period"`
	Category string `query:"category" validate:"required,category"`
	File     string `json:"file_name" validate:"omitempty,filename"`
	Limit    int    `query:"limit" validate:"gte=0,lte=1000"`
}

func newValidation(t *testing.T) *ValidationMiddleware {
	logger, _ := testutil.NewTestLogger(t)
	return NewValidationMiddleware(logger, apierrors.NewErrorHandler(logger, false))
}

func TestValidateStruct(t *testing.T) {
	v := newValidation(t)

	tests := []struct {
		name       string
		query      sampleQuery
		wantFields []string
	}{
		{"valid all periods", sampleQuery{Period: "All", Category: "route"}, nil},
		{"valid month", sampleQuery{Period: "February 2024", Category: "static", File: "drive.xlsx"}, nil},
		{"bad period", sampleQuery{Period: "2024-02", Category: "route"}, []string{"period"}},
		{"unknown category", sampleQuery{Category: "walk"}, []string{"category"}},
		{"missing category", sampleQuery{}, []string{"category"}},
		{"traversal file name", sampleQuery{Category: "route", File: "../x.csv"}, []string{"file_name"}},
		{"windows path file name", sampleQuery{Category: "route", File: `C:\\drive.csv`}, []string{"file_name"}},
		{"text export", sampleQuery{Category: "route", File: "drive.txt"}, nil},
		{"extension left to the parser", sampleQuery{Category: "route", File: "drive export"}, nil},
		{"several failures", sampleQuery{Period: "bad", Category: "x", Limit: 5000}, []string{"period", "category", "limit"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.query)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}

			var apiErr *apierrors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

			details, ok := apiErr.Details.(apierrors.ValidationErrors)
			require.True(t, ok)
			fields := make([]string, 0, len(details.Errors))
			for _, fe := range details.Errors {
				fields = append(fields, fe.Field)
				assert.NotEmpty(t, fe.Message)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestContentTypeValidator(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := ContentTypeValidator(apierrors.NewErrorHandler(logger, false), "multipart/form-data")(okHandler)

	tests := []struct {
		name        string
		method      string
		contentType string
		wantStatus  int
	}{
		{"multipart accepted", http.MethodPost, "multipart/form-data; boundary=x", http.StatusOK},
		{"missing content type", http.MethodPost, "", http.StatusBadRequest},
		{"json rejected", http.MethodPost, "application/json", http.StatusUnsupportedMediaType},
		{"get skipped", http.MethodGet, "", http.StatusOK},
		{"delete skipped", http.MethodDelete, "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", strings.NewReader("x"))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
