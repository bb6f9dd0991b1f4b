package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "solarcli/internal/errors"
	"solarcli/internal/shared/testutil"
	api "solarcli/pkg/contracts/api/v1"
)

type countryRequest struct {
	Country string `query:"country" validate:"required,country"`
}

func TestRequestValidator_ValidateStruct(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	v := NewRequestValidator(logger)

	tests := []struct {
		name      string
		req       interface{}
		wantField string
		wantMsg   string
	}{
		{name: "valid metric", req: api.MetricRequest{Metric: "GHI"}},
		{name: "missing metric", req: api.MetricRequest{}, wantField: "metric", wantMsg: "metric is required"},
		{name: "metric with symbols", req: api.MetricRequest{Metric: "GHI;drop"}, wantField: "metric", wantMsg: "metric must contain only letters and digits"},
		{name: "valid fields", req: api.FieldsRequest{Fields: []string{"GHI", "DNI"}}},
		{name: "empty fields", req: api.FieldsRequest{}},
		{name: "bad field", req: api.FieldsRequest{Fields: []string{"G H I"}}, wantField: "fields[0]"},
		{name: "valid country", req: countryRequest{Country: "sierraleone"}},
		{name: "country with spaces", req: countryRequest{Country: "Sierra Leone"}, wantField: "country", wantMsg: "country must be a country slug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.req)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Equal(t, apierrors.ErrTypeValidation, apierrors.TypeOf(err))

			var appErr *apierrors.AppError
			require.ErrorAs(t, err, &appErr)
			fields, ok := appErr.Context["fields"].(map[string]string)
			require.True(t, ok)
			assert.Contains(t, fields, tt.wantField)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, fields[tt.wantField])
			}
		})
	}
}

func TestRequestValidator_ValidateQuery(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	v := NewRequestValidator(logger)
	errorHandler := apierrors.NewErrorHandler(logger, false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/compare", nil)

	ok := v.ValidateQuery(rec, req, errorHandler, &api.MetricRequest{})
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "metric is required")

	rec = httptest.NewRecorder()
	assert.True(t, v.ValidateQuery(rec, req, errorHandler, &api.MetricRequest{Metric: "DNI"}))
	assert.Equal(t, http.StatusOK, rec.Code)
}
