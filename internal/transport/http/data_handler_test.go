package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "solarcli/internal/errors"
	"solarcli/internal/shared/testutil"
	api "solarcli/pkg/contracts/api/v1"
	"solarcli/pkg/contracts/domain"
)

// MockDatasetService is a mock for DatasetServiceInterface
type MockDatasetService struct {
	mock.Mock
}

func (m *MockDatasetService) CountryList(ctx context.Context) (*api.CountryListResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.CountryListResponse), args.Error(1)
}

func (m *MockDatasetService) Summary(ctx context.Context, country, metric string) (*api.SummaryResponse, error) {
	args := m.Called(ctx, country, metric)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.SummaryResponse), args.Error(1)
}

func (m *MockDatasetService) Hourly(ctx context.Context, country string, fields []string) (*api.HourlyResponse, error) {
	args := m.Called(ctx, country, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.HourlyResponse), args.Error(1)
}

func (m *MockDatasetService) Correlation(ctx context.Context, country string, fields []string) (*api.CorrelationResponse, error) {
	args := m.Called(ctx, country, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.CorrelationResponse), args.Error(1)
}

func (m *MockDatasetService) Outliers(ctx context.Context, country string) (*api.OutlierResponse, error) {
	args := m.Called(ctx, country)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.OutlierResponse), args.Error(1)
}

func (m *MockDatasetService) CleaningImpact(ctx context.Context, country string) (*api.CleaningImpactResponse, error) {
	args := m.Called(ctx, country)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.CleaningImpactResponse), args.Error(1)
}

func (m *MockDatasetService) Compare(ctx context.Context, metric string) (*api.CompareResponse, error) {
	args := m.Called(ctx, metric)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.CompareResponse), args.Error(1)
}

func setupDataHandler(t *testing.T) (*MockDatasetService, http.Handler) {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	svc := new(MockDatasetService)
	handler := NewDataHandler(svc, logger, apierrors.NewErrorHandler(logger, false))
	return svc, handler.Routes()
}

func serve(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestDataHandler_GetCountries(t *testing.T) {
	svc, h := setupDataHandler(t)
	svc.On("CountryList", mock.Anything).Return(&api.CountryListResponse{
		Countries: []api.CountryInfo{{Name: "Benin", Slug: "benin", Cleaned: true}},
	}, nil)

	rec := serve(h, "/countries")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.CountryListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Countries, 1)
	assert.Equal(t, "benin", resp.Countries[0].Slug)
	svc.AssertExpectations(t)
}

func TestDataHandler_GetSummary(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		country    string
		metric     string
		serviceErr error
		wantStatus int
		wantType   string
	}{
		{name: "default metric", target: "/countries/benin/summary", country: "benin", metric: "GHI", wantStatus: http.StatusOK},
		{name: "explicit metric", target: "/countries/benin/summary?metric=DNI", country: "benin", metric: "DNI", wantStatus: http.StatusOK},
		{name: "display name", target: "/countries/Sierra%20Leone/summary?metric=GHI", country: "sierraleone", metric: "GHI", wantStatus: http.StatusOK},
		{name: "invalid metric", target: "/countries/benin/summary?metric=G%20HI", wantStatus: http.StatusBadRequest, wantType: apierrors.TypeValidation},
		{name: "invalid country", target: "/countries/---/summary", wantStatus: http.StatusBadRequest, wantType: apierrors.TypeValidation},
		{
			name: "unknown country", target: "/countries/niger/summary", country: "niger", metric: "GHI",
			serviceErr: apierrors.NewNotFoundError("country niger"),
			wantStatus: http.StatusNotFound, wantType: apierrors.TypeNotFound,
		},
		{
			name: "missing column", target: "/countries/benin/summary?metric=BP", country: "benin", metric: "BP",
			serviceErr: apierrors.NewMissingColumnsError("BP"),
			wantStatus: http.StatusUnprocessableEntity, wantType: apierrors.TypeDataQuality,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, h := setupDataHandler(t)
			if tt.country != "" {
				if tt.serviceErr != nil {
					svc.On("Summary", mock.Anything, tt.country, tt.metric).Return(nil, tt.serviceErr)
				} else {
					svc.On("Summary", mock.Anything, tt.country, tt.metric).Return(&api.SummaryResponse{
						Country: "Benin",
						Rows:    10,
						Stats:   domain.MetricStats{Field: tt.metric, Count: 10, Mean: 1.5},
					}, nil)
				}
			}

			rec := serve(h, tt.target)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			if tt.wantType != "" {
				assert.Equal(t, tt.wantType, body["type"])
			} else {
				assert.Equal(t, tt.metric, body["stats"].(map[string]interface{})["field"])
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestDataHandler_FieldsQuery(t *testing.T) {
	svc, h := setupDataHandler(t)
	svc.On("Hourly", mock.Anything, "togo", []string{"GHI", "DNI"}).Return(&api.HourlyResponse{
		Country: "Togo",
		Fields:  []string{"GHI", "DNI"},
		Hours:   []domain.HourlyMean{{Hour: 12, Samples: 2, Means: map[string]float64{"GHI": 800}}},
	}, nil)
	svc.On("Correlation", mock.Anything, "togo", []string(nil)).Return(&api.CorrelationResponse{
		Country: "Togo",
		Matrix:  domain.CorrelationMatrix{Fields: []string{"GHI", "DNI"}, Values: [][]float64{{1, 0.9}, {0.9, 1}}},
	}, nil)

	rec := serve(h, "/countries/togo/hourly?fields=GHI,%20DNI,")
	require.Equal(t, http.StatusOK, rec.Code)
	var hourly api.HourlyResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&hourly))
	assert.Equal(t, 800.0, hourly.Hours[0].Means["GHI"])

	rec = serve(h, "/countries/togo/correlation")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(h, "/countries/togo/hourly?fields=GHI%3BDROP")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.AssertExpectations(t)
}

func TestDataHandler_OutliersAndCleaningImpact(t *testing.T) {
	svc, h := setupDataHandler(t)
	svc.On("Outliers", mock.Anything, "benin").Return(&api.OutlierResponse{
		Country: "Benin",
		Summary: domain.OutlierSummary{Flagged: 3, Unflagged: 97, Share: 0.03},
	}, nil)
	svc.On("CleaningImpact", mock.Anything, "benin").Return(nil,
		apierrors.NewMissingColumnsError("Cleaning"))

	rec := serve(h, "/countries/benin/outliers")
	require.Equal(t, http.StatusOK, rec.Code)
	var outliers api.OutlierResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&outliers))
	assert.Equal(t, 3, outliers.Summary.Flagged)

	rec = serve(h, "/countries/benin/cleaning-impact")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cleaning")

	svc.AssertExpectations(t)
}

func TestDataHandler_GetComparison(t *testing.T) {
	svc, h := setupDataHandler(t)
	svc.On("Compare", mock.Anything, "GHI").Return(&api.CompareResponse{
		Metric: "GHI",
		Ranking: []domain.RankEntry{
			{Rank: 1, Country: "Benin", Mean: 240},
			{Rank: 2, Country: "Togo", Mean: 230},
		},
	}, nil)

	rec := serve(h, "/compare?metric=GHI")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp api.CompareResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Benin", resp.Ranking[0].Country)

	rec = serve(h, "/compare")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "metric is required")

	svc.AssertExpectations(t)
}
