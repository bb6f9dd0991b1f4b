package http

import (
	"context"

	api "solarcli/pkg/contracts/api/v1"
)

// DatasetServiceInterface defines the dataset operations served over HTTP
type DatasetServiceInterface interface {
	CountryList(ctx context.Context) (*api.CountryListResponse, error)
	Summary(ctx context.Context, country, metric string) (*api.SummaryResponse, error)
	Hourly(ctx context.Context, country string, fields []string) (*api.HourlyResponse, error)
	Correlation(ctx context.Context, country string, fields []string) (*api.CorrelationResponse, error)
	Outliers(ctx context.Context, country string) (*api.OutlierResponse, error)
	CleaningImpact(ctx context.Context, country string) (*api.CleaningImpactResponse, error)
	Compare(ctx context.Context, metric string) (*api.CompareResponse, error)
}
