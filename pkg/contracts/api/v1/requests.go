// Package api contains the request and response contracts of the data API.
// Version v1 represents the current stable API version.
package api

import (
	"solarcli/pkg/contracts/domain"
)

// CountryRequest addresses one country by slug.
type CountryRequest struct {
	Country string `json:"country" query:"country" validate:"required,country"`
}

// MetricRequest selects one measurement column.
type MetricRequest struct {
	Metric string `json:"metric" query:"metric" validate:"required,alphanum,max=32"`
}

// FieldsRequest selects a list of measurement columns; empty means the defaults.
type FieldsRequest struct {
	Fields []string `json:"fields" query:"fields" validate:"omitempty,max=32,dive,alphanum,max=32"`
}

// CountryListResponse lists the countries with data available.
type CountryListResponse struct {
	Countries []CountryInfo `json:"countries"`
}

// CountryInfo describes one discovered dataset.
type CountryInfo struct {
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Cleaned bool   `json:"cleaned"`
	Path    string `json:"path"`
}

// SummaryResponse is the descriptive summary of one metric of one country.
type SummaryResponse struct {
	Country string             `json:"country"`
	Rows    int                `json:"rows"`
	Stats   domain.MetricStats `json:"stats"`
}

// HourlyResponse is the hour-of-day profile of one country.
type HourlyResponse struct {
	Country string              `json:"country"`
	Fields  []string            `json:"fields"`
	Hours   []domain.HourlyMean `json:"hours"`
}

// CorrelationResponse is the correlation matrix of one country.
type CorrelationResponse struct {
	Country string                   `json:"country"`
	Matrix  domain.CorrelationMatrix `json:"matrix"`
}

// OutlierResponse reports the outlier flag counts of one country.
type OutlierResponse struct {
	Country string                `json:"country"`
	Summary domain.OutlierSummary `json:"summary"`
}

// CleaningImpactResponse reports module readings grouped by the Cleaning flag.
type CleaningImpactResponse struct {
	Country string                 `json:"country"`
	Groups  []domain.CleaningGroup `json:"groups"`
}

// CompareResponse compares one metric across countries.
type CompareResponse struct {
	Metric    string                 `json:"metric"`
	Countries []domain.CountryMetric `json:"countries"`
	Ranking   []domain.RankEntry     `json:"ranking"`
}
