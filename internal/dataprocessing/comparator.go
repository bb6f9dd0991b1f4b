package dataprocessing

import (
	"fmt"
	"sort"

	"solarcli/internal/errors"
	"solarcli/pkg/contracts/domain"
)

// Compare computes mean, median and sample deviation of each metric for every
// country. Metrics a country does not carry are skipped for that country.
// Results are ordered by country, then by the order of metrics.
func Compare(datasets map[string]*MeasurementTable, metrics ...string) []domain.CountryMetric {
	countries := SortedKeys(datasets)

	var out []domain.CountryMetric
	for _, country := range countries {
		table := datasets[country]
		for _, metric := range metrics {
			values, err := table.Values(metric)
			if err != nil {
				continue
			}
			vals := present(values)
			if len(vals) == 0 {
				continue
			}
			mean, std := meanStd(vals, 1)
			out = append(out, domain.CountryMetric{
				Country: country,
				Metric:  metric,
				Count:   len(vals),
				Mean:    mean,
				Median:  median(vals),
				Std:     std,
			})
		}
	}
	return out
}

// Rank orders countries by the mean of metric, highest first. Every country must
// carry the metric.
func Rank(datasets map[string]*MeasurementTable, metric string) ([]domain.RankEntry, error) {
	if len(datasets) == 0 {
		return nil, errors.NewValidationError("no datasets to rank")
	}

	var missing []string
	for _, country := range SortedKeys(datasets) {
		if !datasets[country].IsNumeric(metric) {
			missing = append(missing, country)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewDataQualityError(
			fmt.Sprintf("metric %s not available for %v", metric, missing)).
			WithContext("metric", metric).
			WithContext("countries", missing)
	}

	stats := Compare(datasets, metric)
	if len(stats) != len(datasets) {
		return nil, errors.NewDataQualityError(fmt.Sprintf("metric %s has no values in some countries", metric)).
			WithContext("metric", metric)
	}

	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Mean > stats[j].Mean })
	ranking := make([]domain.RankEntry, len(stats))
	for i, s := range stats {
		ranking[i] = domain.RankEntry{Rank: i + 1, Country: s.Country, Mean: s.Mean}
	}
	return ranking, nil
}
