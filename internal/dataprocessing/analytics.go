package dataprocessing

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"solarcli/internal/errors"
	"solarcli/pkg/contracts/domain"
)

// numericColumns returns the requested columns, or every numeric column when none are named.
func numericColumns(table *MeasurementTable, columns []string) ([]string, error) {
	if len(columns) == 0 {
		var all []string
		for _, name := range table.Columns() {
			if table.IsNumeric(name) {
				all = append(all, name)
			}
		}
		return all, nil
	}
	if err := RequireColumns(table, columns...); err != nil {
		return nil, err
	}
	return columns, nil
}

// Describe summarizes numeric columns the way a describe() call on a data frame does:
// count, mean, sample standard deviation and the linear-interpolated quartiles.
func Describe(table *MeasurementTable, columns ...string) ([]domain.MetricStats, error) {
	cols, err := numericColumns(table, columns)
	if err != nil {
		return nil, err
	}

	out := make([]domain.MetricStats, 0, len(cols))
	for _, name := range cols {
		values, err := table.Values(name)
		if err != nil {
			return nil, err
		}
		sorted := sortedPresent(values)
		if len(sorted) == 0 {
			return nil, errors.NewDataQualityError(fmt.Sprintf("column %s has no values", name)).
				WithContext("column", name)
		}
		mean, std := meanStd(sorted, 1)
		out = append(out, domain.MetricStats{
			Field:  name,
			Count:  len(sorted),
			Mean:   mean,
			Std:    std,
			Min:    sorted[0],
			Q25:    quantile(sorted, 0.25),
			Median: quantile(sorted, 0.5),
			Q75:    quantile(sorted, 0.75),
			Max:    sorted[len(sorted)-1],
		})
	}
	return out, nil
}

// HourlyProfile averages each column per hour of day. Hours without rows are
// omitted, as are columns without a value in that hour.
func HourlyProfile(table *MeasurementTable, columns ...string) ([]domain.HourlyMean, error) {
	if len(columns) == 0 {
		columns = domain.IrradianceFields
	}
	if err := RequireColumns(table, columns...); err != nil {
		return nil, err
	}

	data := make(map[string][]float64, len(columns))
	for _, name := range columns {
		values, err := table.Values(name)
		if err != nil {
			return nil, err
		}
		data[name] = values
	}

	type bucket struct {
		samples int
		sums    map[string]float64
		counts  map[string]int
	}
	var hours [24]*bucket

	for i, ts := range table.timestamps {
		h := ts.Hour()
		if hours[h] == nil {
			hours[h] = &bucket{sums: map[string]float64{}, counts: map[string]int{}}
		}
		b := hours[h]
		b.samples++
		for _, name := range columns {
			if v := data[name][i]; !math.IsNaN(v) {
				b.sums[name] += v
				b.counts[name]++
			}
		}
	}

	var out []domain.HourlyMean
	for h, b := range hours {
		if b == nil {
			continue
		}
		means := make(map[string]float64, len(columns))
		for name, n := range b.counts {
			means[name] = b.sums[name] / float64(n)
		}
		out = append(out, domain.HourlyMean{Hour: h, Samples: b.samples, Means: means})
	}
	return out, nil
}

// CorrelationMatrix computes Pearson correlations between numeric columns over the
// rows where both values are present. Columns without variance are left out.
func CorrelationMatrix(table *MeasurementTable, columns ...string) (*domain.CorrelationMatrix, error) {
	cols, err := numericColumns(table, columns)
	if err != nil {
		return nil, err
	}

	var fields []string
	data := make(map[string][]float64)
	for _, name := range cols {
		values, err := table.Values(name)
		if err != nil {
			return nil, err
		}
		if _, std := meanStd(values, 0); std == 0 {
			continue
		}
		fields = append(fields, name)
		data[name] = values
	}
	if len(fields) < 2 {
		return nil, errors.NewDataQualityError("correlation needs at least two varying numeric columns").
			WithContext("columns", cols)
	}

	matrix := make([][]float64, len(fields))
	for i := range matrix {
		matrix[i] = make([]float64, len(fields))
		matrix[i][i] = 1
	}
	for i := 0; i < len(fields); i++ {
		for j := i + 1; j < len(fields); j++ {
			r := pairwiseCorrelation(data[fields[i]], data[fields[j]])
			matrix[i][j] = r
			matrix[j][i] = r
		}
	}
	return &domain.CorrelationMatrix{Fields: fields, Values: matrix}, nil
}

func pairwiseCorrelation(x, y []float64) float64 {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return 0
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return 0
	}
	return r
}

// CleaningImpact compares module readings grouped by the Cleaning flag.
func CleaningImpact(table *MeasurementTable) ([]domain.CleaningGroup, error) {
	required := append([]string{domain.FieldCleaning}, domain.ModuleFields...)
	if err := RequireColumns(table, required...); err != nil {
		return nil, err
	}

	flags, err := table.Values(domain.FieldCleaning)
	if err != nil {
		return nil, err
	}
	modules := make(map[string][]float64, len(domain.ModuleFields))
	for _, name := range domain.ModuleFields {
		values, err := table.Values(name)
		if err != nil {
			return nil, err
		}
		modules[name] = values
	}

	groups := make(map[float64]*domain.CleaningGroup)
	counts := make(map[float64]map[string]int)
	for i, flag := range flags {
		if math.IsNaN(flag) {
			continue
		}
		g, ok := groups[flag]
		if !ok {
			g = &domain.CleaningGroup{Cleaning: flag, Means: map[string]float64{}}
			groups[flag] = g
			counts[flag] = map[string]int{}
		}
		g.Rows++
		for name, values := range modules {
			if v := values[i]; !math.IsNaN(v) {
				g.Means[name] += v
				counts[flag][name]++
			}
		}
	}

	out := make([]domain.CleaningGroup, 0, len(groups))
	for flag, g := range groups {
		for name, n := range counts[flag] {
			g.Means[name] /= float64(n)
		}
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cleaning < out[j].Cleaning })
	return out, nil
}

// OutlierSummary counts the rows flagged by the cleaner.
func OutlierSummary(table *MeasurementTable) (*domain.OutlierSummary, error) {
	if err := RequireColumns(table, domain.FieldOutliers); err != nil {
		return nil, err
	}
	flags, err := table.Flags(domain.FieldOutliers)
	if err != nil {
		return nil, err
	}

	summary := &domain.OutlierSummary{}
	for _, f := range flags {
		if f {
			summary.Flagged++
		} else {
			summary.Unflagged++
		}
	}
	if n := len(flags); n > 0 {
		summary.Share = float64(summary.Flagged) / float64(n)
	}
	return summary, nil
}
