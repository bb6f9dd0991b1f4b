package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/go-gota/gota/series"
	"go.opentelemetry.io/otel/attribute"

	"solarcli/internal/config"
	"solarcli/internal/errors"
	"solarcli/internal/infrastructure"
	"solarcli/pkg/contracts/domain"
)

// Cleaner applies the cleaning pass to measurement tables:
// missingness, column dropping, median imputation and outlier flagging.
type Cleaner struct {
	cfg     config.CleaningConfig
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
}

// NewCleaner creates a cleaner. A negative missing threshold, a non-positive z
// threshold and an empty method fall back to the defaults; a nil KeyFields slice
// means config.DefaultKeyFields. A missing threshold of 0 drops every column with a gap.
func NewCleaner(cfg config.CleaningConfig, logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MissingThreshold < 0 {
		cfg.MissingThreshold = config.DefaultMissingThreshold
	}
	if cfg.ZThreshold <= 0 {
		cfg.ZThreshold = config.DefaultZThreshold
	}
	if cfg.OutlierMethod == "" {
		cfg.OutlierMethod = config.OutlierMethodZScore
	}
	if cfg.KeyFields == nil {
		cfg.KeyFields = append([]string(nil), config.DefaultKeyFields...)
	}
	return &Cleaner{
		cfg:    cfg,
		logger: infrastructure.WithComponent(logger, "cleaner"),
	}
}

// WithMetrics records cleaning counters and stage durations on m.
func (c *Cleaner) WithMetrics(m *infrastructure.PipelineMetrics) *Cleaner {
	c.metrics = m
	return c
}

// Config returns the effective cleaning configuration.
func (c *Cleaner) Config() config.CleaningConfig {
	return c.cfg
}

// Clean returns a cleaned copy of table together with a report of what changed.
// The input table is left untouched.
func (c *Cleaner) Clean(ctx context.Context, table *MeasurementTable) (cleaned *MeasurementTable, report *domain.CleaningReport, err error) {
	start := time.Now()
	ctx, span := infrastructure.StartSpan(ctx, "dataprocessing.Clean",
		attribute.String("outlier_method", c.cfg.OutlierMethod))
	defer func() {
		infrastructure.RecordError(ctx, err)
		c.metrics.RecordStage(ctx, "clean", time.Since(start), err)
		span.End()
	}()

	if table == nil {
		return nil, nil, errors.NewValidationError("no table to clean")
	}

	report = &domain.CleaningReport{
		Rows:           table.Rows(),
		Missingness:    MissingFractions(table),
		DroppedColumns: []string{},
		ImputedValues:  map[string]int{},
		Medians:        map[string]float64{},
		KeyFieldsUsed:  []string{},
		OutlierMethod:  c.cfg.OutlierMethod,
	}

	current, err := c.dropSparseColumns(table, report)
	if err != nil {
		return nil, nil, err
	}

	current, err = c.imputeMedians(current, report)
	if err != nil {
		return nil, nil, err
	}

	current, err = c.flagOutliers(current, report)
	if err != nil {
		return nil, nil, err
	}

	c.metrics.RecordCleaning(ctx, report)
	c.logger.InfoContext(ctx, "table cleaned",
		slog.Int("rows", report.Rows),
		slog.Any("dropped_columns", report.DroppedColumns),
		slog.Int("imputed_columns", len(report.ImputedValues)),
		slog.Bool("outliers_flagged", report.OutliersFlagged),
		slog.Int("outlier_rows", report.OutlierRows))

	return current, report, nil
}

// MissingFractions returns the share of missing cells per measurement column.
// Every fraction is 0 for a table without rows.
func MissingFractions(table *MeasurementTable) map[string]float64 {
	fractions := make(map[string]float64)
	rows := table.Rows()
	for _, name := range table.Columns() {
		if rows == 0 {
			fractions[name] = 0
			continue
		}
		fractions[name] = float64(table.MissingCount(name)) / float64(rows)
	}
	return fractions
}

func (c *Cleaner) dropSparseColumns(table *MeasurementTable, report *domain.CleaningReport) (*MeasurementTable, error) {
	for _, name := range table.Columns() {
		if report.Missingness[name] > c.cfg.MissingThreshold {
			report.DroppedColumns = append(report.DroppedColumns, name)
		}
	}
	if len(report.DroppedColumns) == 0 {
		return table, nil
	}

	frame := table.Frame().Drop(report.DroppedColumns)
	if frame.Err != nil {
		return nil, errors.NewSchemaError("failed to drop sparse columns", frame.Err)
	}
	c.logger.Debug("dropped sparse columns",
		slog.Any("columns", report.DroppedColumns),
		slog.Float64("threshold", c.cfg.MissingThreshold))
	return table.withFrame(frame), nil
}

func (c *Cleaner) imputeMedians(table *MeasurementTable, report *domain.CleaningReport) (*MeasurementTable, error) {
	frame := table.Frame()
	for _, name := range table.Columns() {
		if !table.IsNumeric(name) || table.MissingCount(name) == 0 {
			continue
		}
		values, err := table.Values(name)
		if err != nil {
			return nil, err
		}
		med := median(values)
		if math.IsNaN(med) {
			// Nothing to impute from; only reachable with a threshold of 1.
			continue
		}

		filled := 0
		for i, v := range values {
			if math.IsNaN(v) {
				values[i] = med
				filled++
			}
		}
		frame = frame.Mutate(series.New(values, series.Float, name))
		if frame.Err != nil {
			return nil, errors.NewSchemaError("failed to impute "+name, frame.Err)
		}
		report.ImputedValues[name] = filled
		report.Medians[name] = med
	}
	return table.withFrame(frame), nil
}

func (c *Cleaner) flagOutliers(table *MeasurementTable, report *domain.CleaningReport) (*MeasurementTable, error) {
	for _, field := range c.cfg.KeyFields {
		if table.IsNumeric(field) {
			report.KeyFieldsUsed = append(report.KeyFieldsUsed, field)
		}
	}

	if len(report.KeyFieldsUsed) == 0 {
		c.logger.Warn("no key fields present, outliers not flagged",
			slog.Any("key_fields", c.cfg.KeyFields))
		if !table.HasColumn(domain.FieldOutliers) {
			return table, nil
		}
		frame := table.Frame().Drop([]string{domain.FieldOutliers})
		if frame.Err != nil {
			return nil, errors.NewSchemaError("failed to drop stale outlier flags", frame.Err)
		}
		return table.withFrame(frame), nil
	}

	flags := make([]bool, table.Rows())
	for _, field := range report.KeyFieldsUsed {
		values, err := table.Values(field)
		if err != nil {
			return nil, err
		}
		for i, score := range c.scores(values) {
			if math.Abs(score) > c.cfg.ZThreshold {
				flags[i] = true
			}
		}
	}

	for _, f := range flags {
		if f {
			report.OutlierRows++
		}
	}
	report.OutliersFlagged = true

	frame := table.Frame().Mutate(series.New(flags, series.Bool, domain.FieldOutliers))
	if frame.Err != nil {
		return nil, errors.NewSchemaError("failed to add outlier flags", frame.Err)
	}
	return table.withFrame(frame), nil
}

func (c *Cleaner) scores(values []float64) []float64 {
	if c.cfg.OutlierMethod == config.OutlierMethodModified {
		return modifiedZScores(values)
	}
	return zScores(values)
}

// SortedKeys returns the keys of a report map in ascending order, for stable output.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
