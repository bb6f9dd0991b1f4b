package dataprocessing

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"go.opentelemetry.io/otel/attribute"

	"solarcli/internal/config"
	"solarcli/internal/errors"
	"solarcli/internal/infrastructure"
)

// MissingMarkers are the cell values read as missing.
var MissingMarkers = []string{"", "NA", "NaN", "nan", "null", "NULL", "<nil>"}

// TimestampLayouts are tried in order when parsing the timestamp column.
var TimestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Loader reads station exports into timestamp-sorted measurement tables.
type Loader struct {
	logger          *slog.Logger
	timestampColumn string
	metrics         *infrastructure.PipelineMetrics
}

// NewLoader creates a loader for tables keyed by timestampColumn
// (config.DefaultTimestampColumn when empty).
func NewLoader(logger *slog.Logger, timestampColumn string) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if timestampColumn == "" {
		timestampColumn = config.DefaultTimestampColumn
	}
	return &Loader{
		logger:          infrastructure.WithComponent(logger, "loader"),
		timestampColumn: timestampColumn,
	}
}

// WithMetrics records rows loaded and stage durations on m.
func (l *Loader) WithMetrics(m *infrastructure.PipelineMetrics) *Loader {
	l.metrics = m
	return l
}

// Load reads the CSV at path. A missing file is a NOT_FOUND error and a file
// without the timestamp column is a SCHEMA error.
func (l *Loader) Load(ctx context.Context, path string) (table *MeasurementTable, err error) {
	start := time.Now()
	ctx, span := infrastructure.StartSpan(ctx, "dataprocessing.Load", attribute.String("path", path))
	defer func() {
		infrastructure.RecordError(ctx, err)
		l.metrics.RecordStage(ctx, "load", time.Since(start), err)
		span.End()
	}()

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError(path)
		}
		return nil, errors.NewStorageError(fmt.Sprintf("cannot access %s", path), err)
	}
	if info.IsDir() {
		return nil, errors.NewValidationError(fmt.Sprintf("%s is a directory, not a measurement file", path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("failed to read %s", path), err)
	}

	return l.Read(ctx, bytes.NewReader(data), path)
}

// Read parses CSV content from r; source names it in logs and errors.
func (l *Loader) Read(ctx context.Context, r io.Reader, source string) (*MeasurementTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("failed to read %s", source), err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.NewSchemaError(fmt.Sprintf("%s is empty", source), nil).
			WithContext("source", source)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to parse %s", source), err).
			WithContext("source", source)
	}

	if !containsName(records[0], l.timestampColumn) {
		return nil, errors.NewSchemaError(
			fmt.Sprintf("%s has no %s column", source, l.timestampColumn), nil).
			WithContext("source", source).
			WithContext("column", l.timestampColumn)
	}

	df := l.buildFrame(records)
	if df.Err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to parse %s", source), df.Err).
			WithContext("source", source)
	}

	timestamps, err := l.parseTimestamps(df.Col(l.timestampColumn), source)
	if err != nil {
		return nil, err
	}

	df, timestamps = sortByTimestamp(df, timestamps)
	if df.Err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to sort %s", source), df.Err)
	}

	if dups := countDuplicates(timestamps); dups > 0 {
		l.logger.WarnContext(ctx, "duplicate timestamps kept",
			slog.String("source", source),
			slog.Int("duplicates", dups))
	}

	table, err := NewMeasurementTable(df, timestamps, l.timestampColumn)
	if err != nil {
		return nil, err
	}

	l.metrics.RecordLoad(ctx, source, table.Rows())
	l.logger.InfoContext(ctx, "measurements loaded",
		slog.String("source", source),
		slog.Int("rows", table.Rows()),
		slog.Int("columns", len(table.Columns())))

	return table, nil
}

// buildFrame types the columns: the timestamp column stays text, the others are
// detected, and columns without a single value default to Float.
func (l *Loader) buildFrame(records [][]string) dataframe.DataFrame {
	header := records[0]
	if len(records) == 1 {
		cols := make([]series.Series, len(header))
		for i, name := range header {
			if name == l.timestampColumn {
				cols[i] = series.New([]string{}, series.String, name)
			} else {
				cols[i] = series.New([]float64{}, series.Float, name)
			}
		}
		return dataframe.New(cols...)
	}

	return dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.Float),
		dataframe.NaNValues(MissingMarkers),
		dataframe.WithTypes(map[string]series.Type{l.timestampColumn: series.String}),
	)
}

// parseTimestamps parses every cell of the timestamp column; the first bad cell fails the load.
func (l *Loader) parseTimestamps(col series.Series, source string) ([]time.Time, error) {
	raw := col.Records()
	missing := col.IsNaN()
	out := make([]time.Time, len(raw))

	for i, s := range raw {
		if missing[i] || strings.TrimSpace(s) == "" {
			return nil, errors.NewParsingError(
				fmt.Sprintf("%s: empty %s in data row %d", source, l.timestampColumn, i+1), nil).
				WithContext("row", i+1)
		}
		ts, err := parseTimestamp(s)
		if err != nil {
			return nil, errors.NewParsingError(
				fmt.Sprintf("%s: unreadable %s %q in data row %d", source, l.timestampColumn, s, i+1), err).
				WithContext("row", i+1)
		}
		out[i] = ts
	}
	return out, nil
}

// parseTimestamp tries each of TimestampLayouts, interpreting zone-less values as UTC.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range TimestampLayouts {
		ts, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// sortByTimestamp stably reorders the frame rows by ascending timestamp.
func sortByTimestamp(df dataframe.DataFrame, timestamps []time.Time) (dataframe.DataFrame, []time.Time) {
	if sort.SliceIsSorted(timestamps, func(i, j int) bool { return timestamps[i].Before(timestamps[j]) }) {
		return df, timestamps
	}

	order := make([]int, len(timestamps))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return timestamps[order[a]].Before(timestamps[order[b]])
	})

	sorted := make([]time.Time, len(order))
	for i, idx := range order {
		sorted[i] = timestamps[idx]
	}
	return df.Subset(order), sorted
}

func countDuplicates(sorted []time.Time) int {
	dups := 0
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Equal(sorted[i-1]) {
			dups++
		}
	}
	return dups
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
