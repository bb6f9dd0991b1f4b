package infrastructure

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"solarcli/pkg/contracts/domain"
)

// PipelineMetrics are the instruments recorded by the loader, cleaner, exporter and data API.
// A nil *PipelineMetrics records nothing.
type PipelineMetrics struct {
	RowsLoaded       metric.Int64Counter
	ColumnsDropped   metric.Int64Counter
	ValuesImputed    metric.Int64Counter
	OutliersFlagged  metric.Int64Counter
	DatasetsExported metric.Int64Counter
	StageDuration    metric.Float64Histogram
	StageErrors      metric.Int64Counter

	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
}

// NewPipelineMetrics creates the pipeline instruments on meter.
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	var (
		m   PipelineMetrics
		err error
	)

	if m.RowsLoaded, err = meter.Int64Counter("pipeline_rows_loaded",
		metric.WithDescription("Rows read from measurement files")); err != nil {
		return nil, err
	}
	if m.ColumnsDropped, err = meter.Int64Counter("pipeline_columns_dropped",
		metric.WithDescription("Columns removed for exceeding the missing threshold")); err != nil {
		return nil, err
	}
	if m.ValuesImputed, err = meter.Int64Counter("pipeline_values_imputed",
		metric.WithDescription("Missing numeric cells replaced by the column median")); err != nil {
		return nil, err
	}
	if m.OutliersFlagged, err = meter.Int64Counter("pipeline_outliers_flagged",
		metric.WithDescription("Rows flagged as outliers")); err != nil {
		return nil, err
	}
	if m.DatasetsExported, err = meter.Int64Counter("pipeline_datasets_exported",
		metric.WithDescription("Cleaned datasets written")); err != nil {
		return nil, err
	}
	if m.StageDuration, err = meter.Float64Histogram("pipeline_stage_duration",
		metric.WithDescription("Duration of load, clean and export stages"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.StageErrors, err = meter.Int64Counter("pipeline_stage_errors",
		metric.WithDescription("Failed pipeline stages")); err != nil {
		return nil, err
	}
	if m.HTTPRequestsTotal, err = meter.Int64Counter("http_requests",
		metric.WithDescription("Total number of HTTP requests")); err != nil {
		return nil, err
	}
	if m.HTTPRequestDuration, err = meter.Float64Histogram("http_request_duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}

	return &m, nil
}

// RecordLoad counts rows read for a source.
func (m *PipelineMetrics) RecordLoad(ctx context.Context, source string, rows int) {
	if m == nil {
		return
	}
	m.RowsLoaded.Add(ctx, int64(rows), metric.WithAttributes(attribute.String("source", source)))
}

// RecordCleaning records the effect of one cleaning pass.
func (m *PipelineMetrics) RecordCleaning(ctx context.Context, report *domain.CleaningReport) {
	if m == nil || report == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("method", report.OutlierMethod))

	m.ColumnsDropped.Add(ctx, int64(len(report.DroppedColumns)), attrs)
	imputed := 0
	for _, n := range report.ImputedValues {
		imputed += n
	}
	m.ValuesImputed.Add(ctx, int64(imputed), attrs)
	m.OutliersFlagged.Add(ctx, int64(report.OutlierRows), attrs)
}

// RecordExport counts a written artifact.
func (m *PipelineMetrics) RecordExport(ctx context.Context, format string) {
	if m == nil {
		return
	}
	m.DatasetsExported.Add(ctx, 1, metric.WithAttributes(attribute.String("format", format)))
}

// RecordStage records the duration of a stage and counts it as failed when err is set.
func (m *PipelineMetrics) RecordStage(ctx context.Context, stage string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
		m.StageErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
	}
	m.StageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("status", status),
	))
}

// RecordHTTPRequest records one served request.
func (m *PipelineMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.String("status", strconv.Itoa(status)),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)
}
