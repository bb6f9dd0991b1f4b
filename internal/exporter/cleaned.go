package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel/attribute"

	"solarcli/internal/config"
	"solarcli/internal/dataprocessing"
	"solarcli/internal/errors"
	"solarcli/internal/infrastructure"
	"solarcli/pkg/contracts/domain"
)

const xlsxSheet = "Sheet1"

// CleanedExporter writes cleaned tables to <dir>/<country-slug>_clean.<ext>.
// Existing artifacts are overwritten. The directory must already exist.
type CleanedExporter struct {
	dir     string
	format  string
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
}

// NewCleanedExporter creates an exporter writing into dir in the given format
// (config.ExportFormatCSV when empty).
func NewCleanedExporter(dir, format string, logger *slog.Logger) *CleanedExporter {
	if logger == nil {
		logger = slog.Default()
	}
	if format == "" {
		format = config.ExportFormatCSV
	}
	return &CleanedExporter{
		dir:    dir,
		format: format,
		logger: infrastructure.WithComponent(logger, "exporter"),
	}
}

// WithMetrics counts exported artifacts on m.
func (e *CleanedExporter) WithMetrics(m *infrastructure.PipelineMetrics) *CleanedExporter {
	e.metrics = m
	return e
}

// PathFor returns the artifact path for a country.
func (e *CleanedExporter) PathFor(country string) string {
	ext := config.CSVExtension
	if e.format == config.ExportFormatXLSX {
		ext = config.XLSXExtension
	}
	return filepath.Join(e.dir, domain.CountrySlug(country)+config.CleanFileSuffix+ext)
}

// Export writes table for country and returns the artifact path.
func (e *CleanedExporter) Export(ctx context.Context, table *dataprocessing.MeasurementTable, country string) (path string, err error) {
	start := time.Now()
	ctx, span := infrastructure.StartSpan(ctx, "exporter.Export",
		attribute.String("country", country),
		attribute.String("format", e.format))
	defer func() {
		infrastructure.RecordError(ctx, err)
		e.metrics.RecordStage(ctx, "export", time.Since(start), err)
		span.End()
	}()

	if table == nil {
		return "", errors.NewValidationError("no table to export")
	}
	if domain.CountrySlug(country) == "" {
		return "", errors.NewValidationError(fmt.Sprintf("country %q has no usable name", country))
	}

	path = e.PathFor(country)
	headers, records := frameRecords(table.Frame())

	switch e.format {
	case config.ExportFormatCSV:
		err = writeCSVFile(path, headers, records)
	case config.ExportFormatXLSX:
		err = writeXLSXFile(path, table)
	default:
		return "", errors.NewValidationError(fmt.Sprintf("unsupported export format %q", e.format))
	}
	if err != nil {
		return "", errors.NewStorageError(fmt.Sprintf("failed to write %s", path), err).
			WithContext("path", path)
	}

	e.metrics.RecordExport(ctx, e.format)
	e.logger.InfoContext(ctx, "cleaned dataset exported",
		slog.String("country", country),
		slog.String("path", path),
		slog.Int("rows", len(records)),
		slog.Int("columns", len(headers)))
	return path, nil
}

// writeCSVFile truncates or creates path without touching its directory.
func writeCSVFile(path string, headers []string, records [][]string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if err := writeRecords(file, headers, records, false); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func writeXLSXFile(path string, table *dataprocessing.MeasurementTable) error {
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	df := table.Frame()
	names := df.Names()
	for c, name := range names {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(xlsxSheet, cell, name); err != nil {
			return err
		}
	}

	for c, name := range names {
		col := df.Col(name)
		for r := 0; r < col.Len(); r++ {
			value := cellValue(col.Elem(r), col.Type())
			if value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(xlsxSheet, cell, value); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}
