// Package exporter writes cleaned measurement tables and summary reports.
//
// CleanedExporter: writes one cleaned table per country as
// <country-slug>_clean.csv (or .xlsx). It overwrites existing artifacts and
// never creates the destination directory.
//
// CSVWriter: general CSV writing with headers, append mode and an optional
// UTF-8 BOM for Excel compatibility. Used for comparison reports.
//
// Example usage:
//
//	exp := exporter.NewCleanedExporter(paths.CleanDir, config.ExportFormatCSV, logger)
//	path, err := exp.Export(ctx, cleaned, "Benin")
//
//	writer := exporter.NewCSVWriter(paths, logger)
//	_, err = writer.WriteSimpleCSV("country_comparison.csv", headers, records)
package exporter
