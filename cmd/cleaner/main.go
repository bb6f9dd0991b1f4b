// Command cleaner loads one country's raw station export, cleans it and writes
// <country>_clean.csv (or .xlsx) into an existing output directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"solarcli/internal/config"
	"solarcli/internal/dataprocessing"
	apierrors "solarcli/internal/errors"
	"solarcli/internal/exporter"
	"solarcli/internal/infrastructure"
	"solarcli/internal/validation"
	"solarcli/pkg/contracts/domain"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type options struct {
	country    string
	input      string
	outDir     string
	format     string
	configFile string
	method     string
	zThreshold float64
	missing    float64
	set        map[string]bool // flags given on the command line
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("cleaner", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.country, "country", "", "country name, e.g. Benin or \"Sierra Leone\" (required)")
	fs.StringVar(&opts.input, "input", "", "raw CSV path (defaults to <data_dir>/<country>.csv)")
	fs.StringVar(&opts.outDir, "outdir", "", "existing output directory (defaults to the clean directory)")
	fs.StringVar(&opts.format, "format", "", "export format: csv or xlsx (defaults to the configured format)")
	fs.StringVar(&opts.configFile, "config", "", "YAML configuration file")
	fs.StringVar(&opts.method, "method", "", "outlier method: zscore or modified")
	fs.Float64Var(&opts.zThreshold, "z", 0, "absolute z-score threshold")
	fs.Float64Var(&opts.missing, "missing", 0, "largest tolerated missing fraction")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	opts.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	if strings.TrimSpace(opts.country) == "" {
		fs.Usage()
		return nil, fmt.Errorf("-country is required")
	}
	return opts, nil
}

// loadConfig layers the command line overrides on top of the configuration.
func loadConfig(opts *options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configFile != "" {
		cfg, err = config.LoadFrom(opts.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if opts.format != "" {
		cfg.Cleaning.ExportFormat = strings.ToLower(opts.format)
	}
	if opts.method != "" {
		cfg.Cleaning.OutlierMethod = opts.method
	}
	if opts.set["z"] {
		cfg.Cleaning.ZThreshold = opts.zThreshold
	}
	if opts.set["missing"] {
		cfg.Cleaning.MissingThreshold = opts.missing
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "configuration: %v\n", err)
		return exitUsage
	}

	logger := infrastructure.NewLogger(cfg.Logging, stderr).
		With(slog.String("command", "cleaner"), slog.String("country", opts.country))
	ctx = infrastructure.ContextWithTraceID(ctx)

	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to resolve paths", slog.String("error", err.Error()))
		return exitError
	}
	if opts.input == "" {
		opts.input = paths.RawFile(opts.country)
	}
	if opts.outDir == "" {
		opts.outDir = paths.CleanDir
	}

	providers, err := infrastructure.InitializeOTel(
		infrastructure.OTelConfigFrom(cfg.Telemetry, config.AppVersion), logger)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize OpenTelemetry", slog.String("error", err.Error()))
		return exitError
	}
	defer providers.Shutdown(context.Background())

	metrics, err := infrastructure.NewPipelineMetrics(providers.Meter)
	if err != nil {
		logger.WarnContext(ctx, "Pipeline metrics unavailable", slog.String("error", err.Error()))
	}

	path, report, err := clean(ctx, cfg, opts, logger, metrics)
	if err != nil {
		logger.ErrorContext(ctx, "Cleaning failed",
			slog.String("error", err.Error()),
			slog.String("error_type", string(apierrors.TypeOf(err))))
		fmt.Fprintf(stderr, "cleaner: %v\n", err)
		return exitError
	}

	renderReport(stdout, opts.country, path, report)
	return exitOK
}

// clean runs load, clean and export and returns the artifact path.
func clean(ctx context.Context, cfg *config.Config, opts *options, logger *slog.Logger, metrics *infrastructure.PipelineMetrics) (string, *domain.CleaningReport, error) {
	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateCSVFile(opts.input); err != nil {
		return "", nil, err
	}
	if err := validator.ValidateOutputDirectory(opts.outDir); err != nil {
		return "", nil, err
	}

	table, err := dataprocessing.NewLoader(logger, cfg.Cleaning.TimestampColumn).
		WithMetrics(metrics).
		Load(ctx, opts.input)
	if err != nil {
		return "", nil, err
	}

	cleaned, report, err := dataprocessing.NewCleaner(cfg.Cleaning, logger).
		WithMetrics(metrics).
		Clean(ctx, table)
	if err != nil {
		return "", nil, err
	}

	path, err := exporter.NewCleanedExporter(opts.outDir, cfg.Cleaning.ExportFormat, logger).
		WithMetrics(metrics).
		Export(ctx, cleaned, opts.country)
	if err != nil {
		return "", nil, err
	}
	return path, report, nil
}

func renderReport(w io.Writer, country, path string, report *domain.CleaningReport) {
	dropped := make(map[string]bool, len(report.DroppedColumns))
	for _, c := range report.DroppedColumns {
		dropped[c] = true
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(fmt.Sprintf("%s: %d rows", country, report.Rows))
	t.AppendHeader(table.Row{"Column", "Missing %", "Imputed", "Median", "Status"})

	for _, column := range dataprocessing.SortedKeys(report.Missingness) {
		status := "kept"
		if dropped[column] {
			status = "dropped"
		}
		median := ""
		if m, ok := report.Medians[column]; ok {
			median = fmt.Sprintf("%.2f", m)
		}
		t.AppendRow(table.Row{
			column,
			fmt.Sprintf("%.2f", report.Missingness[column]*100),
			report.ImputedValues[column],
			median,
			status,
		})
	}
	t.Render()

	if report.OutliersFlagged {
		fmt.Fprintf(w, "Outliers: %d rows flagged (%s on %s)\n",
			report.OutlierRows, report.OutlierMethod, strings.Join(report.KeyFieldsUsed, ", "))
	} else {
		fmt.Fprintln(w, "Outliers: not flagged, no key fields remained")
	}
	fmt.Fprintf(w, "Written: %s\n", path)
}
