// Command compare loads several countries' datasets concurrently, prints the
// per-metric comparison and ranking, and saves both as a CSV report.
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
	"solarcli/internal/exporter"
	"solarcli/internal/infrastructure"
	"solarcli/internal/services"
	"solarcli/internal/validation"
	"solarcli/pkg/contracts/domain"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2

	defaultReport = "country_comparison.csv"
)

type options struct {
	countries  []string
	metrics    []string
	rank       string
	report     string
	noReport   bool
	configFile string
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	var countries, metrics string
	opts := &options{}

	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&countries, "countries", "", "comma separated countries (defaults to every discovered dataset)")
	fs.StringVar(&metrics, "metrics", strings.Join(domain.IrradianceFields, ","), "comma separated metrics to compare")
	fs.StringVar(&opts.rank, "rank", domain.FieldGHI, "metric used to rank countries")
	fs.StringVar(&opts.report, "report", defaultReport, "report file name inside the reports directory")
	fs.BoolVar(&opts.noReport, "no-report", false, "print only, do not write the CSV report")
	fs.StringVar(&opts.configFile, "config", "", "YAML configuration file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	opts.countries = splitList(countries)
	opts.metrics = splitList(metrics)
	if len(opts.metrics) == 0 {
		return nil, fmt.Errorf("-metrics needs at least one metric")
	}
	if strings.TrimSpace(opts.rank) == "" {
		return nil, fmt.Errorf("-rank is required")
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	var cfg *config.Config
	if opts.configFile != "" {
		cfg, err = config.LoadFrom(opts.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(stderr, "configuration: %v\n", err)
		return exitUsage
	}

	logger := infrastructure.NewLogger(cfg.Logging, stderr).With(slog.String("command", "compare"))
	ctx = infrastructure.ContextWithTraceID(ctx)

	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to resolve paths", slog.String("error", err.Error()))
		return exitError
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

	datasets, err := services.NewDatasetService(cfg, paths, logger, metrics).LoadAll(ctx, opts.countries...)
	if err != nil {
		fmt.Fprintf(stderr, "compare: %v\n", err)
		return exitError
	}

	tables := make(map[string]*dataprocessing.MeasurementTable, len(datasets))
	for name, ds := range datasets {
		tables[name] = ds.Table
	}

	comparison := dataprocessing.Compare(tables, opts.metrics...)
	ranking, err := dataprocessing.Rank(tables, opts.rank)
	if err != nil {
		fmt.Fprintf(stderr, "compare: %v\n", err)
		return exitError
	}

	renderComparison(stdout, comparison)
	renderRanking(stdout, opts.rank, ranking)

	if opts.noReport {
		return exitOK
	}

	validator := validation.NewFileValidator(logger)
	if err := validator.EnsureOutputDirectory(paths.ReportsDir); err != nil {
		fmt.Fprintf(stderr, "compare: %v\n", err)
		return exitError
	}
	headers, records := reportRecords(comparison, opts.rank, ranking)
	path, err := exporter.NewCSVWriter(paths, logger).WriteSimpleCSV(opts.report, headers, records)
	if err != nil {
		fmt.Fprintf(stderr, "compare: %v\n", err)
		return exitError
	}
	fmt.Fprintf(stdout, "Report: %s\n", path)
	return exitOK
}

func renderComparison(w io.Writer, rows []domain.CountryMetric) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Country comparison")
	t.AppendHeader(table.Row{"Country", "Metric", "Count", "Mean", "Median", "Std"})
	for _, r := range rows {
		t.AppendRow(table.Row{
			r.Country, r.Metric, r.Count,
			fmt.Sprintf("%.2f", r.Mean),
			fmt.Sprintf("%.2f", r.Median),
			fmt.Sprintf("%.2f", r.Std),
		})
	}
	t.Render()
}

func renderRanking(w io.Writer, metric string, ranking []domain.RankEntry) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Ranking by mean " + metric)
	t.AppendHeader(table.Row{"Rank", "Country", "Mean"})
	for _, r := range ranking {
		t.AppendRow(table.Row{r.Rank, r.Country, fmt.Sprintf("%.2f", r.Mean)})
	}
	t.Render()
}

// reportRecords flattens the comparison into one row per country and metric,
// with the country's rank on the ranking metric.
func reportRecords(rows []domain.CountryMetric, rankMetric string, ranking []domain.RankEntry) ([]string, [][]string) {
	ranks := make(map[string]int, len(ranking))
	for _, r := range ranking {
		ranks[r.Country] = r.Rank
	}

	headers := []string{"country", "metric", "count", "mean", "median", "std", "rank_" + strings.ToLower(rankMetric)}
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.Country,
			r.Metric,
			fmt.Sprintf("%d", r.Count),
			fmt.Sprintf("%g", r.Mean),
			fmt.Sprintf("%g", r.Median),
			fmt.Sprintf("%g", r.Std),
			fmt.Sprintf("%d", ranks[r.Country]),
		})
	}
	return headers, records
}
