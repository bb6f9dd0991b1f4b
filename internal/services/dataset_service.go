package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"solarcli/internal/config"
	"solarcli/internal/dataprocessing"
	apierrors "solarcli/internal/errors"
	"solarcli/internal/files"
	"solarcli/internal/infrastructure"
	api "solarcli/pkg/contracts/api/v1"
	"solarcli/pkg/contracts/domain"
)

// maxConcurrentLoads bounds LoadAll; each load holds a whole station file in memory.
const maxConcurrentLoads = 4

// Dataset is a loaded, cleaned country table. Tables in the cache are never mutated.
type Dataset struct {
	Info     files.CountryDataset
	Table    *dataprocessing.MeasurementTable
	Report   *domain.CleaningReport // nil when the cleaned artifact was read from disk
	LoadedAt time.Time
}

// DatasetService discovers country datasets and serves analytics over them.
// Cleaned artifacts are preferred; raw files are cleaned in memory on first use.
type DatasetService struct {
	paths     *config.Paths
	countries []string
	discovery *files.Discovery
	loader    *dataprocessing.Loader
	cleaner   *dataprocessing.Cleaner
	logger    *slog.Logger

	mu    sync.RWMutex
	cache map[string]*Dataset
	loads singleflight.Group
}

// NewDatasetService creates a dataset service over the resolved paths.
func NewDatasetService(cfg *config.Config, paths *config.Paths, logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("DatasetService initialized with paths",
		slog.String("data_dir", paths.DataDir),
		slog.String("clean_dir", paths.CleanDir))

	return &DatasetService{
		paths:     paths,
		countries: cfg.Countries,
		discovery: files.NewDiscovery(paths.BaseDir),
		loader:    dataprocessing.NewLoader(logger, cfg.Cleaning.TimestampColumn).WithMetrics(metrics),
		cleaner:   dataprocessing.NewCleaner(cfg.Cleaning, logger).WithMetrics(metrics),
		logger:    infrastructure.WithComponent(logger, "dataset_service"),
		cache:     make(map[string]*Dataset),
	}
}

// Countries lists the datasets found on disk, sorted by slug.
func (s *DatasetService) Countries(ctx context.Context) ([]files.CountryDataset, error) {
	datasets, err := s.discovery.FindCountryDatasets(s.paths.DataDir, s.paths.CleanDir, s.countries)
	if err != nil {
		return nil, apierrors.NewStorageError("failed to scan data directory", err).
			WithContext("path", s.paths.DataDir)
	}
	s.logger.DebugContext(ctx, "countries discovered", slog.Int("count", len(datasets)))
	return datasets, nil
}

// CountryList is Countries in the API contract shape.
func (s *DatasetService) CountryList(ctx context.Context) (*api.CountryListResponse, error) {
	datasets, err := s.Countries(ctx)
	if err != nil {
		return nil, err
	}

	resp := &api.CountryListResponse{Countries: make([]api.CountryInfo, 0, len(datasets))}
	for _, ds := range datasets {
		path := ds.RawPath
		if ds.Cleaned() {
			path = ds.CleanPath
		}
		resp.Countries = append(resp.Countries, api.CountryInfo{
			Name:    ds.Name,
			Slug:    ds.Slug,
			Cleaned: ds.Cleaned(),
			Path:    path,
		})
	}
	return resp, nil
}

// Get returns the cleaned dataset of country (a display name or slug),
// loading it on first use. Concurrent first requests share one load.
func (s *DatasetService) Get(ctx context.Context, country string) (*Dataset, error) {
	slug := domain.CountrySlug(country)
	if slug == "" {
		return nil, apierrors.NewValidationError("country is required")
	}

	s.mu.RLock()
	ds, ok := s.cache[slug]
	s.mu.RUnlock()
	if ok {
		return ds, nil
	}

	v, err, _ := s.loads.Do(slug, func() (interface{}, error) {
		return s.load(ctx, slug)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dataset), nil
}

func (s *DatasetService) load(ctx context.Context, slug string) (*Dataset, error) {
	s.mu.RLock()
	cached, ok := s.cache[slug]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	datasets, err := s.Countries(ctx)
	if err != nil {
		return nil, err
	}

	var info *files.CountryDataset
	for i := range datasets {
		if datasets[i].Slug == slug {
			info = &datasets[i]
			break
		}
	}
	if info == nil {
		return nil, apierrors.NewNotFoundError(fmt.Sprintf("country %s", slug)).WithContext("country", slug)
	}

	ds, err := s.read(ctx, *info)
	if err != nil {
		infrastructure.WithError(s.logger, err).WarnContext(ctx, "dataset load failed",
			slog.String("country", info.Name))
		return nil, err
	}

	s.mu.Lock()
	s.cache[slug] = ds
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "dataset loaded",
		slog.String("country", info.Name),
		slog.Bool("from_clean_file", info.Cleaned()),
		slog.Int("rows", ds.Table.Rows()))
	return ds, nil
}

// read loads the cleaned artifact when one exists, otherwise cleans the raw export in memory.
func (s *DatasetService) read(ctx context.Context, info files.CountryDataset) (*Dataset, error) {
	ds := &Dataset{Info: info}
	if info.Cleaned() {
		table, err := s.loader.Load(ctx, info.CleanPath)
		if err != nil {
			return nil, err
		}
		ds.Table = table
	} else {
		raw, err := s.loader.Load(ctx, info.RawPath)
		if err != nil {
			return nil, err
		}
		ds.Table, ds.Report, err = s.cleaner.Clean(ctx, raw)
		if err != nil {
			return nil, err
		}
	}
	ds.LoadedAt = time.Now()
	return ds, nil
}

// LoadAll loads the named countries concurrently, or every discovered country
// when none are named. The result is keyed by display name.
func (s *DatasetService) LoadAll(ctx context.Context, countries ...string) (map[string]*Dataset, error) {
	if len(countries) == 0 {
		datasets, err := s.Countries(ctx)
		if err != nil {
			return nil, err
		}
		for _, ds := range datasets {
			countries = append(countries, ds.Slug)
		}
	}
	if len(countries) == 0 {
		return nil, apierrors.NewNotFoundError("country datasets")
	}

	results := make([]*Dataset, len(countries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)
	for i, country := range countries {
		g.Go(func() error {
			ds, err := s.Get(gctx, country)
			if err != nil {
				return fmt.Errorf("load %s: %w", country, err)
			}
			results[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*Dataset, len(results))
	for _, ds := range results {
		out[ds.Info.Name] = ds
	}
	return out, nil
}

// Invalidate drops cached datasets; with no arguments the whole cache is cleared.
func (s *DatasetService) Invalidate(countries ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(countries) == 0 {
		s.cache = make(map[string]*Dataset)
		return
	}
	for _, c := range countries {
		delete(s.cache, domain.CountrySlug(c))
	}
}

// Cached returns the number of datasets held in memory.
func (s *DatasetService) Cached() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

// Summary describes one metric of a country.
func (s *DatasetService) Summary(ctx context.Context, country, metric string) (*api.SummaryResponse, error) {
	ds, err := s.Get(ctx, country)
	if err != nil {
		return nil, err
	}
	stats, err := dataprocessing.Describe(ds.Table, metric)
	if err != nil {
		return nil, err
	}
	return &api.SummaryResponse{Country: ds.Info.Name, Rows: ds.Table.Rows(), Stats: stats[0]}, nil
}

// Hourly profiles fields (irradiance by default) by hour of day.
func (s *DatasetService) Hourly(ctx context.Context, country string, fields []string) (*api.HourlyResponse, error) {
	ds, err := s.Get(ctx, country)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		fields = domain.IrradianceFields
	}
	hours, err := dataprocessing.HourlyProfile(ds.Table, fields...)
	if err != nil {
		return nil, err
	}
	return &api.HourlyResponse{Country: ds.Info.Name, Fields: fields, Hours: hours}, nil
}

// Correlation computes the correlation matrix of fields (all numeric columns by default).
func (s *DatasetService) Correlation(ctx context.Context, country string, fields []string) (*api.CorrelationResponse, error) {
	ds, err := s.Get(ctx, country)
	if err != nil {
		return nil, err
	}
	matrix, err := dataprocessing.CorrelationMatrix(ds.Table, fields...)
	if err != nil {
		return nil, err
	}
	return &api.CorrelationResponse{Country: ds.Info.Name, Matrix: *matrix}, nil
}

// Outliers counts the rows flagged by the cleaner.
func (s *DatasetService) Outliers(ctx context.Context, country string) (*api.OutlierResponse, error) {
	ds, err := s.Get(ctx, country)
	if err != nil {
		return nil, err
	}
	summary, err := dataprocessing.OutlierSummary(ds.Table)
	if err != nil {
		return nil, err
	}
	return &api.OutlierResponse{Country: ds.Info.Name, Summary: *summary}, nil
}

// CleaningImpact groups module readings by the Cleaning flag.
func (s *DatasetService) CleaningImpact(ctx context.Context, country string) (*api.CleaningImpactResponse, error) {
	ds, err := s.Get(ctx, country)
	if err != nil {
		return nil, err
	}
	groups, err := dataprocessing.CleaningImpact(ds.Table)
	if err != nil {
		return nil, err
	}
	return &api.CleaningImpactResponse{Country: ds.Info.Name, Groups: groups}, nil
}

// Compare compares metric across every discovered country and ranks them by mean.
func (s *DatasetService) Compare(ctx context.Context, metric string) (*api.CompareResponse, error) {
	datasets, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	tables := make(map[string]*dataprocessing.MeasurementTable, len(datasets))
	for name, ds := range datasets {
		tables[name] = ds.Table
	}

	ranking, err := dataprocessing.Rank(tables, metric)
	if err != nil {
		return nil, err
	}
	return &api.CompareResponse{
		Metric:    metric,
		Countries: dataprocessing.Compare(tables, metric),
		Ranking:   ranking,
	}, nil
}
