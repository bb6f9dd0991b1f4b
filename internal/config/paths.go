package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"solarcli/pkg/contracts/domain"
)

// Paths contains the resolved, absolute directories used by the tools.
type Paths struct {
	BaseDir    string
	DataDir    string
	CleanDir   string
	ReportsDir string
	LogsDir    string
}

// ResolvePaths resolves the configured directories against BaseDir, or the
// working directory when BaseDir is empty. CleanDir defaults to DataDir.
func ResolvePaths(cfg PathsConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory %s: %w", cfg.BaseDir, err)
	}

	resolve := func(dir string) string {
		if filepath.IsAbs(dir) {
			return filepath.Clean(dir)
		}
		return filepath.Join(base, dir)
	}

	paths := &Paths{
		BaseDir:    base,
		DataDir:    resolve(cfg.DataDir),
		ReportsDir: resolve(cfg.ReportsDir),
		LogsDir:    resolve(cfg.LogsDir),
	}
	if cfg.CleanDir != "" {
		paths.CleanDir = resolve(cfg.CleanDir)
	} else {
		paths.CleanDir = paths.DataDir
	}
	return paths, nil
}

// EnsureDirectories creates the output directories. The raw data directory is
// an input and is never created.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.CleanDir, p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// RawFile returns the expected location of a country's raw station export.
func (p *Paths) RawFile(country string) string {
	return filepath.Join(p.DataDir, domain.CountrySlug(country)+CSVExtension)
}

// CleanFile returns the location of a country's cleaned CSV artifact.
func (p *Paths) CleanFile(country string) string {
	return filepath.Join(p.CleanDir, domain.CountrySlug(country)+CleanFileSuffix+CSVExtension)
}

// ReportFile returns a path inside the reports directory.
func (p *Paths) ReportFile(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// LogPathResolution logs the resolved directories at debug level.
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Debug("Resolved paths",
		slog.String("base_dir", p.BaseDir),
		slog.String("data_dir", p.DataDir),
		slog.String("clean_dir", p.CleanDir),
		slog.String("reports_dir", p.ReportsDir),
		slog.String("logs_dir", p.LogsDir))
}

// FileExists reports whether path exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
