package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"solarcli/internal/config"
	"solarcli/pkg/contracts/domain"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// CountryDataset locates the raw and cleaned files of one country.
// Either path may be empty when that file does not exist.
type CountryDataset struct {
	Name      string
	Slug      string
	RawPath   string
	CleanPath string
}

// Cleaned reports whether a cleaned artifact exists.
func (c CountryDataset) Cleaned() bool {
	return c.CleanPath != ""
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// FindCSVFiles finds all CSV files in the specified directory, sorted by name.
func (d *Discovery) FindCSVFiles(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasSuffix(strings.ToLower(name), config.CSVExtension) {
			info, err := entry.Info()
			if err != nil {
				continue
			}

			files = append(files, FileInfo{
				Path:    filepath.Join(fullPath, name),
				Name:    name,
				Size:    info.Size(),
				ModTime: info.ModTime(),
			})
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// FindFilesByPattern finds files matching a glob pattern
func (d *Discovery) FindFilesByPattern(dir string, pattern string) ([]FileInfo, error) {
	searchPattern := filepath.Join(d.resolve(dir), pattern)

	matches, err := filepath.Glob(searchPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}

	var files []FileInfo
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, FileInfo{
			Path:    match,
			Name:    filepath.Base(match),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	return files, nil
}

// FindCountryDatasets pairs raw exports (<slug>.csv or <slug>-<site>.csv in dataDir) with cleaned
// artifacts (<slug>_clean.csv in cleanDir). known maps slugs back to display
// names; unknown slugs are named after the slug itself. Results are sorted by slug.
// A missing cleanDir is not an error.
func (d *Discovery) FindCountryDatasets(dataDir, cleanDir string, known []string) ([]CountryDataset, error) {
	names := make(map[string]string, len(known))
	for _, name := range known {
		names[domain.CountrySlug(name)] = name
	}

	bySlug := make(map[string]*CountryDataset)
	get := func(slug string) *CountryDataset {
		ds, ok := bySlug[slug]
		if !ok {
			name := names[slug]
			if name == "" {
				name = slug
			}
			ds = &CountryDataset{Name: name, Slug: slug}
			bySlug[slug] = ds
		}
		return ds
	}

	cleanSuffix := config.CleanFileSuffix + config.CSVExtension

	raw, err := d.FindCSVFiles(dataDir)
	if err != nil {
		return nil, err
	}
	// <slug>.csv wins over <slug>-<site>.csv; among several candidates the newest wins.
	exports := make(map[string][]FileInfo)
	siteExports := make(map[string][]FileInfo)
	for _, f := range raw {
		stem := strings.TrimSuffix(strings.ToLower(f.Name), config.CSVExtension)
		if strings.HasSuffix(strings.ToLower(f.Name), cleanSuffix) {
			// Cleaned artifacts share the data directory by default.
			if d.resolve(cleanDir) == d.resolve(dataDir) {
				get(strings.TrimSuffix(stem, config.CleanFileSuffix)).CleanPath = f.Path
			}
			continue
		}
		if slug, site := rawExportSlug(stem); site {
			siteExports[slug] = append(siteExports[slug], f)
		} else if slug != "" {
			exports[slug] = append(exports[slug], f)
		}
	}
	for slug, files := range siteExports {
		if _, ok := exports[slug]; !ok {
			exports[slug] = files
		}
	}
	for slug, files := range exports {
		if latest, ok := GetLatestFile(files); ok {
			get(slug).RawPath = latest.Path
		}
	}

	if d.resolve(cleanDir) != d.resolve(dataDir) {
		cleaned, err := d.FindFilesByPattern(cleanDir, "*"+cleanSuffix)
		if err != nil {
			return nil, err
		}
		for _, f := range cleaned {
			slug := strings.TrimSuffix(strings.ToLower(f.Name), cleanSuffix)
			if slug != "" {
				get(slug).CleanPath = f.Path
			}
		}
	}

	out := make([]CountryDataset, 0, len(bySlug))
	for _, ds := range bySlug {
		out = append(out, *ds)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

// rawExportSlug maps a lowercased file stem to its country slug. site is true
// for station exports named <slug>-<site>.
func rawExportSlug(stem string) (slug string, site bool) {
	if s := domain.CountrySlug(stem); s == stem && s != "" {
		return s, false
	}
	prefix, _, found := strings.Cut(stem, "-")
	if found && prefix != "" && domain.CountrySlug(prefix) == prefix {
		return prefix, true
	}
	return "", false
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}

	return latest, true
}
