// Package files discovers station data on disk.
//
// Discovery finds CSV files and pairs each country's raw export
// (data/<slug>.csv) with its cleaned artifact (<slug>_clean.csv), so the data
// service can serve cleaned data when present and clean raw data otherwise.
//
// Example usage:
//
//	discovery := files.NewDiscovery(paths.BaseDir)
//	datasets, err := discovery.FindCountryDatasets(paths.DataDir, paths.CleanDir, cfg.Countries)
package files
