// Package services sits between the HTTP handlers and the data pipeline.
//
// DatasetService discovers the country datasets on disk, loads each one once
// (reading the cleaned artifact when it exists, cleaning the raw export in memory
// otherwise) and answers analytics queries from an in-memory cache. Cached tables
// are shared by concurrent requests and are never modified after loading.
//
// HealthService reports liveness and whether the data directories are usable.
//
//	datasets := services.NewDatasetService(cfg, paths, logger, metrics)
//	resp, err := datasets.Compare(ctx, "GHI")
package services
