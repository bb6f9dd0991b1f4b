// Package dataprocessing loads station measurement exports, cleans them and
// computes the descriptive statistics used by the reports and the data API.
//
// The pipeline is Loader.Load, then Cleaner.Clean, then an exporter. Tables are
// immutable: each step returns a new MeasurementTable backed by a gota dataframe.
package dataprocessing
