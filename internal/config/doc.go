// Package config provides centralized configuration for the solar measurement
// tools: the cleaning thresholds, the data directories, logging, telemetry and
// the data API server.
//
// # Configuration Sources
//
// Configuration is assembled in the following order, later sources winning:
//
//	1. Default() values
//	2. A YAML file (SOLAR_CONFIG_FILE, config.yaml or configs/config.yaml)
//	3. Environment variables with the SOLAR_ prefix
//
// Nested fields are addressed by joining the struct tags:
//
//	SOLAR_CLEANING_MISSING_THRESHOLD=0.05
//	SOLAR_CLEANING_Z_THRESHOLD=3
//	SOLAR_CLEANING_KEY_FIELDS=GHI,DNI,DHI,ModA,ModB,WS,WSgust
//	SOLAR_PATHS_DATA_DIR=/srv/solar/data
//	SOLAR_LOGGING_LEVEL=debug
//
// # Validation
//
// The merged configuration is validated with go-playground/validator struct
// tags; an invalid value fails Load with a CONFIG error instead of being
// silently corrected.
//
// # Paths
//
// ResolvePaths turns the configured directories into absolute paths below a
// base directory (SOLAR_PATHS_BASE_DIR, or the working directory):
//
//	paths, err := config.ResolvePaths(cfg.Paths)
//	raw := paths.RawFile("Benin")        // <data>/benin.csv
//	clean := paths.CleanFile("Benin")    // <clean>/benin_clean.csv
package config
