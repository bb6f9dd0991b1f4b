package config

import "time"

// Application constants
const (
	AppName    = "Solar EDA"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable read by Load.
	EnvPrefix = "SOLAR"
	// ConfigFileEnv names an explicit YAML configuration file.
	ConfigFileEnv = "SOLAR_CONFIG_FILE"

	// Cleaning defaults
	DefaultMissingThreshold = 0.05
	DefaultZThreshold       = 3.0
	DefaultTimestampColumn  = "Timestamp"
	OutlierMethodZScore     = "zscore"
	OutlierMethodModified   = "modified"

	// Export formats
	ExportFormatCSV  = "csv"
	ExportFormatXLSX = "xlsx"

	// File Paths (relative to the base directory)
	DefaultDataDir    = "data"
	DefaultReportsDir = "data/reports"
	DefaultLogsDir    = "logs"
	DefaultLogFile    = "logs/solar.log"

	// File naming
	CleanFileSuffix = "_clean"
	CSVExtension    = ".csv"
	XLSXExtension   = ".xlsx"

	// HTTP
	DefaultPort            = 8080
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultRateLimit       = 100
	DefaultBurstSize       = 50
)

// DefaultKeyFields are the measurement fields scanned for outliers.
var DefaultKeyFields = []string{"GHI", "DNI", "DHI", "ModA", "ModB", "WS", "WSgust"}

// DefaultCountries are the stations shipped with the project data set.
var DefaultCountries = []string{"Benin", "Sierra Leone", "Togo"}
