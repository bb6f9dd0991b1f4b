package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "solarcli/internal/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 0.05, cfg.Cleaning.MissingThreshold)
	assert.Equal(t, 3.0, cfg.Cleaning.ZThreshold)
	assert.Equal(t, []string{"GHI", "DNI", "DHI", "ModA", "ModB", "WS", "WSgust"}, cfg.Cleaning.KeyFields)
	assert.Equal(t, OutlierMethodZScore, cfg.Cleaning.OutlierMethod)
	assert.Equal(t, "Timestamp", cfg.Cleaning.TimestampColumn)
	assert.Equal(t, []string{"Benin", "Sierra Leone", "Togo"}, cfg.Countries)
	require.NoError(t, cfg.Validate())
}

func TestDefault_ReturnsIndependentSlices(t *testing.T) {
	a := Default()
	a.Cleaning.KeyFields[0] = "changed"
	a.Countries[0] = "changed"

	b := Default()
	assert.Equal(t, "GHI", b.Cleaning.KeyFields[0])
	assert.Equal(t, "Benin", b.Countries[0])
	assert.Equal(t, "GHI", DefaultKeyFields[0])
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	t.Setenv("SOLAR_CLEANING_MISSING_THRESHOLD", "0.1")
	t.Setenv("SOLAR_CLEANING_KEY_FIELDS", "GHI,DNI")
	t.Setenv("SOLAR_CLEANING_OUTLIER_METHOD", "modified")
	t.Setenv("SOLAR_SERVER_READ_TIMEOUT", "5s")
	t.Setenv("SOLAR_COUNTRIES", "Benin,Togo")

	cfg, err := LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, 0.1, cfg.Cleaning.MissingThreshold)
	assert.Equal(t, []string{"GHI", "DNI"}, cfg.Cleaning.KeyFields)
	assert.Equal(t, OutlierMethodModified, cfg.Cleaning.OutlierMethod)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"Benin", "Togo"}, cfg.Countries)
	// untouched values keep their defaults
	assert.Equal(t, 3.0, cfg.Cleaning.ZThreshold)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
}

func TestLoadFrom_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
  read_timeout: 20s
cleaning:
  z_threshold: 2.5
  timestamp_column: Time
paths:
  data_dir: /srv/solar
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))
	t.Setenv("SOLAR_SERVER_PORT", "7070")

	cfg, err := LoadFrom(file)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port, "env wins over file")
	assert.Equal(t, 20*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 2.5, cfg.Cleaning.ZThreshold)
	assert.Equal(t, "Time", cfg.Cleaning.TimestampColumn)
	assert.Equal(t, "/srv/solar", cfg.Paths.DataDir)
	assert.Equal(t, 0.05, cfg.Cleaning.MissingThreshold, "absent keys keep defaults")
}

func TestLoadFrom_MissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeConfig, apperrors.TypeOf(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "threshold above one",
			mutate:  func(c *Config) { c.Cleaning.MissingThreshold = 1.5 },
			wantErr: "MissingThreshold",
		},
		{
			name:   "zero threshold drops any gap",
			mutate: func(c *Config) { c.Cleaning.MissingThreshold = 0 },
		},
		{
			name:    "negative threshold",
			mutate:  func(c *Config) { c.Cleaning.MissingThreshold = -0.1 },
			wantErr: "MissingThreshold",
		},
		{
			name:    "non positive z threshold",
			mutate:  func(c *Config) { c.Cleaning.ZThreshold = 0 },
			wantErr: "ZThreshold",
		},
		{
			name:    "unknown outlier method",
			mutate:  func(c *Config) { c.Cleaning.OutlierMethod = "iqr" },
			wantErr: "OutlierMethod",
		},
		{
			name:    "blank key field",
			mutate:  func(c *Config) { c.Cleaning.KeyFields = []string{"GHI", ""} },
			wantErr: "KeyFields",
		},
		{
			name:   "empty key field list is allowed",
			mutate: func(c *Config) { c.Cleaning.KeyFields = nil },
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "Port",
		},
		{
			name:    "file output without path",
			mutate:  func(c *Config) { c.Logging.Output = "file"; c.Logging.FilePath = "" },
			wantErr: "FilePath",
		},
		{
			name:    "unsupported export format",
			mutate:  func(c *Config) { c.Cleaning.ExportFormat = "parquet" },
			wantErr: "ExportFormat",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, apperrors.ErrTypeConfig, apperrors.TypeOf(err))
		})
	}
}
