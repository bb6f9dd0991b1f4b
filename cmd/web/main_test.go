package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "data"), 0755))

	configFile := filepath.Join(base, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(
		"paths:\n  base_dir: "+base+"\n"+
			"logging:\n  output: console\n  level: error\n"), 0644))
	return configFile
}

func TestNewApplication(t *testing.T) {
	configFile := writeConfig(t)

	tests := []struct {
		name     string
		args     []string
		wantErr  bool
		wantAddr string
	}{
		{name: "config file", args: []string{"-config", configFile}, wantAddr: ":8080"},
		{name: "port override", args: []string{"-config", configFile, "-port", "9090"}, wantAddr: ":9090"},
		{name: "invalid port", args: []string{"-config", configFile, "-port", "70000"}, wantErr: true},
		{name: "unknown flag", args: []string{"-frontend", "dist"}, wantErr: true},
		{name: "missing config file", args: []string{"-config", filepath.Join(t.TempDir(), "none.yaml")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			application, err := newApplication(tt.args, &stderr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { _ = application.OTelProviders.Shutdown(context.Background()) })

			assert.Equal(t, tt.wantAddr, application.Server.Addr)

			rec := httptest.NewRecorder()
			application.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}
