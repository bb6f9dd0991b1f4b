package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solarcli/internal/shared/testutil"
	"solarcli/pkg/contracts/domain"
)

// writeWorkspace lays out raw Benin and Togo exports under a fresh base
// directory and returns the path of a config file pointing at it.
func writeWorkspace(t *testing.T) (string, string) {
	t.Helper()
	base := t.TempDir()
	dataDir := filepath.Join(base, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0755))

	testutil.WriteMeasurementCSV(t, dataDir, "benin.csv", testutil.NewMeasurementFixture(48).Build())
	testutil.WriteMeasurementCSV(t, dataDir, "togo.csv",
		testutil.NewMeasurementFixture(24).WithColumn("GHI", 200, 210).Build())

	configFile := filepath.Join(base, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("paths:\n  base_dir: "+base+"\n"), 0644))
	return base, configFile
}

func runCompare(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun(t *testing.T) {
	base, configFile := writeWorkspace(t)

	code, stdout, stderr := runCompare(t, "-config", configFile)
	require.Equal(t, exitOK, code, stderr)

	assert.Contains(t, stdout, "Country comparison")
	assert.Contains(t, stdout, "Ranking by mean GHI")
	assert.Contains(t, stdout, "Benin")
	assert.Contains(t, stdout, "Togo")

	report := filepath.Join(base, "data", "reports", defaultReport)
	require.FileExists(t, report)
	data, err := os.ReadFile(report)
	require.NoError(t, err)
	content := strings.TrimPrefix(string(data), "\ufeff")
	assert.True(t, strings.HasPrefix(content, "country,metric,count,mean,median,std,rank_ghi"))
	assert.Contains(t, content, "Togo,GHI,24,205,205,")
}

func TestRun_Flags(t *testing.T) {
	base, configFile := writeWorkspace(t)

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{
			name:       "named countries without report",
			args:       []string{"-config", configFile, "-countries", "Togo", "-metrics", "GHI,DNI", "-no-report"},
			wantCode:   exitOK,
			wantStdout: "Togo",
		},
		{
			name:       "unknown country",
			args:       []string{"-config", configFile, "-countries", "Benin,Niger", "-no-report"},
			wantCode:   exitError,
			wantStderr: "niger",
		},
		{
			name:       "rank metric missing",
			args:       []string{"-config", configFile, "-rank", domain.FieldBP, "-no-report"},
			wantCode:   exitError,
			wantStderr: "BP",
		},
		{
			name:       "empty metric list",
			args:       []string{"-config", configFile, "-metrics", " , "},
			wantCode:   exitUsage,
			wantStderr: "-metrics",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runCompare(t, tt.args...)
			assert.Equal(t, tt.wantCode, code, stderr)
			if tt.wantStdout != "" {
				assert.Contains(t, stdout, tt.wantStdout)
			}
			if tt.wantStderr != "" {
				assert.Contains(t, strings.ToLower(stderr), strings.ToLower(tt.wantStderr))
			}
		})
	}

	assert.NoFileExists(t, filepath.Join(base, "data", "reports", defaultReport))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"Benin", "Sierra Leone"}, splitList(" Benin, Sierra Leone ,,"))
	assert.Nil(t, splitList(""))
}
