package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solarcli/internal/config"
	"solarcli/internal/shared/testutil"
)

// newTestApplication builds an application over a temporary base directory
// holding a raw Benin export.
func newTestApplication(t *testing.T, mutate func(cfg *config.Config)) *Application {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)

	cfg := config.Default()
	cfg.Paths.BaseDir = t.TempDir()
	cfg.Security.RateLimit.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}

	require.NoError(t, os.MkdirAll(filepath.Join(cfg.Paths.BaseDir, cfg.Paths.DataDir), 0755))
	testutil.WriteMeasurementCSV(t, filepath.Join(cfg.Paths.BaseDir, cfg.Paths.DataDir), "benin.csv",
		testutil.NewMeasurementFixture(48).Build())

	app, err := NewApplication(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = app.OTelProviders.Shutdown(context.Background())
	})
	return app
}

func do(app *Application, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func TestNewApplication(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	t.Run("nil config", func(t *testing.T) {
		_, err := NewApplication(nil, logger)
		assert.Error(t, err)
	})

	t.Run("nil logger", func(t *testing.T) {
		_, err := NewApplication(config.Default(), nil)
		assert.Error(t, err)
	})

	t.Run("wires services", func(t *testing.T) {
		app := newTestApplication(t, nil)
		assert.NotNil(t, app.Router)
		assert.NotNil(t, app.Server)
		assert.NotNil(t, app.Datasets)
		assert.NotNil(t, app.HealthService)
		assert.NotNil(t, app.Metrics)
		assert.DirExists(t, app.Paths.ReportsDir)
		assert.DirExists(t, app.Paths.LogsDir)
	})
}

func TestApplication_Routes(t *testing.T) {
	app := newTestApplication(t, nil)

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
		wantBody   string
	}{
		{name: "health", method: http.MethodGet, target: "/api/health", wantStatus: http.StatusOK, wantBody: `"ok"`},
		{name: "ready", method: http.MethodGet, target: "/api/health/ready", wantStatus: http.StatusOK, wantBody: `"ready"`},
		{name: "live", method: http.MethodGet, target: "/api/health/live", wantStatus: http.StatusOK, wantBody: `"alive"`},
		{name: "version", method: http.MethodGet, target: "/api/version", wantStatus: http.StatusOK, wantBody: config.AppVersion},
		{name: "countries", method: http.MethodGet, target: "/api/countries", wantStatus: http.StatusOK, wantBody: `"benin"`},
		{name: "countries trailing slash", method: http.MethodGet, target: "/api/countries/", wantStatus: http.StatusOK, wantBody: `"benin"`},
		{name: "summary", method: http.MethodGet, target: "/api/countries/Benin/summary", wantStatus: http.StatusOK, wantBody: `"GHI"`},
		{name: "unknown country", method: http.MethodGet, target: "/api/countries/niger/summary", wantStatus: http.StatusNotFound, wantBody: "/errors/not-found"},
		{name: "compare without metric", method: http.MethodGet, target: "/api/compare", wantStatus: http.StatusBadRequest, wantBody: "metric is required"},
		{name: "unknown route", method: http.MethodGet, target: "/nope", wantStatus: http.StatusNotFound},
		{name: "method not allowed", method: http.MethodPost, target: "/api/health", wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(app, tt.method, tt.target, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestApplication_SummaryUsesCache(t *testing.T) {
	app := newTestApplication(t, nil)

	rec := do(app, http.MethodGet, "/api/countries/benin/summary?metric=DNI", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Benin", body["country"])
	assert.Equal(t, 1, app.Datasets.Cached())

	rec = do(app, http.MethodGet, "/api/countries/benin/outliers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, app.Datasets.Cached())
}

func TestApplication_RequestID(t *testing.T) {
	app := newTestApplication(t, nil)

	rec := do(app, http.MethodGet, "/api/health", http.Header{"X-Request-Id": {"req-123"}})
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))

	rec = do(app, http.MethodGet, "/api/health", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestApplication_CORS(t *testing.T) {
	app := newTestApplication(t, func(cfg *config.Config) {
		cfg.Security.AllowedOrigins = []string{"http://dashboard.local"}
	})

	rec := do(app, http.MethodOptions, "/api/countries", http.Header{"Origin": {"http://dashboard.local"}})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://dashboard.local", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(app, http.MethodGet, "/api/health", http.Header{"Origin": {"http://evil.local"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestApplication_RateLimit(t *testing.T) {
	app := newTestApplication(t, func(cfg *config.Config) {
		cfg.Security.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1}
	})

	assert.Equal(t, http.StatusOK, do(app, http.MethodGet, "/api/health", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(app, http.MethodGet, "/api/health", nil).Code)

	// Scrapes are outside the limited group.
	assert.Equal(t, http.StatusOK, do(app, http.MethodGet, "/metrics", nil).Code)
}

func TestApplication_Metrics(t *testing.T) {
	app := newTestApplication(t, nil)

	require.Equal(t, http.StatusOK, do(app, http.MethodGet, "/api/countries/benin/summary", nil).Code)

	rec := do(app, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
	assert.Contains(t, rec.Body.String(), "pipeline_rows_loaded_total")
}

func TestApplication_MetricsDisabled(t *testing.T) {
	app := newTestApplication(t, func(cfg *config.Config) {
		cfg.Telemetry.EnableMetrics = false
	})

	assert.Equal(t, http.StatusNotFound, do(app, http.MethodGet, "/metrics", nil).Code)
	assert.Equal(t, http.StatusOK, do(app, http.MethodGet, "/api/health", nil).Code)
}

func TestApplication_createServer(t *testing.T) {
	app := newTestApplication(t, func(cfg *config.Config) {
		cfg.Server.Port = 9191
		cfg.Server.ReadTimeout = 3 * time.Second
		cfg.Server.WriteTimeout = 4 * time.Second
		cfg.Server.IdleTimeout = 5 * time.Second
	})

	assert.Equal(t, ":9191", app.Server.Addr)
	assert.Equal(t, 3*time.Second, app.Server.ReadTimeout)
	assert.Equal(t, 4*time.Second, app.Server.WriteTimeout)
	assert.Equal(t, 5*time.Second, app.Server.IdleTimeout)
	assert.Equal(t, app.Router, app.Server.Handler)
}

func TestApplication_StartStop(t *testing.T) {
	app := newTestApplication(t, func(cfg *config.Config) {
		cfg.Server.Port = 0
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))
	require.Equal(t, http.StatusOK, do(app, http.MethodGet, "/api/countries/benin/summary", nil).Code)
	require.Equal(t, 1, app.Datasets.Cached())

	require.NoError(t, app.Stop(context.Background()))
	assert.Equal(t, 0, app.Datasets.Cached())
}
