package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"sheetnorm/internal/config"
	"sheetnorm/internal/infrastructure"
	"sheetnorm/internal/services"
	"sheetnorm/pkg/contracts/domain"
)

func newTestApplication(t *testing.T) *Application {
	t.Helper()

	cfg := config.Default()
	cfg.Paths.InputDir = t.TempDir()
	cfg.Paths.OutputDir = t.TempDir()
	cfg.Paths.LogsDir = t.TempDir()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	exposition := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# HELP\n"))
	})
	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: &infrastructure.OTelProviders{
			Meter:          noop.NewMeterProvider().Meter("app-test"),
			Logger:         logger,
			PrometheusHTTP: exposition,
		},
	}

	parseCfg := domain.ParseConfig{Branches: []string{"North", "South"}}
	app.ParseService = services.NewParseService(cfg.Paths, parseCfg, false, nil, logger)
	app.HealthService = services.NewHealthService("test", cfg.Paths, "", logger)

	app.setupRouter()
	app.createServer()
	return app
}

func TestGenerateBuildID(t *testing.T) {
	id := generateBuildID()
	assert.Len(t, id, 12)
	assert.Regexp(t, "^[0-9a-f]+$", id)
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	paths := config.PathsConfig{
		InputDir:  filepath.Join(base, "input"),
		OutputDir: filepath.Join(base, "output"),
		LogsDir:   filepath.Join(base, "logs"),
	}

	require.NoError(t, ensureDirectories(paths))

	for _, dir := range []string{paths.InputDir, paths.OutputDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestRouterRoutes(t *testing.T) {
	app := newTestApplication(t)
	server := httptest.NewServer(app.Router)
	defer server.Close()

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"health", http.MethodGet, "/api/health", http.StatusOK},
		{"readiness", http.MethodGet, "/api/health/ready", http.StatusOK},
		{"liveness", http.MethodGet, "/api/health/live", http.StatusOK},
		{"version", http.MethodGet, "/api/version", http.StatusOK},
		{"stats", http.MethodGet, "/api/health/stats", http.StatusOK},
		{"scrape endpoint", http.MethodGet, "/metrics", http.StatusOK},
		{"api metrics", http.MethodGet, "/api/metrics", http.StatusOK},
		{"parse config", http.MethodGet, "/api/parse/config", http.StatusOK},
		{"workbook list", http.MethodGet, "/api/parse/workbooks", http.StatusOK},
		{"unknown route", http.MethodGet, "/api/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, server.URL+tt.path, nil)
			require.NoError(t, err)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestRouterSecurityHeaders(t *testing.T) {
	app := newTestApplication(t)
	server := httptest.NewServer(app.Router)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestGetCORSConfig(t *testing.T) {
	app := newTestApplication(t)

	t.Run("production", func(t *testing.T) {
		app.Config.Logging.Development = false
		cfg := app.getCORSConfig()
		assert.Equal(t, app.Config.Security.AllowedOrigins, cfg.AllowedOrigins)
	})

	t.Run("development adds dev server", func(t *testing.T) {
		app.Config.Logging.Development = true
		cfg := app.getCORSConfig()
		assert.Contains(t, cfg.AllowedOrigins, "http://localhost:3000")
	})
}

func TestCreateServer(t *testing.T) {
	app := newTestApplication(t)

	assert.Equal(t, ":8080", app.Server.Addr)
	assert.Equal(t, app.Config.Server.ReadTimeout, app.Server.ReadTimeout)
	assert.Equal(t, app.Config.Server.WriteTimeout, app.Server.WriteTimeout)
	assert.NotNil(t, app.Server.Handler)
}

func TestPerformStartupHealthCheck(t *testing.T) {
	t.Run("writable directories", func(t *testing.T) {
		app := newTestApplication(t)
		assert.NoError(t, app.performStartupHealthCheck(context.Background()))
	})

	t.Run("unwritable directory", func(t *testing.T) {
		app := newTestApplication(t)
		app.Config.Paths.OutputDir = filepath.Join(t.TempDir(), "missing", "nested")

		err := app.performStartupHealthCheck(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Output directory not writable")
	})
}
