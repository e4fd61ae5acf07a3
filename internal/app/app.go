package app

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"sheetnorm/internal/config"
	"sheetnorm/internal/errors"
	"sheetnorm/internal/infrastructure"
	customMiddleware "sheetnorm/internal/middleware"
	"sheetnorm/internal/services"
	handlers "sheetnorm/internal/transport/http"
	"sheetnorm/pkg/contracts"
	"sheetnorm/pkg/contracts/domain"
)

const (
	AppName = "sheetnorm - workbook normalization service"
)

var (
	// BuildTime is set at compile time
	BuildTime = time.Now().Format(time.RFC3339)
	// BuildID is a unique identifier for this build
	BuildID = generateBuildID()
)

func generateBuildID() string {
	h := sha256.New()
	h.Write([]byte(contracts.Version))
	h.Write([]byte(time.Now().Format("2006-01-02")))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// Application represents the main application container
type Application struct {
	Config         *config.Config
	Router         *chi.Mux
	Server         *http.Server
	ParseService   *services.ParseService
	HealthService  *services.HealthService
	Logger         *slog.Logger
	OTelProviders  *infrastructure.OTelProviders
	RuntimeMonitor *infrastructure.RuntimeMonitor

	businessMetrics *infrastructure.BusinessMetrics
}

// NewApplication creates a new application instance with dependency injection
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version))

	if err := ensureDirectories(cfg.Paths); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// ensureDirectories creates the configured directories up front so
// startup fails early on permission problems.
func ensureDirectories(paths config.PathsConfig) error {
	for _, dir := range []string{paths.InputDir, paths.OutputDir, paths.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	if a.OTelProviders.Meter != nil {
		metrics, err := infrastructure.CreateBusinessMetrics(a.OTelProviders.Meter)
		if err != nil {
			return fmt.Errorf("failed to create business metrics: %w", err)
		}
		a.businessMetrics = metrics

		monitor, err := infrastructure.NewRuntimeMonitor(a.OTelProviders.Meter, 30*time.Second)
		if err != nil {
			return fmt.Errorf("failed to create runtime monitor: %w", err)
		}
		a.RuntimeMonitor = monitor
	}

	parseCfg, err := a.loadParseConfig()
	if err != nil {
		return err
	}

	a.ParseService = services.NewParseService(a.Config.Paths, *parseCfg, a.Config.Parse.Debug, a.businessMetrics, a.Logger)

	a.HealthService = services.NewHealthServiceWithBuildInfo(
		contracts.Version,
		BuildTime,
		BuildID,
		a.Config.Paths,
		a.parseConfigPath(),
		a.Logger,
	)

	return nil
}

// loadParseConfig loads the parse configuration file. A missing file
// is not fatal: the service starts with an empty default and every
// request must then carry its own configuration.
func (a *Application) loadParseConfig() (*domain.ParseConfig, error) {
	path := a.parseConfigPath()
	if path == "" {
		return &domain.ParseConfig{}, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		a.Logger.Warn("Parse configuration not found, per-request configs required",
			slog.String("path", path))
		return &domain.ParseConfig{}, nil
	}
	cfg, err := config.LoadParseConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load parse configuration: %w", err)
	}
	return cfg, nil
}

func (a *Application) parseConfigPath() string {
	return a.Config.Parse.ConfigFile
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StripSlashes)

	// Prometheus endpoint outside the middleware group for scrape performance
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
		if err != nil {
			a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}

		if a.businessMetrics != nil {
			r.Use(customMiddleware.BusinessMetricsMiddleware(a.businessMetrics))
		}

		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.Compress(5))

		secureHeaders := customMiddleware.DefaultSecureHeaders()
		secureHeaders.DevMode = a.Config.Logging.Development
		r.Use(secureHeaders.Handler)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
	})

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	errorHandler := errors.NewErrorHandler(a.Logger, a.Config.Logging.Development)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.NotFound(errorHandler.NotFound)
		r.MethodNotAllowed(errorHandler.MethodNotAllowed)

		// Quick endpoints with the standard read timeout
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))

			healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
			r.Get("/health", healthHandler.HealthCheck)
			r.Get("/health/ready", healthHandler.ReadinessCheck)
			r.Get("/health/live", healthHandler.LivenessCheck)
			r.Get("/health/stats", healthHandler.SystemStats)
			r.Get("/version", healthHandler.Version)

			// Same exposition as the root /metrics scrape target, but
			// behind the API middleware for authenticated dashboards.
			metricsHandler := handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP)
			r.Mount("/metrics", metricsHandler.Routes())
		})

		// Parse endpoints get a longer timeout: large workbooks and
		// batch runs can outlive the read timeout.
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(5*time.Minute, a.Logger))

			r.Use(customMiddleware.ContentTypeValidator("application/json", "multipart/form-data"))

			validation := customMiddleware.NewValidationMiddleware(a.Logger, errorHandler)
			validation.SetMaxBodySize(a.Config.Server.MaxUploadBytes)
			r.Use(validation.ValidateRequest)

			parseHandler := handlers.NewParseHandler(a.ParseService, a.Config.Server.MaxUploadBytes, a.Logger, errorHandler)
			r.Mount("/parse", parseHandler.Routes())
		})
	})
}

// getCORSConfig returns CORS configuration based on environment
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
		},
		AllowCredentials: true,
		MaxAge:           300,
		Logger:           a.Logger,
	}

	if a.Config.Logging.Development {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins,
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		)
	}

	a.Logger.Info("CORS configured",
		slog.Any("allowed_origins", cfg.AllowedOrigins))
	return cfg
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the application
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	if a.RuntimeMonitor != nil {
		go a.RuntimeMonitor.Start(ctx)
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.String("warnings", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))

	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.RuntimeMonitor != nil {
		a.RuntimeMonitor.Stop()
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	infrastructure.CloseLogFile()

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}

// performStartupHealthCheck verifies the configured directories are
// writable before serving traffic.
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	var warnings []string

	directories := map[string]string{
		"Input":  a.Config.Paths.InputDir,
		"Output": a.Config.Paths.OutputDir,
		"Logs":   a.Config.Paths.LogsDir,
	}

	for name, dir := range directories {
		if dir == "" {
			continue
		}
		testFile := filepath.Join(dir, ".write_test")
		if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s directory not writable: %s", name, dir))
		} else {
			os.Remove(testFile)
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("startup health check warnings: %s", strings.Join(warnings, "; "))
	}

	a.Logger.InfoContext(ctx, "Startup health check passed")
	return nil
}
