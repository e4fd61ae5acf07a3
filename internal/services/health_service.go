package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"sheetnorm/internal/config"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	buildID   string
	paths     config.PathsConfig
	parseFile string
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// SystemStats represents system statistics
type SystemStats struct {
	UptimeSeconds  float64 `json:"uptime_seconds"`
	InputFiles     int     `json:"input_files"`
	InputSizeBytes int64   `json:"input_size_bytes"`
	GoVersion      string  `json:"go_version"`
	OS             string  `json:"os"`
	Arch           string  `json:"arch"`
}

// NewHealthService creates a new health service
func NewHealthService(version string, paths config.PathsConfig, parseFile string, logger *slog.Logger) *HealthService {
	return NewHealthServiceWithBuildInfo(version, "", "", paths, parseFile, logger)
}

// NewHealthServiceWithBuildInfo creates a new health service with build information
func NewHealthServiceWithBuildInfo(version, buildTime, buildID string, paths config.PathsConfig, parseFile string, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime),
		slog.String("build_id", buildID))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		buildID:   buildID,
		paths:     paths,
		parseFile: parseFile,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("version", hs.version),
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck returns readiness status
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	status.Services["input"] = hs.checkInputHealth()
	status.Services["output"] = hs.checkOutputHealth()
	status.Services["parse_config"] = hs.checkParseConfigHealth()

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}

	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	if hs.buildID != "" {
		result["build_id"] = hs.buildID
	}

	return result
}

// SystemStats returns system statistics
func (hs *HealthService) SystemStats(ctx context.Context) (SystemStats, error) {
	var totalFiles int
	var totalSize int64

	filepath.Walk(hs.paths.InputDir, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			totalFiles++
			totalSize += info.Size()
		}
		return nil
	})

	return SystemStats{
		UptimeSeconds:  time.Since(hs.startTime).Seconds(),
		InputFiles:     totalFiles,
		InputSizeBytes: totalSize,
		GoVersion:      runtime.Version(),
		OS:             runtime.GOOS,
		Arch:           runtime.GOARCH,
	}, nil
}

// checkInputHealth verifies the input directory exists
func (hs *HealthService) checkInputHealth() ServiceHealth {
	if _, err := os.Stat(hs.paths.InputDir); os.IsNotExist(err) {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Input directory not found: %s", hs.paths.InputDir),
		}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: "Input directory is accessible",
	}
}

// checkOutputHealth verifies the output directory can be written to
func (hs *HealthService) checkOutputHealth() ServiceHealth {
	if err := os.MkdirAll(hs.paths.OutputDir, 0755); err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Cannot create output directory: %v", err),
		}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: "Output directory is writable",
	}
}

// checkParseConfigHealth verifies the parse configuration file is readable
func (hs *HealthService) checkParseConfigHealth() ServiceHealth {
	if hs.parseFile == "" {
		return ServiceHealth{
			Status:  "ready",
			Message: "No parse configuration file configured; using defaults",
		}
	}
	if _, err := os.Stat(hs.parseFile); err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Parse configuration not readable: %v", err),
		}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: "Parse configuration is readable",
	}
}

// GetDetailedHealth returns comprehensive health information
func (hs *HealthService) GetDetailedHealth(ctx context.Context) map[string]interface{} {
	stats, _ := hs.SystemStats(ctx)

	return map[string]interface{}{
		"health":    hs.HealthCheck(ctx),
		"readiness": hs.ReadinessCheck(ctx),
		"liveness":  hs.LivenessCheck(ctx),
		"stats":     stats,
	}
}
