package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"sheetnorm/internal/config"
	"sheetnorm/internal/infrastructure"
	"sheetnorm/internal/services"
	"sheetnorm/pkg/contracts"
)

func main() {
	file := flag.String("file", "", "single workbook to normalize (.xlsx, .xlsm or .xls)")
	dir := flag.String("dir", "", "directory of workbooks for a batch run (defaults to the configured input directory)")
	out := flag.String("out", "", "output directory for CSV bundles (defaults to the configured output directory)")
	parseCfgPath := flag.String("config", "parse.yaml", "parse configuration file")
	workers := flag.Int("workers", 4, "concurrent workers for batch runs")
	debug := flag.Bool("debug", false, "enable verbose parse diagnostics")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetVersionString())
		return
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}
	if *dir != "" {
		cfg.Paths.InputDir = *dir
	}
	if *out != "" {
		cfg.Paths.OutputDir = *out
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	parseCfg, err := config.LoadParseConfig(*parseCfgPath)
	if err != nil {
		logger.Error("Failed to load parse configuration",
			slog.String("path", *parseCfgPath),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	service := services.NewParseService(cfg.Paths, *parseCfg, *debug, nil, logger)
	ctx := context.Background()

	if *file != "" {
		runSingle(ctx, service, *file, logger)
		return
	}
	runBatch(ctx, service, cfg.Paths.InputDir, *workers, logger)
}

// runSingle normalizes one workbook and prints its validation report.
func runSingle(ctx context.Context, service *services.ParseService, file string, logger *slog.Logger) {
	result, err := service.ParseAndExport(ctx, file, nil, outputStem(file))
	if err != nil {
		logger.Error("Normalization failed",
			slog.String("file", file),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Println(result.Bundle.Report)
	fmt.Printf("Output written to %s\n", result.OutputDir)

	if len(result.Bundle.Warnings) > 0 {
		os.Exit(2)
	}
}

// outputStem derives the per-workbook output subdirectory from the
// workbook filename.
func outputStem(path string) string {
	name := filepath.Base(path)
	return name[:len(name)-len(filepath.Ext(name))]
}

// runBatch normalizes every workbook in dir, continuing past individual
// failures and reporting them at the end.
func runBatch(ctx context.Context, service *services.ParseService, dir string, workers int, logger *slog.Logger) {
	workbooks, err := service.ListWorkbooks(ctx)
	if err != nil {
		logger.Error("Failed to list workbooks", slog.String("dir", dir), slog.String("error", err.Error()))
		os.Exit(1)
	}
	fmt.Printf("Found %d workbooks\n", len(workbooks))

	batch, err := service.ParseBatch(ctx, dir, "", workers)
	if err != nil {
		logger.Error("Batch run failed", slog.String("dir", dir), slog.String("error", err.Error()))
		os.Exit(1)
	}

	for _, result := range batch.Results {
		fmt.Printf("Normalized %s -> %s (%d warnings)\n",
			filepath.Base(result.File), result.OutputDir, len(result.Bundle.Warnings))
	}

	fmt.Printf("Processing complete: %d files\n", len(batch.Results))

	if len(batch.Failures) > 0 {
		for file, reason := range batch.Failures {
			fmt.Fprintf(os.Stderr, "failed: %s: %s\n", file, reason)
		}
		os.Exit(1)
	}
}
