package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"sheetnorm/internal/config"
	"sheetnorm/internal/exporter"
	"sheetnorm/internal/files"
	"sheetnorm/internal/infrastructure"
	"sheetnorm/internal/parser"
	"sheetnorm/internal/validation"
	"sheetnorm/pkg/contracts/domain"
)

// ParseService runs the workbook normalization pipeline: validate the
// file, parse it into clean section tables, summarize the columns and
// optionally export everything as CSV.
type ParseService struct {
	paths     config.PathsConfig
	parseCfg  domain.ParseConfig
	debug     bool
	validator *validation.FileValidator
	discovery *files.Discovery
	manager   *files.Manager
	writer    *exporter.CSVWriter
	metrics   *infrastructure.BusinessMetrics
	logger    *slog.Logger
}

// ParseResult is the outcome of parsing a single workbook.
type ParseResult struct {
	File      string                 `json:"file"`
	Bundle    *domain.Bundle         `json:"bundle"`
	Summaries []parser.ColumnSummary `json:"summaries"`
	Duration  time.Duration          `json:"duration_ns"`
	OutputDir string                 `json:"output_dir,omitempty"`
}

// BatchResult aggregates the outcome of a directory run.
type BatchResult struct {
	Results  []*ParseResult    `json:"results"`
	Failures map[string]string `json:"failures,omitempty"`
}

// NewParseService creates a parse service. The metrics argument may be
// nil when metrics are disabled.
func NewParseService(paths config.PathsConfig, parseCfg domain.ParseConfig, debug bool, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ParseService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "parse_service")
	return &ParseService{
		paths:     paths,
		parseCfg:  parseCfg,
		debug:     debug,
		validator: validation.NewFileValidator(logger),
		discovery: files.NewDiscovery(""),
		manager:   files.NewManager(""),
		writer:    exporter.NewCSVWriter(paths.OutputDir),
		metrics:   metrics,
		logger:    logger,
	}
}

// Config returns the default parse configuration the service was built
// with.
func (s *ParseService) Config() domain.ParseConfig { return s.parseCfg }

// ParseWorkbook parses one workbook and summarizes its columns. A
// non-nil override replaces the service's default parse configuration
// for this run only.
func (s *ParseService) ParseWorkbook(ctx context.Context, path string, override *domain.ParseConfig) (*ParseResult, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", path, ErrWorkbookNotFound)
	}
	if err := s.validator.ValidateWorkbookFile(path); err != nil {
		return nil, err
	}

	cfg := s.parseCfg
	if override != nil {
		cfg = *override
	}

	runLogger := infrastructure.WithWorkbook(s.logger, filepath.Base(path))
	p, err := parser.New(cfg, parser.WithLogger(runLogger), parser.WithDebug(s.debug))
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	start := time.Now()
	bundle, err := p.ParseFile(ctx, path)
	duration := time.Since(start)
	if err != nil {
		infrastructure.RecordParseMetrics(ctx, s.metrics, filepath.Base(path), duration, 0, false)
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	summaries := parser.NewSummarizer(s.logger).Summarize(ctx, bundle)
	s.recordRun(ctx, path, bundle, duration)

	s.logger.InfoContext(ctx, "workbook parsed",
		slog.String("file", filepath.Base(path)),
		slog.Duration("duration", duration),
		slog.Int("warnings", len(bundle.Warnings)))

	return &ParseResult{
		File:      path,
		Bundle:    bundle,
		Summaries: summaries,
		Duration:  duration,
	}, nil
}

// ParseAndExport parses a workbook and writes the section tables, the
// validation report and the column summaries into outDir. A relative
// outDir resolves against the configured output directory.
func (s *ParseService) ParseAndExport(ctx context.Context, path string, override *domain.ParseConfig, outDir string) (*ParseResult, error) {
	result, err := s.ParseWorkbook(ctx, path, override)
	if err != nil {
		return nil, err
	}

	if err := s.writer.WriteBundle(result.Bundle, outDir); err != nil {
		return nil, fmt.Errorf("export bundle: %w", err)
	}
	if err := s.writer.WriteSummaries(result.Summaries, filepath.Join(outDir, "summaries.csv")); err != nil {
		return nil, fmt.Errorf("export summaries: %w", err)
	}

	result.OutputDir = config.ResolvePath(s.paths.OutputDir, outDir)
	return result, nil
}

// SaveUpload stores an uploaded workbook in the input directory and
// returns its path. The name is reduced to its base to keep uploads
// from escaping the directory.
func (s *ParseService) SaveUpload(ctx context.Context, r io.Reader, name string) (string, error) {
	base := filepath.Base(strings.TrimSpace(name))
	ext := strings.ToLower(filepath.Ext(base))
	if ext != ".xlsx" && ext != ".xlsm" && ext != ".xls" {
		return "", fmt.Errorf("%s: %w", base, ErrInvalidFileType)
	}

	if err := s.manager.CreateDirectory(s.paths.InputDir); err != nil {
		return "", fmt.Errorf("create input directory: %w", err)
	}

	dst := filepath.Join(s.paths.InputDir, base)
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	written, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("store upload %s: %w", base, err)
	}
	if written == 0 {
		os.Remove(dst)
		return "", fmt.Errorf("%s: %w", base, ErrEmptyUpload)
	}

	s.logger.InfoContext(ctx, "upload stored",
		slog.String("file", base),
		slog.Int64("bytes", written))
	return dst, nil
}

// ListWorkbooks returns the workbooks available in the input
// directory, newest first.
func (s *ParseService) ListWorkbooks(ctx context.Context) ([]files.FileInfo, error) {
	found, err := s.discovery.FindWorkbooks(s.paths.InputDir)
	if err != nil {
		return nil, fmt.Errorf("list workbooks: %w", err)
	}
	return found, nil
}

// ParseBatch parses every workbook in dir with up to workers parallel
// runs and exports each bundle into a subdirectory of outDir named
// after the workbook. Individual failures do not abort the batch;
// they are collected in the result.
func (s *ParseService) ParseBatch(ctx context.Context, dir, outDir string, workers int) (*BatchResult, error) {
	if workers < 1 {
		workers = 1
	}
	if dir == "" {
		dir = s.paths.InputDir
	}

	found, err := s.discovery.FindWorkbooks(dir)
	if err != nil {
		return nil, fmt.Errorf("discover workbooks: %w", err)
	}
	if len(found) == 0 {
		return nil, ErrNoWorkbooksFound
	}

	batch := &BatchResult{Failures: make(map[string]string)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, fi := range found {
		g.Go(func() error {
			stem := strings.TrimSuffix(filepath.Base(fi.Path), filepath.Ext(fi.Path))
			runCtx := infrastructure.EnsureTraceID(gctx)
			result, err := s.ParseAndExport(runCtx, fi.Path, nil, filepath.Join(outDir, stem))

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Error("batch parse failed",
					slog.String("file", fi.Name),
					slog.String("error", err.Error()))
				batch.Failures[fi.Name] = err.Error()
				return nil
			}
			batch.Results = append(batch.Results, result)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(batch.Failures) == 0 {
		batch.Failures = nil
	}
	return batch, nil
}

func (s *ParseService) recordRun(ctx context.Context, path string, bundle *domain.Bundle, duration time.Duration) {
	file := filepath.Base(path)
	infrastructure.RecordParseMetrics(ctx, s.metrics, file, duration, len(bundle.Warnings), true)
	for _, section := range []*domain.ParsedSection{bundle.Revenue, bundle.Costs, bundle.Hours} {
		if section == nil {
			continue
		}
		infrastructure.RecordSectionMetrics(ctx, s.metrics, string(section.Section), section.RowCount())
	}
	infrastructure.AddSpanEvent(ctx, "parse.run.completed", map[string]interface{}{
		"file":     file,
		"duration": duration.Seconds(),
		"warnings": len(bundle.Warnings),
	})
}
