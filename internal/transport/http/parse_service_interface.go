package http

import (
	"context"
	"io"

	"sheetnorm/internal/files"
	"sheetnorm/internal/services"
	"sheetnorm/pkg/contracts/domain"
)

// ParseServiceInterface defines the interface for workbook parsing operations
type ParseServiceInterface interface {
	Config() domain.ParseConfig
	ParseWorkbook(ctx context.Context, path string, override *domain.ParseConfig) (*services.ParseResult, error)
	ParseAndExport(ctx context.Context, path string, override *domain.ParseConfig, outDir string) (*services.ParseResult, error)
	SaveUpload(ctx context.Context, r io.Reader, name string) (string, error)
	ListWorkbooks(ctx context.Context) ([]files.FileInfo, error)
	ParseBatch(ctx context.Context, dir, outDir string, workers int) (*services.BatchResult, error)
}
