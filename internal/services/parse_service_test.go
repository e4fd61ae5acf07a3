package services

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sheetnorm/internal/config"
	"sheetnorm/pkg/contracts/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testParseConfig() domain.ParseConfig {
	return domain.ParseConfig{Branches: []string{"North", "South", "East"}}
}

func writeWorkbook(t *testing.T, dir, name string) string {
	t.Helper()

	rows := [][]any{
		{"Branch Performance 2025"},
		{},
		{"Period", "North", "South", "East"},
		{"Jan", "£1,000", "2000", "3500"},
		{"Feb", "£1,100", "2100", "3600"},
		{"Total", "£2,100", "4100", "7100"},
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func newTestParseService(t *testing.T) (*ParseService, config.PathsConfig) {
	t.Helper()
	paths := config.PathsConfig{
		InputDir:  t.TempDir(),
		OutputDir: t.TempDir(),
	}
	return NewParseService(paths, testParseConfig(), false, nil, discardLogger()), paths
}

func TestParseService_ParseWorkbook(t *testing.T) {
	svc, paths := newTestParseService(t)
	path := writeWorkbook(t, paths.InputDir, "revenue.xlsx")

	result, err := svc.ParseWorkbook(context.Background(), path, nil)
	require.NoError(t, err)

	assert.Equal(t, path, result.File)
	require.NotNil(t, result.Bundle)
	require.NotNil(t, result.Bundle.Revenue)
	assert.Equal(t, 2, result.Bundle.Revenue.RowCount())
	assert.NotEmpty(t, result.Summaries)
	assert.Greater(t, result.Duration.Nanoseconds(), int64(0))
	assert.Empty(t, result.OutputDir)
}

func TestParseService_ParseWorkbookMissing(t *testing.T) {
	svc, paths := newTestParseService(t)

	_, err := svc.ParseWorkbook(context.Background(), filepath.Join(paths.InputDir, "missing.xlsx"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWorkbookNotFound)
}

func TestParseService_ParseWorkbookWrongType(t *testing.T) {
	svc, paths := newTestParseService(t)
	path := filepath.Join(paths.InputDir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0644))

	_, err := svc.ParseWorkbook(context.Background(), path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a workbook")
}

func TestParseService_ParseWorkbookOverride(t *testing.T) {
	svc, paths := newTestParseService(t)
	path := writeWorkbook(t, paths.InputDir, "revenue.xlsx")

	override := domain.ParseConfig{Branches: []string{"North"}}
	result, err := svc.ParseWorkbook(context.Background(), path, &override)
	require.NoError(t, err)
	require.NotNil(t, result.Bundle.Revenue)
	assert.True(t, result.Bundle.Revenue.HasColumn("North"))
}

func TestParseService_ParseAndExport(t *testing.T) {
	svc, paths := newTestParseService(t)
	path := writeWorkbook(t, paths.InputDir, "revenue.xlsx")

	result, err := svc.ParseAndExport(context.Background(), path, nil, "run1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(paths.OutputDir, "run1"), result.OutputDir)

	for _, name := range []string{"revenue.csv", "costs.csv", "validation_report.txt", "summaries.csv"} {
		_, err := os.Stat(filepath.Join(paths.OutputDir, "run1", name))
		assert.NoError(t, err, name)
	}
}

func TestParseService_SaveUpload(t *testing.T) {
	svc, paths := newTestParseService(t)
	src := writeWorkbook(t, t.TempDir(), "upload.xlsx")
	data, err := os.ReadFile(src)
	require.NoError(t, err)

	t.Run("valid workbook", func(t *testing.T) {
		path, err := svc.SaveUpload(context.Background(), strings.NewReader(string(data)), "../sneaky/upload.xlsx")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(paths.InputDir, "upload.xlsx"), path)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, int64(len(data)), info.Size())
	})

	t.Run("wrong extension", func(t *testing.T) {
		_, err := svc.SaveUpload(context.Background(), strings.NewReader("x"), "upload.csv")
		assert.ErrorIs(t, err, ErrInvalidFileType)
	})

	t.Run("empty upload", func(t *testing.T) {
		_, err := svc.SaveUpload(context.Background(), strings.NewReader(""), "empty.xlsx")
		assert.ErrorIs(t, err, ErrEmptyUpload)
	})
}

func TestParseService_ListWorkbooks(t *testing.T) {
	svc, paths := newTestParseService(t)
	writeWorkbook(t, paths.InputDir, "b.xlsx")
	writeWorkbook(t, paths.InputDir, "a.xlsx")
	require.NoError(t, os.WriteFile(filepath.Join(paths.InputDir, "~$a.xlsx"), []byte("lock"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(paths.InputDir, "notes.txt"), []byte("x"), 0644))

	found, err := svc.ListWorkbooks(context.Background())
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "a.xlsx", found[0].Name)
	assert.Equal(t, "b.xlsx", found[1].Name)
}

func TestParseService_ParseBatch(t *testing.T) {
	svc, paths := newTestParseService(t)
	writeWorkbook(t, paths.InputDir, "alpha.xlsx")
	writeWorkbook(t, paths.InputDir, "beta.xlsx")
	require.NoError(t, os.WriteFile(filepath.Join(paths.InputDir, "corrupt.xlsx"), []byte("not a zip"), 0644))

	batch, err := svc.ParseBatch(context.Background(), paths.InputDir, "batch", 2)
	require.NoError(t, err)

	assert.Len(t, batch.Results, 2)
	require.Len(t, batch.Failures, 1)
	assert.Contains(t, batch.Failures["corrupt.xlsx"], "open workbook")

	for _, stem := range []string{"alpha", "beta"} {
		_, err := os.Stat(filepath.Join(paths.OutputDir, "batch", stem, "revenue.csv"))
		assert.NoError(t, err, stem)
	}
}

func TestParseService_ParseBatchEmpty(t *testing.T) {
	svc, _ := newTestParseService(t)

	_, err := svc.ParseBatch(context.Background(), t.TempDir(), "batch", 2)
	assert.ErrorIs(t, err, ErrNoWorkbooksFound)
}
