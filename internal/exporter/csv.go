package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"sheetnorm/internal/parser"
	"sheetnorm/pkg/contracts/domain"
)

// CSVWriter exports parsed sections and summaries as CSV files under a
// base directory. Files are written with a UTF-8 BOM so Excel reopens
// them correctly; missing values render as empty cells.
type CSVWriter struct {
	baseDir string
}

// NewCSVWriter creates a writer rooted at baseDir. Relative output
// paths are resolved against it.
func NewCSVWriter(baseDir string) *CSVWriter {
	return &CSVWriter{baseDir: baseDir}
}

// WriteOptions configures CSV writing behavior.
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Append    bool
	BOMPrefix bool // add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if options.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(fullPath, flags, 0644)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix && !options.Append {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if !options.Append && len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	return writer.Error()
}

// WriteSection renders one parsed section as a CSV file, one row per
// table row in grid order.
func (w *CSVWriter) WriteSection(section *domain.ParsedSection, filePath string) error {
	if section == nil {
		return fmt.Errorf("section is nil")
	}

	records := make([][]string, 0, section.RowCount())
	for row := 0; row < section.RowCount(); row++ {
		record := make([]string, len(section.Columns))
		for i, column := range section.Columns {
			record[i] = section.Cell(row, column)
		}
		records = append(records, record)
	}

	return w.WriteCSV(filePath, WriteOptions{
		Headers:   section.Columns,
		Records:   records,
		BOMPrefix: true,
	})
}

// SummaryHeaders is the column order used by WriteSummaries and the
// streaming batch writer.
var SummaryHeaders = []string{"Section", "Column", "Count", "Missing", "MissingRatio", "Total", "Mean", "Min", "Max"}

// SummaryRecord renders one column summary in SummaryHeaders order.
func SummaryRecord(s parser.ColumnSummary) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{
		string(s.Section),
		s.Column,
		strconv.Itoa(s.Count),
		strconv.Itoa(s.Missing),
		f(s.MissingRatio),
		f(s.Total),
		f(s.Mean),
		f(s.Min),
		f(s.Max),
	}
}

// WriteSummaries renders per-column statistics as a CSV file.
func (w *CSVWriter) WriteSummaries(summaries []parser.ColumnSummary, filePath string) error {
	records := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		records = append(records, SummaryRecord(s))
	}
	return w.WriteCSV(filePath, WriteOptions{
		Headers:   SummaryHeaders,
		Records:   records,
		BOMPrefix: true,
	})
}

// WriteReport writes the rendered validation report as a plain text file.
func (w *CSVWriter) WriteReport(report, filePath string) error {
	fullPath := w.resolvePath(filePath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(fullPath, []byte(report+"\n"), 0644)
}

// WriteBundle writes every parsed section of a bundle plus the report
// into a directory, named after the sections.
func (w *CSVWriter) WriteBundle(bundle *domain.Bundle, dir string) error {
	sections := []*domain.ParsedSection{bundle.Revenue, bundle.Costs, bundle.Hours}
	for _, section := range sections {
		if section == nil {
			continue
		}
		name := filepath.Join(dir, string(section.Section)+".csv")
		if err := w.WriteSection(section, name); err != nil {
			return fmt.Errorf("export %s: %w", section.Section, err)
		}
	}
	if err := w.WriteReport(bundle.Report, filepath.Join(dir, "validation_report.txt")); err != nil {
		return fmt.Errorf("export report: %w", err)
	}
	return nil
}

// StreamWriter writes CSV records incrementally; batch runs use it to
// collect the per-column summaries of many workbooks into one file.
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
}

// CreateStreamWriter opens a streaming CSV writer and writes the BOM
// and header row up front.
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string) (*StreamWriter, error) {
	fullPath := w.resolvePath(filePath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}
	file, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		file.Close()
		return nil, fmt.Errorf("write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			file.Close()
			return nil, fmt.Errorf("write headers: %w", err)
		}
	}
	return &StreamWriter{file: file, writer: writer}, nil
}

// WriteRecord writes a single record to the stream.
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes and closes the stream writer.
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.baseDir == "" {
		return filePath
	}
	return filepath.Join(w.baseDir, filePath)
}
