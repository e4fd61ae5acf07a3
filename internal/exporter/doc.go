// Package exporter writes parse results to disk.
//
// CSVWriter is the core: CSV output with headers, streaming support,
// and a UTF-8 BOM prefix so Excel round-trips the encoding. On top of
// it sit the section export (one CSV per parsed section), the summary
// export (per-column statistics) and the plain-text validation report.
//
// Example usage:
//
//	w := exporter.NewCSVWriter("/path/to/output")
//	err := w.WriteBundle(bundle, "workbook-2025-06")
//	err = w.WriteSummaries(summaries, "workbook-2025-06/summary.csv")
package exporter
