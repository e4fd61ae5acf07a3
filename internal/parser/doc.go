// Package parser turns loosely structured spreadsheet exports into
// clean, validated tables. It is the core of sheetnorm: everything else
// in the repository is a thin consumer of this package's output.
//
// # Architecture
//
// The pipeline is a chain of small, mostly-pure stages:
//
//  1. Loader: reads one worksheet into an immutable raw grid
//  2. Structural detection: header search, data boundaries, merged-cell repair
//  3. Section cleaning: total-row and comment-row removal
//  4. Column standardization: fuzzy matching against canonical branch names
//  5. Value cleaning: currency-formatted text to numbers with explicit
//     missing markers
//  6. Validation: completeness checks rendered into a textual report
//
// # Usage
//
// Basic parse of one workbook:
//
//	p := parser.New(cfg, parser.WithLogger(logger))
//	bundle, err := p.ParseFile(ctx, "july_actuals.xlsx")
//	if err != nil {
//	    log.Fatal(err) // file could not be opened or read
//	}
//	fmt.Println(bundle.Report)
//
// # Error Handling
//
// Only I/O failures (missing file, corrupt workbook, missing sheet)
// surface as errors. Structural ambiguity falls back to configuration
// defaults, data-quality problems become warnings in the bundle, and
// unparseable cell values silently resolve to the missing marker.
// Source workbooks are inherently messy; a best-effort table plus a
// diagnostic report is more useful than an abort.
//
// # Concurrency
//
// A Parser is stateless and safe for concurrent use; every ParseFile
// call owns a fresh warning list and parse log. The raw grid is read
// once per file and never mutated.
package parser
