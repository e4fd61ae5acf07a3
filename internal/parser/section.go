package parser

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"sheetnorm/pkg/contracts/domain"
)

// sectionKeywords seed the header search for each section type; the
// configured branch names are appended at lookup time.
var sectionKeywords = map[domain.Section][]string{
	domain.SectionRevenue: {"period", "month", "week"},
	domain.SectionCosts:   {"period", "month", "week", "cost", "expense"},
	domain.SectionHours:   {"period", "month", "week", "hour", "hours"},
}

// passThroughColumns are kept as text columns and never standardized
// or cleaned into numbers.
var passThroughColumns = map[string]bool{
	"Period": true,
	"Month":  true,
	"Week":   true,
	"Date":   true,
}

// parseSection runs the full normalization pipeline for one section:
// header location, boundary detection, merged-cell repair, total and
// comment row removal, label standardization and per-cell cleaning.
// Hours data is optional and needs explicit configured boundaries;
// without them parseSection returns nil.
func (r *run) parseSection(ctx context.Context, g *domain.Grid, sec domain.Section) *domain.ParsedSection {
	cfg := r.p.cfg
	bounds := cfg.BoundsFor(sec)

	r.logf(ctx, kindInfo, "Parsing %s section", sec.Title())

	searchStart := 0
	if sec == domain.SectionHours {
		if !bounds.HasRange() {
			r.logf(ctx, kindInfo, "Hours section not configured, skipping")
			return nil
		}
		if s := *bounds.StartRow - 5; s > 0 {
			searchStart = s
		}
	}

	keywords := append(append([]string{}, sectionKeywords[sec]...), cfg.Branches...)
	headerRow, matches, found := FindHeaderRow(g, keywords, searchStart, cfg.HeaderSearchRows)
	if found {
		r.logf(ctx, kindStructural, "Found %s header at row %d (%d keywords matched)", sec, headerRow, matches)
	} else {
		headerRow = r.fallbackHeaderRow(bounds, sec)
		r.logf(ctx, kindInfo, "Header not detected for %s, using row %d", sec, headerRow)
	}

	var start, end int
	if sec == domain.SectionHours {
		start, end = *bounds.StartRow, *bounds.EndRow
	} else {
		start, end = DetectBoundaries(g, headerRow, cfg.MinDataCells)
		r.logf(ctx, kindStructural, "Detected %s data rows %d to %d", sec, start, end)
		if bounds.HasRange() && *bounds.EndRow-*bounds.StartRow >= 2 {
			start, end = *bounds.StartRow, *bounds.EndRow
			r.logf(ctx, kindInfo, "Using configured boundaries %d to %d for %s", start, end, sec)
		}
	}

	rows, filled := RepairMergedCells(g, start, end)
	if filled > 0 {
		r.logf(ctx, kindStructural, "Detected and filled %d merged cells in %s section", filled, sec)
	}

	labels := columnLabels(g, headerRow, start)

	rows, droppedTotals := removeTotalRows(rows)
	if len(droppedTotals) > 0 {
		r.logf(ctx, kindRemoval, "Removed %d total/sum rows (%s)", len(droppedTotals), strings.Join(droppedTotals, ", "))
	}
	rows, droppedComments := removeCommentRows(rows, cfg.CleanBeforeCount)
	if droppedComments > 0 {
		r.logf(ctx, kindRemoval, "Removed %d potential comment rows", droppedComments)
	}

	labels = r.standardizeLabels(ctx, labels, sec)

	section := buildSection(sec, labels, rows)
	r.logf(ctx, kindInfo, "%s section parsed: %d rows x %d columns", sec.Title(), section.RowCount(), len(section.Columns))
	return section
}

// fallbackHeaderRow picks the header row when auto-detection fails:
// the configured index if supplied, row zero otherwise, and for hours
// the row just above the configured data start.
func (r *run) fallbackHeaderRow(bounds domain.SectionBounds, sec domain.Section) int {
	if bounds.HeaderRow != nil {
		return *bounds.HeaderRow
	}
	if sec == domain.SectionHours && bounds.StartRow != nil {
		return *bounds.StartRow - 1
	}
	return 0
}

// columnLabels reads labels off the header row when it precedes the
// data block; otherwise columns stay positional.
func columnLabels(g *domain.Grid, headerRow, start int) []string {
	width := g.NumCols()
	labels := make([]string, width)
	for j := 0; j < width; j++ {
		if headerRow < start {
			if text := g.At(headerRow, j).Text(); text != "" {
				labels[j] = text
			} else {
				labels[j] = "Unnamed"
			}
		} else {
			labels[j] = strconv.Itoa(j)
		}
	}
	return labels
}

// standardizeLabels fuzzy-matches each label against the canonical
// branch names. The first label to claim a branch keeps it; a later
// collision falls back to the original text so configured branches
// appear at most once. Unmatched labels pass through with a warning,
// except the recognized pass-through columns.
func (r *run) standardizeLabels(ctx context.Context, labels []string, sec domain.Section) []string {
	claimed := make(map[string]bool, len(r.p.cfg.Branches))
	out := make([]string, len(labels))

	for i, raw := range labels {
		text := strings.TrimSpace(raw)
		out[i] = text

		if passThroughColumns[text] {
			continue
		}
		match, score, ok := r.p.matcher.BestMatch(text, r.p.cfg.Branches)
		if !ok {
			r.warnf(ctx, "%s: no branch match for column %q", sec.Title(), text)
			continue
		}
		if claimed[match] {
			r.warnf(ctx, "%s: column %q also matches branch %q, keeping original label", sec.Title(), text, match)
			continue
		}
		claimed[match] = true
		if score < 1.0 {
			r.logf(ctx, kindFuzzy, "Fuzzy matched %q -> %q (score: %.2f)", text, match, score)
		}
		out[i] = match
	}

	// Residual duplicates (repeated raw headers) get a numeric suffix
	// so column labels stay unique.
	seen := make(map[string]int, len(out))
	for i, name := range out {
		if n := seen[name]; n > 0 {
			out[i] = fmt.Sprintf("%s (%d)", name, n)
		}
		seen[name]++
	}
	return out
}

// buildSection turns cleaned rows into the column-oriented table:
// pass-through columns keep their text, every other column goes
// through the value cleaner. Rows that end up entirely empty are
// dropped and the survivors are densely re-indexed.
func buildSection(sec domain.Section, labels []string, rows [][]domain.Cell) *domain.ParsedSection {
	section := domain.NewParsedSection(sec)
	section.Columns = labels

	keep := make([]bool, len(rows))
	for i, row := range rows {
		for j := range labels {
			var cell domain.Cell
			if j < len(row) {
				cell = row[j]
			}
			if passThroughColumns[labels[j]] {
				if cell.Text() != "" {
					keep[i] = true
				}
			} else if CleanNumeric(cell).Valid {
				keep[i] = true
			}
		}
	}

	for j, label := range labels {
		if passThroughColumns[label] {
			col := make([]string, 0, len(rows))
			for i, row := range rows {
				if !keep[i] {
					continue
				}
				var cell domain.Cell
				if j < len(row) {
					cell = row[j]
				}
				col = append(col, cell.Text())
			}
			section.Labels[label] = col
			continue
		}
		col := make([]domain.Value, 0, len(rows))
		for i, row := range rows {
			if !keep[i] {
				continue
			}
			var cell domain.Cell
			if j < len(row) {
				cell = row[j]
			}
			col = append(col, CleanNumeric(cell))
		}
		section.Data[label] = col
	}
	return section
}
