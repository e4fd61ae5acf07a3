package parser

import (
	"strings"

	"sheetnorm/pkg/contracts/domain"
)

// totalKeywords mark aggregate rows that must never survive into a
// parsed section. Matching is by substring on the normalized label.
var totalKeywords = []string{"total", "sum", "grand total", "subtotal", "overall"}

// isTotalLabel reports whether a label cell identifies a subtotal or
// grand-total row.
func isTotalLabel(label string) bool {
	norm := strings.ToLower(strings.TrimSpace(label))
	if norm == "" {
		return false
	}
	for _, kw := range totalKeywords {
		if strings.Contains(norm, kw) {
			return true
		}
	}
	return false
}

// removeTotalRows drops rows whose first (label) cell contains a total
// keyword, preserving the order of survivors. It returns the kept rows
// and the labels of the dropped ones.
func removeTotalRows(rows [][]domain.Cell) (kept [][]domain.Cell, dropped []string) {
	kept = rows[:0:0]
	for _, row := range rows {
		if len(row) > 0 && isTotalLabel(row[0].Text()) {
			dropped = append(dropped, strings.TrimSpace(row[0].Text()))
			continue
		}
		kept = append(kept, row)
	}
	return kept, dropped
}

// removeCommentRows drops rows where fewer than half of the non-label
// cells look numeric. By default "looks numeric" means the cell was
// already number-typed when the grid was loaded, so currency-formatted
// text counts against the row; cleanFirst switches to counting cells
// the value cleaner can interpret instead. Rows with no non-label
// cells are kept.
func removeCommentRows(rows [][]domain.Cell, cleanFirst bool) (kept [][]domain.Cell, droppedCount int) {
	kept = rows[:0:0]
	for _, row := range rows {
		if len(row) <= 1 {
			kept = append(kept, row)
			continue
		}
		rest := row[1:]
		numeric := 0
		for _, cell := range rest {
			if cleanFirst {
				if CleanNumeric(cell).Valid {
					numeric++
				}
			} else if cell.Kind == domain.CellNumber {
				numeric++
			}
		}
		if float64(numeric) < 0.5*float64(len(rest)) {
			droppedCount++
			continue
		}
		kept = append(kept, row)
	}
	return kept, droppedCount
}
