package parser

import (
	"strings"

	"sheetnorm/pkg/contracts/domain"
)

// Structural detection defaults.
const (
	// DefaultHeaderSearchRows bounds the header auto-detection window.
	DefaultHeaderSearchRows = 20
	// DefaultMinDataCells is the minimum number of non-empty cells a
	// row needs to count as data during boundary detection.
	DefaultMinDataCells = 4
	// boundaryLookahead is how many consecutive sparse rows confirm
	// the end of a data block.
	boundaryLookahead = 3
)

// FindHeaderRow scans rows [searchStart, searchEnd) for the first row
// whose cells contain at least min(2, len(keywords)) distinct keywords,
// case-insensitively and by substring. It returns the row index and the
// number of keywords that matched, or ok=false when no row qualifies
// inside the window.
func FindHeaderRow(g *domain.Grid, keywords []string, searchStart, searchEnd int) (row, matches int, ok bool) {
	if searchStart < 0 {
		searchStart = 0
	}
	if searchEnd > g.NumRows() {
		searchEnd = g.NumRows()
	}

	need := 2
	if len(keywords) < need {
		need = len(keywords)
	}
	if need == 0 {
		return 0, 0, false
	}

	cols := g.NumCols()
	for idx := searchStart; idx < searchEnd; idx++ {
		matched := 0
		for _, kw := range keywords {
			kwNorm := strings.ToLower(strings.TrimSpace(kw))
			if kwNorm == "" {
				continue
			}
			for col := 0; col < cols; col++ {
				if strings.Contains(strings.ToLower(g.At(idx, col).Text()), kwNorm) {
					matched++
					break
				}
			}
		}
		if matched >= need {
			return idx, matched, true
		}
	}
	return 0, 0, false
}

// DetectBoundaries finds where the data block after headerRow starts
// and ends. Data continues while each row has at least minCells
// non-empty cells; a sparse row only ends the block when the lookahead
// confirms the following rows are sparse too (a single thin row inside
// a block is tolerated). Reaching the end of the grid ends the block.
func DetectBoundaries(g *domain.Grid, headerRow, minCells int) (start, end int) {
	if minCells <= 0 {
		minCells = DefaultMinDataCells
	}

	start = headerRow + 1
	end = -1

	total := g.NumRows()
	for idx := start; idx < total; idx++ {
		if g.NonEmptyInRow(idx) >= minCells {
			continue
		}
		if idx+boundaryLookahead-1 < total {
			confirmed := true
			for i := idx; i < idx+boundaryLookahead && i < total; i++ {
				if g.NonEmptyInRow(i) >= minCells {
					confirmed = false
					break
				}
			}
			if confirmed {
				end = idx - 1
				break
			}
		} else {
			end = idx - 1
			break
		}
	}

	if end < 0 {
		end = total - 1
	}
	return start, end
}

// RepairMergedCells extracts rows [start, end] from the grid and fills
// cells left empty by visual merges: forward along each row first
// (horizontal merges), then forward down each column (vertical merges).
// It returns the repaired rows, padded to the grid width, plus the
// number of cells filled. The operation only ever fills and is
// idempotent; the source grid is never touched.
func RepairMergedCells(g *domain.Grid, start, end int) (rows [][]domain.Cell, filled int) {
	if start < 0 {
		start = 0
	}
	if end >= g.NumRows() {
		end = g.NumRows() - 1
	}
	if start > end {
		return nil, 0
	}

	width := g.NumCols()
	rows = make([][]domain.Cell, 0, end-start+1)
	for r := start; r <= end; r++ {
		row := make([]domain.Cell, width)
		for c := 0; c < width; c++ {
			row[c] = g.At(r, c)
		}
		rows = append(rows, row)
	}

	// Horizontal pass: carry the last seen value rightwards.
	for _, row := range rows {
		last := domain.Cell{}
		for c := range row {
			if row[c].IsEmpty() {
				if !last.IsEmpty() {
					row[c] = last
					filled++
				}
			} else {
				last = row[c]
			}
		}
	}

	// Vertical pass: carry the last seen value downwards for cells
	// the horizontal pass could not reach.
	for c := 0; c < width; c++ {
		last := domain.Cell{}
		for r := range rows {
			if rows[r][c].IsEmpty() {
				if !last.IsEmpty() {
					rows[r][c] = last
					filled++
				}
			} else {
				last = rows[r][c]
			}
		}
	}

	return rows, filled
}
