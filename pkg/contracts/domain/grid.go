package domain

import (
	"strconv"
	"strings"
)

// CellKind classifies a raw cell by its apparent type at load time.
// The classification is fixed once and never revisited: downstream
// filters that inspect "already numeric" cells (comment-row removal)
// depend on seeing the pre-cleaning type, so a currency-formatted
// string such as "£500" stays CellText even though it cleans to 500.
type CellKind int

const (
	// CellEmpty marks a cell whose trimmed content is the empty string.
	CellEmpty CellKind = iota
	// CellNumber marks a cell whose raw content parses as a float
	// without any cleaning.
	CellNumber
	// CellText marks everything else.
	CellText
)

// String returns a short name for the kind, used in logs.
func (k CellKind) String() string {
	switch k {
	case CellEmpty:
		return "empty"
	case CellNumber:
		return "number"
	default:
		return "text"
	}
}

// Cell is one raw workbook cell: the verbatim string content plus its
// apparent kind. Cells are plain values; copying one is cheap and safe.
type Cell struct {
	Raw  string
	Kind CellKind
}

// NewCell classifies raw content into a Cell.
func NewCell(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Cell{Raw: raw, Kind: CellEmpty}
	}
	if _, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Cell{Raw: raw, Kind: CellNumber}
	}
	return Cell{Raw: raw, Kind: CellText}
}

// IsEmpty reports whether the cell carries no content.
func (c Cell) IsEmpty() bool { return c.Kind == CellEmpty }

// Text returns the trimmed cell content.
func (c Cell) Text() string { return strings.TrimSpace(c.Raw) }

// Grid is a header-less 2-D array of cells as read verbatim from one
// worksheet, zero-indexed by row and column. It is the single shared
// input to every section parser and must not be mutated after load;
// all accessors return cells by value.
type Grid struct {
	rows [][]Cell
}

// NewGrid wraps rows read from a worksheet. Ragged rows are permitted;
// out-of-range positions read as empty cells.
func NewGrid(rows [][]Cell) *Grid {
	return &Grid{rows: rows}
}

// NewGridFromStrings builds a grid from raw string rows, classifying
// every cell. This is the common construction path for loaders and tests.
func NewGridFromStrings(rows [][]string) *Grid {
	cells := make([][]Cell, len(rows))
	for i, row := range rows {
		cells[i] = make([]Cell, len(row))
		for j, raw := range row {
			cells[i][j] = NewCell(raw)
		}
	}
	return &Grid{rows: cells}
}

// NumRows returns the number of rows in the grid.
func (g *Grid) NumRows() int { return len(g.rows) }

// NumCols returns the widest row length in the grid.
func (g *Grid) NumCols() int {
	max := 0
	for _, row := range g.rows {
		if len(row) > max {
			max = len(row)
		}
	}
	return max
}

// At returns the cell at (row, col). Positions outside the grid or
// beyond a ragged row's width read as empty cells.
func (g *Grid) At(row, col int) Cell {
	if row < 0 || row >= len(g.rows) {
		return Cell{}
	}
	if col < 0 || col >= len(g.rows[row]) {
		return Cell{}
	}
	return g.rows[row][col]
}

// NonEmptyInRow counts the non-empty cells in one row.
func (g *Grid) NonEmptyInRow(row int) int {
	if row < 0 || row >= len(g.rows) {
		return 0
	}
	n := 0
	for _, c := range g.rows[row] {
		if !c.IsEmpty() {
			n++
		}
	}
	return n
}
