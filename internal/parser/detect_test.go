package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetnorm/pkg/contracts/domain"
)

func TestFindHeaderRow(t *testing.T) {
	grid := domain.NewGridFromStrings([][]string{
		{"Acme Ltd"},
		{"Monthly figures"},
		{},
		{"Period", "North", "South", "Total"},
		{"Jan", "100", "200", "300"},
	})

	t.Run("keyword dense row wins", func(t *testing.T) {
		row, matches, ok := FindHeaderRow(grid, []string{"period", "north", "south"}, 0, 20)
		require.True(t, ok)
		assert.Equal(t, 3, row)
		assert.Equal(t, 3, matches)
	})

	t.Run("substring containment counts", func(t *testing.T) {
		row, _, ok := FindHeaderRow(grid, []string{"eriod", "orth"}, 0, 20)
		require.True(t, ok)
		assert.Equal(t, 3, row)
	})

	t.Run("single keyword list needs one hit", func(t *testing.T) {
		row, _, ok := FindHeaderRow(grid, []string{"monthly"}, 0, 20)
		require.True(t, ok)
		assert.Equal(t, 1, row)
	})

	t.Run("one hit of many keywords is not enough", func(t *testing.T) {
		_, _, ok := FindHeaderRow(grid, []string{"figures", "quarterly", "fiscal"}, 0, 20)
		assert.False(t, ok)
	})

	t.Run("window excludes rows past search end", func(t *testing.T) {
		_, _, ok := FindHeaderRow(grid, []string{"period", "north"}, 0, 3)
		assert.False(t, ok)
	})

	t.Run("window excludes rows before search start", func(t *testing.T) {
		_, _, ok := FindHeaderRow(grid, []string{"period", "north"}, 4, 20)
		assert.False(t, ok)
	})

	t.Run("no keywords never matches", func(t *testing.T) {
		_, _, ok := FindHeaderRow(grid, nil, 0, 20)
		assert.False(t, ok)
	})
}

func TestDetectBoundaries(t *testing.T) {
	full := []string{"Jan", "1", "2", "3"}
	empty := []string{}

	t.Run("block ends before trailing empty rows", func(t *testing.T) {
		grid := domain.NewGridFromStrings([][]string{
			{"Period", "North", "South", "West"}, // header, row 0
			full, full, full, full,               // rows 1-4
			empty, empty, empty, // rows 5-7
		})
		start, end := DetectBoundaries(grid, 0, 4)
		assert.Equal(t, 1, start)
		assert.Equal(t, 4, end)
	})

	t.Run("single sparse row inside block is tolerated", func(t *testing.T) {
		grid := domain.NewGridFromStrings([][]string{
			{"Period", "North", "South", "West"},
			full, full,
			{"note"}, // sparse, but data resumes
			full, full,
		})
		start, end := DetectBoundaries(grid, 0, 4)
		assert.Equal(t, 1, start)
		assert.Equal(t, 5, end)
	})

	t.Run("block runs to end of grid", func(t *testing.T) {
		grid := domain.NewGridFromStrings([][]string{
			{"Period", "North", "South", "West"},
			full, full, full,
		})
		_, end := DetectBoundaries(grid, 0, 4)
		assert.Equal(t, 3, end)
	})

	t.Run("sparse row near grid end closes block immediately", func(t *testing.T) {
		grid := domain.NewGridFromStrings([][]string{
			{"Period", "North", "South", "West"},
			full, full,
			{"note"},
		})
		_, end := DetectBoundaries(grid, 0, 4)
		assert.Equal(t, 2, end)
	})
}

func TestRepairMergedCells(t *testing.T) {
	t.Run("row fill runs before column fill", func(t *testing.T) {
		grid := domain.NewGridFromStrings([][]string{
			{"Q1", "", ""},
			{"", "10", "20"},
		})
		rows, filled := RepairMergedCells(grid, 0, 1)
		require.Len(t, rows, 2)
		assert.Equal(t, 3, filled)

		// Horizontal merge: Q1 propagates across its own row.
		assert.Equal(t, "Q1", rows[0][1].Text())
		assert.Equal(t, "Q1", rows[0][2].Text())
		// Vertical merge: the leading empty cell inherits from above.
		assert.Equal(t, "Q1", rows[1][0].Text())
	})

	t.Run("idempotent", func(t *testing.T) {
		grid := domain.NewGridFromStrings([][]string{
			{"Q1", "", "5"},
			{"", "7", ""},
			{"Q2", "", "9"},
		})
		once, filledOnce := RepairMergedCells(grid, 0, 2)
		require.Greater(t, filledOnce, 0)

		again, filledAgain := RepairMergedCells(domain.NewGrid(once), 0, 2)
		assert.Zero(t, filledAgain)
		assert.Equal(t, once, again)
	})

	t.Run("leading empties stay empty", func(t *testing.T) {
		grid := domain.NewGridFromStrings([][]string{
			{"", "", "x"},
		})
		rows, filled := RepairMergedCells(grid, 0, 0)
		assert.Equal(t, 0, filled)
		assert.True(t, rows[0][0].IsEmpty())
		assert.True(t, rows[0][1].IsEmpty())
	})

	t.Run("source grid untouched", func(t *testing.T) {
		grid := domain.NewGridFromStrings([][]string{
			{"a", ""},
			{"", "b"},
		})
		_, _ = RepairMergedCells(grid, 0, 1)
		assert.True(t, grid.At(0, 1).IsEmpty())
		assert.True(t, grid.At(1, 0).IsEmpty())
	})

	t.Run("inverted range yields nothing", func(t *testing.T) {
		grid := domain.NewGridFromStrings([][]string{{"a"}})
		rows, filled := RepairMergedCells(grid, 2, 1)
		assert.Nil(t, rows)
		assert.Zero(t, filled)
	})
}
