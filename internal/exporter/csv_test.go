package exporter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetnorm/internal/parser"
	"sheetnorm/pkg/contracts/domain"
)

func testSection(t *testing.T, kind domain.Section) *domain.ParsedSection {
	t.Helper()
	s := domain.NewParsedSection(kind)
	s.Columns = []string{"Period", "North", "South"}
	s.Labels["Period"] = []string{"Jan", "Feb"}
	s.Data["North"] = []domain.Value{domain.Num(1000), domain.Num(1100)}
	s.Data["South"] = []domain.Value{domain.Num(2000), domain.Missing}
	return s
}

func TestWriteSection(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	require.NoError(t, w.WriteSection(testSection(t, domain.SectionRevenue), "revenue.csv"))

	data, err := os.ReadFile(filepath.Join(dir, "revenue.csv"))
	require.NoError(t, err)

	// UTF-8 BOM, then headers and rows; missing renders empty.
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, data[:3])
	assert.Equal(t, "Period,North,South\nJan,1000,2000\nFeb,1100,\n", string(data[3:]))
}

func TestWriteSectionNil(t *testing.T) {
	w := NewCSVWriter(t.TempDir())
	assert.Error(t, w.WriteSection(nil, "revenue.csv"))
}

func TestWriteSummaries(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	summaries := []parser.ColumnSummary{
		{
			Section: domain.SectionRevenue, Column: "North",
			Count: 2, Missing: 0, Total: 2100, Mean: 1050, Min: 1000, Max: 1100,
		},
		{
			Section: domain.SectionRevenue, Column: "South",
			Count: 1, Missing: 1, MissingRatio: 0.5, Total: 2000, Mean: 2000, Min: 2000, Max: 2000,
		},
	}
	require.NoError(t, w.WriteSummaries(summaries, "summary.csv"))

	data, err := os.ReadFile(filepath.Join(dir, "summary.csv"))
	require.NoError(t, err)
	content := string(data[3:])
	assert.Contains(t, content, "Section,Column,Count,Missing,MissingRatio,Total,Mean,Min,Max\n")
	assert.Contains(t, content, "revenue,North,2,0,0,2100,1050,1000,1100\n")
	assert.Contains(t, content, "revenue,South,1,1,0.5,2000,2000,2000,2000\n")
}

func TestWriteBundle(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	bundle := &domain.Bundle{
		Revenue: testSection(t, domain.SectionRevenue),
		Costs:   testSection(t, domain.SectionCosts),
		Report:  "report body",
	}
	require.NoError(t, w.WriteBundle(bundle, "out"))

	for _, name := range []string{"revenue.csv", "costs.csv", "validation_report.txt"} {
		_, err := os.Stat(filepath.Join(dir, "out", name))
		assert.NoError(t, err, name)
	}
	// Hours was nil, so no hours file.
	_, err := os.Stat(filepath.Join(dir, "out", "hours.csv"))
	assert.True(t, os.IsNotExist(err))

	report, err := os.ReadFile(filepath.Join(dir, "out", "validation_report.txt"))
	require.NoError(t, err)
	assert.Equal(t, "report body\n", string(report))
}

func TestStreamWriter(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	sw, err := w.CreateStreamWriter("batch/summary.csv", SummaryHeaders)
	require.NoError(t, err)
	require.NoError(t, sw.WriteRecord(SummaryRecord(parser.ColumnSummary{
		Section: domain.SectionCosts, Column: "West", Count: 3, Total: 30, Mean: 10, Min: 5, Max: 15,
	})))
	require.NoError(t, sw.Close())

	data, err := os.ReadFile(filepath.Join(dir, "batch", "summary.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "costs,West,3,0,0,30,10,5,15\n")
}

func TestAppend(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	require.NoError(t, w.WriteCSV("log.csv", WriteOptions{
		Headers: []string{"a", "b"},
		Records: [][]string{{"1", "2"}},
	}))
	require.NoError(t, w.WriteCSV("log.csv", WriteOptions{
		Records: [][]string{{"3", "4"}},
		Append:  true,
	}))

	data, err := os.ReadFile(filepath.Join(dir, "log.csv"))
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n3,4\n", string(data))
}
