package parser

import (
	"context"
	"log/slog"

	"github.com/montanaflynn/stats"

	"sheetnorm/pkg/contracts/domain"
)

// ColumnSummary carries the descriptive statistics for one numeric
// column of a parsed section. Missing values are excluded from the
// statistics and reported separately.
type ColumnSummary struct {
	Section      domain.Section `json:"section" csv:"Section"`
	Column       string         `json:"column" csv:"Column"`
	Count        int            `json:"count" csv:"Count"`
	Missing      int            `json:"missing" csv:"Missing"`
	MissingRatio float64        `json:"missing_ratio" csv:"MissingRatio"`
	Total        float64        `json:"total" csv:"Total"`
	Mean         float64        `json:"mean" csv:"Mean"`
	Min          float64        `json:"min" csv:"Min"`
	Max          float64        `json:"max" csv:"Max"`
}

// Summarizer computes per-column statistics over a parse result. One
// instance can be shared; it holds no per-call state.
type Summarizer struct {
	logger *slog.Logger
}

// NewSummarizer creates a Summarizer.
func NewSummarizer(logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{logger: logger}
}

// Summarize walks every numeric column of every parsed section in the
// bundle, in column order, and returns one summary per column.
func (s *Summarizer) Summarize(ctx context.Context, bundle *domain.Bundle) []ColumnSummary {
	var out []ColumnSummary
	for _, section := range []*domain.ParsedSection{bundle.Revenue, bundle.Costs, bundle.Hours} {
		if section == nil {
			continue
		}
		out = append(out, s.summarizeSection(ctx, section)...)
	}
	return out
}

func (s *Summarizer) summarizeSection(ctx context.Context, section *domain.ParsedSection) []ColumnSummary {
	s.logger.DebugContext(ctx, "summarizing section",
		slog.String("section", string(section.Section)),
		slog.Int("rows", section.RowCount()))

	summaries := make([]ColumnSummary, 0, len(section.Columns))
	for _, column := range section.Columns {
		values, ok := section.Data[column]
		if !ok {
			continue
		}

		present := make(stats.Float64Data, 0, len(values))
		for _, v := range values {
			if v.Valid {
				present = append(present, v.Float64)
			}
		}

		cs := ColumnSummary{
			Section: section.Section,
			Column:  column,
			Count:   len(present),
			Missing: len(values) - len(present),
		}
		if len(values) > 0 {
			cs.MissingRatio = float64(cs.Missing) / float64(len(values))
		}
		if len(present) > 0 {
			// The stats helpers only fail on empty input, which is
			// excluded above.
			cs.Total, _ = present.Sum()
			cs.Mean, _ = present.Mean()
			cs.Min, _ = present.Min()
			cs.Max, _ = present.Max()
		}
		summaries = append(summaries, cs)
	}
	return summaries
}
