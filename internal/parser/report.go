package parser

import (
	"context"
	"fmt"
	"strings"

	"sheetnorm/pkg/contracts/domain"
)

// reportKeyEntries is how many tagged log entries the report keeps.
const reportKeyEntries = 20

// validateSection checks one parsed table for the data-quality issues
// surfaced to the end user: an empty table, configured branches that
// never appeared as columns, and branch columns dominated by missing
// values. Ratios above 50% become warnings; above 25% they are only
// logged.
func (r *run) validateSection(ctx context.Context, s *domain.ParsedSection, sec domain.Section) {
	r.logf(ctx, kindInfo, "Validating %s section", sec.Title())

	if s.Empty() {
		r.warnf(ctx, "%s: table is empty", sec.Title())
		return
	}

	var missing []string
	for _, branch := range r.p.cfg.Branches {
		if !s.HasColumn(branch) {
			missing = append(missing, branch)
		}
	}
	if len(missing) > 0 {
		r.warnf(ctx, "%s: missing branches: %s", sec.Title(), strings.Join(missing, ", "))
	}

	for _, branch := range r.p.cfg.Branches {
		if !s.HasColumn(branch) || s.IsLabelColumn(branch) {
			continue
		}
		pct := s.MissingRatio(branch) * 100
		switch {
		case pct > 50:
			r.warnf(ctx, "%s: branch %q has %.1f%% missing data", sec.Title(), branch, pct)
		case pct > 25:
			r.logf(ctx, kindInfo, "%s: branch %q has %.1f%% missing data", sec.Title(), branch, pct)
		}
	}
}

// renderReport builds the human-readable validation report: every
// accumulated warning in detection order, followed by the last tagged
// log entries (structural findings, removals, fuzzy corrections).
func (r *run) renderReport() string {
	bar := strings.Repeat("=", 60)

	var b strings.Builder
	b.WriteString(bar + "\n")
	b.WriteString("WORKBOOK PARSING VALIDATION REPORT\n")
	b.WriteString(bar + "\n")

	if len(r.warnings) == 0 {
		b.WriteString("All validations passed - data looks good!\n")
	} else {
		fmt.Fprintf(&b, "Found %d warnings:\n\n", len(r.warnings))
		for i, w := range r.warnings {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, w)
		}
	}

	b.WriteString("\n" + bar + "\n")
	b.WriteString("PARSING LOG SUMMARY\n")
	b.WriteString(bar + "\n")

	var key []string
	for _, e := range r.log {
		if e.kind.key() {
			key = append(key, e.msg)
		}
	}
	if len(key) > reportKeyEntries {
		key = key[len(key)-reportKeyEntries:]
	}
	for _, msg := range key {
		b.WriteString("  " + msg + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}
