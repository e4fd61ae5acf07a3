package domain

import (
	"encoding/json"
	"strconv"
)

// Section names one logical data block in a source workbook. Each
// section is parsed independently from the same raw grid.
type Section string

const (
	SectionRevenue Section = "revenue"
	SectionCosts   Section = "costs"
	SectionHours   Section = "hours"
)

// Title returns the section name with a leading capital, as used in
// warnings and the validation report.
func (s Section) Title() string {
	switch s {
	case SectionRevenue:
		return "Revenue"
	case SectionCosts:
		return "Costs"
	case SectionHours:
		return "Hours"
	default:
		return string(s)
	}
}

// Value is a cleaned numeric cell value or the explicit missing marker.
// Valid is false when the source cell could not be interpreted as a
// number; that is distinct from a stored zero.
type Value struct {
	Float64 float64
	Valid   bool
}

// Num wraps a finite float as a present Value.
func Num(f float64) Value { return Value{Float64: f, Valid: true} }

// Missing is the explicit "no value" marker.
var Missing = Value{}

// MarshalJSON renders a missing value as null so consumers never
// confuse it with zero.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Float64)
}

// UnmarshalJSON accepts null as the missing marker.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Missing
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Num(f)
	return nil
}

// ParsedSection is one normalized rectangular table. It is column
// oriented: label columns (Period, Month, Week, Date) hold the original
// text, every other column holds numeric values with explicit missing
// markers. Column labels are unique and each configured branch name
// appears at most once. Row order matches the originating grid slice.
type ParsedSection struct {
	Section Section             `json:"section"`
	Columns []string            `json:"columns"`
	Labels  map[string][]string `json:"labels,omitempty"`
	Data    map[string][]Value  `json:"data,omitempty"`
}

// NewParsedSection creates an empty table for the given section.
func NewParsedSection(section Section) *ParsedSection {
	return &ParsedSection{
		Section: section,
		Labels:  make(map[string][]string),
		Data:    make(map[string][]Value),
	}
}

// RowCount returns the number of rows in the table.
func (s *ParsedSection) RowCount() int {
	for _, col := range s.Labels {
		return len(col)
	}
	for _, col := range s.Data {
		return len(col)
	}
	return 0
}

// Empty reports whether the table has no rows or no columns.
func (s *ParsedSection) Empty() bool {
	return s == nil || len(s.Columns) == 0 || s.RowCount() == 0
}

// HasColumn reports whether a column with the given label exists.
func (s *ParsedSection) HasColumn(name string) bool {
	_, label := s.Labels[name]
	_, data := s.Data[name]
	return label || data
}

// IsLabelColumn reports whether the named column is a pass-through
// label column rather than a numeric one.
func (s *ParsedSection) IsLabelColumn(name string) bool {
	_, ok := s.Labels[name]
	return ok
}

// MissingRatio returns the fraction of missing values in a numeric
// column, in [0,1]. Label columns and unknown columns report 0.
func (s *ParsedSection) MissingRatio(name string) float64 {
	col, ok := s.Data[name]
	if !ok || len(col) == 0 {
		return 0
	}
	missing := 0
	for _, v := range col {
		if !v.Valid {
			missing++
		}
	}
	return float64(missing) / float64(len(col))
}

// MissingCount returns the number of missing values in a numeric column.
func (s *ParsedSection) MissingCount(name string) int {
	n := 0
	for _, v := range s.Data[name] {
		if !v.Valid {
			n++
		}
	}
	return n
}

// Cell renders the value at (row, column) as a display string: label
// text verbatim, numbers via strconv, missing as the empty string.
// Used by exporters; out-of-range positions render empty.
func (s *ParsedSection) Cell(row int, column string) string {
	if col, ok := s.Labels[column]; ok {
		if row >= 0 && row < len(col) {
			return col[row]
		}
		return ""
	}
	if col, ok := s.Data[column]; ok {
		if row >= 0 && row < len(col) && col[row].Valid {
			return strconv.FormatFloat(col[row].Float64, 'f', -1, 64)
		}
	}
	return ""
}

// Bundle is the complete result of one parse invocation: the normalized
// sections, the rendered validation report, and the ordered warnings.
// Hours is nil when the section is not configured.
type Bundle struct {
	Revenue  *ParsedSection `json:"revenue"`
	Costs    *ParsedSection `json:"costs"`
	Hours    *ParsedSection `json:"hours,omitempty"`
	Report   string         `json:"validation_report"`
	Warnings []string       `json:"warnings"`
}
