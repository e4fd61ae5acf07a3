package domain

// SectionBounds supplies optional explicit layout hints for one
// section. Row indices are zero-based against the raw grid. A nil
// pointer means "not configured"; zero is a legitimate row index.
type SectionBounds struct {
	HeaderRow *int   `yaml:"header_row" json:"header_row,omitempty"`
	StartRow  *int   `yaml:"start_row" json:"start_row,omitempty"`
	EndRow    *int   `yaml:"end_row" json:"end_row,omitempty"`
	Sheet     string `yaml:"sheet" json:"sheet,omitempty"`
}

// HasRange reports whether both explicit boundaries are set.
func (b SectionBounds) HasRange() bool {
	return b.StartRow != nil && b.EndRow != nil
}

// ParseConfig is the externally supplied, read-only configuration for
// one parse invocation. Only the branch list is mandatory; everything
// else has a working default.
type ParseConfig struct {
	// Branches are the canonical column names. They drive fuzzy
	// matching of header labels and the completeness checks.
	Branches []string `yaml:"branches" json:"branches" validate:"required,min=1,dive,required"`

	Revenue SectionBounds `yaml:"revenue" json:"revenue"`
	Costs   SectionBounds `yaml:"costs" json:"costs"`
	Hours   SectionBounds `yaml:"hours" json:"hours"`

	// FuzzyThreshold is the minimum similarity score for a header
	// label to be standardized to a branch name. Zero means the
	// default of 0.75.
	FuzzyThreshold float64 `yaml:"fuzzy_threshold" json:"fuzzy_threshold,omitempty" validate:"gte=0,lte=1"`

	// MinDataCells is the minimum number of non-empty cells a row
	// needs to count as data during boundary detection. Zero means
	// the default of 4.
	MinDataCells int `yaml:"min_data_cells" json:"min_data_cells,omitempty" validate:"gte=0"`

	// HeaderSearchRows bounds the header auto-detection window.
	// Zero means the default of 20.
	HeaderSearchRows int `yaml:"header_search_rows" json:"header_search_rows,omitempty" validate:"gte=0"`

	// CleanBeforeCount switches the comment-row filter to count
	// cells that clean to a number instead of cells that are already
	// numeric-typed. The default (false) preserves the historical
	// behavior where currency-formatted text counts as non-numeric.
	CleanBeforeCount bool `yaml:"clean_before_count" json:"clean_before_count,omitempty"`
}

// BoundsFor returns the configured bounds for a section.
func (c *ParseConfig) BoundsFor(section Section) SectionBounds {
	switch section {
	case SectionCosts:
		return c.Costs
	case SectionHours:
		return c.Hours
	default:
		return c.Revenue
	}
}
