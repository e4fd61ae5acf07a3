package parser

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"sheetnorm/pkg/contracts/domain"
)

func TestCleanNumeric(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    float64
		missing bool
	}{
		{name: "plain integer", raw: "42", want: 42},
		{name: "plain float", raw: "3.14", want: 3.14},
		{name: "pound with thousands", raw: "£1,234.56", want: 1234.56},
		{name: "dollar with thousands", raw: "$1,000", want: 1000},
		{name: "euro", raw: "€99.50", want: 99.5},
		{name: "parenthesized negative", raw: "(500)", want: -500},
		{name: "parenthesized currency", raw: "(£2,000)", want: -2000},
		{name: "embedded spaces", raw: "1 234 567", want: 1234567},
		{name: "leading and trailing space", raw: "  250  ", want: 250},
		{name: "explicit negative", raw: "-17.5", want: -17.5},
		{name: "empty", raw: "", missing: true},
		{name: "whitespace only", raw: "   ", missing: true},
		{name: "not a number", raw: "n/a", missing: true},
		{name: "free text", raw: "see note below", missing: true},
		{name: "stray symbol only", raw: "£", missing: true},
		{name: "unbalanced paren", raw: "(500", missing: true},
		{name: "infinity word", raw: "inf", missing: true},
		{name: "signed infinity", raw: "+Inf", missing: true},
		{name: "negative infinity", raw: "-inf", missing: true},
		{name: "not a number literal", raw: "NaN", missing: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanNumeric(domain.NewCell(tt.raw))
			if tt.missing {
				assert.False(t, got.Valid, "expected missing for %q", tt.raw)
				return
			}
			assert.True(t, got.Valid, "expected a value for %q", tt.raw)
			assert.InDelta(t, tt.want, got.Float64, 1e-9)
		})
	}
}

func TestCleanNumericValuesMarshal(t *testing.T) {
	// Cleaned values always round-trip through JSON: non-finite input
	// becomes missing instead of a value encoding/json rejects.
	for _, raw := range []string{"inf", "-Inf", "NaN", "42"} {
		v := CleanNumeric(domain.NewCell(raw))
		_, err := json.Marshal(v)
		assert.NoError(t, err, raw)
	}
}

func TestCleanNumericNeverPanics(t *testing.T) {
	// Garbage that has tripped parsers before.
	for _, raw := range []string{"()", "£,", "--5", "1.2.3", "(n/a)"} {
		got := CleanNumeric(domain.NewCell(raw))
		assert.False(t, got.Valid, "expected missing for %q", raw)
	}
}
