package parser

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"sheetnorm/pkg/contracts/domain"
)

// CleanNumeric normalizes one raw cell into a numeric value or the
// explicit missing marker. It tolerates the formats that show up in
// hand-maintained workbooks: currency symbols, thousands separators,
// embedded spaces, and accountant-style parenthesized negatives.
// Failure to parse is policy, not an error: the result is Missing.
func CleanNumeric(cell domain.Cell) domain.Value {
	if cell.IsEmpty() {
		return domain.Missing
	}

	cleaned := stripFormatting(cell.Raw)
	if cleaned == "" {
		return domain.Missing
	}

	// Parentheses mean negative: "(500)" -> "-500".
	if strings.Contains(cleaned, "(") && strings.Contains(cleaned, ")") {
		cleaned = "-" + strings.NewReplacer("(", "", ")", "").Replace(cleaned)
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return domain.Missing
	}
	// ParseFloat admits "inf" and "NaN"; clean values are always finite.
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return domain.Missing
	}
	return domain.Num(f)
}

// stripFormatting removes currency symbols, thousands separators and
// all whitespace, including whitespace embedded inside the number.
func stripFormatting(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r == '£' || r == '$' || r == '€' || r == ',':
			continue
		case unicode.IsSpace(r):
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
