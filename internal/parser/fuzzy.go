package parser

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// DefaultFuzzyThreshold is the minimum similarity score a candidate
// needs to be accepted as a match.
const DefaultFuzzyThreshold = 0.75

// Matcher scores free-text labels against a set of canonical names.
// The zero value is not usable; construct with NewMatcher.
type Matcher struct {
	threshold float64
}

// NewMatcher creates a matcher. A non-positive threshold selects
// DefaultFuzzyThreshold.
func NewMatcher(threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultFuzzyThreshold
	}
	return &Matcher{threshold: threshold}
}

// Threshold returns the configured acceptance threshold.
func (m *Matcher) Threshold() float64 { return m.threshold }

// Score computes the similarity between two strings in [0,1].
// Exact equality after normalization scores 1.0, containment either
// way scores 0.9, everything else falls through to a sequence
// similarity ratio.
func (m *Matcher) Score(text, target string) float64 {
	textNorm := normalize(text)
	targetNorm := normalize(target)

	if textNorm == targetNorm {
		return 1.0
	}
	if textNorm != "" && targetNorm != "" &&
		(strings.Contains(textNorm, targetNorm) || strings.Contains(targetNorm, textNorm)) {
		return 0.9
	}
	return similarityRatio(textNorm, targetNorm)
}

// BestMatch returns the candidate with the strictly highest score, or
// ok=false when no candidate reaches the threshold. Ties break in
// candidate enumeration order: the first seen wins.
func (m *Matcher) BestMatch(text string, candidates []string) (match string, score float64, ok bool) {
	if strings.TrimSpace(text) == "" || len(candidates) == 0 {
		return "", 0, false
	}

	best := ""
	bestScore := 0.0
	for _, candidate := range candidates {
		if s := m.Score(text, candidate); s > bestScore {
			bestScore = s
			best = candidate
		}
	}

	if bestScore >= m.threshold {
		return best, bestScore, true
	}
	return "", 0, false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// similarityRatio is a stable sequence similarity in [0,1] derived
// from the Levenshtein edit distance: identical strings score 1,
// disjoint strings approach 0.
func similarityRatio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	la, lb := len([]rune(a)), len([]rune(b))
	max := la
	if lb > max {
		max = lb
	}
	if max == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(max)
}
