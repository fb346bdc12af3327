package dedup

import (
	"math"
	"strings"
)

// fingerprint is a term-frequency vector over a normalized title.
type fingerprint struct {
	tokens map[string]float64
	norm   float64
}

func newFingerprint(normalizedTitle string) *fingerprint {
	fields := strings.Fields(normalizedTitle)
	if len(fields) == 0 {
		return nil
	}
	counts := make(map[string]float64, len(fields))
	for _, token := range fields {
		counts[token]++
	}
	var n float64
	for _, count := range counts {
		n += count * count
	}
	return &fingerprint{tokens: counts, norm: math.Sqrt(n)}
}

// Similarity computes cosine similarity between two normalized titles.
// Identical titles score 1; titles with no shared tokens score 0.
func Similarity(a, b string) float64 {
	fa := newFingerprint(a)
	fb := newFingerprint(b)
	if fa == nil || fb == nil || fa.norm == 0 || fb.norm == 0 {
		return 0
	}
	var dot float64
	for token, count := range fa.tokens {
		if other, ok := fb.tokens[token]; ok {
			dot += count * other
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (fa.norm * fb.norm)
}
