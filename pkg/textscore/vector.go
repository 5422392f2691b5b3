// Package textscore scores free text: term-frequency cosine similarity and
// sentiment polarity.
package textscore

import (
	"math"
	"regexp"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Tokens are runs of two or more letters, digits or underscores.
var tokenRE = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenize lower-cases text and splits it into terms.
func Tokenize(text string) []string {
	return tokenRE.FindAllString(strings.ToLower(text), -1)
}

// VectorSpace is a term vocabulary learned from a corpus.
type VectorSpace struct {
	index map[string]int
	terms []string
}

// Fit learns the vocabulary of corpus. Terms are indexed in first-seen order.
func Fit(corpus []string) *VectorSpace {
	vs := &VectorSpace{index: make(map[string]int)}
	for _, doc := range corpus {
		for _, tok := range Tokenize(doc) {
			if _, ok := vs.index[tok]; !ok {
				vs.index[tok] = len(vs.terms)
				vs.terms = append(vs.terms, tok)
			}
		}
	}
	return vs
}

// Terms returns the vocabulary.
func (vs *VectorSpace) Terms() []string { return vs.terms }

// Contains reports whether term is in the vocabulary.
func (vs *VectorSpace) Contains(term string) bool {
	_, ok := vs.index[strings.ToLower(term)]
	return ok
}

// Transform returns the term counts of text over the vocabulary.
// Unknown terms are dropped.
func (vs *VectorSpace) Transform(text string) []float64 {
	v := make([]float64, len(vs.terms))
	for _, tok := range Tokenize(text) {
		if i, ok := vs.index[tok]; ok {
			v[i]++
		}
	}
	return v
}

// Cosine returns the cosine of the angle between a and b, or 0 when either
// is the zero vector.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	aa, bb := floats.Dot(a, a), floats.Dot(b, b)
	if aa == 0 || bb == 0 {
		return 0
	}
	// A single square root keeps identical count vectors at exactly 1.
	c := floats.Dot(a, b) / math.Sqrt(aa*bb)
	// Clamp rounding noise.
	return min(max(c, 0), 1)
}

// Similarity vectorizes a and b in vs and returns their cosine similarity.
func Similarity(vs *VectorSpace, a, b string) float64 {
	return Cosine(vs.Transform(a), vs.Transform(b))
}
