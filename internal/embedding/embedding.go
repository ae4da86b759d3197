// Package embedding provides word-similarity sources backed by pretrained
// vectors, loaded from disk or requested from an embedding API.
package embedding

import (
	"context"
	"errors"
	"math"
)

// ErrUnknownWord is returned when a word has no vector.
var ErrUnknownWord = errors.New("word not in vocabulary")

// Source scores word pairs by vector similarity.
type Source interface {
	Name() string
	Contains(ctx context.Context, word string) bool
	Similarity(ctx context.Context, a, b string) (float64, error)
}

// Cosine returns the cosine similarity of two equal-length vectors.
// Zero vectors and mismatched lengths yield 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
