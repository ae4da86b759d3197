// Package stats implements rank statistics used to compare similarity
// measures with human judgments.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Rank assigns 1-based ranks to values. Tied values receive the mean of
// the rank positions they jointly occupy.
func Rank(values []float64) []float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]] < values[idx[b]]
	})

	ranks := make([]float64, len(values))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		avg := float64(i+1+j+1) / 2.0
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}

// Spearman returns the rank correlation of x and y: the Pearson correlation
// of their average-tie ranks. The result is NaN for unequal lengths, empty
// input, or when either side has no rank variation.
func Spearman(x, y []float64) float64 {
	if len(x) != len(y) || len(x) == 0 {
		return math.NaN()
	}
	rx := Rank(x)
	ry := Rank(y)
	if constant(rx) || constant(ry) {
		return math.NaN()
	}
	return stat.Correlation(rx, ry, nil)
}

func constant(v []float64) bool {
	for _, x := range v[1:] {
		if x != v[0] {
			return false
		}
	}
	return true
}
