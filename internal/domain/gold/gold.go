// Package gold holds human-judgment word similarity data.
package gold

// DatasetKey names one of the built-in gold datasets.
type DatasetKey string

// Built-in datasets.
const (
	// MC is the Miller-Charles dataset.
	MC DatasetKey = "MC"
	// RG is the Rubenstein-Goodenough dataset.
	RG DatasetKey = "RG"
	// WS353 is the WordSim-353 dataset.
	WS353 DatasetKey = "WS353"
)

// AllDatasets returns the built-in dataset keys in canonical order.
func AllDatasets() []DatasetKey {
	return []DatasetKey{MC, RG, WS353}
}

// IsValid checks if the key is one of the built-in datasets.
func (k DatasetKey) IsValid() bool {
	return k == MC || k == RG || k == WS353
}

// Pair is one human-annotated word pair.
type Pair struct {
	WordA string
	WordB string
	Human float64
}

// Words returns the pair as (a, b).
func (p Pair) Words() (string, string) { return p.WordA, p.WordB }

// HumanScores extracts the gold scores in dataset order.
func HumanScores(pairs []Pair) []float64 {
	out := make([]float64, len(pairs))
	for i, p := range pairs {
		out[i] = p.Human
	}
	return out
}
