// Package run describes persisted batch artifacts.
package run

import (
	"encoding/json"
	"time"
)

// Kind distinguishes run artifact types.
type Kind string

// Run kinds.
const (
	KindLesk        Kind = "lesk"
	KindCorrelation Kind = "correlation"
)

// Run is a stored batch artifact. Params and Items are opaque JSON owned by
// the use case that produced the run.
type Run struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	CreatedAt time.Time       `json:"created_at"`
	Params    json.RawMessage `json:"params"`
	Items     json.RawMessage `json:"items"`
	Count     int             `json:"count"`
}

// Summary is the listing view of a run.
type Summary struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
	Count     int       `json:"count"`
}

// Summarize drops the payload.
func (r Run) Summarize() Summary {
	return Summary{ID: r.ID, Kind: r.Kind, CreatedAt: r.CreatedAt, Count: r.Count}
}
