// Package batch holds per-item outcomes of corpus runs.
package batch

import "strconv"

// ItemStatus is the scoring outcome of one corpus sentence.
type ItemStatus string

// Item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// ItemID names a sentence by its document and position: "news/a.txt#3".
func ItemID(document string, index int) string {
	return document + "#" + strconv.Itoa(index)
}

// Result is the outcome of scoring one sentence.
type Result struct {
	id     string
	status ItemStatus
	err    error
}

// NewOK records a scored sentence.
func NewOK(id string) Result { return Result{id: id, status: StatusOK} }

// NewError records a sentence whose scoring failed.
func NewError(id string, err error) Result { return Result{id: id, status: StatusError, err: err} }

// ID returns the sentence identifier.
func (r Result) ID() string { return r.id }

// Status returns the outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the scoring error, if any.
func (r Result) Err() error { return r.err }
