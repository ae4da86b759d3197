package db

import "errors"

var (
	// ErrKeyNotFound is returned when a key does not exist or has expired.
	ErrKeyNotFound = errors.New("db: key not found")
	// ErrNotReady is returned when the store does not answer before the readiness deadline.
	ErrNotReady = errors.New("db: not ready")
)

// Op names the cache command that failed.
type Op string

// Commands issued by the cache.
const (
	OpDel  Op = "DEL"
	OpGet  Op = "GET"
	OpSet  Op = "SET"
	OpPing Op = "PING"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  Op
	Err error
}

func (e *Error) Error() string { return string(e.Op) + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
