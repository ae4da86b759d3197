package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput signals a caller error: missing or malformed request fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownDataset signals a dataset key outside the built-in set.
	ErrUnknownDataset = fmt.Errorf("unknown dataset: %w", ErrInvalidInput)
	// ErrNotFound signals a missing resource (dataset file, corpus directory, run).
	ErrNotFound = errors.New("not found")
	// ErrPageNotFound signals that the encyclopedic source has no such article.
	ErrPageNotFound = errors.New("page not found")
	// ErrDisambiguation signals that an article title is ambiguous.
	ErrDisambiguation = errors.New("disambiguation page")
	// ErrSourceUnavailable signals a failing external knowledge source.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrNotConfigured signals that an optional component is not configured.
	ErrNotConfigured = errors.New("not configured")
)
