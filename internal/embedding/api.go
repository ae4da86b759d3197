package embedding

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/wsdlab/internal/domain"
)

// APISource scores words with vectors requested from a remote embedder.
// Every word is treated as in-vocabulary as long as the embedder answers.
type APISource struct {
	name     string
	embedder domain.Embedder
	logger   *zap.Logger
}

// NewAPISource wraps an embedder (usually cached) as a similarity source.
func NewAPISource(name string, e domain.Embedder, logger *zap.Logger) *APISource {
	return &APISource{name: name, embedder: e, logger: logger}
}

// Name returns the source label.
func (s *APISource) Name() string { return s.name }

// Contains reports whether the embedder returns a vector for word.
func (s *APISource) Contains(ctx context.Context, word string) bool {
	_, err := s.vector(ctx, word)
	if err != nil {
		s.logger.Debug("Embedding lookup failed", zap.String("source", s.name), zap.String("word", word), zap.Error(err))
	}
	return err == nil
}

// Similarity embeds both words and returns their cosine similarity.
func (s *APISource) Similarity(ctx context.Context, a, b string) (float64, error) {
	va, err := s.vector(ctx, a)
	if err != nil {
		return 0, err
	}
	vb, err := s.vector(ctx, b)
	if err != nil {
		return 0, err
	}
	return Cosine(va, vb), nil
}

// HealthCheck delegates to the embedder when it supports it.
func (s *APISource) HealthCheck(ctx context.Context) error {
	hc, ok := s.embedder.(domain.HealthChecker)
	if !ok {
		return nil
	}
	return hc.HealthCheck(ctx)
}

func (s *APISource) vector(ctx context.Context, word string) ([]float32, error) {
	if word == "" {
		return nil, fmt.Errorf("%s: empty word: %w", s.name, ErrUnknownWord)
	}
	res, err := s.embedder.Embed(ctx, word)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}
	if len(res.Embedding) == 0 {
		return nil, fmt.Errorf("%s: %q: %w", s.name, word, errors.Join(ErrUnknownWord, domain.ErrSourceUnavailable))
	}
	return res.Embedding, nil
}
