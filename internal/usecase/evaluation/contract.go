package evaluation

import (
	"context"

	"github.com/kailas-cloud/wsdlab/internal/domain/gold"
	"github.com/kailas-cloud/wsdlab/internal/domain/run"
)

// DatasetLoader reads gold pairs.
type DatasetLoader interface {
	Load(ctx context.Context, key gold.DatasetKey) ([]gold.Pair, error)
}

// Oracle scores a word pair; ok is false when no score is available.
type Oracle interface {
	Similarity(ctx context.Context, a, b string) (float64, bool)
}

// EmbeddingSource scores word pairs by vector similarity.
type EmbeddingSource interface {
	Name() string
	Contains(ctx context.Context, word string) bool
	Similarity(ctx context.Context, a, b string) (float64, error)
}

// RunStore persists evaluation artifacts.
type RunStore interface {
	Create(ctx context.Context, rn *run.Run) error
}
