package batch

import (
	"context"

	"github.com/kailas-cloud/wsdlab/internal/domain/run"
	"github.com/kailas-cloud/wsdlab/internal/domain/sense"
	"github.com/kailas-cloud/wsdlab/internal/repository/corpus"
	"github.com/kailas-cloud/wsdlab/internal/usecase/lesk"
)

// Corpus iterates sentences of a document collection.
type Corpus interface {
	Walk(ctx context.Context, fn func(corpus.Sentence) bool) error
}

// Disambiguator scores one sentence in a given mode.
type Disambiguator interface {
	Disambiguate(ctx context.Context, mode sense.Mode, req lesk.Request) (sense.Result, error)
}

// WordSplitter returns the cleaned words of a text, stopwords included.
type WordSplitter interface {
	Words(text string) []string
}

// RunStore persists batch artifacts.
type RunStore interface {
	Create(ctx context.Context, rn *run.Run) error
}
