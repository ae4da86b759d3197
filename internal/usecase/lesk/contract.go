package lesk

import (
	"context"

	"github.com/kailas-cloud/wsdlab/internal/lexical"
	"github.com/kailas-cloud/wsdlab/internal/transport/wikipedia"
)

// Normalizer turns text into comparable tokens.
type Normalizer interface {
	NormalizeExcluding(text, target string) []string
}

// LexicalSource enumerates dictionary senses of a word.
type LexicalSource interface {
	Lookup(ctx context.Context, word string, hint lexical.Category) ([]lexical.Entry, error)
}

// Encyclopedia resolves article summaries and searches titles.
type Encyclopedia interface {
	Resolve(ctx context.Context, title string) (wikipedia.Page, error)
	Search(ctx context.Context, term string, limit int) ([]string, error)
}
