// Package textnorm turns free text into the normalized tokens compared by
// the Lesk scorer.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizer lowercases, folds and filters word units. It is read-only after
// construction and safe for concurrent use.
type Normalizer struct {
	splitters []Splitter
	stopwords map[string]struct{}
}

// New creates a normalizer. Stopwords are cleaned the same way as tokens.
// With no splitters the default chain is used.
func New(stopwords []string, splitters ...Splitter) *Normalizer {
	if len(splitters) == 0 {
		splitters = DefaultSplitters()
	}
	stops := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		if c := Clean(w); c != "" {
			stops[c] = struct{}{}
		}
	}
	return &Normalizer{splitters: splitters, stopwords: stops}
}

// Normalize returns the ordered content tokens of text.
func (n *Normalizer) Normalize(text string) []string {
	return n.NormalizeExcluding(text, "")
}

// NormalizeExcluding returns the ordered content tokens of text without the
// given target word.
func (n *Normalizer) NormalizeExcluding(text, target string) []string {
	exclude := Clean(target)
	var tokens []string
	for _, w := range n.split(text) {
		tok := Clean(w)
		if tok == "" || tok == exclude || n.IsStopword(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Words returns every cleaned word of text, stopwords included.
func (n *Normalizer) Words(text string) []string {
	var words []string
	for _, w := range n.split(text) {
		if tok := Clean(w); tok != "" {
			words = append(words, tok)
		}
	}
	return words
}

// IsStopword reports whether a cleaned token is filtered.
func (n *Normalizer) IsStopword(token string) bool {
	_, ok := n.stopwords[token]
	return ok
}

// StopwordCount returns the size of the stopword set.
func (n *Normalizer) StopwordCount() int { return len(n.stopwords) }

func (n *Normalizer) split(text string) []string {
	for _, s := range n.splitters {
		words, err := s.Split(text)
		if err == nil {
			return words
		}
	}
	// The chain always ends in a splitter that cannot fail; this covers
	// custom chains that do not.
	words, _ := RegexpSplitter{}.Split(text)
	return words
}

// Clean lowercases a word unit, folds diacritics and keeps only a-z.
func Clean(word string) string {
	if word == "" {
		return ""
	}
	folded := fold(strings.ToLower(word))
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r
		}
		return -1
	}, folded)
}

// fold strips combining marks so that "café" becomes "cafe".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
