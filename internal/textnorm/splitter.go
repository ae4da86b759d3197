package textnorm

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

var errInvalidUTF8 = errors.New("text is not valid UTF-8")

// Splitter breaks raw text into word-like units.
// A splitter that cannot handle the input returns an error and the
// normalizer moves on to the next one in its chain.
type Splitter interface {
	Name() string
	Split(text string) ([]string, error)
}

// WordBoundarySplitter segments text on Unicode (UAX #29) word boundaries.
type WordBoundarySplitter struct{}

// Name implements Splitter.
func (WordBoundarySplitter) Name() string { return "uax29" }

// Split implements Splitter.
func (WordBoundarySplitter) Split(text string) ([]string, error) {
	if !utf8.ValidString(text) {
		return nil, errInvalidUTF8
	}
	var words []string
	state := -1
	rest := text
	for len(rest) > 0 {
		var word string
		word, rest, state = uniseg.FirstWordInString(rest, state)
		if strings.TrimSpace(word) == "" {
			continue
		}
		words = append(words, word)
	}
	return words, nil
}

var lowerRun = regexp.MustCompile(`[a-z]+`)

// RegexpSplitter extracts maximal runs of lowercase ASCII letters after
// lowercasing and folding diacritics. It accepts any input.
type RegexpSplitter struct{}

// Name implements Splitter.
func (RegexpSplitter) Name() string { return "regexp" }

// Split implements Splitter.
func (RegexpSplitter) Split(text string) ([]string, error) {
	text = strings.ToValidUTF8(text, " ")
	return lowerRun.FindAllString(fold(strings.ToLower(text)), -1), nil
}

// DefaultSplitters returns the standard chain: word boundaries first, the
// regular expression fallback last.
func DefaultSplitters() []Splitter {
	return []Splitter{WordBoundarySplitter{}, RegexpSplitter{}}
}
