// Package lexical defines entries of a WordNet-like sense inventory.
package lexical

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/wsdlab/internal/domain"
)

// Category is a coarse grammatical category of a sense.
type Category string

// WordNet-style categories.
const (
	Noun         Category = "n"
	Verb         Category = "v"
	Adjective    Category = "a"
	AdjSatellite Category = "s"
	Adverb       Category = "r"
	AnyCategory  Category = ""
)

// ParseCategory accepts WordNet letters or common long names.
// An empty hint means no filtering.
func ParseCategory(hint string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "":
		return AnyCategory, nil
	case "n", "noun":
		return Noun, nil
	case "v", "verb":
		return Verb, nil
	case "a", "adj", "adjective":
		return Adjective, nil
	case "s", "satellite":
		return AdjSatellite, nil
	case "r", "adv", "adverb":
		return Adverb, nil
	default:
		return AnyCategory, fmt.Errorf("unknown part of speech %q: %w", hint, domain.ErrInvalidInput)
	}
}

// Matches reports whether an entry category satisfies the hint.
// Adjective hints also match adjective satellites.
func (c Category) Matches(entry Category) bool {
	switch c {
	case AnyCategory:
		return true
	case Adjective:
		return entry == Adjective || entry == AdjSatellite
	default:
		return c == entry
	}
}

// Entry is one sense of a headword.
type Entry struct {
	ID         string
	Category   Category
	Definition string
	Examples   []string
	Forms      []string
}

// Gloss joins the definition with its usage examples.
func (e Entry) Gloss() string {
	if len(e.Examples) == 0 {
		return e.Definition
	}
	return e.Definition + " " + strings.Join(e.Examples, " ")
}

// Headword normalizes a lookup word: lowercase, spaces joined by underscores.
func Headword(word string) string {
	return strings.Join(strings.Fields(strings.ToLower(word)), "_")
}
