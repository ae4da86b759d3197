// Package yamllex loads a small sense inventory from a YAML file.
// Useful for fixtures and offline demos without a full lexical database.
package yamllex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/wsdlab/internal/lexical"
)

type fileEntry struct {
	ID         string   `yaml:"id"`
	Lemma      string   `yaml:"lemma"`
	Lemmas     []string `yaml:"lemmas"`
	POS        string   `yaml:"pos"`
	Definition string   `yaml:"definition"`
	Examples   []string `yaml:"examples"`
}

type file struct {
	Entries []fileEntry `yaml:"entries"`
}

// Lexicon is an in-memory lexical source. Entry order in the file is the
// sense rank.
type Lexicon struct {
	byHeadword map[string][]lexical.Entry
	entries    []lexical.Entry
}

// Load reads a YAML lexicon from path.
func Load(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	return Parse(data)
}

// Parse builds a lexicon from YAML bytes.
func Parse(data []byte) (*Lexicon, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}

	lx := &Lexicon{byHeadword: make(map[string][]lexical.Entry)}
	seen := make(map[string]struct{}, len(f.Entries))
	for i, fe := range f.Entries {
		if fe.ID == "" {
			return nil, fmt.Errorf("entry %d: missing id", i)
		}
		if _, dup := seen[fe.ID]; dup {
			return nil, fmt.Errorf("entry %d: duplicate id %q", i, fe.ID)
		}
		seen[fe.ID] = struct{}{}

		cat, err := lexical.ParseCategory(fe.POS)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", fe.ID, err)
		}

		forms := fe.Lemmas
		if fe.Lemma != "" {
			forms = append([]string{fe.Lemma}, forms...)
		}
		if len(forms) == 0 {
			return nil, fmt.Errorf("entry %s: no lemmas", fe.ID)
		}

		heads := make([]string, 0, len(forms))
		for _, f := range forms {
			h := lexical.Headword(f)
			if !slices.Contains(heads, h) {
				heads = append(heads, h)
			}
		}

		e := lexical.Entry{
			ID:         fe.ID,
			Category:   cat,
			Definition: fe.Definition,
			Examples:   fe.Examples,
			Forms:      heads,
		}
		for _, h := range heads {
			lx.byHeadword[h] = append(lx.byHeadword[h], e)
		}
		lx.entries = append(lx.entries, e)
	}
	return lx, nil
}

// Lookup returns senses of word filtered by the category hint.
func (l *Lexicon) Lookup(_ context.Context, word string, hint lexical.Category) ([]lexical.Entry, error) {
	all := l.byHeadword[lexical.Headword(word)]
	out := make([]lexical.Entry, 0, len(all))
	for _, e := range all {
		if hint.Matches(e.Category) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Len returns the number of distinct entries.
func (l *Lexicon) Len() int { return len(l.entries) }

// Entries returns every entry in file order.
func (l *Lexicon) Entries() []lexical.Entry { return l.entries }

// HealthCheck fails for an empty lexicon.
func (l *Lexicon) HealthCheck(context.Context) error {
	if len(l.entries) == 0 {
		return errors.New("lexicon is empty")
	}
	return nil
}
