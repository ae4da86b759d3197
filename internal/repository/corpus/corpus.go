// Package corpus walks a directory of plain-text documents sentence by sentence.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kailas-cloud/wsdlab/internal/domain"
)

// Sentence is one sentence of a corpus document.
type Sentence struct {
	Document string `json:"document"`
	Index    int    `json:"index"`
	Text     string `json:"text"`
}

// Repository reads .txt documents under a root directory.
type Repository struct {
	root string
}

// New creates a corpus repository rooted at dir.
func New(dir string) *Repository {
	return &Repository{root: dir}
}

// Root returns the corpus directory.
func (r *Repository) Root() string { return r.root }

// Available reports whether the corpus directory exists.
func (r *Repository) Available() error {
	info, err := os.Stat(r.root)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("corpus dir %s: %w", r.root, domain.ErrNotFound)
	}
	return nil
}

// Walk calls fn for every sentence in lexical file order. Returning false
// from fn stops the walk without error.
func (r *Repository) Walk(ctx context.Context, fn func(Sentence) bool) error {
	if err := r.Available(); err != nil {
		return err
	}

	errStop := errors.New("stop")
	err := filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".txt") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		rel, err := filepath.Rel(r.root, path)
		if err != nil {
			rel = filepath.Base(path)
		}

		for i, text := range SplitSentences(string(data)) {
			if !fn(Sentence{Document: filepath.ToSlash(rel), Index: i, Text: text}) {
				return errStop
			}
		}
		return nil
	})
	if errors.Is(err, errStop) {
		return nil
	}
	return err
}

// SplitSentences splits text on '.', '!' and '?' followed by whitespace or
// end of text. Whitespace inside a sentence is collapsed.
func SplitSentences(text string) []string {
	var out []string
	start := 0
	emit := func(end int) {
		if s := strings.Join(strings.Fields(text[start:end]), " "); s != "" {
			out = append(out, s)
		}
		start = end
	}
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			next := i + 1
			for next < len(text) && (text[next] == '.' || text[next] == '!' || text[next] == '?') {
				next++
			}
			if next == len(text) || isSpace(text[next]) {
				emit(next)
			}
			i = next - 1
		}
	}
	emit(len(text))
	return out
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r'
}
