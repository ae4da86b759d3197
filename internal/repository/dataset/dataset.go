// Package dataset reads the built-in human-judgment datasets from CSV files.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/wsdlab/internal/domain"
	"github.com/kailas-cloud/wsdlab/internal/domain/gold"
)

var files = map[gold.DatasetKey]string{
	gold.MC:    "MC.csv",
	gold.RG:    "RG.csv",
	gold.WS353: "WS353.csv",
}

// Column aliases, first non-empty wins.
var (
	wordAColumns = []string{"word1", "w1", "a"}
	wordBColumns = []string{"word2", "w2", "b"}
	scoreColumns = []string{"score", "human_score", "gold"}
)

// Repository loads gold pairs from a directory of CSV files.
type Repository struct {
	dir    string
	logger *zap.Logger
}

// New creates a dataset repository rooted at dir.
func New(dir string, logger *zap.Logger) *Repository {
	return &Repository{dir: dir, logger: logger}
}

// ParseKey validates a dataset key.
func ParseKey(s string) (gold.DatasetKey, error) {
	k := gold.DatasetKey(strings.TrimSpace(s))
	if !k.IsValid() {
		return "", fmt.Errorf("%q: %w", s, domain.ErrUnknownDataset)
	}
	return k, nil
}

// Load returns the pairs of one dataset in file order.
// Rows with a missing word or an unparsable score are skipped.
func (r *Repository) Load(ctx context.Context, key gold.DatasetKey) ([]gold.Pair, error) {
	name, ok := files[key]
	if !ok {
		return nil, fmt.Errorf("%q: %w", key, domain.ErrUnknownDataset)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(r.dir, name)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("dataset %s at %s: %w", key, path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("open dataset %s: %w", key, err)
	}
	defer f.Close()

	pairs, skipped, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", key, err)
	}
	if skipped > 0 {
		r.logger.Debug("Skipped invalid dataset rows", zap.String("dataset", string(key)), zap.Int("skipped", skipped))
	}
	return pairs, nil
}

// Available reports whether the dataset directory exists.
func (r *Repository) Available() error {
	info, err := os.Stat(r.dir)
	if err != nil {
		return fmt.Errorf("datasets dir %s: %w", r.dir, domain.ErrNotFound)
	}
	if !info.IsDir() {
		return fmt.Errorf("datasets dir %s is not a directory: %w", r.dir, domain.ErrNotFound)
	}
	return nil
}

func parse(rd io.Reader) ([]gold.Pair, int, error) {
	reader := csv.NewReader(rd)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	var pairs []gold.Pair
	skipped := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, err
		}

		a := pick(row, index, wordAColumns)
		b := pick(row, index, wordBColumns)
		s := pick(row, index, scoreColumns)
		if a == "" || b == "" || s == "" {
			skipped++
			continue
		}
		score, err := strconv.ParseFloat(s, 64)
		if err != nil {
			skipped++
			continue
		}
		pairs = append(pairs, gold.Pair{WordA: a, WordB: b, Human: score})
	}
	return pairs, skipped, nil
}

func pick(row []string, index map[string]int, aliases []string) string {
	for _, name := range aliases {
		i, ok := index[name]
		if !ok || i >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[i]); v != "" {
			return v
		}
	}
	return ""
}
