package textnorm

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed stopwords_en.txt
var englishStopwords []byte

// English returns the bundled English stopword list.
func English() []string {
	return parseLines(englishStopwords)
}

// LoadStopwords reads a stopword list. Files ending in .yaml or .yml use the
// `terms:` list format; anything else is one word per line, '#' comments.
func LoadStopwords(path string) ([]string, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read stopwords %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var sl struct {
			Terms []string `yaml:"terms"`
		}
		if err := yaml.Unmarshal(data, &sl); err != nil {
			return nil, fmt.Errorf("parse stopwords %s: %w", path, err)
		}
		return sl.Terms, nil
	default:
		return parseLines(data), nil
	}
}

// ResolveStopwords picks the stopword list for a configured path.
// An empty path selects the bundled English list. A path that cannot be
// loaded yields an empty list: normalization degrades, it does not fail.
func ResolveStopwords(path string, logger *zap.Logger) []string {
	if path == "" {
		return English()
	}
	words, err := LoadStopwords(path)
	if err != nil {
		logger.Warn("Stopword list unavailable, filtering disabled",
			zap.String("path", path), zap.Error(err))
		return nil
	}
	return words
}

func parseLines(data []byte) []string {
	var out []string
	scan := bufio.NewScanner(bytes.NewReader(data))
	for scan.Scan() {
		w := strings.TrimSpace(scan.Text())
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		out = append(out, w)
	}
	return out
}
