package embedding

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Format identifies an on-disk vector layout.
type Format string

// Supported vector file formats.
const (
	// FormatWord2VecBinary is the original word2vec binary layout.
	FormatWord2VecBinary Format = "word2vec-bin"
	// FormatText covers word2vec text, GloVe and fastText .vec files.
	// The "count dim" header line is optional.
	FormatText Format = "text"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatWord2VecBinary, FormatText:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown vector format %q", s)
	}
}

// Vectors is an in-memory vocabulary of word vectors. Read-only after load.
type Vectors struct {
	name  string
	dim   int
	words map[string][]float32
}

// NewVectors builds a source from an in-memory table. All vectors must share
// one dimension.
func NewVectors(name string, words map[string][]float32) (*Vectors, error) {
	v := &Vectors{name: name, words: make(map[string][]float32, len(words))}
	for w, vec := range words {
		if err := v.add(w, vec); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// LoadFile reads a vector file in the given format.
func LoadFile(name, path string, format Format) (*Vectors, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vectors %s: %w", name, err)
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, 1<<20)
	var v *Vectors
	switch format {
	case FormatWord2VecBinary:
		v, err = readBinary(name, r)
	case FormatText:
		v, err = readText(name, r)
	default:
		err = fmt.Errorf("unknown vector format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("load vectors %s: %w", name, err)
	}
	return v, nil
}

// Name returns the source label.
func (v *Vectors) Name() string { return v.name }

// Len returns the vocabulary size.
func (v *Vectors) Len() int { return len(v.words) }

// Dim returns the vector dimension.
func (v *Vectors) Dim() int { return v.dim }

// Contains reports whether word has a vector. Exact match first, then lowercase.
func (v *Vectors) Contains(_ context.Context, word string) bool {
	_, ok := v.lookup(word)
	return ok
}

// Similarity returns the cosine similarity of two in-vocabulary words.
func (v *Vectors) Similarity(_ context.Context, a, b string) (float64, error) {
	va, ok := v.lookup(a)
	if !ok {
		return 0, fmt.Errorf("%s: %q: %w", v.name, a, ErrUnknownWord)
	}
	vb, ok := v.lookup(b)
	if !ok {
		return 0, fmt.Errorf("%s: %q: %w", v.name, b, ErrUnknownWord)
	}
	return Cosine(va, vb), nil
}

// lookup matches the vocabulary exactly; "River" and "river" are distinct.
func (v *Vectors) lookup(word string) ([]float32, bool) {
	vec, ok := v.words[word]
	return vec, ok
}

func (v *Vectors) add(word string, vec []float32) error {
	if word == "" {
		return errors.New("empty word")
	}
	if v.dim == 0 {
		v.dim = len(vec)
	}
	if len(vec) != v.dim {
		return fmt.Errorf("word %q: dimension %d, expected %d", word, len(vec), v.dim)
	}
	if _, dup := v.words[word]; !dup {
		v.words[word] = vec
	}
	return nil
}

func parseHeader(line string) (count, dim int, ok bool) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, false
	}
	c, err1 := strconv.Atoi(fields[0])
	d, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil || c < 0 || d <= 0 {
		return 0, 0, false
	}
	return c, d, true
}

func readText(name string, r *bufio.Reader) (*Vectors, error) {
	v := &Vectors{name: name, words: make(map[string][]float32)}
	for lineNo := 1; ; lineNo++ {
		line, err := r.ReadString('\n')
		if line = strings.TrimRight(line, "\r\n"); line != "" {
			if perr := v.textLine(lineNo, line); perr != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, perr)
			}
		}
		if errors.Is(err, io.EOF) {
			return v, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", lineNo, err)
		}
	}
}

func (v *Vectors) textLine(lineNo int, line string) error {
	if lineNo == 1 {
		if _, d, ok := parseHeader(line); ok {
			v.dim = d
			return nil
		}
	}
	if strings.TrimSpace(line) == "" {
		return nil
	}
	return v.parseTextLine(line)
}

func (v *Vectors) parseTextLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return fmt.Errorf("malformed vector line")
	}
	vec := make([]float32, len(fields)-1)
	for i, f := range fields[1:] {
		x, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return fmt.Errorf("word %q component %d: %w", fields[0], i, err)
		}
		vec[i] = float32(x)
	}
	return v.add(fields[0], vec)
}

func readBinary(name string, r *bufio.Reader) (*Vectors, error) {
	header, err := r.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	count, dim, ok := parseHeader(header)
	if !ok {
		return nil, fmt.Errorf("malformed header %q", strings.TrimSpace(header))
	}

	v := &Vectors{name: name, dim: dim, words: make(map[string][]float32, count)}
	buf := make([]byte, 4*dim)
	for i := 0; i < count; i++ {
		word, err := r.ReadString(' ')
		if err != nil {
			return nil, fmt.Errorf("read word %d: %w", i, err)
		}
		word = strings.TrimLeft(strings.TrimSuffix(word, " "), "\n")

		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("read vector %d (%q): %w", i, word, err)
		}
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[j*4:]))
		}
		if err := v.add(word, vec); err != nil {
			return nil, err
		}
	}
	return v, nil
}
