package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/kailas-cloud/wsdlab/internal/domain"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"basic", "The bank raised rates. Rivers flow!  Why?", []string{"The bank raised rates.", "Rivers flow!", "Why?"}},
		{"no terminator", "just a fragment", []string{"just a fragment"}},
		{"decimal kept", "Rates rose 2.5 percent. Then fell.", []string{"Rates rose 2.5 percent.", "Then fell."}},
		{"ellipsis", "Wait... what?", []string{"Wait...", "what?"}},
		{"newlines collapsed", "one\nline\tsentence.\n\nnext.", []string{"one line sentence.", "next."}},
		{"empty", "  \n ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitSentences(tt.text); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitSentences(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func setupCorpus(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"b.txt":        "Second file. Has two sentences.",
		"a.txt":        "First file.",
		"notes.md":     "Ignored. Entirely.",
		"sub/c.txt":    "Nested doc.",
		"sub/skip.csv": "x,y",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestWalk_Order(t *testing.T) {
	repo := New(setupCorpus(t))

	var got []Sentence
	err := repo.Walk(context.Background(), func(s Sentence) bool {
		got = append(got, s)
		return true
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}

	want := []Sentence{
		{Document: "a.txt", Index: 0, Text: "First file."},
		{Document: "b.txt", Index: 0, Text: "Second file."},
		{Document: "b.txt", Index: 1, Text: "Has two sentences."},
		{Document: "sub/c.txt", Index: 0, Text: "Nested doc."},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v\nwant %+v", got, want)
	}
}

func TestWalk_Stop(t *testing.T) {
	repo := New(setupCorpus(t))

	n := 0
	err := repo.Walk(context.Background(), func(Sentence) bool {
		n++
		return n < 2
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if n != 2 {
		t.Errorf("expected walk to stop after 2 sentences, got %d", n)
	}
}

func TestWalk_MissingDir(t *testing.T) {
	repo := New(filepath.Join(t.TempDir(), "missing"))
	err := repo.Walk(context.Background(), func(Sentence) bool { return true })
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestWalk_Canceled(t *testing.T) {
	repo := New(setupCorpus(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Walk(ctx, func(Sentence) bool { return true })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
