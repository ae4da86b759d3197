package sqlite

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/kailas-cloud/wsdlab/internal/lexical"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "lexicon.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	entries := []lexical.Entry{
		{
			ID: "bank.n.01", Category: lexical.Noun,
			Definition: "sloping land (especially the slope beside a body of water)",
			Examples:   []string{"they pulled the canoe up on the bank", "he sat on the bank of the river"},
			Forms:      []string{"bank"},
		},
		{
			ID: "depository_financial_institution.n.01", Category: lexical.Noun,
			Definition: "a financial institution that accepts deposits and channels the money into lending activities",
			Examples:   []string{"he cashed a check at the bank"},
			Forms:      []string{"depository financial institution", "bank", "banking company"},
		},
		{
			ID: "bank.v.01", Category: lexical.Verb,
			Definition: "tip laterally",
			Examples:   []string{"the pilot had to bank the aircraft"},
			Forms:      []string{"bank"},
		},
	}
	for i, e := range entries {
		if err := s.Add(ctx, e, i); err != nil {
			t.Fatalf("add %s: %v", e.ID, err)
		}
	}
}

func TestLookup_OrderAndFields(t *testing.T) {
	s := openTestStore(t)
	seed(t, s)

	got, err := s.Lookup(context.Background(), "Bank", lexical.AnyCategory)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 senses, got %d", len(got))
	}

	ids := []string{got[0].ID, got[1].ID, got[2].ID}
	want := []string{"bank.n.01", "depository_financial_institution.n.01", "bank.v.01"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("order = %v, want %v", ids, want)
	}

	if len(got[0].Examples) != 2 || got[0].Examples[0] != "they pulled the canoe up on the bank" {
		t.Errorf("unexpected examples: %v", got[0].Examples)
	}
	if len(got[1].Forms) != 3 {
		t.Errorf("expected 3 forms, got %v", got[1].Forms)
	}
}

func TestLookup_CategoryHint(t *testing.T) {
	s := openTestStore(t)
	seed(t, s)

	got, err := s.Lookup(context.Background(), "bank", lexical.Verb)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(got) != 1 || got[0].ID != "bank.v.01" {
		t.Errorf("expected only bank.v.01, got %+v", got)
	}
}

func TestLookup_MultiwordHeadword(t *testing.T) {
	s := openTestStore(t)
	seed(t, s)

	got, err := s.Lookup(context.Background(), "banking company", lexical.AnyCategory)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(got) != 1 || got[0].ID != "depository_financial_institution.n.01" {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestLookup_Unknown(t *testing.T) {
	s := openTestStore(t)
	seed(t, s)

	got, err := s.Lookup(context.Background(), "zyzzyva", lexical.AnyCategory)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no senses, got %d", len(got))
	}
}

func TestAdd_ReplacesExamples(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	e := lexical.Entry{ID: "x.n.01", Category: lexical.Noun, Definition: "d", Examples: []string{"one", "two"}, Forms: []string{"x"}}
	if err := s.Add(ctx, e, 0); err != nil {
		t.Fatal(err)
	}
	e.Examples = []string{"three"}
	if err := s.Add(ctx, e, 0); err != nil {
		t.Fatal(err)
	}

	got, err := s.Lookup(ctx, "x", lexical.AnyCategory)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || !reflect.DeepEqual(got[0].Examples, []string{"three"}) {
		t.Errorf("unexpected entries: %+v", got)
	}
}
