package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/wsdlab/internal/domain"
	"github.com/kailas-cloud/wsdlab/internal/domain/gold"
)

func writeDataset(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_Aliases(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, "MC.csv", "w1,w2,human_score\ncar,automobile,3.92\ngem,jewel,3.84\n")
	writeDataset(t, dir, "RG.csv", "a,b,gold\ncord,smile,0.02\n")
	writeDataset(t, dir, "WS353.csv", "Word1,Word2,Score\nlove,sex,6.77\n")

	repo := New(dir, zap.NewNop())
	ctx := context.Background()

	mc, err := repo.Load(ctx, gold.MC)
	if err != nil {
		t.Fatalf("load MC: %v", err)
	}
	if len(mc) != 2 || mc[0] != (gold.Pair{WordA: "car", WordB: "automobile", Human: 3.92}) {
		t.Errorf("unexpected MC pairs: %+v", mc)
	}

	rg, err := repo.Load(ctx, gold.RG)
	if err != nil || len(rg) != 1 || rg[0].WordB != "smile" {
		t.Errorf("unexpected RG: %+v, %v", rg, err)
	}

	ws, err := repo.Load(ctx, gold.WS353)
	if err != nil || len(ws) != 1 || ws[0].Human != 6.77 {
		t.Errorf("unexpected WS353: %+v, %v", ws, err)
	}
}

func TestLoad_SkipsInvalidRows(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, "MC.csv", "word1,word2,score\n"+
		"car,automobile,3.92\n"+
		",missing,1.0\n"+
		"bad,score,n/a\n"+
		"short,row\n"+
		"coast,shore,3.70\n")

	pairs, err := New(dir, zap.NewNop()).Load(context.Background(), gold.MC)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("expected 2 valid pairs, got %d: %+v", len(pairs), pairs)
	}
	if pairs[1].WordA != "coast" {
		t.Errorf("order not preserved: %+v", pairs)
	}
}

func TestLoad_Errors(t *testing.T) {
	repo := New(filepath.Join(t.TempDir(), "nope"), zap.NewNop())

	if _, err := repo.Load(context.Background(), gold.DatasetKey("XX")); !errors.Is(err, domain.ErrUnknownDataset) {
		t.Errorf("expected ErrUnknownDataset, got %v", err)
	}
	if _, err := repo.Load(context.Background(), gold.MC); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Available(); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing dir, got %v", err)
	}
}

func TestParseKey(t *testing.T) {
	if k, err := ParseKey(" WS353 "); err != nil || k != gold.WS353 {
		t.Errorf("got %q, %v", k, err)
	}
	_, err := ParseKey("SimLex")
	if !errors.Is(err, domain.ErrUnknownDataset) || !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected unknown dataset wrapping invalid input, got %v", err)
	}
}
