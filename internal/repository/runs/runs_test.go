package runs

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/wsdlab/internal/domain"
	"github.com/kailas-cloud/wsdlab/internal/domain/run"
)

func TestCreateAndGet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "runs")
	repo := New(dir, zap.NewNop())
	ctx := context.Background()

	rn := &run.Run{
		Kind:   run.KindLesk,
		Params: json.RawMessage(`{"target":"bank"}`),
		Items:  json.RawMessage(`[{"best":"bank.n.01"}]`),
		Count:  1,
	}
	if err := repo.Create(ctx, rn); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rn.ID == "" || rn.CreatedAt.IsZero() {
		t.Fatalf("id and created_at must be set: %+v", rn)
	}

	got, err := repo.Get(ctx, rn.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Kind != run.KindLesk || got.Count != 1 || string(got.Params) != `{"target":"bank"}` {
		t.Errorf("unexpected run: %+v", got)
	}

	leftovers, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo := New(t.TempDir(), zap.NewNop())
	ctx := context.Background()

	if _, err := repo.Get(ctx, repo.NewID()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.Get(ctx, "../etc/passwd"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for invalid id, got %v", err)
	}
}

func TestList_NewestFirst(t *testing.T) {
	dir := t.TempDir()
	repo := New(dir, zap.NewNop())
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		ts := base.Add(time.Duration(i) * time.Minute)
		repo.now = func() time.Time { return ts }
		rn := &run.Run{Kind: run.KindCorrelation, Count: i}
		if err := repo.Create(ctx, rn); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, rn.ID)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	list, err := repo.List(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(list))
	}
	if list[0].ID != ids[2] || list[1].ID != ids[1] {
		t.Errorf("expected newest first, got %v", list)
	}
}

func TestList_SkipsCorruptRun(t *testing.T) {
	dir := t.TempDir()
	core, logs := observer.New(zapcore.WarnLevel)
	repo := New(dir, zap.New(core))
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return base }
	good := &run.Run{Kind: run.KindLesk, Count: 1}
	if err := repo.Create(ctx, good); err != nil {
		t.Fatal(err)
	}
	repo.now = func() time.Time { return base.Add(time.Hour) }
	bad := repo.NewID()
	if err := os.WriteFile(filepath.Join(dir, bad+".json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	list, err := repo.List(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != good.ID {
		t.Errorf("expected only the readable run, got %v", list)
	}
	if logs.FilterMessage("Skipping unreadable run").Len() != 1 {
		t.Error("expected the corrupt run to be logged")
	}
}

func TestList_MissingDir(t *testing.T) {
	repo := New(filepath.Join(t.TempDir(), "absent"), zap.NewNop())
	list, err := repo.List(context.Background(), 10)
	if err != nil || len(list) != 0 {
		t.Errorf("expected empty list, got %v, %v", list, err)
	}
}

func TestSave_RejectsInvalidID(t *testing.T) {
	repo := New(t.TempDir(), zap.NewNop())
	err := repo.Save(context.Background(), &run.Run{ID: "not-a-ulid"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
