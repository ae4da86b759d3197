// Package runs persists batch run artifacts as JSON files.
package runs

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/wsdlab/internal/domain"
	"github.com/kailas-cloud/wsdlab/internal/domain/run"
)

const ext = ".json"

// Repository stores one JSON file per run under dir.
type Repository struct {
	dir    string
	now    func() time.Time
	logger *zap.Logger

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// New creates a run repository. The directory is created on first save.
func New(dir string, logger *zap.Logger) *Repository {
	return &Repository{
		dir:     dir,
		now:     time.Now,
		logger:  logger,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// NewID returns a time-ordered run identifier.
func (r *Repository) NewID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(r.now()), r.entropy).String()
}

// Create assigns an ID and timestamp when missing and saves the run.
func (r *Repository) Create(ctx context.Context, rn *run.Run) error {
	if rn.ID == "" {
		rn.ID = r.NewID()
	}
	if rn.CreatedAt.IsZero() {
		rn.CreatedAt = r.now().UTC()
	}
	return r.Save(ctx, rn)
}

// Save writes the run atomically (temp file + rename).
func (r *Repository) Save(ctx context.Context, rn *run.Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := ulid.ParseStrict(rn.ID); err != nil {
		return fmt.Errorf("run id %q: %w", rn.ID, domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create runs dir: %w", err)
	}

	data, err := json.MarshalIndent(rn, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}

	tmp, err := os.CreateTemp(r.dir, rn.ID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp run file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write run: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close run: %w", err)
	}
	if err := os.Rename(tmpPath, r.path(rn.ID)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename run: %w", err)
	}
	return nil
}

// Get loads a run by ID.
func (r *Repository) Get(ctx context.Context, id string) (*run.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := ulid.ParseStrict(id); err != nil {
		return nil, fmt.Errorf("run %q: %w", id, domain.ErrNotFound)
	}

	data, err := os.ReadFile(r.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("run %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read run %s: %w", id, err)
	}

	var rn run.Run
	if err := json.Unmarshal(data, &rn); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", id, err)
	}
	return &rn, nil
}

// List returns up to limit run summaries, newest first. Unreadable run
// files are logged and skipped.
func (r *Repository) List(ctx context.Context, limit int) ([]run.Summary, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []run.Summary{}, nil
		}
		return nil, fmt.Errorf("list runs: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ext) {
			continue
		}
		id := strings.TrimSuffix(name, ext)
		if _, err := ulid.ParseStrict(id); err == nil {
			ids = append(ids, id)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))

	out := make([]run.Summary, 0, min(len(ids), max(limit, 0)))
	for _, id := range ids {
		if limit > 0 && len(out) == limit {
			break
		}
		rn, err := r.Get(ctx, id)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			r.logger.Warn("Skipping unreadable run", zap.String("run_id", id), zap.Error(err))
			continue
		}
		out = append(out, rn.Summarize())
	}
	return out, nil
}

// Available checks that the runs directory can be created.
func (r *Repository) Available() error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("runs dir %s: %w", r.dir, err)
	}
	return nil
}

func (r *Repository) path(id string) string {
	return filepath.Join(r.dir, id+ext)
}
