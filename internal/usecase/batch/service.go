// Package batch runs Lesk disambiguation over a text corpus and stores the
// outcome as a run artifact.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/wsdlab/internal/domain"
	dombatch "github.com/kailas-cloud/wsdlab/internal/domain/batch"
	"github.com/kailas-cloud/wsdlab/internal/domain/run"
	"github.com/kailas-cloud/wsdlab/internal/domain/sense"
	"github.com/kailas-cloud/wsdlab/internal/lexical"
	logpkg "github.com/kailas-cloud/wsdlab/internal/logger"
	"github.com/kailas-cloud/wsdlab/internal/repository/corpus"
	"github.com/kailas-cloud/wsdlab/internal/textnorm"
	"github.com/kailas-cloud/wsdlab/internal/usecase/lesk"
)

// DefaultMaxLimit is the maximum number of sentences per run.
const DefaultMaxLimit = 1000

// Request describes one corpus run.
type Request struct {
	Target string     `json:"target"`
	Mode   sense.Mode `json:"mode"`
	POS    string     `json:"pos,omitempty"`
	Limit  int        `json:"limit"`
}

// Item is the stored outcome for one sentence.
type Item struct {
	ID         string              `json:"id"`
	Document   string              `json:"document"`
	Index      int                 `json:"index"`
	Sentence   string              `json:"sentence"`
	Status     dombatch.ItemStatus `json:"status"`
	Error      string              `json:"error,omitempty"`
	Best       *Sense              `json:"best,omitempty"`
	Candidates int                 `json:"candidates"`
}

// Sense is the stored view of the selected candidate.
type Sense struct {
	ID       string   `json:"id"`
	Gloss    string   `json:"gloss"`
	Overlap  int      `json:"overlap"`
	Overlaps []string `json:"overlaps"`
	URL      string   `json:"url,omitempty"`
}

// Service handles corpus runs with per-item error reporting.
type Service struct {
	corpus   Corpus
	lesk     Disambiguator
	words    WordSplitter
	runs     RunStore
	maxLimit int
	logger   *zap.Logger
}

// New creates a batch service.
func New(c Corpus, l Disambiguator, words WordSplitter, runs RunStore, logger *zap.Logger) *Service {
	return &Service{
		corpus: c, lesk: l, words: words, runs: runs,
		maxLimit: DefaultMaxLimit,
		logger:   logger,
	}
}

// WithMaxLimit configures the maximum number of sentences per run.
func (s *Service) WithMaxLimit(limit int) *Service {
	if limit > 0 {
		s.maxLimit = limit
	}
	return s
}

// MaxLimit returns the configured sentence cap.
func (s *Service) MaxLimit() int { return s.maxLimit }

func (s *Service) validate(req Request) error {
	if strings.TrimSpace(req.Target) == "" || textnorm.Clean(req.Target) == "" {
		return fmt.Errorf("target is required: %w", domain.ErrInvalidInput)
	}
	if !req.Mode.IsValid() {
		return fmt.Errorf("unknown mode %q: %w", req.Mode, domain.ErrInvalidInput)
	}
	if req.Limit <= 0 || req.Limit > s.maxLimit {
		return fmt.Errorf("limit must be between 1 and %d: %w", s.maxLimit, domain.ErrInvalidInput)
	}
	if _, err := lexical.ParseCategory(req.POS); err != nil {
		return err
	}
	return nil
}

// Run scores up to req.Limit corpus sentences containing the target and
// persists the run. Per-sentence failures are recorded, not returned.
func (s *Service) Run(ctx context.Context, req Request) (*run.Run, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	target := textnorm.Clean(req.Target)

	log := logpkg.FromContext(ctx, s.logger)
	var items []Item
	failed := 0
	err := s.corpus.Walk(ctx, func(sent corpus.Sentence) bool {
		if !slices.Contains(s.words.Words(sent.Text), target) {
			return true
		}

		res, err := s.lesk.Disambiguate(ctx, req.Mode, lesk.Request{
			Sentence: sent.Text,
			Target:   req.Target,
			POS:      req.POS,
		})
		var outcome dombatch.Result
		id := dombatch.ItemID(sent.Document, sent.Index)
		if err != nil {
			failed++
			log.Warn("Sentence scoring failed", zap.String("item", id), zap.Error(err))
			outcome = dombatch.NewError(id, err)
		} else {
			outcome = dombatch.NewOK(id)
		}
		items = append(items, itemFrom(sent, outcome, res))
		return len(items) < req.Limit
	})
	if err != nil {
		return nil, fmt.Errorf("walk corpus: %w", err)
	}

	params, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}
	if items == nil {
		items = []Item{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal items: %w", err)
	}

	rn := &run.Run{Kind: run.KindLesk, Params: params, Items: payload, Count: len(items)}
	if err := s.runs.Create(ctx, rn); err != nil {
		return nil, fmt.Errorf("save run: %w", err)
	}

	log.Info("Batch run finished",
		zap.String("run_id", rn.ID),
		zap.String("target", req.Target),
		zap.String("mode", string(req.Mode)),
		zap.Int("items", len(items)),
		zap.Int("failed", failed),
	)
	return rn, nil
}

func itemFrom(sent corpus.Sentence, outcome dombatch.Result, res sense.Result) Item {
	item := Item{
		ID:       outcome.ID(),
		Document: sent.Document,
		Index:    sent.Index,
		Sentence: sent.Text,
		Status:   outcome.Status(),
	}
	if outcome.Err() != nil {
		item.Error = outcome.Err().Error()
		return item
	}
	item.Candidates = len(res.Candidates())
	if best, ok := res.Best(); ok {
		overlaps := best.Overlaps()
		if overlaps == nil {
			overlaps = []string{}
		}
		item.Best = &Sense{
			ID:       best.ID(),
			Gloss:    best.Gloss(),
			Overlap:  best.OverlapCount(),
			Overlaps: overlaps,
			URL:      best.URL(),
		}
	}
	return item
}
