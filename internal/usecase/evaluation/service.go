// Package evaluation compares similarity measures with human judgments.
package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/wsdlab/internal/domain"
	"github.com/kailas-cloud/wsdlab/internal/domain/correlation"
	"github.com/kailas-cloud/wsdlab/internal/domain/gold"
	"github.com/kailas-cloud/wsdlab/internal/domain/run"
	logpkg "github.com/kailas-cloud/wsdlab/internal/logger"
	"github.com/kailas-cloud/wsdlab/internal/stats"
)

// DefaultConcurrency bounds parallel per-pair scoring.
const DefaultConcurrency = 4

// Service evaluates the oracle and embedding sources against gold datasets.
type Service struct {
	datasets    DatasetLoader
	oracle      Oracle
	sources     []EmbeddingSource
	runs        RunStore
	concurrency int
	logger      *zap.Logger
}

// New creates an evaluation service. oracle and runs may be nil.
func New(
	datasets DatasetLoader, oracle Oracle, sources []EmbeddingSource,
	runs RunStore, concurrency int, logger *zap.Logger,
) *Service {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Service{
		datasets:    datasets,
		oracle:      oracle,
		sources:     sources,
		runs:        runs,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Measures returns the method labels reported per dataset.
func (s *Service) Measures() []string {
	out := []string{correlation.MethodOracle}
	for _, src := range s.sources {
		out = append(out, src.Name())
	}
	return out
}

// Report is the outcome of a correlation evaluation.
type Report struct {
	Results map[gold.DatasetKey]correlation.Result
	RunID   string
}

type correlationParams struct {
	Datasets []gold.DatasetKey `json:"datasets"`
	Measures []string          `json:"measures"`
}

// Correlate computes the rank correlation of every measure with the human
// scores of each dataset. An empty key list means all built-in datasets.
// All datasets are loaded before any scoring starts.
func (s *Service) Correlate(ctx context.Context, keys []gold.DatasetKey, persist bool) (Report, error) {
	if len(keys) == 0 {
		keys = gold.AllDatasets()
	}
	if persist && s.runs == nil {
		return Report{}, fmt.Errorf("run store: %w", domain.ErrNotConfigured)
	}

	loaded := make(map[gold.DatasetKey][]gold.Pair, len(keys))
	for _, k := range keys {
		if !k.IsValid() {
			return Report{}, fmt.Errorf("%q: %w", k, domain.ErrUnknownDataset)
		}
		if _, ok := loaded[k]; ok {
			continue
		}
		pairs, err := s.datasets.Load(ctx, k)
		if err != nil {
			return Report{}, fmt.Errorf("load %s: %w", k, err)
		}
		loaded[k] = pairs
	}

	rep := Report{Results: make(map[gold.DatasetKey]correlation.Result, len(loaded))}
	for k, pairs := range loaded {
		res, err := s.evaluate(ctx, pairs)
		if err != nil {
			return Report{}, fmt.Errorf("evaluate %s: %w", k, err)
		}
		rep.Results[k] = res
		logpkg.FromContext(ctx, s.logger).Debug("Dataset evaluated", zap.String("dataset", string(k)), zap.Int("pairs", len(pairs)))
	}

	if persist {
		id, err := s.persist(ctx, keys, rep.Results)
		if err != nil {
			return Report{}, err
		}
		rep.RunID = id
	}
	return rep, nil
}

func (s *Service) evaluate(ctx context.Context, pairs []gold.Pair) (correlation.Result, error) {
	res := make(correlation.Result, len(s.sources)+1)

	oracleScores, err := s.scoreAll(ctx, pairs, s.oracleScore)
	if err != nil {
		return nil, err
	}
	correlate(res, correlation.MethodOracle, pairs, oracleScores)

	for _, src := range s.sources {
		scores, err := s.scoreAll(ctx, pairs, embeddingScore(src, s.logger))
		if err != nil {
			return nil, err
		}
		correlate(res, src.Name(), pairs, scores)
	}
	return res, nil
}

// correlate records Spearman over the pairs the measure scored.
func correlate(res correlation.Result, label string, pairs []gold.Pair, scores []*float64) {
	human := make([]float64, 0, len(pairs))
	measured := make([]float64, 0, len(pairs))
	for i, p := range pairs {
		if scores[i] == nil {
			continue
		}
		human = append(human, p.Human)
		measured = append(measured, *scores[i])
	}
	if len(measured) == 0 {
		res.SetUnavailable(label)
		return
	}
	res.Set(label, stats.Spearman(human, measured))
}

type scoreFunc func(ctx context.Context, a, b string) (float64, bool)

// scoreAll scores pairs in parallel, keeping dataset order. Only context
// cancellation fails the whole call.
func (s *Service) scoreAll(ctx context.Context, pairs []gold.Pair, fn scoreFunc) ([]*float64, error) {
	out := make([]*float64, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, p := range pairs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if v, ok := fn(gctx, p.WordA, p.WordB); ok && !math.IsNaN(v) {
				out[i] = &v
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) oracleScore(ctx context.Context, a, b string) (float64, bool) {
	if s.oracle == nil {
		return 0, false
	}
	return s.oracle.Similarity(ctx, a, b)
}

func embeddingScore(src EmbeddingSource, logger *zap.Logger) scoreFunc {
	return func(ctx context.Context, a, b string) (float64, bool) {
		if !src.Contains(ctx, a) || !src.Contains(ctx, b) {
			return 0, false
		}
		v, err := src.Similarity(ctx, a, b)
		if err != nil {
			logger.Debug("Embedding similarity failed",
				zap.String("source", src.Name()),
				zap.String("word_a", a),
				zap.String("word_b", b),
				zap.Error(err),
			)
			return 0, false
		}
		return v, true
	}
}

func (s *Service) persist(ctx context.Context, keys []gold.DatasetKey, results map[gold.DatasetKey]correlation.Result) (string, error) {
	params, err := json.Marshal(correlationParams{Datasets: keys, Measures: s.Measures()})
	if err != nil {
		return "", fmt.Errorf("marshal params: %w", err)
	}
	items, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("marshal results: %w", err)
	}
	rn := &run.Run{Kind: run.KindCorrelation, Params: params, Items: items, Count: len(results)}
	if err := s.runs.Create(ctx, rn); err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}
	return rn.ID, nil
}
