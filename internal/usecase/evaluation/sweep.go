package evaluation

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/wsdlab/internal/domain"
	"github.com/kailas-cloud/wsdlab/internal/domain/correlation"
	"github.com/kailas-cloud/wsdlab/internal/domain/gold"
	"github.com/kailas-cloud/wsdlab/internal/stats"
)

// Sweep blends oracle and embedding scores of one dataset at every weight
// in correlation.Alphas.
func (s *Service) Sweep(ctx context.Context, key gold.DatasetKey, label string) (correlation.Sweep, error) {
	if !key.IsValid() {
		return correlation.Sweep{}, fmt.Errorf("%q: %w", key, domain.ErrUnknownDataset)
	}
	src, err := s.source(label)
	if err != nil {
		return correlation.Sweep{}, err
	}
	pairs, err := s.datasets.Load(ctx, key)
	if err != nil {
		return correlation.Sweep{}, fmt.Errorf("load %s: %w", key, err)
	}

	oracleScores, err := s.scoreAll(ctx, pairs, s.oracleScore)
	if err != nil {
		return correlation.Sweep{}, err
	}
	embScores, err := s.scoreAll(ctx, pairs, embeddingScore(src, s.logger))
	if err != nil {
		return correlation.Sweep{}, err
	}
	return Blend(pairs, oracleScores, embScores), nil
}

// Blend computes the sweep over the pairs where both scores exist. The
// aligned subset is fixed across weights.
func Blend(pairs []gold.Pair, oracle, emb []*float64) correlation.Sweep {
	var human, o, e []float64
	for i, p := range pairs {
		if i >= len(oracle) || i >= len(emb) || oracle[i] == nil || emb[i] == nil {
			continue
		}
		human = append(human, p.Human)
		o = append(o, *oracle[i])
		e = append(e, *emb[i])
	}
	if len(human) == 0 {
		return correlation.NewSweep(nil, 0)
	}

	alphas := correlation.Alphas()
	points := make([]correlation.Point, 0, len(alphas))
	blended := make([]float64, len(human))
	for _, alpha := range alphas {
		for i := range blended {
			blended[i] = alpha*o[i] + (1-alpha)*e[i]
		}
		points = append(points, correlation.Point{Alpha: alpha, Rho: stats.Spearman(human, blended)})
	}
	return correlation.NewSweep(points, len(human))
}

// Similarity scores one word pair with every measure. Unavailable scores
// are nil.
func (s *Service) Similarity(ctx context.Context, a, b string) (correlation.Result, error) {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return nil, fmt.Errorf("both words are required: %w", domain.ErrInvalidInput)
	}
	res := make(correlation.Result, len(s.sources)+1)
	if v, ok := s.oracleScore(ctx, a, b); ok {
		res.Set(correlation.MethodOracle, v)
	} else {
		res.SetUnavailable(correlation.MethodOracle)
	}
	for _, src := range s.sources {
		if v, ok := embeddingScore(src, s.logger)(ctx, a, b); ok {
			res.Set(src.Name(), v)
		} else {
			res.SetUnavailable(src.Name())
		}
	}
	return res, nil
}

func (s *Service) source(label string) (EmbeddingSource, error) {
	for _, src := range s.sources {
		if src.Name() == label {
			return src, nil
		}
	}
	return nil, fmt.Errorf("unknown embedding %q: %w", label, domain.ErrInvalidInput)
}
