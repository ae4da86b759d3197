// Package oracle queries an external word-similarity oracle through an
// ordered chain of strategies. The first strategy that yields a score wins.
package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Label is the correlation method name reported for oracle scores.
const Label = "wikisim"

var errNoScore = errors.New("no numeric score in response")

// Strategy is one way to obtain a similarity score.
type Strategy interface {
	Name() string
	Similarity(ctx context.Context, a, b string) (float64, error)
	Check(ctx context.Context) error
}

// Status is the oracle health view.
type Status struct {
	Reachable bool              `json:"reachable"`
	Endpoints map[string]string `json:"endpoints"`
}

// Chain tries strategies in order.
type Chain struct {
	strategies []Strategy
	logger     *zap.Logger
}

// NewChain builds a chain. An empty chain is valid and never yields a score.
func NewChain(logger *zap.Logger, strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies, logger: logger}
}

// Len returns the number of configured strategies.
func (c *Chain) Len() int { return len(c.strategies) }

// Similarity returns the first score any strategy produces. Failures are
// logged and absorbed; ok is false when every strategy failed.
func (c *Chain) Similarity(ctx context.Context, a, b string) (float64, bool) {
	for _, s := range c.strategies {
		score, err := s.Similarity(ctx, a, b)
		if err == nil {
			return score, true
		}
		c.logger.Debug("Oracle strategy failed",
			zap.String("strategy", s.Name()),
			zap.String("word_a", a),
			zap.String("word_b", b),
			zap.Error(err),
		)
		if ctx.Err() != nil {
			break
		}
	}
	return 0, false
}

// HealthCheck probes every strategy. Reachable is true when at least one works.
func (c *Chain) HealthCheck(ctx context.Context) Status {
	st := Status{Endpoints: make(map[string]string, len(c.strategies))}
	for _, s := range c.strategies {
		if err := s.Check(ctx); err != nil {
			st.Endpoints[s.Name()] = err.Error()
			continue
		}
		st.Endpoints[s.Name()] = "ok"
		st.Reachable = true
	}
	return st
}

// parseScore reads a similarity score from a response body: a JSON object
// with "similarity" or "score", a bare JSON number, or the first
// whitespace-separated float of plain text.
func parseScore(body []byte) (float64, error) {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return 0, errNoScore
	}

	if strings.HasPrefix(text, "{") {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(text), &obj); err != nil {
			return 0, fmt.Errorf("decode response: %w", err)
		}
		for _, key := range []string{"similarity", "score"} {
			raw, ok := obj[key]
			if !ok {
				continue
			}
			var v *float64
			if err := json.Unmarshal(raw, &v); err != nil {
				return 0, fmt.Errorf("decode %s: %w", key, err)
			}
			if v == nil {
				return 0, errNoScore
			}
			return finite(*v)
		}
		return 0, errNoScore
	}

	v, err := strconv.ParseFloat(strings.Fields(text)[0], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errNoScore, strings.Fields(text)[0])
	}
	return finite(v)
}

func finite(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %v", errNoScore, v)
	}
	return v, nil
}
