// Package simcache caches similarity-oracle scores in the KV store.
package simcache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/wsdlab/internal/db"
	"github.com/kailas-cloud/wsdlab/internal/domain"
	"github.com/kailas-cloud/wsdlab/internal/transport/oracle"
)

var cacheKeyPrefix = domain.KeyPrefix + "sim:"

type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// scorer is the decorated oracle.
type scorer interface {
	Similarity(ctx context.Context, a, b string) (float64, bool)
	HealthCheck(ctx context.Context) oracle.Status
}

// CachedOracle remembers successful oracle scores. Unavailable scores are
// never cached so that a recovered oracle is picked up immediately.
type CachedOracle struct {
	inner      scorer
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates the caching decorator.
func New(inner scorer, s store, ttl time.Duration, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *CachedOracle {
	return &CachedOracle{inner: inner, store: s, ttl: ttl, cacheTotal: cacheTotal, logger: logger}
}

// Similarity returns a cached score or asks the inner oracle.
func (c *CachedOracle) Similarity(ctx context.Context, a, b string) (float64, bool) {
	key := cacheKeyPrefix + a + "\x00" + b

	data, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		if v, perr := strconv.ParseFloat(string(data), 64); perr == nil {
			c.inc("hit")
			return v, true
		}
		c.logger.Warn("Failed to parse cached score", zap.String("key", key))
	case !errors.Is(err, db.ErrKeyNotFound):
		c.logger.Warn("Failed to get cached score", zap.String("key", key), zap.Error(err))
	}
	c.inc("miss")

	v, ok := c.inner.Similarity(ctx, a, b)
	if !ok {
		return 0, false
	}
	if err := c.store.SetWithTTL(ctx, key, []byte(strconv.FormatFloat(v, 'g', -1, 64)), c.ttl); err != nil {
		c.logger.Warn("Failed to cache score", zap.String("key", key), zap.Error(err))
	}
	return v, true
}

// HealthCheck delegates to the inner oracle.
func (c *CachedOracle) HealthCheck(ctx context.Context) oracle.Status {
	return c.inner.HealthCheck(ctx)
}

func (c *CachedOracle) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
