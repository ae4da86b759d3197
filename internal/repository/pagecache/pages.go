// Package pagecache caches encyclopedic article lookups in the KV store.
package pagecache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/wsdlab/internal/db"
	"github.com/kailas-cloud/wsdlab/internal/domain"
	"github.com/kailas-cloud/wsdlab/internal/transport/wikipedia"
)

var cacheKeyPrefix = domain.KeyPrefix + "page:"

type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type resolver interface {
	Resolve(ctx context.Context, title string) (wikipedia.Page, error)
	Search(ctx context.Context, term string, limit int) ([]string, error)
}

type entry struct {
	Page    *wikipedia.Page `json:"page,omitempty"`
	Options []string        `json:"options,omitempty"`
	Title   string          `json:"title,omitempty"`
}

// CachedResolver caches resolved pages and disambiguation option lists.
// Search results and failures pass through uncached.
type CachedResolver struct {
	inner      resolver
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates the caching decorator.
func New(inner resolver, s store, ttl time.Duration, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *CachedResolver {
	return &CachedResolver{inner: inner, store: s, ttl: ttl, cacheTotal: cacheTotal, logger: logger}
}

// Resolve returns a cached page (or disambiguation error) or asks the inner resolver.
func (c *CachedResolver) Resolve(ctx context.Context, title string) (wikipedia.Page, error) {
	key := cacheKeyPrefix + strings.ToLower(strings.TrimSpace(title))

	if e, ok := c.get(ctx, key); ok {
		c.inc("hit")
		if e.Page != nil {
			return *e.Page, nil
		}
		return wikipedia.Page{}, &wikipedia.DisambiguationError{Title: e.Title, Options: e.Options}
	}
	c.inc("miss")

	page, err := c.inner.Resolve(ctx, title)
	switch de, isDisamb := wikipedia.IsDisambiguation(err); {
	case err == nil:
		c.put(ctx, key, entry{Page: &page})
	case isDisamb:
		c.put(ctx, key, entry{Title: de.Title, Options: de.Options})
	}
	return page, err
}

// Search delegates to the inner resolver.
func (c *CachedResolver) Search(ctx context.Context, term string, limit int) ([]string, error) {
	return c.inner.Search(ctx, term, limit)
}

func (c *CachedResolver) get(ctx context.Context, key string) (entry, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached page", zap.String("key", key), zap.Error(err))
		}
		return entry{}, false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil || (e.Page == nil && e.Title == "") {
		c.logger.Warn("Failed to parse cached page", zap.String("key", key))
		return entry{}, false
	}
	return e, true
}

func (c *CachedResolver) put(ctx context.Context, key string, e entry) {
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache page", zap.String("key", key), zap.Error(err))
	}
}

func (c *CachedResolver) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
