// Package cache adds a Redis-backed result cache in front of the retriever.
// Concurrent identical queries are collapsed with singleflight so a cold key
// triggers at most one index search.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/language-coach/sentence-search/internal/gdex"
	"github.com/language-coach/sentence-search/internal/retriever"
	"github.com/language-coach/sentence-search/pkg/metrics"
	"github.com/language-coach/sentence-search/pkg/redis"
)

const keyPrefix = "examples:"

// Searcher is the query interface the cache wraps.
type Searcher interface {
	Search(ctx context.Context, phrase, language string, proficiency gdex.Proficiency, limit int) ([]retriever.Example, error)
}

// Stats reports cache effectiveness since process start.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// QueryCache caches search results in Redis. A nil Redis client disables
// caching and passes every query straight through.
type QueryCache struct {
	client *redis.Client
	next   Searcher
	ttl    time.Duration

	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// New wraps a Searcher with a Redis result cache.
func New(client *redis.Client, next Searcher, ttl time.Duration, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		client:  client,
		next:    next,
		ttl:     ttl,
		metrics: m,
		logger:  slog.Default().With("component", "query_cache"),
	}
}

// Search serves the query from Redis when possible, otherwise delegates and
// stores the result.
func (c *QueryCache) Search(ctx context.Context, phrase, language string, proficiency gdex.Proficiency, limit int) ([]retriever.Example, error) {
	if c.client == nil {
		return c.next.Search(ctx, phrase, language, proficiency, limit)
	}

	start := time.Now()
	key := cacheKey(phrase, language, proficiency, limit)

	if cached, err := c.client.Get(ctx, key); err == nil {
		var examples []retriever.Example
		if err := json.Unmarshal([]byte(cached), &examples); err == nil {
			c.hits.Add(1)
			if c.metrics != nil {
				c.metrics.CacheHitsTotal.Inc()
				c.metrics.SearchLatency.WithLabelValues("hit").Observe(time.Since(start).Seconds())
			}
			return examples, nil
		}
		// Undecodable entry, drop it and fall through to a fresh search.
		if err := c.client.Del(ctx, key); err != nil {
			c.logger.Warn("could not evict bad cache entry", "key", key, "error", err)
		}
	} else if !redis.IsNilError(err) {
		c.logger.Warn("cache read failed", "key", key, "error", err)
	}

	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		examples, err := c.next.Search(ctx, phrase, language, proficiency, limit)
		if err != nil {
			return nil, err
		}
		if payload, merr := json.Marshal(examples); merr == nil {
			if serr := c.client.Set(ctx, key, payload, c.ttl); serr != nil {
				c.logger.Warn("cache write failed", "key", key, "error", serr)
			}
		}
		return examples, nil
	})
	if err != nil {
		return nil, err
	}
	if c.metrics != nil {
		c.metrics.SearchLatency.WithLabelValues("miss").Observe(time.Since(start).Seconds())
	}
	return v.([]retriever.Example), nil
}

// Invalidate drops every cached search result, returning how many keys were
// removed. Called after index rebuilds and ingests.
func (c *QueryCache) Invalidate(ctx context.Context) (int64, error) {
	if c.client == nil {
		return 0, nil
	}
	return c.client.FlushByPattern(ctx, keyPrefix+"*")
}

// Stats returns hit and miss counts since startup.
func (c *QueryCache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// cacheKey normalizes the query parameters and hashes them so arbitrary
// phrases cannot produce unbounded or unsafe Redis keys.
func cacheKey(phrase, language string, proficiency gdex.Proficiency, limit int) string {
	normalized := fmt.Sprintf("%s|%s|%s|%d",
		strings.ToLower(strings.TrimSpace(phrase)),
		strings.ToLower(language),
		proficiency,
		limit)
	sum := sha256.Sum256([]byte(normalized))
	return keyPrefix + hex.EncodeToString(sum[:16])
}
