// Package pagecache provides a cost-aware read cache of deserialized pages,
// keyed by their encoded positions. Page content is immutable once
// published, so cached entries never need invalidation on update, only on
// removal of the underlying durable page.
package pagecache

import (
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/sergeyzolotukhin/h2database/core/mvstore/page"
)

// Config controls cache sizing.
type Config struct {
	// MaxBytes caps the total estimated memory of cached pages.
	MaxBytes int64 `yaml:"max_bytes"`

	// NumCounters sizes the admission frequency sketch; roughly ten times
	// the expected number of resident pages. Derived from MaxBytes when 0.
	NumCounters int64 `yaml:"num_counters"`
}

// Cache holds deserialized pages by position so hot subtrees survive their
// parents releasing them after a save.
type Cache struct {
	inner  *ristretto.Cache[uint64, page.PageInfo]
	logger *zap.Logger

	hits      prometheus.Counter
	misses    prometheus.Counter
	evictions prometheus.Counter
}

// New creates a page cache. The registerer may be nil to skip metrics
// registration.
func New(cfg Config, logger *zap.Logger, reg prometheus.Registerer) (*Cache, error) {
	if cfg.MaxBytes <= 0 {
		return nil, fmt.Errorf("page cache: max_bytes must be positive, got %d", cfg.MaxBytes)
	}
	numCounters := cfg.NumCounters
	if numCounters == 0 {
		// assume pages around 4 KiB on average
		numCounters = 10 * (cfg.MaxBytes / 4096)
		if numCounters < 1024 {
			numCounters = 1024
		}
	}
	evictions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mvstore_page_cache_evictions_total",
		Help: "Number of pages evicted to keep the cache within its cost cap.",
	})
	inner, err := ristretto.NewCache(&ristretto.Config[uint64, page.PageInfo]{
		NumCounters: numCounters,
		MaxCost:     cfg.MaxBytes,
		BufferItems: 64,
		OnEvict: func(*ristretto.Item[page.PageInfo]) {
			evictions.Inc()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("page cache: creating cache: %w", err)
	}

	c := &Cache{
		inner:  inner,
		logger: logger,
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mvstore_page_cache_hits_total",
			Help: "Number of page lookups served from the cache.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mvstore_page_cache_misses_total",
			Help: "Number of page lookups that fell through to the store.",
		}),
		evictions: evictions,
	}
	if reg != nil {
		if err := reg.Register(c.hits); err != nil {
			return nil, fmt.Errorf("page cache: registering hit counter: %w", err)
		}
		if err := reg.Register(c.misses); err != nil {
			return nil, fmt.Errorf("page cache: registering miss counter: %w", err)
		}
		if err := reg.Register(c.evictions); err != nil {
			return nil, fmt.Errorf("page cache: registering eviction counter: %w", err)
		}
	}
	logger.Info("page cache initialized",
		zap.Int64("max_bytes", cfg.MaxBytes),
		zap.Int64("num_counters", numCounters))
	return c, nil
}

// Get returns the cached page stored at pos, if any.
func (c *Cache) Get(pos uint64) (page.PageInfo, bool) {
	p, ok := c.inner.Get(pos)
	if ok {
		c.hits.Inc()
	} else {
		c.misses.Inc()
	}
	return p, ok
}

// Put admits a page under its position, weighted by its memory estimate.
// Admission is advisory; the cache may decline cold entries.
func (c *Cache) Put(p page.PageInfo) {
	pos := p.Pos()
	if pos == 0 {
		return
	}
	cost := int64(p.Memory())
	if cost <= 0 {
		cost = 1
	}
	c.inner.Set(pos, p, cost)
}

// Remove drops the page stored at pos, called when the durable page is
// removed.
func (c *Cache) Remove(pos uint64) {
	c.inner.Del(pos)
}

// Wait blocks until pending admissions are applied. Intended for tests.
func (c *Cache) Wait() {
	c.inner.Wait()
}

// Close releases the cache's background resources.
func (c *Cache) Close() {
	c.inner.Close()
}
