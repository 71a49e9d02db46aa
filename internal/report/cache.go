package report

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "equipviz_report_cache_hits_total",
		Help: "Number of rendered report cache hits.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "equipviz_report_cache_misses_total",
		Help: "Number of rendered report cache misses.",
	})
)

// CachedReport is a rendered PDF plus which renderer path produced it.
type CachedReport struct {
	PDF      []byte
	Fallback bool
}

// Cache keeps rendered PDFs keyed by dataset id. Datasets are immutable
// after upload, so entries only expire to bound memory.
type Cache struct {
	lru *expirable.LRU[int64, CachedReport]
}

// NewCache creates an LRU cache holding up to maxSize reports for ttl.
func NewCache(maxSize int, ttl time.Duration) *Cache {
	return &Cache{lru: expirable.NewLRU[int64, CachedReport](maxSize, nil, ttl)}
}

// Get returns the cached report for a dataset, if present.
func (c *Cache) Get(datasetID int64) (CachedReport, bool) {
	val, ok := c.lru.Get(datasetID)
	if ok {
		cacheHitsTotal.Inc()
		return val, true
	}
	cacheMissesTotal.Inc()
	return CachedReport{}, false
}

// Set stores a rendered report.
func (c *Cache) Set(datasetID int64, rep CachedReport) {
	c.lru.Add(datasetID, rep)
}
