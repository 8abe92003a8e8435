package pagecache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var pageCacheHits = promauto.NewCounter(prometheus.CounterOpts{
	Name: "pagegen_page_cache_hits",
	Help: "Number of cache hits for page lookups",
})

var pageCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
	Name: "pagegen_page_cache_misses",
	Help: "Number of cache misses for page lookups",
})

var pageLoadFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pagegen_page_load_failures",
	Help: "Page loads on a cache miss which did not produce a page",
}, []string{"reason"})

var pageOverwrites = promauto.NewCounter(prometheus.CounterOpts{
	Name: "pagegen_page_cache_overwrites_total",
	Help: "Number of cached pages replaced by another instance with the same category and id",
})
