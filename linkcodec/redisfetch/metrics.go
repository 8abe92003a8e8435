package redisfetch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var documentCacheHits = promauto.NewCounter(prometheus.CounterOpts{
	Name: "pagegen_redis_document_cache_hits",
	Help: "Number of cache hits for fetched page documents",
})

var documentCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
	Name: "pagegen_redis_document_cache_misses",
	Help: "Number of cache misses for fetched page documents",
})
