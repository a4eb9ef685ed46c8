package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by store backend.
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kolport_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"store"}, // "memory", "redis"
	)

	// CacheMisses tracks cache misses by store backend.
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kolport_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"store"},
	)

	// CacheSwept tracks entries removed by the periodic sweep.
	CacheSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kolport_cache_swept_total",
			Help: "Total number of expired entries removed by the sweep timer",
		},
	)

	// CacheErrors tracks cache operation errors.
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kolport_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete", "clear"
	)
)
