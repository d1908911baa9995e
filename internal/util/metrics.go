package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GamesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gamestore_games_created_total",
		Help: "Total number of games created",
	})

	GamesUpdatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gamestore_games_updated_total",
		Help: "Total number of games updated",
	})

	GamesDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gamestore_games_deleted_total",
		Help: "Total number of games deleted",
	})

	GameDownloadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gamestore_game_downloads_total",
		Help: "Total number of generated game downloads",
	})

	CatalogWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamestore_catalog_writes_total",
		Help: "Catalog writes by entity and operation",
	}, []string{"entity", "op"})

	ConcurrencyConflictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamestore_concurrency_conflicts_total",
		Help: "Updates rejected by the optimistic version check",
	}, []string{"entity"})

	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gamestore_orders_created_total",
		Help: "Total number of basket orders created",
	})

	GamesCountCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamestore_games_count_cache_total",
		Help: "Games count cache lookups by result",
	}, []string{"result"})

	EventsPublishFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamestore_events_publish_failed_total",
		Help: "Domain events that could not be published",
	}, []string{"event_type"})

	EventsConsumedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamestore_events_consumed_total",
		Help: "Domain events handled by the cache worker",
	}, []string{"event_type"})

	StoreQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gamestore_store_query_latency_seconds",
		Help:    "Latency of transactional store operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
