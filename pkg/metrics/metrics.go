package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 数据库查询延迟（秒）
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation", "table"},
	)

	// 慢查询计数
	SlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_slow_query_count",
			Help: "Total number of statements slower than the configured threshold",
		},
		[]string{"command"},
	)

	// TodoOperationCount counts store operations by outcome.
	TodoOperationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todo_operation_count",
			Help: "Total number of todo store operations",
		},
		[]string{"operation", "result"}, // result: ok, invalid, not_found, error
	)

	CacheRequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todo_cache_request_count",
			Help: "Todo list cache lookups",
		},
		[]string{"result"}, // result: hit, miss, error
	)

	EventPublishedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todo_event_published_count",
			Help: "Todo change events handed to the broker",
		},
		[]string{"routing_key", "status"}, // status: success, failed
	)
)

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordDBQueryDuration 记录数据库查询延迟
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// IncrementSlowQuery records one slow statement. command is the leading SQL keyword.
func IncrementSlowQuery(command string, _ time.Duration) {
	SlowQueryCount.WithLabelValues(command).Inc()
}

func IncrementTodoOperation(operation, result string) {
	TodoOperationCount.WithLabelValues(operation, result).Inc()
}

func IncrementCacheRequest(result string) {
	CacheRequestCount.WithLabelValues(result).Inc()
}

func IncrementEventPublished(routingKey, status string) {
	EventPublishedCount.WithLabelValues(routingKey, status).Inc()
}
