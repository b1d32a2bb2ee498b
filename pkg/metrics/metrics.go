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

	// 记录存储调用延迟（毫秒）
	StoreCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_call_latency_ms",
			Help:    "Record store call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(5, 2, 12), // 5ms to ~10s
		},
		[]string{"operation", "status"},
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

	// 预约状态变更计数
	ScheduleStatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schedule_status_transitions_total",
			Help: "Collection schedule status change requests",
		},
		[]string{"from", "to", "result"}, // result: success, failed, rejected, declined
	)

	// 操作员通知计数
	OperatorNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "operator_notifications_total",
			Help: "Notifications pushed to the operator feed",
		},
		[]string{"kind"},
	)

	// 积分兑换计数
	QRRedemptions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qr_redemptions_total",
			Help: "Kiosk point redemptions by result",
		},
		[]string{"result"},
	)

	// Outbox 事件投递计数
	OutboxEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbox_events_total",
			Help: "Outbox events processed by the dispatcher",
		},
		[]string{"result"}, // result: sent, failed, replayed
	)

	// MQ 消费延迟（毫秒）
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10),
		},
		[]string{"routing_key", "queue"},
	)
)

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordStoreCall 记录一次记录存储调用
func RecordStoreCall(operation, status string, duration time.Duration) {
	StoreCallLatency.WithLabelValues(operation, status).Observe(float64(duration.Milliseconds()))
}

// RecordDBQueryDuration 记录数据库查询延迟
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// IncrementStatusTransition 增加状态变更计数
func IncrementStatusTransition(from, to, result string) {
	ScheduleStatusTransitions.WithLabelValues(from, to, result).Inc()
}

func IncrementNotification(kind string) {
	OperatorNotifications.WithLabelValues(kind).Inc()
}

func IncrementRedemption(result string) {
	QRRedemptions.WithLabelValues(result).Inc()
}

func IncrementOutboxEvent(result string) {
	OutboxEvents.WithLabelValues(result).Inc()
}

// RecordMQConsumeLatency 记录 MQ 消费延迟
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}
