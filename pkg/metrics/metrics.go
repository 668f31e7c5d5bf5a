package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор Prometheus коллекторов сервиса
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueriesTotal    *prometheus.CounterVec
	DBQueryDuration   *prometheus.HistogramVec
	DBConnections     *prometheus.GaugeVec
	DBWaitCount       prometheus.Gauge
	DBWaitDurationSec prometheus.Gauge

	AppointmentOperations *prometheus.CounterVec

	NotificationsTotal   *prometheus.CounterVec
	NotificationsDropped prometheus.Counter
	NotificationQueue    prometheus.Gauge
}

// New создает и регистрирует коллекторы в DefaultRegisterer
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer создает коллекторы и регистрирует их в reg
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	labels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "path", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),

		DBQueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_queries_total",
			Help:        "Total number of database queries",
			ConstLabels: labels,
		}, []string{"operation", "status"}),

		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query latency",
			ConstLabels: labels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),

		DBConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_connections",
			Help:        "Database connection pool state",
			ConstLabels: labels,
		}, []string{"state"}),

		DBWaitCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_connections_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: labels,
		}),

		DBWaitDurationSec: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_connections_wait_duration_seconds",
			Help:        "Total time blocked waiting for a new connection",
			ConstLabels: labels,
		}),

		AppointmentOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "appointment_operations_total",
			Help:        "Appointment engine operations by result",
			ConstLabels: labels,
		}, []string{"operation", "result"}),

		NotificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "notifications_total",
			Help:        "Notification deliveries by channel and result",
			ConstLabels: labels,
		}, []string{"channel", "action", "result"}),

		NotificationsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "notifications_dropped_total",
			Help:        "Notifications dropped because the queue was full or unavailable",
			ConstLabels: labels,
		}),

		NotificationQueue: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "notification_queue_length",
			Help:        "Events waiting in the in-process notification queue",
			ConstLabels: labels,
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueriesTotal,
		m.DBQueryDuration,
		m.DBConnections,
		m.DBWaitCount,
		m.DBWaitDurationSec,
		m.AppointmentOperations,
		m.NotificationsTotal,
		m.NotificationsDropped,
		m.NotificationQueue,
	)

	return m
}

// ObserveAppointmentOperation учитывает результат операции движка записи
func (m *Metrics) ObserveAppointmentOperation(operation, result string) {
	if m == nil {
		return
	}
	m.AppointmentOperations.WithLabelValues(operation, result).Inc()
}

// ObserveNotification учитывает результат доставки уведомления
func (m *Metrics) ObserveNotification(channel, action, result string) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(channel, action, result).Inc()
}

// NotificationDropped учитывает потерянное уведомление
func (m *Metrics) NotificationDropped() {
	if m == nil {
		return
	}
	m.NotificationsDropped.Inc()
}

// SetNotificationQueue выставляет текущую длину очереди уведомлений
func (m *Metrics) SetNotificationQueue(n int) {
	if m == nil {
		return
	}
	m.NotificationQueue.Set(float64(n))
}
