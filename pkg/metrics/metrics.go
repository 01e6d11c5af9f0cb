// Package metrics содержит Prometheus метрики сервиса
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор метрик сервиса
// Все методы безопасны для nil-получателя: если метрики выключены, вызовы ничего не делают
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration   *prometheus.HistogramVec
	DBQueryErrors     *prometheus.CounterVec
	DBConnections     *prometheus.GaugeVec
	DBWaitCount       prometheus.Gauge
	DBWaitDurationSec prometheus.Gauge

	DomainEvents     *prometheus.CounterVec
	LockWaitDuration *prometheus.HistogramVec
	LockFailures     *prometheus.CounterVec
}

// New создает метрики и регистрирует их в глобальном реестре Prometheus
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry создает метрики и регистрирует их в переданном реестре
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	labels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration",
			ConstLabels: labels,
			Buckets:     []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"method", "route"}),
		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration",
			ConstLabels: labels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		DBQueryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_query_errors_total",
			Help:        "Database query errors",
			ConstLabels: labels,
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
		DomainEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "dialysis_domain_events_total",
			Help:        "Scheduling and resource allocation events",
			ConstLabels: labels,
		}, []string{"component", "event"}),
		LockWaitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "resource_lock_wait_seconds",
			Help:        "Time spent acquiring resource locks",
			ConstLabels: labels,
			Buckets:     []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2},
		}, []string{"scope"}),
		LockFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "resource_lock_failures_total",
			Help:        "Resource locks that could not be acquired in time",
			ConstLabels: labels,
		}, []string{"scope"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueryDuration,
		m.DBQueryErrors,
		m.DBConnections,
		m.DBWaitCount,
		m.DBWaitDurationSec,
		m.DomainEvents,
		m.LockWaitDuration,
		m.LockFailures,
	)

	return m
}

// ObserveHTTPRequest записывает метрики HTTP запроса
func (m *Metrics) ObserveHTTPRequest(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveDBQuery записывает длительность запроса к БД
func (m *Metrics) ObserveDBQuery(operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(operation).Observe(d.Seconds())
	if err != nil {
		m.DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// ObserveDomainEvent увеличивает счетчик доменного события (booked, started, discarded, ...)
func (m *Metrics) ObserveDomainEvent(component, event string) {
	if m == nil {
		return
	}
	m.DomainEvents.WithLabelValues(component, event).Inc()
}

// ObserveLockWait записывает время ожидания блокировки
func (m *Metrics) ObserveLockWait(scope string, d time.Duration, acquired bool) {
	if m == nil {
		return
	}
	m.LockWaitDuration.WithLabelValues(scope).Observe(d.Seconds())
	if !acquired {
		m.LockFailures.WithLabelValues(scope).Inc()
	}
}
