package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all TMS collectors
type Metrics struct {
	serviceName string
	registry    *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	KafkaEventsPublished *prometheus.CounterVec
	KafkaPublishDuration *prometheus.HistogramVec
	OutboxPending        prometheus.Gauge

	MongoDBOperations        *prometheus.CounterVec
	MongoDBOperationDuration *prometheus.HistogramVec

	ActionsInvoked    *prometheus.CounterVec
	ShippingsCreated  prometheus.Counter
	TariffLookups     *prometheus.CounterVec
	PoolingCalls      *prometheus.CounterVec
	PoolingCallLatency *prometheus.HistogramVec

	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec

	IdempotencyRequests *prometheus.CounterVec
}

// Config holds metrics configuration
type Config struct {
	ServiceName string
	Namespace   string
}

// DefaultConfig returns default metrics configuration
func DefaultConfig(serviceName string) *Config {
	return &Config{
		ServiceName: serviceName,
		Namespace:   "tms",
	}
}

// New creates a new Metrics instance with its own registry
func New(config *Config) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ns := config.Namespace
	m := &Metrics{
		serviceName: config.ServiceName,
		registry:    registry,
	}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"service", "method", "path", "status"})

	m.HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"service", "method", "path"})

	m.HTTPRequestsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   ns,
		Name:        "http_requests_in_flight",
		Help:        "Number of HTTP requests currently being processed",
		ConstLabels: prometheus.Labels{"service": config.ServiceName},
	})

	m.KafkaEventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "kafka_events_published_total",
		Help:      "Total number of Kafka events published",
	}, []string{"service", "topic", "event_type", "status"})

	m.KafkaPublishDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns,
		Name:      "kafka_publish_duration_seconds",
		Help:      "Kafka publish duration in seconds",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"service", "topic"})

	m.OutboxPending = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   ns,
		Name:        "outbox_pending_events",
		Help:        "Unpublished events fetched by the last outbox poll",
		ConstLabels: prometheus.Labels{"service": config.ServiceName},
	})

	m.MongoDBOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "mongodb_operations_total",
		Help:      "Total number of MongoDB operations",
	}, []string{"service", "collection", "operation", "status"})

	m.MongoDBOperationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns,
		Name:      "mongodb_operation_duration_seconds",
		Help:      "MongoDB operation duration in seconds",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"service", "collection", "operation"})

	m.ActionsInvoked = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "actions_invoked_total",
		Help:      "Order and shipping actions invoked, by outcome",
	}, []string{"service", "group", "action", "outcome"})

	m.ShippingsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   ns,
		Name:        "shippings_created_total",
		Help:        "Shippings created by grouping operations",
		ConstLabels: prometheus.Labels{"service": config.ServiceName},
	})

	m.TariffLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "tariff_lookups_total",
		Help:      "Tariff lookups by matched tier",
	}, []string{"service", "tier"})

	m.PoolingCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "pooling_calls_total",
		Help:      "Outbound pooling API calls",
	}, []string{"service", "operation", "status"})

	m.PoolingCallLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns,
		Name:      "pooling_call_duration_seconds",
		Help:      "Pooling API call duration in seconds",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"service", "operation"})

	m.CircuitBreakerState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: ns,
		Name:      "circuit_breaker_state",
		Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
	}, []string{"service", "name"})

	m.CircuitBreakerTrips = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of circuit breaker trips",
	}, []string{"service", "name"})

	m.IdempotencyRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "idempotency_requests_total",
		Help:      "Requests carrying an Idempotency-Key, by outcome",
	}, []string{"service", "path", "outcome"})

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.KafkaEventsPublished,
		m.KafkaPublishDuration,
		m.OutboxPending,
		m.MongoDBOperations,
		m.MongoDBOperationDuration,
		m.ActionsInvoked,
		m.ShippingsCreated,
		m.TariffLookups,
		m.PoolingCalls,
		m.PoolingCallLatency,
		m.CircuitBreakerState,
		m.CircuitBreakerTrips,
		m.IdempotencyRequests,
	)

	return m
}

// Handler returns an HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry returns the prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(m.serviceName, method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(m.serviceName, method, path).Observe(duration.Seconds())
}

// RecordKafkaPublish records a Kafka publish
func (m *Metrics) RecordKafkaPublish(topic, eventType string, success bool, duration time.Duration) {
	m.KafkaEventsPublished.WithLabelValues(m.serviceName, topic, eventType, outcome(success)).Inc()
	m.KafkaPublishDuration.WithLabelValues(m.serviceName, topic).Observe(duration.Seconds())
}

// SetOutboxPending sets the number of pending outbox events
func (m *Metrics) SetOutboxPending(count int) {
	m.OutboxPending.Set(float64(count))
}

// RecordMongoDBOperation records a MongoDB operation
func (m *Metrics) RecordMongoDBOperation(collection, operation string, success bool, duration time.Duration) {
	m.MongoDBOperations.WithLabelValues(m.serviceName, collection, operation, outcome(success)).Inc()
	m.MongoDBOperationDuration.WithLabelValues(m.serviceName, collection, operation).Observe(duration.Seconds())
}

// RecordAction records an action invocation. outcome is one of
// "success", "rejected" (business-rule result) or "error".
func (m *Metrics) RecordAction(group, action, result string) {
	m.ActionsInvoked.WithLabelValues(m.serviceName, group, action, result).Inc()
}

// RecordShippingCreated counts a new shipping
func (m *Metrics) RecordShippingCreated() {
	m.ShippingsCreated.Inc()
}

// RecordTariffLookup records which tier matched ("warehouse", "city", "region", "none")
func (m *Metrics) RecordTariffLookup(tier string) {
	m.TariffLookups.WithLabelValues(m.serviceName, tier).Inc()
}

// RecordPoolingCall records an outbound pooling call
func (m *Metrics) RecordPoolingCall(operation string, status int, duration time.Duration) {
	m.PoolingCalls.WithLabelValues(m.serviceName, operation, strconv.Itoa(status)).Inc()
	m.PoolingCallLatency.WithLabelValues(m.serviceName, operation).Observe(duration.Seconds())
}

// SetCircuitBreakerState sets the circuit breaker state
func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	m.CircuitBreakerState.WithLabelValues(m.serviceName, name).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (m *Metrics) RecordCircuitBreakerTrip(name string) {
	m.CircuitBreakerTrips.WithLabelValues(m.serviceName, name).Inc()
}

// RecordIdempotency records how a keyed request was handled
// ("miss", "replay", "mismatch", "concurrent", "storage_error")
func (m *Metrics) RecordIdempotency(path, outcome string) {
	m.IdempotencyRequests.WithLabelValues(m.serviceName, path, outcome).Inc()
}
