package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RelayEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_events_total",
			Help: "Total number of change events processed by the relay pipeline (count)",
		},
		[]string{"outcome"},
	)

	RelayProcessingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_processing_duration_ms",
			Help:    "End-to-end pipeline duration per event in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"outcome"},
	)

	RelayActiveRules = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_active_rules",
			Help: "Number of configured CEL filter rules (count)",
		},
	)

	RelayRuleEvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_rule_evaluations_total",
			Help: "Total number of filter rule evaluations (count)",
		},
		[]string{"rule_name", "result"},
	)

	WebhookDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_deliveries_total",
			Help: "Total number of webhook delivery attempts (count)",
		},
		[]string{"status"},
	)

	WebhookDeliveryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webhook_delivery_duration_ms",
			Help:    "Duration of webhook POSTs in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"status"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked against rate limit (count)",
		},
		[]string{"status"},
	)

	FallbackUsageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fallback_usage_total",
			Help: "Total number of times fallback strategies were used (count)",
		},
		[]string{"strategy", "reason"},
	)

	RetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of consumer retry attempts (count)",
		},
		[]string{"topic"},
	)

	DLQMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dlq_messages_total",
			Help: "Total number of events sent to DLQ (count)",
		},
		[]string{"topic", "reason"},
	)

	KafkaMessagesReadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_read_total",
			Help: "Total number of messages read from Kafka (count)",
		},
		[]string{"topic"},
	)

	StreamEventsReadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stream_events_read_total",
			Help: "Total number of events read from the SSE stream (count)",
		},
		[]string{"status"},
	)

	StreamReconnectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stream_reconnects_total",
			Help: "Total number of SSE stream reconnects (count)",
		},
	)

	LogLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "log_lookups_total",
			Help: "Total number of log entry lookups on the wiki replica (count)",
		},
		[]string{"status"},
	)
)

func RegisterRelayMetrics() {
	prometheus.MustRegister(RelayEventsTotal)
	prometheus.MustRegister(RelayProcessingDuration)
	prometheus.MustRegister(RelayActiveRules)
	prometheus.MustRegister(RelayRuleEvaluationsTotal)
	prometheus.MustRegister(FallbackUsageTotal)
	prometheus.MustRegister(LogLookupsTotal)
}

func RegisterDeliveryMetrics() {
	prometheus.MustRegister(WebhookDeliveriesTotal)
	prometheus.MustRegister(WebhookDeliveryDuration)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(CircuitBreakerState)
	prometheus.MustRegister(CircuitBreakerRequests)
	prometheus.MustRegister(CircuitBreakerFailures)
}

func RegisterIngestMetrics() {
	prometheus.MustRegister(RateLimitRequestsTotal)
}

func RegisterBrokerMetrics() {
	prometheus.MustRegister(RetryAttemptsTotal)
	prometheus.MustRegister(DLQMessagesTotal)
	prometheus.MustRegister(KafkaMessagesReadTotal)
}

func RegisterStreamMetrics() {
	prometheus.MustRegister(StreamEventsReadTotal)
	prometheus.MustRegister(StreamReconnectsTotal)
}

func ObserveRelayDuration(duration time.Duration, outcome string) {
	RelayProcessingDuration.WithLabelValues(outcome).Observe(float64(duration.Milliseconds()))
}

func ObserveWebhookDuration(duration time.Duration, status string) {
	WebhookDeliveryDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func SetRelayActiveRules(count int) {
	RelayActiveRules.Set(float64(count))
}

func IncRuleEvaluation(ruleName, result string) {
	RelayRuleEvaluationsTotal.WithLabelValues(ruleName, result).Inc()
}
