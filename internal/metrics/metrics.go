package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindtype_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mindtype_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ChatRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindtype_chat_requests_total",
			Help: "Total number of chat requests.",
		},
		[]string{"mode", "status"},
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mindtype_llm_request_duration_seconds",
			Help:    "Upstream LLM completion latency in seconds.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"op"},
	)

	TrustLevelUpsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mindtype_trust_levelups_total",
			Help: "Total number of trust level-ups across all relationships.",
		},
	)

	MoodEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindtype_mood_events_total",
			Help: "Mood impact verdicts by impact class.",
		},
		[]string{"impact"},
	)

	ExtractionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindtype_fact_extractions_total",
			Help: "Fact extraction task outcomes.",
		},
		[]string{"status"},
	)

	ChallengeClaimsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindtype_challenge_claims_total",
			Help: "Weekly challenge claim attempts by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ChatRequestsTotal,
		LLMRequestDuration,
		TrustLevelUpsTotal,
		MoodEventsTotal,
		ExtractionsTotal,
		ChallengeClaimsTotal,
	)
}
