package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatlogger_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatlogger_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	MessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatlogger_messages_sent_total",
			Help: "Total messages sent",
		},
		[]string{"chat_type"}, // "global" or "private"
	)

	MessagesEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatlogger_messages_evicted_total",
			Help: "Total messages removed by FIFO eviction",
		},
	)

	DecryptFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatlogger_decrypt_failures_total",
			Help: "Total messages that failed to decrypt on read",
		},
	)

	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatlogger_logins_total",
			Help: "Total successful logins",
		},
		[]string{"method"}, // "google" or "simple"
	)

	RateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatlogger_rate_limit_hits_total",
			Help: "Total sends rejected by rate limiting",
		},
	)
)
