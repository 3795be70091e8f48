// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransfersTotal counts transfer attempts by their outcome tag.
	TransfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "demicredit",
		Name:      "transfers_total",
		Help:      "Transfer attempts partitioned by outcome.",
	}, []string{"outcome"})

	// RequestDuration observes wall time per HTTP request.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "demicredit",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	// LoginLockouts counts accounts locked out after repeated failures.
	LoginLockouts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "demicredit",
		Name:      "login_lockouts_total",
		Help:      "Logins rejected because the account was locked out.",
	})
)
