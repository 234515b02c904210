// Package metrics holds the Prometheus collectors for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts counts login attempts by outcome (success, failure).
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skycast_auth_attempts_total",
		Help: "Login attempts by outcome",
	}, []string{"outcome"})

	// UpstreamRequests counts calls to third-party APIs by provider and
	// outcome (success, failure, rejected).
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skycast_upstream_requests_total",
		Help: "Third-party API calls by provider and outcome",
	}, []string{"provider", "outcome"})

	// BreakerState tracks circuit breaker state per provider
	// (0 closed, 1 half-open, 2 open).
	BreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "skycast_breaker_state",
		Help: "Circuit breaker state per provider (0=closed, 1=half-open, 2=open)",
	}, []string{"provider"})
)

// StateValue converts a breaker state name into its gauge value.
func StateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}
