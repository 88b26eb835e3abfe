package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BreakerState is the default breaker gauge. Values: 0 closed, 1 half-open, 2 open.
var BreakerState = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "lms",
		Subsystem: "portal",
		Name:      "gateway_breaker_state",
		Help:      "Circuit breaker state of the portal API gateway (0 closed, 1 half-open, 2 open).",
	},
)
