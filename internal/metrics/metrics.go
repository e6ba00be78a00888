// Package metrics holds the Prometheus collectors for registrations and code refreshes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registration outcomes used as the "result" label.
const (
	ResultCreated   = "created"
	ResultDuplicate = "duplicate"
	ResultInvalid   = "invalid"
	ResultFailed    = "failed"
)

var (
	RegisteredAccounts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "steamguardbot_registered_accounts",
		Help: "Number of accounts in the in-memory registry",
	})

	Registrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "steamguardbot_registrations_total",
			Help: "Registration attempts by result",
		},
		[]string{"result"},
	)

	RefreshSweeps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "steamguardbot_refresh_sweeps_total",
		Help: "Completed refresh sweeps",
	})

	RefreshEdits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "steamguardbot_refresh_edits_total",
		Help: "Messages successfully updated with a fresh code",
	})

	RefreshFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "steamguardbot_refresh_failures_total",
			Help: "Per-account refresh failures by stage",
		},
		[]string{"stage"},
	)

	RefreshSweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "steamguardbot_refresh_sweep_duration_seconds",
		Help:    "Duration of a full refresh sweep in seconds",
		Buckets: prometheus.DefBuckets,
	})
)
