package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "copilotmeter",
			Name:      "refresh_total",
			Help:      "Completed refresh cycles by resulting display mode",
		},
		[]string{"mode"},
	)

	TokenSourceTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "copilotmeter",
			Name:      "token_source_total",
			Help:      "Resolved tokens by the probe that produced them",
		},
		[]string{"source"},
	)

	FetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "copilotmeter",
			Name:      "fetch_duration_seconds",
			Help:      "Usage request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"outcome"},
	)

	QuotaUsedPercent = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "copilotmeter",
			Name:      "quota_used_percent",
			Help:      "Used percentage per metered quota; absent when unlimited",
		},
		[]string{"quota"},
	)
)

var registerOnce sync.Once

// Register adds all collectors to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RefreshTotal)
		prometheus.MustRegister(TokenSourceTotal)
		prometheus.MustRegister(FetchDuration)
		prometheus.MustRegister(QuotaUsedPercent)
		prometheus.MustRegister(httpRequestDuration)
		prometheus.MustRegister(httpRequestsTotal)
	})
}
