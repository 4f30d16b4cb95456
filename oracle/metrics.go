package oracle

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// OracleMetrics holds all Prometheus metrics for the distance oracle
type OracleMetrics struct {
	Runs             *prometheus.CounterVec
	RunDuration      prometheus.Histogram
	IdentitiesScored prometheus.Counter
	Referees         prometheus.Gauge
	RefereeThreshold prometheus.Gauge
	ArtifactsPruned  prometheus.Counter
	LastPeriod       prometheus.Gauge
}

var (
	oracleMetricsOnce sync.Once
	oracleMetrics     *OracleMetrics
)

// NewOracleMetrics creates and registers oracle metrics (singleton pattern)
func NewOracleMetrics() *OracleMetrics {
	oracleMetricsOnce.Do(func() {
		oracleMetrics = &OracleMetrics{
			Runs: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "distance_oracle",
					Name:      "runs_total",
					Help:      "Oracle runs by outcome",
				},
				[]string{"outcome"},
			),
			RunDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "paw",
					Subsystem: "distance_oracle",
					Name:      "run_duration_seconds",
					Help:      "Duration of runs that produced an artifact",
					Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
				},
			),
			IdentitiesScored: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "distance_oracle",
					Name:      "identities_scored_total",
					Help:      "Identities scored across all runs",
				},
			),
			Referees: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "paw",
					Subsystem: "distance_oracle",
					Name:      "referees",
					Help:      "Referees in the last evaluated snapshot",
				},
			),
			RefereeThreshold: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "paw",
					Subsystem: "distance_oracle",
					Name:      "referee_threshold",
					Help:      "Certification threshold of the last evaluated snapshot",
				},
			),
			ArtifactsPruned: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "distance_oracle",
					Name:      "artifacts_pruned_total",
					Help:      "Artifacts removed by retention",
				},
			),
			LastPeriod: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "paw",
					Subsystem: "distance_oracle",
					Name:      "last_artifact_period",
					Help:      "Period of the last written artifact",
				},
			),
		}
	})
	return oracleMetrics
}
