package keeper

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DistanceMetrics holds all Prometheus metrics for the distance module
type DistanceMetrics struct {
	// Request metrics
	EvaluationRequests *prometheus.CounterVec
	RequestRejections  *prometheus.CounterVec

	// Submission metrics
	Submissions          *prometheus.CounterVec
	SubmissionRejections *prometheus.CounterVec

	// Settlement metrics
	Settlements         *prometheus.CounterVec
	SettlementAnomalies *prometheus.CounterVec
	MedianDistance      prometheus.Histogram
	StatusesExpired     prometheus.Counter

	// Rotation metrics
	CurrentPeriod prometheus.Gauge
	PoolSize      *prometheus.GaugeVec
}

var (
	distanceMetricsOnce sync.Once
	distanceMetrics     *DistanceMetrics
)

// NewDistanceMetrics creates and registers distance metrics (singleton pattern)
func NewDistanceMetrics() *DistanceMetrics {
	distanceMetricsOnce.Do(func() {
		distanceMetrics = &DistanceMetrics{
			EvaluationRequests: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "distance",
					Name:      "evaluation_requests_total",
					Help:      "Accepted evaluation requests by kind",
				},
				[]string{"kind"},
			),
			RequestRejections: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "distance",
					Name:      "request_rejections_total",
					Help:      "Rejected evaluation requests by reason",
				},
				[]string{"reason"},
			),
			Submissions: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "distance",
					Name:      "submissions_total",
					Help:      "Accepted evaluation results by source",
				},
				[]string{"source"},
			),
			SubmissionRejections: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "distance",
					Name:      "submission_rejections_total",
					Help:      "Rejected evaluation results by reason",
				},
				[]string{"reason"},
			),
			Settlements: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "distance",
					Name:      "settlements_total",
					Help:      "Settled evaluations by outcome",
				},
				[]string{"outcome"},
			),
			SettlementAnomalies: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "distance",
					Name:      "settlement_anomalies_total",
					Help:      "Settlement steps that failed and were skipped",
				},
				[]string{"operation"},
			),
			MedianDistance: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "paw",
					Subsystem: "distance",
					Name:      "median_distance_ratio",
					Help:      "Median share of referees reached at settlement",
					Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
				},
			),
			StatusesExpired: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "distance",
					Name:      "statuses_expired_total",
					Help:      "Valid distance statuses removed at expiry",
				},
			),
			CurrentPeriod: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "paw",
					Subsystem: "distance",
					Name:      "current_period",
					Help:      "Current evaluation period",
				},
			),
			PoolSize: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "paw",
					Subsystem: "distance",
					Name:      "pool_size",
					Help:      "Queued evaluations per pool role",
				},
				[]string{"role"},
			),
		}
	})
	return distanceMetrics
}
