// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExtractionJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scorecard_jobs_completed_total",
			Help: "Total number of scorecard extraction jobs completed",
		},
		[]string{"mode"},
	)

	ExtractionJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scorecard_jobs_failed_total",
			Help: "Total number of scorecard extraction jobs failed",
		},
		[]string{"mode", "error_code"},
	)

	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "scorecard_extraction_duration_seconds",
			Help: "Duration of scorecard extraction in seconds",
		},
		[]string{"strategy"},
	)

	DriversExtracted = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scorecard_drivers_extracted",
			Help:    "Number of driver KPI rows extracted per scorecard",
			Buckets: prometheus.LinearBuckets(0, 10, 10),
		},
		[]string{"strategy"},
	)

	CompanyKPIsExtracted = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scorecard_company_kpis_extracted",
			Help:    "Number of company KPI rows extracted per scorecard",
			Buckets: prometheus.LinearBuckets(0, 2, 10),
		},
		[]string{"strategy"},
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scorecard_queue_depth",
			Help: "Number of processing jobs waiting in the redis queue",
		},
	)
)
