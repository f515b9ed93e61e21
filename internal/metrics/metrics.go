package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	VideosProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "railscan_videos_processed_total",
		Help: "Total number of videos processed, by status",
	}, []string{"status"})

	CoachesAnalyzedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "railscan_coaches_analyzed_total",
		Help: "Total number of coaches analysed, by coach status",
	}, []string{"status"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "railscan_stage_duration_seconds",
		Help:    "Duration of pipeline stages",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
	}, []string{"stage"})

	KeyframesSelectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "railscan_keyframes_selected_total",
		Help: "Total number of keyframes selected across all coaches",
	})

	DetectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "railscan_detections_total",
		Help: "Per-frame component detections, by category",
	}, []string{"category"})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "railscan_active_workers",
		Help: "Number of videos currently being analysed",
	})
)
