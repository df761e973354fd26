package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harudiary_video_jobs_total",
		Help: "Total number of video generation jobs, by outcome",
	}, []string{"outcome"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "harudiary_video_stage_duration_seconds",
		Help:    "Duration of each pipeline stage",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200},
	}, []string{"stage"})

	ScenesGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harudiary_video_scenes_total",
		Help: "Total number of scenes generated across all jobs",
	})

	ActiveJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "harudiary_video_active_jobs",
		Help: "Number of jobs currently being processed",
	})

	ImagePolicyRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harudiary_video_image_policy_retries_total",
		Help: "Image generation attempts repeated after a content-policy rejection",
	})

	ProgressEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harudiary_video_progress_events_total",
		Help: "Progress events pushed to clients, by status",
	}, []string{"status"})
)
