package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linguachat_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linguachat_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	MessagesIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linguachat_messages_ingested_total",
			Help: "Total messages persisted, by kind",
		},
		[]string{"kind"},
	)

	PublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linguachat_publish_failures_total",
			Help: "Messages persisted but not broadcast to the live feed",
		},
	)

	VoiceUploads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linguachat_voice_uploads_total",
			Help: "Total voice uploads accepted",
		},
	)

	TranslationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linguachat_translation_failures_total",
			Help: "Voice translations that fell back to the original recording",
		},
	)

	// Live feed metrics
	ActiveSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "linguachat_active_subscribers",
			Help: "Currently connected live-feed subscribers",
		},
	)

	DroppedEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linguachat_dropped_events_total",
			Help: "Events dropped because a subscriber was too slow",
		},
	)
)
